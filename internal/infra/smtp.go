package infra

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"colchones/internal/config"

	"github.com/jordan-wright/email"
)

// Correo is one outbound message, independent of the delivery path.
type Correo struct {
	Para     []string
	Asunto   string
	HTML     string
	Texto    string
	Adjuntos []Adjunto
}

type Adjunto struct {
	Nombre    string
	Tipo      string // MIME type
	Contenido []byte
}

// Enviador delivers a Correo through one provider.
type Enviador interface {
	Enviar(ctx context.Context, c Correo) error
}

// Mailer wraps SMTP configuration. It is the Mompox delivery path.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Enviar sends c over SMTP. net/smtp has no context support; ctx is only
// checked before dialing.
func (m *Mailer) Enviar(ctx context.Context, c Correo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = c.Para
	e.Subject = c.Asunto
	if c.Texto != "" {
		e.Text = []byte(c.Texto)
	}
	if c.HTML != "" {
		e.HTML = []byte(c.HTML)
	}
	for _, a := range c.Adjuntos {
		if _, err := e.Attach(bytes.NewReader(a.Contenido), a.Nombre, a.Tipo); err != nil {
			return fmt.Errorf("mailer: adjuntar %s: %w", a.Nombre, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: smtp %s: %w", m.addr, err)
	}
	return nil
}
