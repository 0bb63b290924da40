package infra

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

// ResendMailer delivers through the Resend transactional API. It is the
// BoxiSleep delivery path.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *ResendMailer) Enviar(ctx context.Context, c Correo) error {
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      c.Para,
		Subject: c.Asunto,
		Html:    c.HTML,
		Text:    c.Texto,
	}
	for _, a := range c.Adjuntos {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Content:     a.Contenido,
			Filename:    a.Nombre,
			ContentType: a.Tipo,
		})
	}

	res, err := m.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	log.Debug().Str("email_id", res.Id).Strs("to", c.Para).Msg("resend: correo enviado")
	return nil
}
