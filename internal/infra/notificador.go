package infra

import (
	"context"
	"errors"

	"colchones/internal/model"
)

// ErrSinEnviador is returned when no delivery path is configured for a brand.
var ErrSinEnviador = errors.New("notificador: sin proveedor de correo configurado")

// Notificador picks the delivery path by brand: BoxiSleep goes through the
// transactional API, Mompox through SMTP. Messages not tied to a brand (the
// daily digest) use the default path.
type Notificador struct {
	porMarca       map[model.Marca]Enviador
	predeterminado Enviador
}

func NewNotificador(predeterminado Enviador) *Notificador {
	return &Notificador{porMarca: map[model.Marca]Enviador{}, predeterminado: predeterminado}
}

// ConMarca registers the delivery path of one brand. A nil Enviador is ignored.
func (n *Notificador) ConMarca(m model.Marca, e Enviador) *Notificador {
	if e != nil {
		n.porMarca[m] = e
	}
	return n
}

func (n *Notificador) enviadorPara(m model.Marca) Enviador {
	if e, ok := n.porMarca[m]; ok {
		return e
	}
	return n.predeterminado
}

// Enviar delivers c through the path of brand m.
func (n *Notificador) Enviar(ctx context.Context, m model.Marca, c Correo) error {
	e := n.enviadorPara(m)
	if e == nil {
		return ErrSinEnviador
	}
	return e.Enviar(ctx, c)
}
