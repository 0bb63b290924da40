package service

import (
	"context"
	"fmt"
	"strings"

	"colchones/internal/apierror"
	"colchones/internal/infra"
	"colchones/internal/model"
	"colchones/internal/pagos"
	"colchones/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var diasPorDefecto = [3]int{2, 4, 7}

// despacharSiPagada recomputes the order summary after a payment write and,
// when recorded payments cover a non-zero total, moves every Pendiente or
// En proceso line to A despachar. Runs inside the caller's transaction.
func despacharSiPagada(
	ctx context.Context,
	tx *gorm.DB,
	ventas repository.VentaRepository,
	cuotas repository.CuotaRepository,
	orden string,
) (pagos.Resumen, []model.Venta, []model.Cuota, []uuid.UUID, error) {
	lineas, err := ventas.FindByOrdenTx(ctx, tx, orden)
	if err != nil {
		return pagos.Resumen{}, nil, nil, nil, err
	}
	if len(lineas) == 0 {
		return pagos.Resumen{}, nil, nil, nil, apierror.NoEncontrado("orden", orden)
	}
	cs, err := cuotas.ListByOrdenTx(ctx, tx, orden)
	if err != nil {
		return pagos.Resumen{}, nil, nil, nil, err
	}

	r := pagos.Resumir(lineas, cs)
	if !r.Pagada() {
		return r, lineas, cs, nil, nil
	}

	var ids []uuid.UUID
	for i := range lineas {
		if lineas[i].EstadoEntrega.AutoDespachable() {
			ids = append(ids, lineas[i].ID)
			lineas[i].EstadoEntrega = model.EntregaADespachar
		}
	}
	if len(ids) == 0 {
		return r, lineas, cs, nil, nil
	}
	if err := ventas.UpdateEstadoLineas(ctx, tx, ids, model.EntregaADespachar); err != nil {
		return r, lineas, cs, nil, err
	}
	log.Info().Str("orden", orden).Int("lineas", len(ids)).Msg("orden pagada, lineas a despachar")
	return r, lineas, cs, ids, nil
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// notificarPago enqueues the payment receipt for the customer with the order
// summary attached. Best-effort: failures are logged only.
func notificarPago(ctx context.Context, cola ColaCorreo, lineas []model.Venta, cuotas []model.Cuota, r pagos.Resumen, concepto string) {
	if cola == nil || len(lineas) == 0 {
		return
	}
	principal := pagos.LineaPrincipal(lineas)
	if strings.TrimSpace(principal.EmailCliente) == "" {
		return
	}

	pdf, err := infra.ResumenOrdenPDF(lineas, cuotas, r)
	if err != nil {
		log.Warn().Err(err).Str("orden", principal.Orden).Msg("no se pudo generar el resumen PDF")
	}

	c := infra.Correo{
		Para:   []string{principal.EmailCliente},
		Asunto: fmt.Sprintf("%s · Recibimos tu pago de la orden %s", principal.Marca, principal.Orden),
		HTML: fmt.Sprintf(
			"<p>Hola %s,</p><p>Registramos tu %s para la orden <b>%s</b>.</p>"+
				"<p>Total pagado: $%s<br>Saldo pendiente: $%s</p>",
			principal.NombreCliente, concepto, principal.Orden,
			r.TotalPagado.StringFixed(2), r.SaldoPendiente.StringFixed(2)),
	}
	if pdf != nil {
		c.Adjuntos = []infra.Adjunto{{
			Nombre:    "orden-" + principal.Orden + ".pdf",
			Tipo:      "application/pdf",
			Contenido: pdf,
		}}
	}
	if err := cola.EncolarCorreo(ctx, principal.Marca, c); err != nil {
		log.Warn().Err(err).Str("orden", principal.Orden).Msg("no se pudo encolar el aviso de pago")
	}
}

// diasSeguimiento loads the follow-up offsets, falling back to the defaults
// when the configuration row cannot be read.
func diasSeguimiento(ctx context.Context, cfg repository.ConfiguracionRepository) [3]int {
	if cfg == nil {
		return diasPorDefecto
	}
	c, err := cfg.GetSeguimiento(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("configuracion de seguimiento no disponible, usando valores por defecto")
		return diasPorDefecto
	}
	return c.Dias()
}
