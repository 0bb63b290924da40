// Package pagos aggregates the payments recorded against an order.
//
// An order is paid through three independent components: the initial payment
// and the freight payment (both carried by the order's primary line) and any
// number of installments. Each component is verified on its own, so the
// aggregate exposes both what was recorded and what finance has verified.
package pagos

import (
	"sort"

	"colchones/internal/model"

	"github.com/shopspring/decimal"
)

// Resumen is derived on read and never persisted.
type Resumen struct {
	TotalOrden      decimal.Decimal `json:"total_orden"`
	TotalPagado     decimal.Decimal `json:"total_pagado"`
	TotalVerificado decimal.Decimal `json:"total_verificado"`
	SaldoPendiente  decimal.Decimal `json:"saldo_pendiente"`
}

// Pagada reports whether the recorded payments cover a non-zero order total.
func (r Resumen) Pagada() bool {
	return r.TotalOrden.IsPositive() && r.SaldoPendiente.LessThanOrEqual(decimal.Zero)
}

// Resumir aggregates the lines and installments of one order. Unset amounts
// count as zero. Verified figures only include components whose verification
// state is Verificado.
func Resumir(lineas []model.Venta, cuotas []model.Cuota) Resumen {
	var r Resumen
	for i := range lineas {
		l := &lineas[i]
		r.TotalOrden = r.TotalOrden.Add(l.TotalUsd)

		if l.PagoInicialUsd != nil {
			r.TotalPagado = r.TotalPagado.Add(*l.PagoInicialUsd)
			if l.EstadoVerificacionInicial == model.VerificacionVerificado {
				r.TotalVerificado = r.TotalVerificado.Add(*l.PagoInicialUsd)
			}
		}
		if l.PagoFleteUsd != nil {
			r.TotalPagado = r.TotalPagado.Add(*l.PagoFleteUsd)
			if l.EstadoVerificacionFlete == model.VerificacionVerificado {
				r.TotalVerificado = r.TotalVerificado.Add(*l.PagoFleteUsd)
			}
		}
	}
	for _, c := range cuotas {
		r.TotalPagado = r.TotalPagado.Add(c.PagoCuotaUsd)
		if c.EstadoVerificacion == model.VerificacionVerificado {
			r.TotalVerificado = r.TotalVerificado.Add(c.PagoCuotaUsd)
		}
	}
	r.SaldoPendiente = r.TotalOrden.Sub(r.TotalPagado)
	return r
}

// LineaPrincipal returns the line that carries the order-level payments: the
// earliest created one, ties broken by ID. Returns nil for an empty slice.
func LineaPrincipal(lineas []model.Venta) *model.Venta {
	if len(lineas) == 0 {
		return nil
	}
	ordenadas := make([]*model.Venta, len(lineas))
	for i := range lineas {
		ordenadas[i] = &lineas[i]
	}
	sort.SliceStable(ordenadas, func(i, j int) bool {
		a, b := ordenadas[i], ordenadas[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return ordenadas[0]
}
