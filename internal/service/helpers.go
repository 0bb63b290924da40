package service

import (
	"context"
	"strings"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/infra"
	"colchones/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const formatoFecha = "2006-01-02"

// ColaCorreo enqueues outbound e-mail for the worker pool.
type ColaCorreo interface {
	EncolarCorreo(ctx context.Context, marca model.Marca, c infra.Correo) error
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// parseFecha reads a calendar date as local midnight in loc.
func parseFecha(campo, s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(formatoFecha, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, apierror.Validacion(campo, "fecha invalida, se espera YYYY-MM-DD")
	}
	return t, nil
}

// parseFechaOpcional returns nil for an empty string.
func parseFechaOpcional(campo string, s *string, loc *time.Location) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseFecha(campo, *s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatFecha(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(formatoFecha)
}

func formatFechaPtr(t *time.Time, loc *time.Location) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := formatFecha(*t, loc)
	return &s
}

func parseUUIDOpcional(campo string, s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, apierror.Validacion(campo, "uuid invalido")
	}
	return &id, nil
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// hoyEn returns local midnight of now in loc and the following midnight.
func hoyEn(now time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := now.In(loc).Date()
	inicio := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return inicio, inicio.AddDate(0, 0, 1)
}

func direccionDesdeDTO(d dto.DireccionDTO) model.Direccion {
	return model.Direccion{
		Direccion:  strings.TrimSpace(d.Direccion),
		Ciudad:     strings.TrimSpace(d.Ciudad),
		Estado:     strings.TrimSpace(d.Estado),
		Referencia: strings.TrimSpace(d.Referencia),
	}
}

func direccionToDTO(d model.Direccion) dto.DireccionDTO {
	return dto.DireccionDTO{Direccion: d.Direccion, Ciudad: d.Ciudad, Estado: d.Estado, Referencia: d.Referencia}
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func ventaToResponse(v *model.Venta, loc *time.Location) dto.VentaResponse {
	r := dto.VentaResponse{
		ID:                        v.ID.String(),
		Orden:                     v.Orden,
		Canal:                     string(v.Canal),
		Marca:                     string(v.Marca),
		Tipo:                      string(v.Tipo),
		Fecha:                     formatFecha(v.Fecha, loc),
		ExternalID:                v.ExternalID,
		NombreCliente:             v.NombreCliente,
		Cedula:                    v.Cedula,
		Telefono:                  v.Telefono,
		EmailCliente:              v.EmailCliente,
		Producto:                  v.Producto,
		SKU:                       v.SKU,
		Cantidad:                  v.Cantidad,
		PrecioUnitarioUsd:         v.PrecioUnitarioUsd,
		TotalUsd:                  v.TotalUsd,
		AsesorID:                  uuidPtrString(v.AsesorID),
		EstadoEntrega:             string(v.EstadoEntrega),
		Facturacion:               direccionToDTO(v.Facturacion),
		Despacho:                  direccionToDTO(v.Despacho),
		DespachoIgualFacturacion:  v.DespachoIgualFacturacion,
		PagoInicialUsd:            v.PagoInicialUsd,
		MetodoPagoInicial:         v.MetodoPagoInicial,
		BancoPagoInicial:          v.BancoPagoInicial,
		ReferenciaPagoInicial:     v.ReferenciaPagoInicial,
		EstadoVerificacionInicial: string(v.EstadoVerificacionInicial.Normalizar()),
		MontoFleteUsd:             v.MontoFleteUsd,
		PagoFleteUsd:              v.PagoFleteUsd,
		BancoFlete:                v.BancoFlete,
		ReferenciaFlete:           v.ReferenciaFlete,
		FleteGratis:               v.FleteGratis,
		EstadoVerificacionFlete:   string(v.EstadoVerificacionFlete.Normalizar()),
		FechaEntrega:              formatFechaPtr(v.FechaEntrega, loc),
		FechaDevolucion:           formatFechaPtr(v.FechaDevolucion, loc),
		MotivoCancelacion:         v.MotivoCancelacion,
		Notas:                     v.Notas,
		FechasSeguimiento: [3]*string{
			formatFechaPtr(v.FechaSeguimiento1, loc),
			formatFechaPtr(v.FechaSeguimiento2, loc),
			formatFechaPtr(v.FechaSeguimiento3, loc),
		},
		RespuestasSeguimiento: [3]string{v.RespuestaSeguimiento1, v.RespuestaSeguimiento2, v.RespuestaSeguimiento3},
		CreatedAt:             v.CreatedAt.Format(time.RFC3339),
	}
	if v.Asesor != nil {
		r.AsesorNombre = v.Asesor.Nombre
	}
	return r
}

func ventasToResponse(lineas []model.Venta, loc *time.Location) []dto.VentaResponse {
	out := make([]dto.VentaResponse, len(lineas))
	for i := range lineas {
		out[i] = ventaToResponse(&lineas[i], loc)
	}
	return out
}

func cuotaToResponse(c *model.Cuota, loc *time.Location) dto.CuotaResponse {
	return dto.CuotaResponse{
		ID:                 c.ID.String(),
		VentaID:            c.VentaID.String(),
		Orden:              c.Orden,
		NumeroCuota:        c.NumeroCuota,
		FechaPago:          formatFecha(c.FechaPago, loc),
		PagoCuotaUsd:       c.PagoCuotaUsd,
		MontoBs:            c.MontoBs,
		MetodoPago:         c.MetodoPago,
		Banco:              c.Banco,
		Referencia:         c.Referencia,
		EstadoVerificacion: string(c.EstadoVerificacion.Normalizar()),
		NotasVerificacion:  c.NotasVerificacion,
	}
}

func cuotasToResponse(cuotas []model.Cuota, loc *time.Location) []dto.CuotaResponse {
	out := make([]dto.CuotaResponse, len(cuotas))
	for i := range cuotas {
		out[i] = cuotaToResponse(&cuotas[i], loc)
	}
	return out
}

func egresoToResponse(e *model.Egreso, loc *time.Location) dto.EgresoResponse {
	r := dto.EgresoResponse{
		ID:                 e.ID.String(),
		Fecha:              formatFecha(e.Fecha, loc),
		FechaCompromiso:    formatFecha(e.FechaCompromiso, loc),
		Descripcion:        e.Descripcion,
		Beneficiario:       e.Beneficiario,
		Monto:              e.Monto,
		Moneda:             e.Moneda,
		Tipo:               e.Tipo,
		Categoria:          e.Categoria,
		MetodoPago:         e.MetodoPago,
		Banco:              e.Banco,
		Referencia:         e.Referencia,
		Estado:             string(e.Estado),
		FechaPago:          formatFechaPtr(e.FechaPago, loc),
		EstadoVerificacion: string(e.EstadoVerificacion.Normalizar()),
		NotasVerificacion:  e.NotasVerificacion,
		EsRecurrente:       e.EsRecurrente,
		SerieRecurrenciaID: uuidPtrString(e.SerieRecurrenciaID),
		NumeroEnSerie:      e.NumeroEnSerie,
		NumeroRepeticiones: e.NumeroRepeticiones,
	}
	if e.Marca != nil {
		m := string(*e.Marca)
		r.Marca = &m
	}
	if e.FrecuenciaRecurrencia != nil {
		f := string(*e.FrecuenciaRecurrencia)
		r.Frecuencia = &f
	}
	return r
}

func prospectoToResponse(p *model.Prospecto, loc *time.Location) dto.ProspectoResponse {
	r := dto.ProspectoResponse{
		ID:              p.ID.String(),
		Nombre:          p.Nombre,
		Telefono:        p.Telefono,
		Email:           p.Email,
		Canal:           p.Canal,
		Marca:           string(p.Marca),
		ProductoInteres: p.ProductoInteres,
		AsesorID:        uuidPtrString(p.AsesorID),
		FechaCreacion:   formatFecha(p.FechaCreacion, loc),
		Estado:          string(p.Estado),
		FechasSeguimiento: [3]*string{
			formatFechaPtr(p.FechaSeguimiento1, loc),
			formatFechaPtr(p.FechaSeguimiento2, loc),
			formatFechaPtr(p.FechaSeguimiento3, loc),
		},
		RespuestasSeguimiento: [3]string{p.RespuestaSeguimiento1, p.RespuestaSeguimiento2, p.RespuestaSeguimiento3},
		Notas:                 p.Notas,
	}
	if p.Asesor != nil {
		r.AsesorNombre = p.Asesor.Nombre
	}
	return r
}
