package dto

import (
	"colchones/internal/pagos"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Orden           string `form:"orden"`
	Canal           string `form:"canal"`
	Marca           string `form:"marca"`
	Estado          string `form:"estado"`    // one of the nine delivery states
	AsesorID        string `form:"asesor_id"` // uuid
	Desde           string `form:"desde"`     // YYYY-MM-DD
	Hasta           string `form:"hasta"`     // YYYY-MM-DD
	Q               string `form:"q"`         // cliente, cedula or producto
	IncluirCerradas bool   `form:"incluir_cerradas"`
	Page            int    `form:"page,default=1"   validate:"min=1"`
	Limit           int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DireccionDTO struct {
	Direccion  string `json:"direccion"  validate:"max=500"`
	Ciudad     string `json:"ciudad"     validate:"max=100"`
	Estado     string `json:"estado"     validate:"max=100"`
	Referencia string `json:"referencia" validate:"max=500"`
}

type LineaRequest struct {
	Producto          string          `json:"producto"            validate:"required,max=200"`
	SKU               string          `json:"sku"                 validate:"max=60"`
	Cantidad          int             `json:"cantidad"            validate:"required,min=1"`
	PrecioUnitarioUsd decimal.Decimal `json:"precio_unitario_usd" validate:"min=0"`
}

// PagoRequest records the order's initial (or full) payment.
type PagoRequest struct {
	MontoUsd   decimal.Decimal `json:"monto_usd"  validate:"required,gt=0"`
	Metodo     string          `json:"metodo"     validate:"max=40"`
	Banco      string          `json:"banco"      validate:"max=60"`
	Referencia string          `json:"referencia" validate:"max=80"`
	Fecha      string          `json:"fecha"      validate:"omitempty,datetime=2006-01-02"`
}

// FleteRequest records the freight quote and payment.
type FleteRequest struct {
	MontoFleteUsd *decimal.Decimal `json:"monto_flete_usd" validate:"omitempty,min=0"`
	PagoFleteUsd  *decimal.Decimal `json:"pago_flete_usd"  validate:"omitempty,min=0"`
	Banco         string           `json:"banco"           validate:"max=60"`
	Referencia    string           `json:"referencia"      validate:"max=80"`
	Fecha         string           `json:"fecha"           validate:"omitempty,datetime=2006-01-02"`
	FleteGratis   bool             `json:"flete_gratis"`
}

// CrearVentaRequest creates every line of a manual order in one call.
// Orden is optional: an empty value takes the next number from the sequence.
type CrearVentaRequest struct {
	Orden                    string         `json:"orden"          validate:"max=40"`
	Canal                    string         `json:"canal"          validate:"required,oneof=Shopify Cashea Treble Manual Tienda"`
	Marca                    string         `json:"marca"          validate:"required,oneof=BoxiSleep Mompox"`
	Tipo                     string         `json:"tipo"           validate:"omitempty,oneof=Inmediato Reserva"`
	Fecha                    string         `json:"fecha"          validate:"omitempty,datetime=2006-01-02"`
	NombreCliente            string         `json:"nombre_cliente" validate:"required,max=150"`
	Cedula                   string         `json:"cedula"         validate:"max=20"`
	Telefono                 string         `json:"telefono"       validate:"max=30"`
	EmailCliente             string         `json:"email_cliente"  validate:"omitempty,email"`
	AsesorID                 *string        `json:"asesor_id"      validate:"omitempty,uuid"`
	Facturacion              DireccionDTO   `json:"facturacion"`
	Despacho                 DireccionDTO   `json:"despacho"`
	DespachoIgualFacturacion bool           `json:"despacho_igual_facturacion"`
	Lineas                   []LineaRequest `json:"lineas"         validate:"required,min=1,dive"`
	PagoInicial              *PagoRequest   `json:"pago_inicial"`
	Flete                    *FleteRequest  `json:"flete"`
	Notas                    string         `json:"notas"`
}

// ActualizarVentaRequest carries a partial update of one line; nil = unchanged.
type ActualizarVentaRequest struct {
	Tipo                     *string       `json:"tipo"           validate:"omitempty,oneof=Inmediato Reserva"`
	NombreCliente            *string       `json:"nombre_cliente" validate:"omitempty,min=1,max=150"`
	Cedula                   *string       `json:"cedula"         validate:"omitempty,max=20"`
	Telefono                 *string       `json:"telefono"       validate:"omitempty,max=30"`
	EmailCliente             *string       `json:"email_cliente"  validate:"omitempty,email"`
	AsesorID                 *string       `json:"asesor_id"      validate:"omitempty,uuid"`
	Facturacion              *DireccionDTO `json:"facturacion"`
	Despacho                 *DireccionDTO `json:"despacho"`
	DespachoIgualFacturacion *bool         `json:"despacho_igual_facturacion"`
	FechaEntrega             *string       `json:"fecha_entrega"  validate:"omitempty,datetime=2006-01-02"`
	Notas                    *string       `json:"notas"`
	FechaSeguimiento1        *string       `json:"fecha_seguimiento_1" validate:"omitempty,datetime=2006-01-02"`
	FechaSeguimiento2        *string       `json:"fecha_seguimiento_2" validate:"omitempty,datetime=2006-01-02"`
	FechaSeguimiento3        *string       `json:"fecha_seguimiento_3" validate:"omitempty,datetime=2006-01-02"`
	RespuestaSeguimiento1    *string       `json:"respuesta_seguimiento_1"`
	RespuestaSeguimiento2    *string       `json:"respuesta_seguimiento_2"`
	RespuestaSeguimiento3    *string       `json:"respuesta_seguimiento_3"`
}

// CambiarEstadoRequest moves one line through the delivery state machine.
// Cancelada and Devuelto require Confirmar; Devuelto also needs a return date,
// stored or given here.
type CambiarEstadoRequest struct {
	Estado            string  `json:"estado"             validate:"required"`
	Confirmar         bool    `json:"confirmar"`
	FechaEntrega      *string `json:"fecha_entrega"      validate:"omitempty,datetime=2006-01-02"`
	FechaDevolucion   *string `json:"fecha_devolucion"   validate:"omitempty,datetime=2006-01-02"`
	MotivoCancelacion string  `json:"motivo_cancelacion" validate:"max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	ID                        string           `json:"id"`
	Orden                     string           `json:"orden"`
	Canal                     string           `json:"canal"`
	Marca                     string           `json:"marca"`
	Tipo                      string           `json:"tipo"`
	Fecha                     string           `json:"fecha"`
	ExternalID                *string          `json:"external_id,omitempty"`
	NombreCliente             string           `json:"nombre_cliente"`
	Cedula                    string           `json:"cedula"`
	Telefono                  string           `json:"telefono"`
	EmailCliente              string           `json:"email_cliente"`
	Producto                  string           `json:"producto"`
	SKU                       string           `json:"sku"`
	Cantidad                  int              `json:"cantidad"`
	PrecioUnitarioUsd         decimal.Decimal  `json:"precio_unitario_usd"`
	TotalUsd                  decimal.Decimal  `json:"total_usd"`
	AsesorID                  *string          `json:"asesor_id"`
	AsesorNombre              string           `json:"asesor_nombre,omitempty"`
	EstadoEntrega             string           `json:"estado_entrega"`
	Facturacion               DireccionDTO     `json:"facturacion"`
	Despacho                  DireccionDTO     `json:"despacho"`
	DespachoIgualFacturacion  bool             `json:"despacho_igual_facturacion"`
	PagoInicialUsd            *decimal.Decimal `json:"pago_inicial_usd"`
	MetodoPagoInicial         string           `json:"metodo_pago_inicial"`
	BancoPagoInicial          string           `json:"banco_pago_inicial"`
	ReferenciaPagoInicial     string           `json:"referencia_pago_inicial"`
	EstadoVerificacionInicial string           `json:"estado_verificacion_inicial"`
	MontoFleteUsd             *decimal.Decimal `json:"monto_flete_usd"`
	PagoFleteUsd              *decimal.Decimal `json:"pago_flete_usd"`
	BancoFlete                string           `json:"banco_flete"`
	ReferenciaFlete           string           `json:"referencia_flete"`
	FleteGratis               bool             `json:"flete_gratis"`
	EstadoVerificacionFlete   string           `json:"estado_verificacion_flete"`
	FechaEntrega              *string          `json:"fecha_entrega"`
	FechaDevolucion           *string          `json:"fecha_devolucion"`
	MotivoCancelacion         string           `json:"motivo_cancelacion"`
	Notas                     string           `json:"notas"`
	FechasSeguimiento         [3]*string       `json:"fechas_seguimiento"`
	RespuestasSeguimiento     [3]string        `json:"respuestas_seguimiento"`
	CreatedAt                 string           `json:"created_at"`
}

type CambiarEstadoResponse struct {
	Venta        VentaResponse `json:"venta"`
	SinCambios   bool          `json:"sin_cambios"`
	Advertencias []string      `json:"advertencias"`
}

// OrdenResumenResponse is returned by GET /v1/ordenes/:orden/resumen.
type OrdenResumenResponse struct {
	Orden   string          `json:"orden"`
	Resumen pagos.Resumen   `json:"resumen"`
	Lineas  []VentaResponse `json:"lineas"`
	Cuotas  []CuotaResponse `json:"cuotas"`
}

// PagoRegistradoResponse is returned after any payment write. Despachadas
// lists the line IDs moved to A despachar because the order became fully paid.
type PagoRegistradoResponse struct {
	Orden       string         `json:"orden"`
	Resumen     pagos.Resumen  `json:"resumen"`
	Despachadas []string       `json:"despachadas"`
	Cuota       *CuotaResponse `json:"cuota,omitempty"`
}
