package dto

import "github.com/shopspring/decimal"

// Payment kinds exposed by the verification view.
const (
	TipoPagoInicial = "pago_inicial"
	TipoPagoFlete   = "flete"
	TipoPagoCuota   = "cuota"
	TipoPagoEgreso  = "egreso"
)

// VerificacionFilter is bound from query string of GET /v1/verificacion.
type VerificacionFilter struct {
	Banco    string `form:"banco"`
	TipoPago string `form:"tipo_pago" validate:"omitempty,oneof=pago_inicial flete cuota egreso"`
	Estado   string `form:"estado"    validate:"omitempty,oneof='Por verificar' Verificado Rechazado"`
	Orden    string `form:"orden"`
	Desde    string `form:"desde"     validate:"omitempty,datetime=2006-01-02"`
	Hasta    string `form:"hasta"     validate:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// VerificacionItem is one recorded payment awaiting (or past) bank matching.
// ID is the venta ID for pago_inicial and flete, the cuota or egreso ID otherwise.
type VerificacionItem struct {
	TipoPago    string          `json:"tipo_pago"   gorm:"column:tipo_pago"`
	ID          string          `json:"id"          gorm:"column:id"`
	Orden       *string         `json:"orden"       gorm:"column:orden"`
	Descripcion string          `json:"descripcion" gorm:"column:descripcion"`
	Fecha       *string         `json:"fecha"       gorm:"column:fecha"`
	Banco       string          `json:"banco"       gorm:"column:banco"`
	Referencia  string          `json:"referencia"  gorm:"column:referencia"`
	Monto       decimal.Decimal `json:"monto"       gorm:"column:monto"`
	Moneda      string          `json:"moneda"      gorm:"column:moneda"`
	Estado      string          `json:"estado"      gorm:"column:estado"`
	Notas       string          `json:"notas"       gorm:"column:notas"`
}

type VerificacionListResponse struct {
	Data  []VerificacionItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type ActualizarVerificacionRequest struct {
	Estado string `json:"estado" validate:"required,oneof=Verificado Rechazado"`
	Notas  string `json:"notas"  validate:"max=1000"`
}
