package dto

import "github.com/shopspring/decimal"

// EgresoFilter is bound from query string of GET /v1/egresos.
type EgresoFilter struct {
	Desde  string `form:"desde"` // FechaCompromiso, YYYY-MM-DD
	Hasta  string `form:"hasta"`
	Estado string `form:"estado"`
	Tipo   string `form:"tipo"`
	Banco  string `form:"banco"`
	Marca  string `form:"marca"`
	Serie  string `form:"serie"` // uuid
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type EgresoListResponse struct {
	Data  []EgresoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// CrearEgresoRequest creates a one-off expense or occurrence 1 of a series.
type CrearEgresoRequest struct {
	Fecha              string          `json:"fecha"            validate:"required,datetime=2006-01-02"`
	FechaCompromiso    string          `json:"fecha_compromiso" validate:"omitempty,datetime=2006-01-02"`
	Descripcion        string          `json:"descripcion"      validate:"required,max=500"`
	Beneficiario       string          `json:"beneficiario"     validate:"max=150"`
	Monto              decimal.Decimal `json:"monto"            validate:"required,gt=0"`
	Moneda             string          `json:"moneda"           validate:"omitempty,oneof=USD VES"`
	Tipo               string          `json:"tipo"             validate:"required,max=40"`
	Categoria          string          `json:"categoria"        validate:"max=60"`
	Marca              *string         `json:"marca"            validate:"omitempty,oneof=BoxiSleep Mompox"`
	MetodoPago         string          `json:"metodo_pago"      validate:"max=40"`
	Banco              string          `json:"banco"            validate:"max=60"`
	Referencia         string          `json:"referencia"       validate:"max=80"`
	EsRecurrente       bool            `json:"es_recurrente"`
	Frecuencia         *string         `json:"frecuencia"          validate:"required_if=EsRecurrente true,omitempty,oneof=Diario Semanal Quincenal Mensual Trimestral Semestral Anual"`
	NumeroRepeticiones *int            `json:"numero_repeticiones" validate:"required_if=EsRecurrente true,omitempty,min=2,max=120"`
}

// ActualizarEgresoRequest edits one occurrence; the series fields are fixed.
type ActualizarEgresoRequest struct {
	Fecha           *string          `json:"fecha"            validate:"omitempty,datetime=2006-01-02"`
	FechaCompromiso *string          `json:"fecha_compromiso" validate:"omitempty,datetime=2006-01-02"`
	Descripcion     *string          `json:"descripcion"      validate:"omitempty,min=1,max=500"`
	Beneficiario    *string          `json:"beneficiario"     validate:"omitempty,max=150"`
	Monto           *decimal.Decimal `json:"monto"            validate:"omitempty,gt=0"`
	Moneda          *string          `json:"moneda"           validate:"omitempty,oneof=USD VES"`
	Tipo            *string          `json:"tipo"             validate:"omitempty,min=1,max=40"`
	Categoria       *string          `json:"categoria"        validate:"omitempty,max=60"`
	MetodoPago      *string          `json:"metodo_pago"      validate:"omitempty,max=40"`
	Banco           *string          `json:"banco"            validate:"omitempty,max=60"`
	Referencia      *string          `json:"referencia"       validate:"omitempty,max=80"`
}

type CambiarEstadoEgresoRequest struct {
	Estado    string `json:"estado"     validate:"required,oneof=registrado aprobado pagado anulado"`
	FechaPago string `json:"fecha_pago" validate:"omitempty,datetime=2006-01-02"`
}

type EgresoResponse struct {
	ID                 string          `json:"id"`
	Fecha              string          `json:"fecha"`
	FechaCompromiso    string          `json:"fecha_compromiso"`
	Descripcion        string          `json:"descripcion"`
	Beneficiario       string          `json:"beneficiario"`
	Monto              decimal.Decimal `json:"monto"`
	Moneda             string          `json:"moneda"`
	Tipo               string          `json:"tipo"`
	Categoria          string          `json:"categoria"`
	Marca              *string         `json:"marca"`
	MetodoPago         string          `json:"metodo_pago"`
	Banco              string          `json:"banco"`
	Referencia         string          `json:"referencia"`
	Estado             string          `json:"estado"`
	FechaPago          *string         `json:"fecha_pago"`
	EstadoVerificacion string          `json:"estado_verificacion"`
	NotasVerificacion  string          `json:"notas_verificacion"`
	EsRecurrente       bool            `json:"es_recurrente"`
	Frecuencia         *string         `json:"frecuencia"`
	SerieRecurrenciaID *string         `json:"serie_recurrencia_id"`
	NumeroEnSerie      *int            `json:"numero_en_serie"`
	NumeroRepeticiones *int            `json:"numero_repeticiones"`
}
