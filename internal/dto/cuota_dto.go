package dto

import "github.com/shopspring/decimal"

// CrearCuotaRequest adds an installment to the order's primary line.
// NumeroCuota is optional; when absent the next free number is used.
type CrearCuotaRequest struct {
	NumeroCuota  *int             `json:"numero_cuota"   validate:"omitempty,min=1"`
	FechaPago    string           `json:"fecha_pago"     validate:"required,datetime=2006-01-02"`
	PagoCuotaUsd decimal.Decimal  `json:"pago_cuota_usd" validate:"required,gt=0"`
	MontoBs      *decimal.Decimal `json:"monto_bs"       validate:"omitempty,min=0"`
	MetodoPago   string           `json:"metodo_pago"    validate:"max=40"`
	Banco        string           `json:"banco"          validate:"max=60"`
	Referencia   string           `json:"referencia"     validate:"max=80"`
}

type ActualizarCuotaRequest struct {
	NumeroCuota  *int             `json:"numero_cuota"   validate:"omitempty,min=1"`
	FechaPago    *string          `json:"fecha_pago"     validate:"omitempty,datetime=2006-01-02"`
	PagoCuotaUsd *decimal.Decimal `json:"pago_cuota_usd" validate:"omitempty,gt=0"`
	MontoBs      *decimal.Decimal `json:"monto_bs"       validate:"omitempty,min=0"`
	MetodoPago   *string          `json:"metodo_pago"    validate:"omitempty,max=40"`
	Banco        *string          `json:"banco"          validate:"omitempty,max=60"`
	Referencia   *string          `json:"referencia"     validate:"omitempty,max=80"`
}

type CuotaResponse struct {
	ID                 string           `json:"id"`
	VentaID            string           `json:"venta_id"`
	Orden              string           `json:"orden"`
	NumeroCuota        int              `json:"numero_cuota"`
	FechaPago          string           `json:"fecha_pago"`
	PagoCuotaUsd       decimal.Decimal  `json:"pago_cuota_usd"`
	MontoBs            *decimal.Decimal `json:"monto_bs"`
	MetodoPago         string           `json:"metodo_pago"`
	Banco              string           `json:"banco"`
	Referencia         string           `json:"referencia"`
	EstadoVerificacion string           `json:"estado_verificacion"`
	NotasVerificacion  string           `json:"notas_verificacion"`
}
