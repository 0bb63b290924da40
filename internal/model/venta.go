package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direccion is embedded twice in Venta (billing and shipping).
type Direccion struct {
	Direccion  string `gorm:"type:text"`
	Ciudad     string `gorm:"type:varchar(100)"`
	Estado     string `gorm:"type:varchar(100)"`
	Referencia string `gorm:"type:text"`
}

// Vacia reports whether no street address was captured.
func (d Direccion) Vacia() bool {
	return d.Direccion == ""
}

// Venta is one product line of a customer order. Lines of the same order share
// Orden. The order total is never stored: it is the sum of TotalUsd over the
// order's lines. Order-level payments (pago inicial, flete) are carried by the
// primary line, the earliest created line of the order.
type Venta struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Orden      string    `gorm:"type:varchar(40);index;not null"`
	Canal      Canal     `gorm:"type:varchar(20);not null"`
	Marca      Marca     `gorm:"type:varchar(20);not null"`
	Tipo       TipoVenta `gorm:"type:varchar(20);not null;default:'Inmediato'"`
	Fecha      time.Time `gorm:"not null"`
	ExternalID *string   `gorm:"type:varchar(80);uniqueIndex"`

	NombreCliente string `gorm:"type:varchar(150);not null"`
	Cedula        string `gorm:"type:varchar(20)"`
	Telefono      string `gorm:"type:varchar(20)"`
	EmailCliente  string `gorm:"type:varchar(150)"`

	Producto          string          `gorm:"type:varchar(200);not null"`
	SKU               string          `gorm:"type:varchar(60)"`
	Cantidad          int             `gorm:"not null;default:1"`
	PrecioUnitarioUsd decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalUsd          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	AsesorID *uuid.UUID `gorm:"type:uuid;index"`
	Asesor   *Usuario   `gorm:"foreignKey:AsesorID"`

	EstadoEntrega EstadoEntrega `gorm:"type:varchar(20);not null;default:'Pendiente';index"`

	Facturacion              Direccion `gorm:"embedded;embeddedPrefix:facturacion_"`
	Despacho                 Direccion `gorm:"embedded;embeddedPrefix:despacho_"`
	DespachoIgualFacturacion bool      `gorm:"not null;default:false"`

	// Pago inicial / total
	PagoInicialUsd            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MetodoPagoInicial         string           `gorm:"type:varchar(40)"`
	BancoPagoInicial          string           `gorm:"type:varchar(60);index"`
	ReferenciaPagoInicial     string           `gorm:"type:varchar(80)"`
	FechaPagoInicial          *time.Time
	EstadoVerificacionInicial EstadoVerificacion `gorm:"type:varchar(20);not null;default:'Por verificar'"`
	NotasVerificacionInicial  string             `gorm:"type:text"`
	FechaVerificacionInicial  *time.Time

	// Flete
	MontoFleteUsd           *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PagoFleteUsd            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	BancoFlete              string           `gorm:"type:varchar(60)"`
	ReferenciaFlete         string           `gorm:"type:varchar(80)"`
	FechaPagoFlete          *time.Time
	FleteGratis             bool               `gorm:"not null;default:false"`
	EstadoVerificacionFlete EstadoVerificacion `gorm:"type:varchar(20);not null;default:'Por verificar'"`
	NotasVerificacionFlete  string             `gorm:"type:text"`
	FechaVerificacionFlete  *time.Time

	FechaEntrega      *time.Time
	FechaDevolucion   *time.Time
	MotivoCancelacion string `gorm:"type:text"`
	Notas             string `gorm:"type:text"`

	FechaSeguimiento1     *time.Time
	FechaSeguimiento2     *time.Time
	FechaSeguimiento3     *time.Time
	RespuestaSeguimiento1 string `gorm:"type:text"`
	RespuestaSeguimiento2 string `gorm:"type:text"`
	RespuestaSeguimiento3 string `gorm:"type:text"`

	Cuotas []Cuota `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DireccionEnvio resolves the effective shipping address. When both blocks
// mirror each other only one of them may have been captured.
func (v *Venta) DireccionEnvio() Direccion {
	if v.DespachoIgualFacturacion && v.Despacho.Vacia() {
		return v.Facturacion
	}
	return v.Despacho
}

// TienePagoInicial reports whether the line carries an initial payment.
func (v *Venta) TienePagoInicial() bool {
	return v.PagoInicialUsd != nil && !v.PagoInicialUsd.IsZero()
}

// TienePagoFlete reports whether the line carries a freight payment.
func (v *Venta) TienePagoFlete() bool {
	return v.PagoFleteUsd != nil && !v.PagoFleteUsd.IsZero()
}
