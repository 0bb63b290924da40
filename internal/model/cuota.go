package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cuota is an additional partial payment on an order, beyond the initial
// payment. NumeroCuota is unique per venta (idx_cuota_venta_numero).
type Cuota struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID            uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_cuota_venta_numero"`
	Orden              string             `gorm:"type:varchar(40);index;not null"`
	NumeroCuota        int                `gorm:"not null;uniqueIndex:idx_cuota_venta_numero"`
	FechaPago          time.Time          `gorm:"not null"`
	PagoCuotaUsd       decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	MontoBs            *decimal.Decimal   `gorm:"type:decimal(14,2)"`
	MetodoPago         string             `gorm:"type:varchar(40)"`
	Banco              string             `gorm:"type:varchar(60);index"`
	Referencia         string             `gorm:"type:varchar(80)"`
	EstadoVerificacion EstadoVerificacion `gorm:"type:varchar(20);not null;default:'Por verificar'"`
	NotasVerificacion  string             `gorm:"type:text"`
	FechaVerificacion  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
