package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoEgreso: "registrado" | "aprobado" | "pagado" | "anulado"
type EstadoEgreso string

const (
	EgresoRegistrado EstadoEgreso = "registrado"
	EgresoAprobado   EstadoEgreso = "aprobado"
	EgresoPagado     EstadoEgreso = "pagado"
	EgresoAnulado    EstadoEgreso = "anulado"
)

var transicionesEgreso = map[EstadoEgreso][]EstadoEgreso{
	EgresoRegistrado: {EgresoAprobado, EgresoPagado, EgresoAnulado},
	EgresoAprobado:   {EgresoPagado, EgresoAnulado},
	EgresoPagado:     {EgresoAnulado},
}

func (e EstadoEgreso) Valido() bool {
	switch e {
	case EgresoRegistrado, EgresoAprobado, EgresoPagado, EgresoAnulado:
		return true
	}
	return false
}

func (e EstadoEgreso) PuedeTransicionarA(destino EstadoEgreso) bool {
	for _, d := range transicionesEgreso[e] {
		if d == destino {
			return true
		}
	}
	return false
}

// Frecuencia is the step between occurrences of a recurring egreso.
type Frecuencia string

const (
	FrecuenciaDiario     Frecuencia = "Diario"
	FrecuenciaSemanal    Frecuencia = "Semanal"
	FrecuenciaQuincenal  Frecuencia = "Quincenal"
	FrecuenciaMensual    Frecuencia = "Mensual"
	FrecuenciaTrimestral Frecuencia = "Trimestral"
	FrecuenciaSemestral  Frecuencia = "Semestral"
	FrecuenciaAnual      Frecuencia = "Anual"
)

func (f Frecuencia) Valida() bool {
	switch f {
	case FrecuenciaDiario, FrecuenciaSemanal, FrecuenciaQuincenal, FrecuenciaMensual,
		FrecuenciaTrimestral, FrecuenciaSemestral, FrecuenciaAnual:
		return true
	}
	return false
}

// Egreso is a recorded or scheduled outgoing payment. Occurrences of one
// recurring series share SerieRecurrenciaID and are numbered 1..NumeroRepeticiones.
type Egreso struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha           time.Time       `gorm:"not null"`
	FechaCompromiso time.Time       `gorm:"not null;index"`
	Descripcion     string          `gorm:"type:text;not null"`
	Beneficiario    string          `gorm:"type:varchar(150)"`
	Monto           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda          string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Tipo            string          `gorm:"type:varchar(40);not null"`
	Categoria       string          `gorm:"type:varchar(60)"`
	Marca           *Marca          `gorm:"type:varchar(20)"`
	MetodoPago      string          `gorm:"type:varchar(40)"`
	Banco           string          `gorm:"type:varchar(60);index"`
	Referencia      string          `gorm:"type:varchar(80)"`
	Estado          EstadoEgreso    `gorm:"type:varchar(20);not null;default:'registrado'"`
	FechaPago       *time.Time

	EstadoVerificacion EstadoVerificacion `gorm:"type:varchar(20);not null;default:'Por verificar'"`
	NotasVerificacion  string             `gorm:"type:text"`
	FechaVerificacion  *time.Time

	EsRecurrente          bool        `gorm:"not null;default:false"`
	FrecuenciaRecurrencia *Frecuencia `gorm:"type:varchar(20)"`
	SerieRecurrenciaID    *uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_egreso_serie_numero"`
	NumeroEnSerie         *int        `gorm:"uniqueIndex:idx_egreso_serie_numero"`
	NumeroRepeticiones    *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SerieAbierta reports whether more occurrences remain to be generated after e.
func (e *Egreso) SerieAbierta() bool {
	if !e.EsRecurrente || e.SerieRecurrenciaID == nil || e.FrecuenciaRecurrencia == nil ||
		e.NumeroEnSerie == nil || e.NumeroRepeticiones == nil {
		return false
	}
	return *e.NumeroEnSerie < *e.NumeroRepeticiones && e.Estado != EgresoAnulado
}
