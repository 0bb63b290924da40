package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConfiguracionSeguimiento is a singleton row (ID = 1) holding the follow-up
// day offsets and the fallback address for the daily digest.
type ConfiguracionSeguimiento struct {
	ID           int `gorm:"primaryKey"`
	DiasFase1    int `gorm:"not null;default:2"`
	DiasFase2    int `gorm:"not null;default:4"`
	DiasFase3    int `gorm:"not null;default:7"`
	EmailGeneral string
	UpdatedAt    time.Time
}

func (ConfiguracionSeguimiento) TableName() string { return "configuracion_seguimiento" }

// Dias returns the three offsets in phase order.
func (c ConfiguracionSeguimiento) Dias() [3]int {
	return [3]int{c.DiasFase1, c.DiasFase2, c.DiasFase3}
}

// ConfiguracionCashea is a singleton row (ID = 1) with the BNPL poll settings.
// A change restarts the scheduler with the new interval.
type ConfiguracionCashea struct {
	ID             int  `gorm:"primaryKey"`
	Activo         bool `gorm:"not null;default:true"`
	IntervaloHoras int  `gorm:"not null;default:4"`
	DiasVentana    int  `gorm:"not null;default:3"`
	UpdatedAt      time.Time
}

func (ConfiguracionCashea) TableName() string { return "configuracion_cashea" }

// EjecucionTarea records the outcome of one scheduled job run.
// Estado: "exito" | "error" | "omitida"
type EjecucionTarea struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tarea        string    `gorm:"type:varchar(40);not null;index"`
	Estado       string    `gorm:"type:varchar(20);not null"`
	Mensaje      string    `gorm:"type:text"`
	Insertadas   int       `gorm:"not null;default:0"`
	Duplicadas   int       `gorm:"not null;default:0"`
	IniciadaEn   time.Time `gorm:"not null"`
	FinalizadaEn *time.Time
}

func (EjecucionTarea) TableName() string { return "ejecuciones_tarea" }

// SnapshotImportacion is the one-level undo record of a spreadsheet import.
// FilasEliminadas holds the rows removed by a replace import; IDsInsertados the
// rows the import created.
type SnapshotImportacion struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Entidad         string         `gorm:"type:varchar(20);not null"` // ventas | egresos
	Modo            string         `gorm:"type:varchar(20);not null"` // aditivo | reemplazo
	FilasEliminadas datatypes.JSON `gorm:"type:jsonb"`
	IDsInsertados   datatypes.JSON `gorm:"type:jsonb"`
	Deshecho        bool           `gorm:"not null;default:false"`
	CreatedAt       time.Time
}

func (SnapshotImportacion) TableName() string { return "snapshots_importacion" }
