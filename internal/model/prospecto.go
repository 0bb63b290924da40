package model

import (
	"time"

	"github.com/google/uuid"
)

// EstadoProspecto: "nuevo" | "en_seguimiento" | "convertido" | "descartado"
type EstadoProspecto string

const (
	ProspectoNuevo         EstadoProspecto = "nuevo"
	ProspectoEnSeguimiento EstadoProspecto = "en_seguimiento"
	ProspectoConvertido    EstadoProspecto = "convertido"
	ProspectoDescartado    EstadoProspecto = "descartado"
)

func (e EstadoProspecto) Valido() bool {
	switch e {
	case ProspectoNuevo, ProspectoEnSeguimiento, ProspectoConvertido, ProspectoDescartado:
		return true
	}
	return false
}

// Activo reports whether the lead still receives follow-up reminders.
func (e EstadoProspecto) Activo() bool {
	return e == ProspectoNuevo || e == ProspectoEnSeguimiento
}

// Prospecto is a sales lead with up to three follow-up touch dates.
type Prospecto struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string          `gorm:"type:varchar(150);not null"`
	Telefono        string          `gorm:"type:varchar(20)"`
	Email           string          `gorm:"type:varchar(150)"`
	Canal           string          `gorm:"type:varchar(40)"`
	Marca           Marca           `gorm:"type:varchar(20);not null"`
	ProductoInteres string          `gorm:"type:varchar(200)"`
	AsesorID        *uuid.UUID      `gorm:"type:uuid;index"`
	Asesor          *Usuario        `gorm:"foreignKey:AsesorID"`
	FechaCreacion   time.Time       `gorm:"not null"`
	Estado          EstadoProspecto `gorm:"type:varchar(20);not null;default:'nuevo'"`

	FechaSeguimiento1     *time.Time
	FechaSeguimiento2     *time.Time
	FechaSeguimiento3     *time.Time
	RespuestaSeguimiento1 string `gorm:"type:text"`
	RespuestaSeguimiento2 string `gorm:"type:text"`
	RespuestaSeguimiento3 string `gorm:"type:text"`

	Notas     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
