// Package seguimiento computes the three follow-up dates of a lead or a
// pending order and decides which of them are due on a given day.
//
// fecha1 = base + dias[0], fecha2 = fecha1 + dias[1], fecha3 = fecha2 + dias[2].
// A pinned date is never recomputed. Editing a phase pins it and cascades
// forward into the later phases that are still unpinned; earlier phases are
// never touched.
package seguimiento

import (
	"fmt"
	"time"
)

// NumFases is the number of follow-up touches per record.
const NumFases = 3

// Fases is the editing state of one record's follow-up schedule.
type Fases struct {
	Base    time.Time
	Dias    [NumFases]int
	Fechas  [NumFases]time.Time
	Fijadas [NumFases]bool
}

// Calcular returns a schedule with every phase derived from base.
func Calcular(base time.Time, dias [NumFases]int) Fases {
	f := Fases{Base: base, Dias: dias}
	f.Recalcular()
	return f
}

// DesdePersistido rebuilds a schedule from stored dates. Every stored date is
// pinned; empty ones are derived from the cascade.
func DesdePersistido(base time.Time, dias [NumFases]int, guardadas [NumFases]*time.Time) Fases {
	f := Fases{Base: base, Dias: dias}
	for i, g := range guardadas {
		if g != nil && !g.IsZero() {
			f.Fechas[i] = *g
			f.Fijadas[i] = true
		}
	}
	f.Recalcular()
	return f
}

// Recalcular derives every unpinned phase from its predecessor.
func (f *Fases) Recalcular() {
	f.cascadaDesde(0)
}

// Editar sets phase i (0-based) to fecha, pins it and cascades forward.
func (f *Fases) Editar(i int, fecha time.Time) error {
	if i < 0 || i >= NumFases {
		return fmt.Errorf("fase %d fuera de rango", i+1)
	}
	if fecha.IsZero() {
		return fmt.Errorf("fase %d: fecha vacia", i+1)
	}
	f.Fechas[i] = fecha
	f.Fijadas[i] = true
	f.cascadaDesde(i + 1)
	return nil
}

// CambiarDias applies new offsets. Pinned phases keep their dates.
func (f *Fases) CambiarDias(dias [NumFases]int) {
	f.Dias = dias
	f.Recalcular()
}

func (f *Fases) cascadaDesde(desde int) {
	for i := desde; i < NumFases; i++ {
		if f.Fijadas[i] {
			continue
		}
		previa := f.Base
		if i > 0 {
			previa = f.Fechas[i-1]
		}
		f.Fechas[i] = previa.AddDate(0, 0, f.Dias[i])
	}
}

// Punteros returns the dates in the shape stored on the models.
func (f Fases) Punteros() [NumFases]*time.Time {
	var out [NumFases]*time.Time
	for i := range f.Fechas {
		d := f.Fechas[i]
		out[i] = &d
	}
	return out
}

// VenceHoy compares calendar dates in loc.
func VenceHoy(fecha, hoy time.Time, loc *time.Location) bool {
	if fecha.IsZero() {
		return false
	}
	y1, m1, d1 := fecha.In(loc).Date()
	y2, m2, d2 := hoy.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// FaseQueVence returns the 1-based phase due on hoy, or 0 when none is.
func FaseQueVence(fechas [NumFases]*time.Time, hoy time.Time, loc *time.Location) int {
	for i, f := range fechas {
		if f != nil && VenceHoy(*f, hoy, loc) {
			return i + 1
		}
	}
	return 0
}
