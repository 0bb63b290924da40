// Package recurrencia computes the due dates of a recurring expense series.
//
// Every occurrence is stepped from the series' first date, never from its
// predecessor, so a month-end clamp (Jan 31 -> Feb 28) does not drift the
// following occurrences (Mar 31, not Mar 28).
package recurrencia

import (
	"fmt"
	"time"

	"colchones/internal/model"
)

type paso struct {
	dias  int
	meses int
}

var pasos = map[model.Frecuencia]paso{
	model.FrecuenciaDiario:     {dias: 1},
	model.FrecuenciaSemanal:    {dias: 7},
	model.FrecuenciaQuincenal:  {dias: 15},
	model.FrecuenciaMensual:    {meses: 1},
	model.FrecuenciaTrimestral: {meses: 3},
	model.FrecuenciaSemestral:  {meses: 6},
	model.FrecuenciaAnual:      {meses: 12},
}

// Fecha returns the due date of the occurrence at position numero (1-based)
// of a series starting at primera.
func Fecha(primera time.Time, f model.Frecuencia, numero int) (time.Time, error) {
	p, ok := pasos[f]
	if !ok {
		return time.Time{}, fmt.Errorf("frecuencia desconocida %q", f)
	}
	if numero < 1 {
		return time.Time{}, fmt.Errorf("numero en serie invalido: %d", numero)
	}
	k := numero - 1
	if p.meses > 0 {
		return SumarMeses(primera, p.meses*k), nil
	}
	return primera.AddDate(0, 0, p.dias*k), nil
}

// Serie returns the n due dates of a series, in order.
func Serie(primera time.Time, f model.Frecuencia, n int) ([]time.Time, error) {
	if n < 1 {
		return nil, fmt.Errorf("numero de repeticiones invalido: %d", n)
	}
	fechas := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		d, err := Fecha(primera, f, i)
		if err != nil {
			return nil, err
		}
		fechas = append(fechas, d)
	}
	return fechas, nil
}

// SumarMeses adds m months keeping the day of month, clamped to the last day
// of the target month. time.AddDate normalises overflow instead (Jan 31 + 1
// month = Mar 3), which is not what a due date means.
func SumarMeses(t time.Time, m int) time.Time {
	y, mes, d := t.Date()
	primeroDelMes := time.Date(y, mes+time.Month(m), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	ultimo := primeroDelMes.AddDate(0, 1, -1).Day()
	if d > ultimo {
		d = ultimo
	}
	return primeroDelMes.AddDate(0, 0, d-1)
}
