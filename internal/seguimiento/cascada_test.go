package seguimiento_test

import (
	"testing"
	"time"

	"colchones/internal/seguimiento"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base = time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC)
	dias = [3]int{2, 4, 7}
)

func dia(n int) time.Time { return base.AddDate(0, 0, n) }

func TestCalcular_SinEdiciones(t *testing.T) {
	f := seguimiento.Calcular(base, dias)

	assert.Equal(t, dia(2), f.Fechas[0])
	assert.Equal(t, dia(6), f.Fechas[1])
	assert.Equal(t, dia(13), f.Fechas[2])
	assert.Equal(t, [3]bool{}, f.Fijadas)
}

func TestEditar_CascadaHaciaAdelante(t *testing.T) {
	f := seguimiento.Calcular(base, dias)

	require.NoError(t, f.Editar(0, dia(5)))

	assert.Equal(t, dia(5), f.Fechas[0])
	assert.Equal(t, dia(9), f.Fechas[1])
	assert.Equal(t, dia(16), f.Fechas[2])
	assert.True(t, f.Fijadas[0])
}

func TestEditar_NoModificaFasesAnteriores(t *testing.T) {
	f := seguimiento.Calcular(base, dias)

	require.NoError(t, f.Editar(1, dia(10)))

	assert.Equal(t, dia(2), f.Fechas[0])
	assert.Equal(t, dia(10), f.Fechas[1])
	assert.Equal(t, dia(17), f.Fechas[2])
}

func TestEditar_RespetaFasesFijadas(t *testing.T) {
	f := seguimiento.Calcular(base, dias)
	require.NoError(t, f.Editar(2, dia(30)))

	require.NoError(t, f.Editar(0, dia(5)))

	assert.Equal(t, dia(9), f.Fechas[1])
	assert.Equal(t, dia(30), f.Fechas[2], "pinned phase must not be recomputed")
}

func TestEditar_FaseInvalida(t *testing.T) {
	f := seguimiento.Calcular(base, dias)
	assert.Error(t, f.Editar(3, dia(1)))
	assert.Error(t, f.Editar(-1, dia(1)))
	assert.Error(t, f.Editar(0, time.Time{}))
}

func TestDesdePersistido_FijaFechasGuardadas(t *testing.T) {
	guardada := dia(3)
	f := seguimiento.DesdePersistido(base, dias, [3]*time.Time{&guardada, nil, nil})

	assert.Equal(t, [3]bool{true, false, false}, f.Fijadas)
	assert.Equal(t, dia(3), f.Fechas[0])
	assert.Equal(t, dia(7), f.Fechas[1])
	assert.Equal(t, dia(14), f.Fechas[2])

	f.CambiarDias([3]int{10, 1, 1})
	assert.Equal(t, dia(3), f.Fechas[0], "config change must not overwrite a saved date")
	assert.Equal(t, dia(4), f.Fechas[1])
	assert.Equal(t, dia(5), f.Fechas[2])
}

func TestVenceHoy_ComparaFechaLocal(t *testing.T) {
	caracas, err := time.LoadLocation("America/Caracas")
	require.NoError(t, err)

	// 02:30 UTC on May 7 is still May 6 in Caracas (UTC-4).
	fecha := time.Date(2026, time.May, 7, 2, 30, 0, 0, time.UTC)
	hoy := time.Date(2026, time.May, 6, 19, 0, 0, 0, caracas)

	assert.True(t, seguimiento.VenceHoy(fecha, hoy, caracas))
	assert.False(t, seguimiento.VenceHoy(fecha, hoy, time.UTC))
	assert.False(t, seguimiento.VenceHoy(time.Time{}, hoy, caracas))
}

func TestFaseQueVence(t *testing.T) {
	f := seguimiento.Calcular(base, dias)
	fechas := f.Punteros()

	assert.Equal(t, 2, seguimiento.FaseQueVence(fechas, dia(6), time.UTC))
	assert.Equal(t, 0, seguimiento.FaseQueVence(fechas, dia(7), time.UTC))
	assert.Equal(t, 0, seguimiento.FaseQueVence([3]*time.Time{}, dia(6), time.UTC))
}
