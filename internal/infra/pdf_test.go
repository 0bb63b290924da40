package infra

import (
	"testing"
	"time"

	"colchones/internal/model"
	"colchones/internal/pagos"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumenOrdenPDF(t *testing.T) {
	inicial := decimal.NewFromInt(300)
	lineas := []model.Venta{{
		Orden:          "MAN-001000",
		Marca:          model.MarcaBoxiSleep,
		Fecha:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		NombreCliente:  "María Pérez",
		Producto:       "Colchón Queen",
		Cantidad:       1,
		TotalUsd:       decimal.NewFromInt(1000),
		PagoInicialUsd: &inicial,
	}}
	cuotas := []model.Cuota{{NumeroCuota: 1, FechaPago: time.Now(), PagoCuotaUsd: decimal.NewFromInt(400)}}

	out, err := ResumenOrdenPDF(lineas, cuotas, pagos.Resumir(lineas, cuotas))
	require.NoError(t, err)
	assert.True(t, len(out) > 100)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestResumenOrdenPDF_SinLineas(t *testing.T) {
	_, err := ResumenOrdenPDF(nil, nil, pagos.Resumen{})
	assert.Error(t, err)
}
