package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestaSvc(cashea FuenteCashea) (*ingestaService, *stubVentaRepo, *stubConfigRepo) {
	ventas := newStubVentaRepo()
	cfg := newStubConfigRepo()
	svc := NewIngestaService(ventas, newStubCuotaRepo(), cfg, cashea, caracas, "VE").(*ingestaService)
	svc.ahora = reloj(2026, 3, 10)
	return svc, ventas, cfg
}

func lineaTienda(externalID, producto string, precio int64) dto.TiendaWebhookRequest {
	return dto.TiendaWebhookRequest{
		ExternalID:        externalID,
		Orden:             "SH-5001",
		Marca:             "BoxiSleep",
		Fecha:             "2026-03-09",
		NombreCliente:     "Rosa Diaz",
		Producto:          producto,
		Cantidad:          1,
		PrecioUnitarioUsd: decimal.NewFromInt(precio),
	}
}

// ── Tienda ────────────────────────────────────────────────────────────────────

func TestRecibirTienda_Idempotente(t *testing.T) {
	svc, ventas, _ := newIngestaSvc(nil)
	ctx := context.Background()

	r, err := svc.RecibirTienda(ctx, lineaTienda("gid-1", "Colchon", 500))
	require.NoError(t, err)
	assert.False(t, r.Duplicada)
	assert.Equal(t, 1, r.Lineas)

	again, err := svc.RecibirTienda(ctx, lineaTienda("gid-1", "Colchon", 500))
	require.NoError(t, err)
	assert.True(t, again.Duplicada)
	assert.Equal(t, r.ID, again.ID)
	assert.Len(t, ventas.ventas, 1)

	v := ventas.porOrden("SH-5001")[0]
	assert.Equal(t, model.CanalTienda, v.Canal)
	assert.Equal(t, model.EntregaPendiente, v.EstadoEntrega)
	require.NotNil(t, v.FechaSeguimiento1)
	assert.Equal(t, dia(2026, 3, 11), *v.FechaSeguimiento1)
}

func TestRecibirTienda_LineasDeLaMismaOrdenYPagoCompleto(t *testing.T) {
	svc, ventas, _ := newIngestaSvc(nil)
	ctx := context.Background()

	_, err := svc.RecibirTienda(ctx, lineaTienda("gid-1", "Colchon", 500))
	require.NoError(t, err)

	segunda := lineaTienda("gid-2", "Base", 300)
	segunda.PagoInicial = &dto.PagoRequest{MontoUsd: decimal.NewFromInt(800), Banco: "Zelle", Fecha: "2026-03-08"}
	svc.ahora = func() time.Time { return dia(2026, 3, 10).Add(11 * time.Hour) }
	r, err := svc.RecibirTienda(ctx, segunda)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Lineas)

	lineas := ventas.porOrden("SH-5001")
	require.Len(t, lineas, 2)
	principal := lineas[0]
	assert.Equal(t, "Colchon", principal.Producto, "el pago queda en la primera linea")
	require.NotNil(t, principal.PagoInicialUsd)
	assert.Equal(t, dia(2026, 3, 8), *principal.FechaPagoInicial)
	for _, l := range lineas {
		assert.Equal(t, model.EntregaADespachar, l.EstadoEntrega)
	}
}

func TestRecibirTienda_TelefonoInvalidoSeConserva(t *testing.T) {
	svc, ventas, _ := newIngestaSvc(nil)
	req := lineaTienda("gid-9", "Colchon", 500)
	req.Telefono = "no-tengo"

	_, err := svc.RecibirTienda(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "no-tengo", ventas.porOrden("SH-5001")[0].Telefono)
}

func TestRecibirTienda_MarcaDesconocida(t *testing.T) {
	svc, _, _ := newIngestaSvc(nil)
	req := lineaTienda("gid-9", "Colchon", 500)
	req.Marca = "Otra"
	_, err := svc.RecibirTienda(context.Background(), req)
	var verr *apierror.ErrValidacion
	assert.True(t, errors.As(err, &verr))
}

// ── Treble ────────────────────────────────────────────────────────────────────

func TestRecibirTreble_ActualizaTodasLasLineas(t *testing.T) {
	svc, ventas, _ := newIngestaSvc(nil)
	ctx := context.Background()
	_, err := svc.RecibirTienda(ctx, lineaTienda("gid-1", "Colchon", 500))
	require.NoError(t, err)
	_, err = svc.RecibirTienda(ctx, lineaTienda("gid-2", "Base", 300))
	require.NoError(t, err)

	r, err := svc.RecibirTreble(ctx, dto.TrebleWebhookRequest{
		Orden:    "SH-5001",
		Despacho: dto.DireccionDTO{Direccion: "Calle 5, Los Palos Grandes", Ciudad: "Caracas"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Lineas)
	for _, l := range ventas.porOrden("SH-5001") {
		assert.Equal(t, "Calle 5, Los Palos Grandes", l.Despacho.Direccion)
		assert.False(t, l.DespachoIgualFacturacion)
	}
}

func TestRecibirTreble_OrdenDesconocida(t *testing.T) {
	svc, _, _ := newIngestaSvc(nil)
	_, err := svc.RecibirTreble(context.Background(), dto.TrebleWebhookRequest{
		Orden: "NOPE", Despacho: dto.DireccionDTO{Direccion: "x"},
	})
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestRecibirTreble_SinDireccion(t *testing.T) {
	svc, _, _ := newIngestaSvc(nil)
	_, err := svc.RecibirTreble(context.Background(), dto.TrebleWebhookRequest{Orden: "SH-1"})
	var verr *apierror.ErrValidacion
	assert.True(t, errors.As(err, &verr))
}

// ── Cashea ────────────────────────────────────────────────────────────────────

func TestSincronizarCashea_DeduplicaYRechaza(t *testing.T) {
	fuente := &stubCashea{filas: []map[string]json.RawMessage{
		filaCashea(map[string]any{"order_id": "C-100", "producto": "Colchon Queen", "cantidad": "1", "precio_usd": "450.00", "cliente": "Ana", "fecha": "2026-03-08T14:00:00Z"}),
		filaCashea(map[string]any{"order_id": "C-100", "producto": "Almohada", "cantidad": 2, "total_usd": 60, "cliente": "Ana"}),
		filaCashea(map[string]any{"order_id": "C-099", "producto": "Colchon King", "precio_usd": 700, "marca": "Mompox"}),
		filaCashea(map[string]any{"order_id": "C-101", "cantidad": 1}),
		filaCashea(map[string]any{"order_id": "C-102", "producto": "Base", "marca": "Sealy"}),
	}}
	svc, ventas, _ := newIngestaSvc(fuente)
	ventas.seed(model.Venta{Orden: "C-099", Canal: model.CanalCashea, Producto: "Colchon King"})

	res, err := svc.SincronizarCashea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultadoSincronizacion{Insertadas: 2, Duplicadas: 1, Rechazadas: 2}, res)

	assert.Equal(t, dia(2026, 3, 7), fuente.desde)
	assert.Equal(t, dia(2026, 3, 10), fuente.hast)

	lineas := ventas.porOrden("C-100")
	require.Len(t, lineas, 2)
	assert.Equal(t, "Colchon Queen", lineas[0].Producto)
	assert.Equal(t, model.EntregaEnProceso, lineas[0].EstadoEntrega)
	assert.Equal(t, model.MarcaBoxiSleep, lineas[0].Marca)
	assert.Equal(t, dia(2026, 3, 8), lineas[0].Fecha)
	assert.True(t, decimal.NewFromInt(450).Equal(lineas[0].TotalUsd))
	assert.True(t, decimal.NewFromInt(30).Equal(lineas[1].PrecioUnitarioUsd))
	assert.Nil(t, lineas[0].FechaSeguimiento1)

	// A second poll over the same window inserts nothing.
	res, err = svc.SincronizarCashea(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Insertadas)
	assert.Equal(t, 3, res.Duplicadas)
}

func TestSincronizarCashea_FilaInvalidaRetieneLaOrdenCompleta(t *testing.T) {
	fuente := &stubCashea{filas: []map[string]json.RawMessage{
		filaCashea(map[string]any{"order_id": "C-200", "producto": "Colchon Queen", "cantidad": 1, "precio_usd": 450}),
		filaCashea(map[string]any{"order_id": "C-200", "producto": "Almohada", "cantidad": "dos", "precio_usd": 30}),
		filaCashea(map[string]any{"order_id": "C-201", "producto": "Base", "precio_usd": 200}),
	}}
	svc, ventas, _ := newIngestaSvc(fuente)

	res, err := svc.SincronizarCashea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultadoSincronizacion{Insertadas: 1, Rechazadas: 2}, res)
	assert.Empty(t, ventas.porOrden("C-200"))
	assert.Len(t, ventas.porOrden("C-201"), 1)

	// Once the provider fixes the row the whole order comes in.
	fuente.filas[1] = filaCashea(map[string]any{"order_id": "C-200", "producto": "Almohada", "cantidad": 2, "precio_usd": 30})
	res, err = svc.SincronizarCashea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultadoSincronizacion{Insertadas: 2, Duplicadas: 1}, res)
	assert.Len(t, ventas.porOrden("C-200"), 2)
}

func TestSincronizarCashea_Desactivada(t *testing.T) {
	fuente := &stubCashea{}
	svc, _, cfg := newIngestaSvc(fuente)
	cfg.cashea.Activo = false

	res, err := svc.SincronizarCashea(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res)
	assert.True(t, fuente.desde.IsZero(), "no se consulta al proveedor")
}

func TestSincronizarCashea_ErrorDelProveedor(t *testing.T) {
	svc, _, _ := newIngestaSvc(&stubCashea{err: errBoom})
	_, err := svc.SincronizarCashea(context.Background())
	assert.ErrorIs(t, err, apierror.ErrServicioExterno)
}

func TestSincronizarCashea_SinCliente(t *testing.T) {
	svc, _, _ := newIngestaSvc(nil)
	_, err := svc.SincronizarCashea(context.Background())
	assert.ErrorIs(t, err, apierror.ErrServicioExterno)
}
