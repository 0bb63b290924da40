package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransponerColumnas(t *testing.T) {
	cols := map[string][]json.RawMessage{
		"orden":    {json.RawMessage(`"C-1"`), json.RawMessage(`"C-2"`)},
		"producto": {json.RawMessage(`"Colchon Queen"`), json.RawMessage(`"Almohada"`)},
	}

	filas, err := TransponerColumnas(cols)
	require.NoError(t, err)
	require.Len(t, filas, 2)
	assert.JSONEq(t, `"C-2"`, string(filas[1]["orden"]))
	assert.JSONEq(t, `"Colchon Queen"`, string(filas[0]["producto"]))
}

func TestTransponerColumnas_LongitudesDistintas(t *testing.T) {
	cols := map[string][]json.RawMessage{
		"orden":    {json.RawMessage(`"C-1"`), json.RawMessage(`"C-2"`)},
		"producto": {json.RawMessage(`"Colchon Queen"`)},
	}
	_, err := TransponerColumnas(cols)
	assert.Error(t, err)
}

func TestTransponerColumnas_Vacia(t *testing.T) {
	filas, err := TransponerColumnas(nil)
	require.NoError(t, err)
	assert.Empty(t, filas)
}

func TestCasheaClient_Ordenes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "clave", r.Header.Get("X-API-Key"))
		assert.Equal(t, "2026-03-01", r.URL.Query().Get("desde"))
		assert.Equal(t, "2026-03-04", r.URL.Query().Get("hasta"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"columns":{"orden":["C-9"],"total_usd":[420.5]}}`))
	}))
	defer srv.Close()

	c := NewCasheaClient(srv.URL, "clave", NewCircuitBreaker(DefaultCBConfig("cashea")))
	filas, err := c.Ordenes(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "420.5", string(filas[0]["total_usd"]))
}

func TestCasheaClient_ErrorAbreBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "mantenimiento", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Nombre: "cashea", FailureThreshold: 1})
	c := NewCasheaClient(srv.URL, "clave", cb)

	_, err := c.Ordenes(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)
	assert.Equal(t, CBOpen, cb.State())

	_, err = c.Ordenes(context.Background(), time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
