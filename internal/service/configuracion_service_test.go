package service

import (
	"context"
	"testing"

	"colchones/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Configuracion ─────────────────────────────────────────────────────────────

type stubReprogramador struct {
	activo    bool
	intervalo int
	llamadas  int
}

func (s *stubReprogramador) ReprogramarCashea(activo bool, intervaloHoras int) error {
	s.activo, s.intervalo = activo, intervaloHoras
	s.llamadas++
	return nil
}

func TestConfiguracionCashea_ReprogramaElScheduler(t *testing.T) {
	repo := newStubConfigRepo()
	sched := &stubReprogramador{}
	svc := NewConfiguracionService(repo, sched)

	r, err := svc.GuardarCashea(context.Background(), dto.ConfiguracionCasheaRequest{Activo: true, IntervaloHoras: 6, DiasVentana: 5})
	require.NoError(t, err)
	assert.Equal(t, 6, r.IntervaloHoras)
	assert.Equal(t, 1, sched.llamadas)
	assert.Equal(t, 6, sched.intervalo)
	assert.Equal(t, 5, repo.cashea.DiasVentana)
}

func TestConfiguracionSeguimiento_Guarda(t *testing.T) {
	repo := newStubConfigRepo()
	svc := NewConfiguracionService(repo, nil)

	_, err := svc.GuardarSeguimiento(context.Background(), dto.ConfiguracionSeguimientoRequest{DiasFase1: 1, DiasFase2: 3, DiasFase3: 5, EmailGeneral: " ventas@mompox.com "})
	require.NoError(t, err)
	got, err := svc.ObtenerSeguimiento(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.DiasFase2)
	assert.Equal(t, "ventas@mompox.com", got.EmailGeneral)
}
