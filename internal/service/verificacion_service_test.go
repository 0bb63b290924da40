package service

import (
	"context"
	"errors"
	"testing"

	"colchones/internal/apierror"
	"colchones/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Verificacion ──────────────────────────────────────────────────────────────

func TestVerificacion_SoloDesdePorVerificar(t *testing.T) {
	repo := newStubVerificacionRepo()
	svc := NewVerificacionService(repo)
	ctx := context.Background()
	id := uuid.NewString()
	repo.estados[dto.TipoPagoCuota+"/"+id] = ""

	item, err := svc.Actualizar(ctx, dto.TipoPagoCuota, id, dto.ActualizarVerificacionRequest{Estado: "Verificado", Notas: " ok banesco "})
	require.NoError(t, err)
	assert.Equal(t, "Verificado", item.Estado)
	assert.Equal(t, "ok banesco", repo.notas[dto.TipoPagoCuota+"/"+id])

	_, err = svc.Actualizar(ctx, dto.TipoPagoCuota, id, dto.ActualizarVerificacionRequest{Estado: "Rechazado"})
	assert.ErrorIs(t, err, apierror.ErrTransicionInvalida)
	_, err = svc.Actualizar(ctx, dto.TipoPagoCuota, id, dto.ActualizarVerificacionRequest{Estado: "Por verificar"})
	assert.ErrorIs(t, err, apierror.ErrTransicionInvalida)
}

func TestVerificacion_Validaciones(t *testing.T) {
	svc := NewVerificacionService(newStubVerificacionRepo())
	ctx := context.Background()

	_, err := svc.Actualizar(ctx, "transferencia", uuid.NewString(), dto.ActualizarVerificacionRequest{Estado: "Verificado"})
	var verr *apierror.ErrValidacion
	assert.True(t, errors.As(err, &verr))

	_, err = svc.Actualizar(ctx, dto.TipoPagoFlete, "abc", dto.ActualizarVerificacionRequest{Estado: "Verificado"})
	assert.True(t, errors.As(err, &verr))

	_, err = svc.Actualizar(ctx, dto.TipoPagoFlete, uuid.NewString(), dto.ActualizarVerificacionRequest{Estado: "Verificado"})
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestVerificacionListar_NormalizaVacios(t *testing.T) {
	repo := newStubVerificacionRepo()
	repo.estados["egreso/1"] = ""
	r, err := NewVerificacionService(repo).Listar(context.Background(), dto.VerificacionFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, r.Data, 1)
	assert.Equal(t, "Por verificar", r.Data[0].Estado)
}

