package repository

import (
	"errors"
	"fmt"
	"testing"

	"colchones/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTraducir_NoEncontrado(t *testing.T) {
	err := traducir(fmt.Errorf("first: %w", gorm.ErrRecordNotFound))
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestTraducir_CuotaDuplicada(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_cuota_venta_numero"}

	err := traducir(pgErr)

	assert.ErrorIs(t, err, apierror.ErrConflicto)
	assert.Contains(t, err.Error(), "idx_cuota_venta_numero")
}

func TestTraducir_CheckConstraint(t *testing.T) {
	err := traducir(&pgconn.PgError{Code: "23514", ConstraintName: "chk_ventas_estado_entrega"})

	var verr *apierror.ErrValidacion
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Campos, "chk_ventas_estado_entrega")
}

func TestTraducir_SinCambios(t *testing.T) {
	assert.NoError(t, traducir(nil))
	otro := errors.New("conexion perdida")
	assert.Equal(t, otro, traducir(otro))
}

func TestPaginar(t *testing.T) {
	off, lim := paginar(3, 20)
	assert.Equal(t, 40, off)
	assert.Equal(t, 20, lim)

	off, lim = paginar(0, 0)
	assert.Equal(t, 0, off)
	assert.Equal(t, 50, lim)
}
