package repository

import (
	"errors"
	"fmt"

	"colchones/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes the services care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// traducir maps driver errors to the apierror sentinels so services and
// handlers never inspect gorm or pgconn types.
func traducir(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.ErrNoEncontrado
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, apierror.ErrConflicto)
		case pgCheckViolation:
			return &apierror.ErrValidacion{Campos: map[string]string{
				pgErr.ConstraintName: "valor fuera del conjunto permitido",
			}}
		case pgForeignKeyViolation:
			return &apierror.ErrValidacion{Campos: map[string]string{
				pgErr.ConstraintName: "referencia inexistente",
			}}
		}
	}
	return err
}

// conn returns tx when the caller runs inside a transaction.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func paginar(page, limit int) (offset int, lim int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return (page - 1) * limit, limit
}
