package repository

import (
	"context"

	"colchones/internal/model"

	"gorm.io/gorm"
)

// EjecucionRepository persists one status row per scheduled job run.
type EjecucionRepository interface {
	Create(ctx context.Context, e *model.EjecucionTarea) error
	Update(ctx context.Context, e *model.EjecucionTarea) error
	List(ctx context.Context, tarea string, limit int) ([]model.EjecucionTarea, error)
}

type ejecucionRepo struct{ db *gorm.DB }

func NewEjecucionRepository(db *gorm.DB) EjecucionRepository { return &ejecucionRepo{db: db} }

func (r *ejecucionRepo) Create(ctx context.Context, e *model.EjecucionTarea) error {
	return traducir(r.db.WithContext(ctx).Create(e).Error)
}

func (r *ejecucionRepo) Update(ctx context.Context, e *model.EjecucionTarea) error {
	return traducir(r.db.WithContext(ctx).Save(e).Error)
}

func (r *ejecucionRepo) List(ctx context.Context, tarea string, limit int) ([]model.EjecucionTarea, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	var out []model.EjecucionTarea
	q := r.db.WithContext(ctx).Order("iniciada_en DESC").Limit(limit)
	if tarea != "" {
		q = q.Where("tarea = ?", tarea)
	}
	return out, traducir(q.Find(&out).Error)
}
