package repository

import (
	"context"
	"time"

	"colchones/internal/dto"
	"colchones/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProspectoRepository interface {
	Create(ctx context.Context, p *model.Prospecto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Prospecto, error)
	Update(ctx context.Context, p *model.Prospecto) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.ProspectoFilter) ([]model.Prospecto, int64, error)
	ListSeguimientoVence(ctx context.Context, desde, hasta time.Time) ([]model.Prospecto, error)
}

type prospectoRepo struct{ db *gorm.DB }

func NewProspectoRepository(db *gorm.DB) ProspectoRepository { return &prospectoRepo{db: db} }

func (r *prospectoRepo) Create(ctx context.Context, p *model.Prospecto) error {
	return traducir(r.db.WithContext(ctx).Omit("Asesor").Create(p).Error)
}

func (r *prospectoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Prospecto, error) {
	var p model.Prospecto
	if err := r.db.WithContext(ctx).Preload("Asesor").First(&p, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	return &p, nil
}

func (r *prospectoRepo) Update(ctx context.Context, p *model.Prospecto) error {
	return traducir(r.db.WithContext(ctx).Omit("Asesor").Save(p).Error)
}

func (r *prospectoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Prospecto{}, "id = ?", id)
	if res.Error != nil {
		return traducir(res.Error)
	}
	if res.RowsAffected == 0 {
		return traducir(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *prospectoRepo) List(ctx context.Context, filter dto.ProspectoFilter) ([]model.Prospecto, int64, error) {
	var prospectos []model.Prospecto
	var total int64
	offset, limit := paginar(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Prospecto{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Marca != "" {
		q = q.Where("marca = ?", filter.Marca)
	}
	if filter.AsesorID != "" {
		q = q.Where("asesor_id = ?", filter.AsesorID)
	}
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where("(nombre ILIKE ? OR telefono ILIKE ? OR email ILIKE ?)", like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, traducir(err)
	}
	err := q.Preload("Asesor").
		Order("fecha_creacion DESC").
		Offset(offset).Limit(limit).
		Find(&prospectos).Error
	return prospectos, total, traducir(err)
}

// ListSeguimientoVence returns active leads with any follow-up date in [desde, hasta).
func (r *prospectoRepo) ListSeguimientoVence(ctx context.Context, desde, hasta time.Time) ([]model.Prospecto, error) {
	var prospectos []model.Prospecto
	err := r.db.WithContext(ctx).Preload("Asesor").
		Where("estado IN ?", []model.EstadoProspecto{model.ProspectoNuevo, model.ProspectoEnSeguimiento}).
		Where("((fecha_seguimiento1 >= ? AND fecha_seguimiento1 < ?) OR "+
			"(fecha_seguimiento2 >= ? AND fecha_seguimiento2 < ?) OR "+
			"(fecha_seguimiento3 >= ? AND fecha_seguimiento3 < ?))",
			desde, hasta, desde, hasta, desde, hasta).
		Order("nombre ASC").
		Find(&prospectos).Error
	return prospectos, traducir(err)
}
