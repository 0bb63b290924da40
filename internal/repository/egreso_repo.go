package repository

import (
	"context"

	"colchones/internal/dto"
	"colchones/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EgresoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, e *model.Egreso) error
	CreateBatch(ctx context.Context, tx *gorm.DB, egresos []model.Egreso) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Egreso, error)
	Update(ctx context.Context, tx *gorm.DB, e *model.Egreso) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	List(ctx context.Context, filter dto.EgresoFilter) ([]model.Egreso, int64, error)
	Exportar(ctx context.Context, filter dto.EgresoFilter) ([]model.Egreso, error)
	UltimasDeCadaSerie(ctx context.Context) ([]model.Egreso, error)
	FindOcurrencia(ctx context.Context, serieID uuid.UUID, numero int) (*model.Egreso, error)
	DB() *gorm.DB
}

type egresoRepo struct{ db *gorm.DB }

func NewEgresoRepository(db *gorm.DB) EgresoRepository { return &egresoRepo{db: db} }

func (r *egresoRepo) DB() *gorm.DB { return r.db }

func (r *egresoRepo) Create(ctx context.Context, tx *gorm.DB, e *model.Egreso) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Create(e).Error)
}

func (r *egresoRepo) CreateBatch(ctx context.Context, tx *gorm.DB, egresos []model.Egreso) error {
	if len(egresos) == 0 {
		return nil
	}
	return traducir(conn(r.db, tx).WithContext(ctx).CreateInBatches(&egresos, 200).Error)
}

func (r *egresoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Egreso, error) {
	var e model.Egreso
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	return &e, nil
}

func (r *egresoRepo) Update(ctx context.Context, tx *gorm.DB, e *model.Egreso) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Save(e).Error)
}

func (r *egresoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Egreso{}, "id = ?", id)
	if res.Error != nil {
		return traducir(res.Error)
	}
	if res.RowsAffected == 0 {
		return traducir(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *egresoRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := conn(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Delete(&model.Egreso{})
	return res.RowsAffected, traducir(res.Error)
}

func (r *egresoRepo) filtrar(ctx context.Context, filter dto.EgresoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Egreso{})
	if filter.Desde != "" {
		q = q.Where("DATE(fecha_compromiso) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(fecha_compromiso) <= ?", filter.Hasta)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Banco != "" {
		q = q.Where("banco = ?", filter.Banco)
	}
	if filter.Marca != "" {
		q = q.Where("marca = ?", filter.Marca)
	}
	if filter.Serie != "" {
		q = q.Where("serie_recurrencia_id = ?", filter.Serie)
	}
	return q
}

func (r *egresoRepo) List(ctx context.Context, filter dto.EgresoFilter) ([]model.Egreso, int64, error) {
	var egresos []model.Egreso
	var total int64
	offset, limit := paginar(filter.Page, filter.Limit)

	if err := r.filtrar(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, traducir(err)
	}
	err := r.filtrar(ctx, filter).
		Order("fecha_compromiso DESC, numero_en_serie ASC").
		Offset(offset).Limit(limit).
		Find(&egresos).Error
	return egresos, total, traducir(err)
}

func (r *egresoRepo) Exportar(ctx context.Context, filter dto.EgresoFilter) ([]model.Egreso, error) {
	var egresos []model.Egreso
	err := r.filtrar(ctx, filter).Order("fecha_compromiso ASC").Find(&egresos).Error
	return egresos, traducir(err)
}

// UltimasDeCadaSerie returns the highest-numbered occurrence of every
// recurring series. Callers decide which series are still open.
func (r *egresoRepo) UltimasDeCadaSerie(ctx context.Context) ([]model.Egreso, error) {
	var egresos []model.Egreso
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (serie_recurrencia_id) *
		FROM egresos
		WHERE es_recurrente AND serie_recurrencia_id IS NOT NULL
		ORDER BY serie_recurrencia_id, numero_en_serie DESC`).
		Scan(&egresos).Error
	return egresos, traducir(err)
}

func (r *egresoRepo) FindOcurrencia(ctx context.Context, serieID uuid.UUID, numero int) (*model.Egreso, error) {
	var e model.Egreso
	err := r.db.WithContext(ctx).
		Where("serie_recurrencia_id = ? AND numero_en_serie = ?", serieID, numero).
		First(&e).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &e, nil
}
