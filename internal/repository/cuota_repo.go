package repository

import (
	"context"

	"colchones/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CuotaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Cuota) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cuota, error)
	ListByOrden(ctx context.Context, orden string) ([]model.Cuota, error)
	ListByOrdenTx(ctx context.Context, tx *gorm.DB, orden string) ([]model.Cuota, error)
	MaxNumero(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (int, error)
	Update(ctx context.Context, tx *gorm.DB, c *model.Cuota) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type cuotaRepo struct{ db *gorm.DB }

func NewCuotaRepository(db *gorm.DB) CuotaRepository { return &cuotaRepo{db: db} }

func (r *cuotaRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cuota) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Create(c).Error)
}

func (r *cuotaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cuota, error) {
	var c model.Cuota
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	return &c, nil
}

func (r *cuotaRepo) ListByOrden(ctx context.Context, orden string) ([]model.Cuota, error) {
	return r.ListByOrdenTx(ctx, nil, orden)
}

func (r *cuotaRepo) ListByOrdenTx(ctx context.Context, tx *gorm.DB, orden string) ([]model.Cuota, error) {
	var cuotas []model.Cuota
	err := conn(r.db, tx).WithContext(ctx).
		Where("orden = ?", orden).
		Order("numero_cuota ASC").
		Find(&cuotas).Error
	return cuotas, traducir(err)
}

// MaxNumero returns the highest installment number of a line, 0 when none.
func (r *cuotaRepo) MaxNumero(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) (int, error) {
	var max int
	err := conn(r.db, tx).WithContext(ctx).Model(&model.Cuota{}).
		Where("venta_id = ?", ventaID).
		Select("COALESCE(MAX(numero_cuota), 0)").
		Scan(&max).Error
	return max, traducir(err)
}

func (r *cuotaRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Cuota) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Save(c).Error)
}

func (r *cuotaRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := conn(r.db, tx).WithContext(ctx).Delete(&model.Cuota{}, "id = ?", id)
	if res.Error != nil {
		return traducir(res.Error)
	}
	if res.RowsAffected == 0 {
		return traducir(gorm.ErrRecordNotFound)
	}
	return nil
}
