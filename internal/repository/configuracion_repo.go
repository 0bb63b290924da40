package repository

import (
	"context"

	"colchones/internal/model"

	"gorm.io/gorm"
)

// singletonID is the primary key of the one-row configuration tables.
const singletonID = 1

type ConfiguracionRepository interface {
	GetSeguimiento(ctx context.Context) (*model.ConfiguracionSeguimiento, error)
	SaveSeguimiento(ctx context.Context, c *model.ConfiguracionSeguimiento) error
	GetCashea(ctx context.Context) (*model.ConfiguracionCashea, error)
	SaveCashea(ctx context.Context, c *model.ConfiguracionCashea) error
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

// GetSeguimiento returns the singleton, creating it with defaults on first use.
func (r *configuracionRepo) GetSeguimiento(ctx context.Context) (*model.ConfiguracionSeguimiento, error) {
	c := model.ConfiguracionSeguimiento{ID: singletonID}
	err := r.db.WithContext(ctx).
		Attrs(model.ConfiguracionSeguimiento{DiasFase1: 2, DiasFase2: 4, DiasFase3: 7}).
		FirstOrCreate(&c, model.ConfiguracionSeguimiento{ID: singletonID}).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &c, nil
}

func (r *configuracionRepo) SaveSeguimiento(ctx context.Context, c *model.ConfiguracionSeguimiento) error {
	c.ID = singletonID
	return traducir(r.db.WithContext(ctx).Save(c).Error)
}

func (r *configuracionRepo) GetCashea(ctx context.Context) (*model.ConfiguracionCashea, error) {
	c := model.ConfiguracionCashea{ID: singletonID}
	err := r.db.WithContext(ctx).
		Attrs(model.ConfiguracionCashea{Activo: true, IntervaloHoras: 4, DiasVentana: 3}).
		FirstOrCreate(&c, model.ConfiguracionCashea{ID: singletonID}).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &c, nil
}

func (r *configuracionRepo) SaveCashea(ctx context.Context, c *model.ConfiguracionCashea) error {
	c.ID = singletonID
	return traducir(r.db.WithContext(ctx).Save(c).Error)
}
