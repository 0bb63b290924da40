package repository

import (
	"context"
	"time"

	"colchones/internal/dto"
	"colchones/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	CreateLineas(ctx context.Context, tx *gorm.DB, lineas []model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByOrden(ctx context.Context, orden string) ([]model.Venta, error)
	FindByOrdenTx(ctx context.Context, tx *gorm.DB, orden string) ([]model.Venta, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.Venta, error)
	OrdenesExistentes(ctx context.Context, ordenes []string) (map[string]bool, error)
	NextNumeroOrden(ctx context.Context, tx *gorm.DB) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	UpdateEstadoLineas(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, estado model.EstadoEntrega) error
	DeleteByOrdenes(ctx context.Context, tx *gorm.DB, ordenes []string) ([]model.Venta, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	Restaurar(ctx context.Context, tx *gorm.DB, lineas []model.Venta) error
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	Exportar(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error)
	ListSeguimientoVence(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateLineas(ctx context.Context, tx *gorm.DB, lineas []model.Venta) error {
	if len(lineas) == 0 {
		return nil
	}
	return traducir(conn(r.db, tx).WithContext(ctx).Omit("Asesor", "Cuotas").Create(&lineas).Error)
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Asesor").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &v, nil
}

// FindByOrden returns the lines of an order, primary line first.
func (r *ventaRepo) FindByOrden(ctx context.Context, orden string) ([]model.Venta, error) {
	return r.FindByOrdenTx(ctx, nil, orden)
}

func (r *ventaRepo) FindByOrdenTx(ctx context.Context, tx *gorm.DB, orden string) ([]model.Venta, error) {
	var lineas []model.Venta
	err := conn(r.db, tx).WithContext(ctx).
		Preload("Asesor").
		Where("orden = ?", orden).
		Order("created_at ASC, id ASC").
		Find(&lineas).Error
	return lineas, traducir(err)
}

func (r *ventaRepo) FindByExternalID(ctx context.Context, externalID string) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&v).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &v, nil
}

// OrdenesExistentes reports which of the given order numbers already have lines.
func (r *ventaRepo) OrdenesExistentes(ctx context.Context, ordenes []string) (map[string]bool, error) {
	existentes := make(map[string]bool, len(ordenes))
	if len(ordenes) == 0 {
		return existentes, nil
	}
	var encontradas []string
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("orden IN ?", ordenes).
		Distinct("orden").
		Pluck("orden", &encontradas).Error
	if err != nil {
		return nil, traducir(err)
	}
	for _, o := range encontradas {
		existentes[o] = true
	}
	return existentes, nil
}

func (r *ventaRepo) NextNumeroOrden(ctx context.Context, tx *gorm.DB) (int64, error) {
	// Uses a PostgreSQL sequence for atomic order number generation
	var num int64
	err := conn(r.db, tx).WithContext(ctx).Raw("SELECT nextval('ventas_orden_manual_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) Update(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Omit("Asesor", "Cuotas").Save(v).Error)
}

func (r *ventaRepo) UpdateEstadoLineas(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, estado model.EstadoEntrega) error {
	if len(ids) == 0 {
		return nil
	}
	return traducir(conn(r.db, tx).WithContext(ctx).Model(&model.Venta{}).
		Where("id IN ?", ids).
		Update("estado_entrega", estado).Error)
}

// DeleteByOrdenes removes every line of the given orders and returns them,
// installments included, so the caller can snapshot what was removed.
func (r *ventaRepo) DeleteByOrdenes(ctx context.Context, tx *gorm.DB, ordenes []string) ([]model.Venta, error) {
	if len(ordenes) == 0 {
		return nil, nil
	}
	db := conn(r.db, tx).WithContext(ctx)
	var lineas []model.Venta
	if err := db.Preload("Cuotas").Where("orden IN ?", ordenes).Find(&lineas).Error; err != nil {
		return nil, traducir(err)
	}
	if err := db.Where("orden IN ?", ordenes).Delete(&model.Venta{}).Error; err != nil {
		return nil, traducir(err)
	}
	return lineas, nil
}

func (r *ventaRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := conn(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Delete(&model.Venta{})
	return res.RowsAffected, traducir(res.Error)
}

// Restaurar reinserts snapshotted lines with their original IDs and installments.
func (r *ventaRepo) Restaurar(ctx context.Context, tx *gorm.DB, lineas []model.Venta) error {
	if len(lineas) == 0 {
		return nil
	}
	return traducir(conn(r.db, tx).WithContext(ctx).Omit("Asesor").Create(&lineas).Error)
}

func (r *ventaRepo) filtrar(ctx context.Context, filter dto.VentaFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Orden != "" {
		q = q.Where("orden = ?", filter.Orden)
	}
	if filter.Canal != "" {
		q = q.Where("canal = ?", filter.Canal)
	}
	if filter.Marca != "" {
		q = q.Where("marca = ?", filter.Marca)
	}
	if filter.Estado != "" {
		q = q.Where("estado_entrega = ?", filter.Estado)
	} else if !filter.IncluirCerradas {
		// Perdida / Cancelada are hidden from the default views
		q = q.Where("estado_entrega NOT IN ?", []model.EstadoEntrega{model.EntregaPerdida, model.EntregaCancelada})
	}
	if filter.AsesorID != "" {
		q = q.Where("asesor_id = ?", filter.AsesorID)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(fecha) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(fecha) <= ?", filter.Hasta)
	}
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where("(nombre_cliente ILIKE ? OR cedula ILIKE ? OR producto ILIKE ?)", like, like, like)
	}
	return q
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset, limit := paginar(filter.Page, filter.Limit)

	if err := r.filtrar(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, traducir(err)
	}

	err := r.filtrar(ctx, filter).Preload("Asesor").
		Order("fecha DESC, orden DESC, created_at ASC").
		Offset(offset).Limit(limit).
		Find(&ventas).Error

	return ventas, total, traducir(err)
}

func (r *ventaRepo) Exportar(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.filtrar(ctx, filter).Preload("Asesor").
		Order("fecha ASC, orden ASC, created_at ASC").
		Find(&ventas).Error
	return ventas, traducir(err)
}

// ListSeguimientoVence returns pending lines with any follow-up date in [desde, hasta).
func (r *ventaRepo) ListSeguimientoVence(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).Preload("Asesor").
		Where("estado_entrega = ?", model.EntregaPendiente).
		Where("((fecha_seguimiento1 >= ? AND fecha_seguimiento1 < ?) OR "+
			"(fecha_seguimiento2 >= ? AND fecha_seguimiento2 < ?) OR "+
			"(fecha_seguimiento3 >= ? AND fecha_seguimiento3 < ?))",
			desde, hasta, desde, hasta, desde, hasta).
		Order("orden ASC, created_at ASC").
		Find(&ventas).Error
	return ventas, traducir(err)
}
