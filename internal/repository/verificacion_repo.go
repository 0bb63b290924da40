package repository

import (
	"context"
	"fmt"
	"time"

	"colchones/internal/dto"
	"colchones/internal/model"

	"gorm.io/gorm"
)

// pagosUnion is the read-side view over every recorded payment. fecha_orden
// keeps the raw timestamp for sorting; fecha is the display date.
const pagosUnion = `
SELECT 'pago_inicial' AS tipo_pago, v.id::text AS id, v.orden AS orden, v.producto AS descripcion,
       to_char(v.fecha_pago_inicial, 'YYYY-MM-DD') AS fecha, v.fecha_pago_inicial AS fecha_orden,
       v.banco_pago_inicial AS banco, v.referencia_pago_inicial AS referencia,
       v.pago_inicial_usd AS monto, 'USD' AS moneda,
       v.estado_verificacion_inicial AS estado, v.notas_verificacion_inicial AS notas
FROM ventas v
WHERE v.pago_inicial_usd IS NOT NULL AND v.pago_inicial_usd <> 0
UNION ALL
SELECT 'flete', v.id::text, v.orden, v.producto,
       to_char(v.fecha_pago_flete, 'YYYY-MM-DD'), v.fecha_pago_flete,
       v.banco_flete, v.referencia_flete,
       v.pago_flete_usd, 'USD',
       v.estado_verificacion_flete, v.notas_verificacion_flete
FROM ventas v
WHERE v.pago_flete_usd IS NOT NULL AND v.pago_flete_usd <> 0
UNION ALL
SELECT 'cuota', c.id::text, c.orden, 'Cuota ' || c.numero_cuota,
       to_char(c.fecha_pago, 'YYYY-MM-DD'), c.fecha_pago,
       c.banco, c.referencia,
       c.pago_cuota_usd, 'USD',
       c.estado_verificacion, c.notas_verificacion
FROM cuotas c
UNION ALL
SELECT 'egreso', e.id::text, NULL, e.descripcion,
       to_char(e.fecha, 'YYYY-MM-DD'), e.fecha,
       e.banco, e.referencia,
       e.monto, e.moneda,
       e.estado_verificacion, e.notas_verificacion
FROM egresos e
WHERE e.estado <> 'anulado'`

// columnasVerificacion maps a payment source to its row. existe narrows the
// table to rows that actually carry that payment, the same rows pagosUnion
// lists.
type columnasVerificacion struct {
	tabla, estado, notas, fecha, existe string
}

var columnasPorTipo = map[string]columnasVerificacion{
	dto.TipoPagoInicial: {"ventas", "estado_verificacion_inicial", "notas_verificacion_inicial", "fecha_verificacion_inicial", "pago_inicial_usd IS NOT NULL AND pago_inicial_usd <> 0"},
	dto.TipoPagoFlete:   {"ventas", "estado_verificacion_flete", "notas_verificacion_flete", "fecha_verificacion_flete", "pago_flete_usd IS NOT NULL AND pago_flete_usd <> 0"},
	dto.TipoPagoCuota:   {"cuotas", "estado_verificacion", "notas_verificacion", "fecha_verificacion", ""},
	dto.TipoPagoEgreso:  {"egresos", "estado_verificacion", "notas_verificacion", "fecha_verificacion", "estado <> 'anulado'"},
}

// selectEstado builds the lookup used by EstadoActual.
func selectEstado(cols columnasVerificacion, bloquear bool) string {
	sql := fmt.Sprintf("SELECT %s AS estado FROM %s WHERE id = ?", cols.estado, cols.tabla)
	if cols.existe != "" {
		sql += " AND " + cols.existe
	}
	if bloquear {
		sql += " FOR UPDATE"
	}
	return sql
}

// TipoPagoValido reports whether tipo names one of the four payment sources.
func TipoPagoValido(tipo string) bool {
	_, ok := columnasPorTipo[tipo]
	return ok
}

type VerificacionRepository interface {
	List(ctx context.Context, filter dto.VerificacionFilter) ([]dto.VerificacionItem, int64, error)
	EstadoActual(ctx context.Context, tx *gorm.DB, tipo, id string) (model.EstadoVerificacion, error)
	Actualizar(ctx context.Context, tx *gorm.DB, tipo, id string, estado model.EstadoVerificacion, notas string, fecha time.Time) error
	DB() *gorm.DB
}

type verificacionRepo struct{ db *gorm.DB }

func NewVerificacionRepository(db *gorm.DB) VerificacionRepository {
	return &verificacionRepo{db: db}
}

func (r *verificacionRepo) DB() *gorm.DB { return r.db }

func (r *verificacionRepo) filtrar(ctx context.Context, filter dto.VerificacionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Table("(?) AS pagos", r.db.Raw(pagosUnion))
	if filter.Banco != "" {
		q = q.Where("banco = ?", filter.Banco)
	}
	if filter.TipoPago != "" {
		q = q.Where("tipo_pago = ?", filter.TipoPago)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Orden != "" {
		q = q.Where("orden = ?", filter.Orden)
	}
	// fecha is YYYY-MM-DD text, so lexical comparison is chronological
	if filter.Desde != "" {
		q = q.Where("fecha >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha <= ?", filter.Hasta)
	}
	return q
}

func (r *verificacionRepo) List(ctx context.Context, filter dto.VerificacionFilter) ([]dto.VerificacionItem, int64, error) {
	var items []dto.VerificacionItem
	var total int64
	offset, limit := paginar(filter.Page, filter.Limit)

	if err := r.filtrar(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, traducir(err)
	}
	err := r.filtrar(ctx, filter).
		Select("tipo_pago, id, orden, descripcion, fecha, banco, referencia, monto, moneda, estado, notas").
		Order("fecha_orden DESC NULLS LAST, id").
		Offset(offset).Limit(limit).
		Scan(&items).Error
	return items, total, traducir(err)
}

// EstadoActual locks the payment row when called inside a transaction.
func (r *verificacionRepo) EstadoActual(ctx context.Context, tx *gorm.DB, tipo, id string) (model.EstadoVerificacion, error) {
	cols, ok := columnasPorTipo[tipo]
	if !ok {
		return "", fmt.Errorf("tipo de pago desconocido %q", tipo)
	}
	var fila struct{ Estado string }
	res := conn(r.db, tx).WithContext(ctx).Raw(selectEstado(cols, tx != nil), id).Scan(&fila)
	if res.Error != nil {
		return "", traducir(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", traducir(gorm.ErrRecordNotFound)
	}
	return model.EstadoVerificacion(fila.Estado).Normalizar(), nil
}

func (r *verificacionRepo) Actualizar(ctx context.Context, tx *gorm.DB, tipo, id string, estado model.EstadoVerificacion, notas string, fecha time.Time) error {
	cols, ok := columnasPorTipo[tipo]
	if !ok {
		return fmt.Errorf("tipo de pago desconocido %q", tipo)
	}
	q := conn(r.db, tx).WithContext(ctx).Table(cols.tabla).Where("id = ?", id)
	if cols.existe != "" {
		q = q.Where(cols.existe)
	}
	res := q.Updates(map[string]interface{}{
		cols.estado:  string(estado),
		cols.notas:   notas,
		cols.fecha:   fecha,
		"updated_at": fecha,
	})
	if res.Error != nil {
		return traducir(res.Error)
	}
	if res.RowsAffected == 0 {
		return traducir(gorm.ErrRecordNotFound)
	}
	return nil
}
