package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/model"
	"colchones/internal/repository"
	"colchones/internal/seguimiento"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ModoAditivo   = "aditivo"
	ModoReemplazo = "reemplazo"

	entidadVentas  = "ventas"
	entidadEgresos = "egresos"
)

// Column order of the order-line sheet. Import accepts any order and ignores
// unknown headers; export writes exactly these.
var columnasVentas = []string{
	"orden", "fecha", "canal", "marca", "tipo", "nombre_cliente", "cedula",
	"telefono", "email_cliente", "producto", "sku", "cantidad",
	"precio_unitario_usd", "total_usd", "estado_entrega", "direccion", "ciudad",
	"estado", "pago_inicial_usd", "metodo_pago", "banco", "referencia", "notas",
}

var columnasEgresos = []string{
	"fecha", "fecha_compromiso", "descripcion", "beneficiario", "monto", "moneda",
	"tipo", "categoria", "marca", "metodo_pago", "banco", "referencia", "estado",
}

// ImportacionService loads and dumps order lines and expenses as .xlsx.
type ImportacionService interface {
	ImportarVentas(ctx context.Context, r io.Reader, modo string) (*dto.ImportacionResponse, error)
	ImportarEgresos(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error)
	Deshacer(ctx context.Context) (*dto.DeshacerResponse, error)
	ExportarVentas(ctx context.Context, filter dto.VentaFilter) ([]byte, error)
	ExportarEgresos(ctx context.Context, filter dto.EgresoFilter) ([]byte, error)
}

type importacionService struct {
	ventas    repository.VentaRepository
	egresos   repository.EgresoRepository
	snapshots repository.SnapshotRepository
	config    repository.ConfiguracionRepository
	loc       *time.Location
	ahora     func() time.Time
}

func NewImportacionService(
	ventas repository.VentaRepository,
	egresos repository.EgresoRepository,
	snapshots repository.SnapshotRepository,
	config repository.ConfiguracionRepository,
	loc *time.Location,
) ImportacionService {
	if loc == nil {
		loc = time.UTC
	}
	return &importacionService{
		ventas:    ventas,
		egresos:   egresos,
		snapshots: snapshots,
		config:    config,
		loc:       loc,
		ahora:     time.Now,
	}
}

// ── Ventas ───────────────────────────────────────────────────────────────────

// ImportarVentas validates every row before writing anything. Aditivo skips
// rows whose order already exists; reemplazo deletes those orders first. Both
// store an undo snapshot in the same transaction.
func (s *importacionService) ImportarVentas(ctx context.Context, r io.Reader, modo string) (*dto.ImportacionResponse, error) {
	if modo == "" {
		modo = ModoAditivo
	}
	if modo != ModoAditivo && modo != ModoReemplazo {
		return nil, apierror.Validacion("modo", "debe ser aditivo o reemplazo")
	}
	filas, err := leerHoja(r)
	if err != nil {
		return nil, err
	}

	dias := diasSeguimiento(ctx, s.config)
	creado := s.ahora()
	errores := map[string]string{}
	lineas := make([]model.Venta, 0, len(filas))
	var ordenes []string
	vistas := map[string]bool{}
	for i, f := range filas {
		v, ok := s.filaVenta(f, i+2, errores)
		if !ok {
			continue
		}
		v.CreatedAt = creado.Add(time.Duration(i) * time.Microsecond)
		if v.EstadoEntrega == model.EntregaPendiente {
			p := seguimiento.Calcular(v.Fecha, dias).Punteros()
			v.FechaSeguimiento1, v.FechaSeguimiento2, v.FechaSeguimiento3 = p[0], p[1], p[2]
		}
		lineas = append(lineas, v)
		if !vistas[v.Orden] {
			vistas[v.Orden] = true
			ordenes = append(ordenes, v.Orden)
		}
	}
	if len(errores) > 0 {
		return nil, &apierror.ErrValidacion{Campos: errores}
	}

	resp := &dto.ImportacionResponse{Entidad: entidadVentas, Modo: modo}
	if modo == ModoAditivo {
		existentes, err := s.ventas.OrdenesExistentes(ctx, ordenes)
		if err != nil {
			return nil, err
		}
		nuevas := lineas[:0]
		for _, v := range lineas {
			if existentes[v.Orden] {
				resp.Duplicadas++
				continue
			}
			nuevas = append(nuevas, v)
		}
		lineas = nuevas
		for _, o := range ordenes {
			if existentes[o] {
				resp.Ordenes = append(resp.Ordenes, o)
			}
		}
	}

	ids := make([]uuid.UUID, len(lineas))
	for i := range lineas {
		ids[i] = lineas[i].ID
	}
	snap := &model.SnapshotImportacion{ID: uuid.New(), Entidad: entidadVentas, Modo: modo, CreatedAt: creado}

	err = runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		var eliminadas []model.Venta
		if modo == ModoReemplazo {
			var err error
			if eliminadas, err = s.ventas.DeleteByOrdenes(ctx, tx, ordenes); err != nil {
				return err
			}
		}
		if err := s.ventas.CreateLineas(ctx, tx, lineas); err != nil {
			return err
		}
		resp.Eliminadas = len(eliminadas)
		if err := llenarSnapshot(snap, eliminadas, ids); err != nil {
			return err
		}
		return s.snapshots.Create(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}

	resp.SnapshotID = snap.ID.String()
	resp.Insertadas = len(lineas)
	log.Info().
		Str("modo", modo).
		Int("insertadas", resp.Insertadas).
		Int("eliminadas", resp.Eliminadas).
		Int("duplicadas", resp.Duplicadas).
		Msg("importacion de ventas completa")
	return resp, nil
}

func (s *importacionService) filaVenta(f fila, n int, errores map[string]string) (model.Venta, bool) {
	malo := func(col, msg string) { errores[fmt.Sprintf("fila %d.%s", n, col)] = msg }
	antes := len(errores)

	v := model.Venta{
		ID:                        uuid.New(),
		Orden:                     f.texto("orden"),
		Canal:                     model.Canal(f.texto("canal")),
		Marca:                     model.Marca(f.texto("marca")),
		Tipo:                      model.TipoVenta(f.texto("tipo")),
		NombreCliente:             f.texto("nombre_cliente"),
		Cedula:                    f.texto("cedula"),
		Telefono:                  f.texto("telefono"),
		EmailCliente:              f.texto("email_cliente"),
		Producto:                  f.texto("producto"),
		SKU:                       f.texto("sku"),
		Cantidad:                  1,
		EstadoEntrega:             model.EstadoEntrega(f.texto("estado_entrega")),
		MetodoPagoInicial:         f.texto("metodo_pago"),
		BancoPagoInicial:          f.texto("banco"),
		ReferenciaPagoInicial:     f.texto("referencia"),
		Notas:                     f.texto("notas"),
		DespachoIgualFacturacion:  true,
		EstadoVerificacionInicial: model.VerificacionPendiente,
		EstadoVerificacionFlete:   model.VerificacionPendiente,
		Facturacion: model.Direccion{
			Direccion: f.texto("direccion"),
			Ciudad:    f.texto("ciudad"),
			Estado:    f.texto("estado"),
		},
	}
	if v.Orden == "" {
		malo("orden", "requerida")
	}
	if v.Producto == "" {
		malo("producto", "requerido")
	}
	if v.NombreCliente == "" {
		malo("nombre_cliente", "requerido")
	}
	if v.Canal == "" {
		v.Canal = model.CanalManual
	}
	if !v.Canal.Valido() {
		malo("canal", "canal desconocido")
	}
	if !v.Marca.Valida() {
		malo("marca", "marca desconocida")
	}
	if v.Tipo == "" {
		v.Tipo = model.TipoInmediato
	}
	if !v.Tipo.Valido() {
		malo("tipo", "tipo desconocido")
	}
	if v.EstadoEntrega == "" {
		v.EstadoEntrega = v.Canal.EstadoInicial()
	}
	if !v.EstadoEntrega.Valido() {
		malo("estado_entrega", "estado desconocido")
	}

	fecha, err := f.fecha("fecha", s.loc)
	switch {
	case err != nil:
		malo("fecha", err.Error())
	case fecha == nil:
		hoy, _ := hoyEn(s.ahora(), s.loc)
		v.Fecha = hoy
	default:
		v.Fecha = *fecha
	}
	if c := f.texto("cantidad"); c != "" {
		n, err := strconv.Atoi(strings.TrimSuffix(c, ".0"))
		if err != nil || n < 1 {
			malo("cantidad", "debe ser un entero positivo")
		} else {
			v.Cantidad = n
		}
	}
	precio, err := f.decimal("precio_unitario_usd")
	if err != nil {
		malo("precio_unitario_usd", err.Error())
	}
	total, err := f.decimal("total_usd")
	if err != nil {
		malo("total_usd", err.Error())
	}
	if total == nil && precio == nil {
		malo("total_usd", "se requiere total o precio unitario")
	}
	if precio != nil {
		v.PrecioUnitarioUsd = *precio
	}
	if total != nil {
		v.TotalUsd = *total
	} else {
		v.TotalUsd = v.PrecioUnitarioUsd.Mul(decimal.NewFromInt(int64(v.Cantidad)))
	}
	if precio == nil && v.Cantidad > 0 {
		v.PrecioUnitarioUsd = v.TotalUsd.Div(decimal.NewFromInt(int64(v.Cantidad))).Round(2)
	}
	if v.TotalUsd.IsNegative() {
		malo("total_usd", "no puede ser negativo")
	}
	pago, err := f.decimal("pago_inicial_usd")
	if err != nil {
		malo("pago_inicial_usd", err.Error())
	} else if pago != nil && pago.IsPositive() {
		v.PagoInicialUsd = pago
		fp := v.Fecha
		v.FechaPagoInicial = &fp
	}
	return v, len(errores) == antes
}

// ── Egresos ──────────────────────────────────────────────────────────────────

// ImportarEgresos only appends. Expenses carry no natural key to match on.
func (s *importacionService) ImportarEgresos(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error) {
	filas, err := leerHoja(r)
	if err != nil {
		return nil, err
	}
	creado := s.ahora()
	errores := map[string]string{}
	egresos := make([]model.Egreso, 0, len(filas))
	for i, f := range filas {
		if e, ok := s.filaEgreso(f, i+2, errores); ok {
			e.CreatedAt = creado
			egresos = append(egresos, e)
		}
	}
	if len(errores) > 0 {
		return nil, &apierror.ErrValidacion{Campos: errores}
	}

	ids := make([]uuid.UUID, len(egresos))
	for i := range egresos {
		ids[i] = egresos[i].ID
	}
	snap := &model.SnapshotImportacion{ID: uuid.New(), Entidad: entidadEgresos, Modo: ModoAditivo, CreatedAt: creado}
	err = runTx(ctx, s.egresos.DB(), func(tx *gorm.DB) error {
		if err := s.egresos.CreateBatch(ctx, tx, egresos); err != nil {
			return err
		}
		if err := llenarSnapshot(snap, nil, ids); err != nil {
			return err
		}
		return s.snapshots.Create(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int("insertadas", len(egresos)).Msg("importacion de egresos completa")
	return &dto.ImportacionResponse{
		SnapshotID: snap.ID.String(),
		Entidad:    entidadEgresos,
		Modo:       ModoAditivo,
		Insertadas: len(egresos),
	}, nil
}

func (s *importacionService) filaEgreso(f fila, n int, errores map[string]string) (model.Egreso, bool) {
	malo := func(col, msg string) { errores[fmt.Sprintf("fila %d.%s", n, col)] = msg }
	antes := len(errores)

	e := model.Egreso{
		ID:                 uuid.New(),
		Descripcion:        f.texto("descripcion"),
		Beneficiario:       f.texto("beneficiario"),
		Moneda:             strings.ToUpper(f.texto("moneda")),
		Tipo:               f.texto("tipo"),
		Categoria:          f.texto("categoria"),
		MetodoPago:         f.texto("metodo_pago"),
		Banco:              f.texto("banco"),
		Referencia:         f.texto("referencia"),
		Estado:             model.EstadoEgreso(strings.ToLower(f.texto("estado"))),
		EstadoVerificacion: model.VerificacionPendiente,
	}
	if e.Descripcion == "" {
		malo("descripcion", "requerida")
	}
	if e.Tipo == "" {
		malo("tipo", "requerido")
	}
	if e.Moneda == "" {
		e.Moneda = "USD"
	}
	if len(e.Moneda) != 3 {
		malo("moneda", "codigo de 3 letras")
	}
	if e.Estado == "" {
		e.Estado = model.EgresoRegistrado
	}
	if !e.Estado.Valido() {
		malo("estado", "estado desconocido")
	}
	if m := model.Marca(f.texto("marca")); m != "" {
		if !m.Valida() {
			malo("marca", "marca desconocida")
		}
		e.Marca = &m
	}

	fecha, err := f.fecha("fecha", s.loc)
	switch {
	case err != nil:
		malo("fecha", err.Error())
	case fecha == nil:
		malo("fecha", "requerida")
	default:
		e.Fecha = *fecha
	}
	compromiso, err := f.fecha("fecha_compromiso", s.loc)
	switch {
	case err != nil:
		malo("fecha_compromiso", err.Error())
	case compromiso == nil:
		e.FechaCompromiso = e.Fecha
	default:
		e.FechaCompromiso = *compromiso
	}
	monto, err := f.decimal("monto")
	switch {
	case err != nil:
		malo("monto", err.Error())
	case monto == nil || !monto.IsPositive():
		malo("monto", "debe ser mayor que cero")
	default:
		e.Monto = *monto
	}
	if e.Estado == model.EgresoPagado {
		fp := e.FechaCompromiso
		e.FechaPago = &fp
	}
	return e, len(errores) == antes
}

// ── Deshacer ─────────────────────────────────────────────────────────────────

// Deshacer reverts the most recent import: rows it inserted are deleted and
// rows a replace import removed are restored with their original IDs.
func (s *importacionService) Deshacer(ctx context.Context) (*dto.DeshacerResponse, error) {
	var resp dto.DeshacerResponse
	err := runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		snap, err := s.snapshots.Ultimo(ctx, tx)
		if err != nil {
			return err
		}
		var ids []uuid.UUID
		if len(snap.IDsInsertados) > 0 {
			if err := json.Unmarshal(snap.IDsInsertados, &ids); err != nil {
				return fmt.Errorf("snapshot %s: ids: %w", snap.ID, err)
			}
		}
		resp.SnapshotID = snap.ID.String()
		resp.Entidad = snap.Entidad

		switch snap.Entidad {
		case entidadVentas:
			n, err := s.ventas.DeleteByIDs(ctx, tx, ids)
			if err != nil {
				return err
			}
			resp.Eliminadas = int(n)
			var restaurar []model.Venta
			if len(snap.FilasEliminadas) > 0 {
				if err := json.Unmarshal(snap.FilasEliminadas, &restaurar); err != nil {
					return fmt.Errorf("snapshot %s: filas: %w", snap.ID, err)
				}
			}
			if err := s.ventas.Restaurar(ctx, tx, restaurar); err != nil {
				return err
			}
			resp.Restauradas = len(restaurar)
		case entidadEgresos:
			n, err := s.egresos.DeleteByIDs(ctx, tx, ids)
			if err != nil {
				return err
			}
			resp.Eliminadas = int(n)
		default:
			return fmt.Errorf("snapshot %s: entidad %q desconocida", snap.ID, snap.Entidad)
		}
		return s.snapshots.MarcarDeshecho(ctx, tx, snap.ID)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("snapshot", resp.SnapshotID).Int("eliminadas", resp.Eliminadas).Int("restauradas", resp.Restauradas).
		Msg("importacion deshecha")
	return &resp, nil
}

func llenarSnapshot(snap *model.SnapshotImportacion, eliminadas []model.Venta, ids []uuid.UUID) error {
	if eliminadas == nil {
		eliminadas = []model.Venta{}
	}
	filas, err := json.Marshal(eliminadas)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	snap.FilasEliminadas = datatypes.JSON(filas)
	snap.IDsInsertados = datatypes.JSON(raw)
	return nil
}

// ── Exportar ─────────────────────────────────────────────────────────────────

func (s *importacionService) ExportarVentas(ctx context.Context, filter dto.VentaFilter) ([]byte, error) {
	ventas, err := s.ventas.Exportar(ctx, filter)
	if err != nil {
		return nil, err
	}
	filas := make([][]any, len(ventas))
	for i := range ventas {
		v := &ventas[i]
		pago := ""
		if v.PagoInicialUsd != nil {
			pago = v.PagoInicialUsd.StringFixed(2)
		}
		filas[i] = []any{
			v.Orden, formatFecha(v.Fecha, s.loc), string(v.Canal), string(v.Marca), string(v.Tipo),
			v.NombreCliente, v.Cedula, v.Telefono, v.EmailCliente, v.Producto, v.SKU, v.Cantidad,
			v.PrecioUnitarioUsd.InexactFloat64(), v.TotalUsd.InexactFloat64(), string(v.EstadoEntrega),
			v.Facturacion.Direccion, v.Facturacion.Ciudad, v.Facturacion.Estado,
			pago, v.MetodoPagoInicial, v.BancoPagoInicial, v.ReferenciaPagoInicial, v.Notas,
		}
	}
	return escribirHoja("Ventas", columnasVentas, filas)
}

func (s *importacionService) ExportarEgresos(ctx context.Context, filter dto.EgresoFilter) ([]byte, error) {
	egresos, err := s.egresos.Exportar(ctx, filter)
	if err != nil {
		return nil, err
	}
	filas := make([][]any, len(egresos))
	for i := range egresos {
		e := &egresos[i]
		marca := ""
		if e.Marca != nil {
			marca = string(*e.Marca)
		}
		filas[i] = []any{
			formatFecha(e.Fecha, s.loc), formatFecha(e.FechaCompromiso, s.loc), e.Descripcion,
			e.Beneficiario, e.Monto.InexactFloat64(), e.Moneda, e.Tipo, e.Categoria, marca,
			e.MetodoPago, e.Banco, e.Referencia, string(e.Estado),
		}
	}
	return escribirHoja("Egresos", columnasEgresos, filas)
}

// ── xlsx helpers ─────────────────────────────────────────────────────────────

// fila maps normalized header names to one row's cell values.
type fila map[string]string

func (f fila) texto(col string) string { return strings.TrimSpace(f[col]) }

// fecha accepts YYYY-MM-DD text or an Excel serial date.
func (f fila) fecha(col string, loc *time.Location) (*time.Time, error) {
	s := f.texto(col)
	if s == "" {
		return nil, nil
	}
	if len(s) >= 10 {
		if t, err := time.ParseInLocation(formatoFecha, s[:10], loc); err == nil {
			return &t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("fecha %q invalida, use AAAA-MM-DD", s)
}

func (f fila) decimal(col string) (*decimal.Decimal, error) {
	s := strings.TrimPrefix(f.texto(col), "$")
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("importe %q invalido", s)
	}
	return &d, nil
}

func normalizarEncabezado(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// leerHoja reads the first sheet: a header row followed by data rows. Blank
// rows are skipped.
func leerHoja(r io.Reader) ([]fila, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierror.Validacion("archivo", "no es un archivo xlsx valido")
	}
	defer f.Close()

	hojas := f.GetSheetList()
	if len(hojas) == 0 {
		return nil, apierror.Validacion("archivo", "el libro no tiene hojas")
	}
	rows, err := f.GetRows(hojas[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apierror.Validacion("archivo", err.Error())
	}
	if len(rows) < 2 {
		return nil, apierror.Validacion("archivo", "la hoja no tiene filas de datos")
	}

	encabezados := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		encabezados[i] = normalizarEncabezado(h)
	}
	var filas []fila
	for _, row := range rows[1:] {
		actual := fila{}
		vacia := true
		for i, cell := range row {
			if i >= len(encabezados) || encabezados[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) != "" {
				vacia = false
			}
			actual[encabezados[i]] = cell
		}
		if !vacia {
			filas = append(filas, actual)
		}
	}
	if len(filas) == 0 {
		return nil, apierror.Validacion("archivo", "la hoja no tiene filas de datos")
	}
	return filas, nil
}

func escribirHoja(nombre string, columnas []string, filas [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", nombre); err != nil {
		return nil, err
	}
	encabezado := make([]any, len(columnas))
	for i, c := range columnas {
		encabezado[i] = c
	}
	if err := f.SetSheetRow(nombre, "A1", &encabezado); err != nil {
		return nil, err
	}
	negrita, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	ultima, err := excelize.CoordinatesToCellName(len(columnas), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(nombre, "A1", ultima, negrita); err != nil {
		return nil, err
	}
	for i := range filas {
		celda, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(nombre, celda, &filas[i]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
