package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/infra"
	"colchones/internal/model"
	"colchones/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Shared fixtures ───────────────────────────────────────────────────────────

var caracas = func() *time.Location {
	loc, err := time.LoadLocation("America/Caracas")
	if err != nil {
		return time.FixedZone("VET", -4*3600)
	}
	return loc
}()

// reloj returns a fixed clock at 10:00 local time on the given day.
func reloj(y int, m time.Month, d int) func() time.Time {
	t := time.Date(y, m, d, 10, 0, 0, 0, caracas)
	return func() time.Time { return t }
}

func dia(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, caracas)
}

func ptr[T any](v T) *T { return &v }

// ── Ventas ────────────────────────────────────────────────────────────────────

// stubVentaRepo is an in-memory VentaRepository. Reads hand out copies so the
// service has to write back through Update like it does against Postgres.
type stubVentaRepo struct {
	ventas    map[uuid.UUID]model.Venta
	seq       int64
	updates   int
	createErr error
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]model.Venta)}
}

func (r *stubVentaRepo) seed(vs ...model.Venta) {
	for _, v := range vs {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		r.ventas[v.ID] = v
	}
}

func (r *stubVentaRepo) CreateLineas(_ context.Context, _ *gorm.DB, lineas []model.Venta) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, v := range lineas {
		if v.ExternalID != nil {
			for _, x := range r.ventas {
				if x.ExternalID != nil && *x.ExternalID == *v.ExternalID {
					return fmt.Errorf("external_id: %w", apierror.ErrConflicto)
				}
			}
		}
	}
	for _, v := range lineas {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		r.ventas[v.ID] = v
	}
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, apierror.NoEncontrado("venta", id)
	}
	return &v, nil
}

func (r *stubVentaRepo) FindByOrden(ctx context.Context, orden string) ([]model.Venta, error) {
	return r.FindByOrdenTx(ctx, nil, orden)
}

func (r *stubVentaRepo) FindByOrdenTx(_ context.Context, _ *gorm.DB, orden string) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.Orden == orden {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *stubVentaRepo) FindByExternalID(_ context.Context, externalID string) (*model.Venta, error) {
	for _, v := range r.ventas {
		if v.ExternalID != nil && *v.ExternalID == externalID {
			return &v, nil
		}
	}
	return nil, apierror.NoEncontrado("venta", externalID)
}

func (r *stubVentaRepo) OrdenesExistentes(_ context.Context, ordenes []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, o := range ordenes {
		for _, v := range r.ventas {
			if v.Orden == o {
				out[o] = true
				break
			}
		}
	}
	return out, nil
}

func (r *stubVentaRepo) NextNumeroOrden(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubVentaRepo) Update(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if _, ok := r.ventas[v.ID]; !ok {
		return apierror.NoEncontrado("venta", v.ID)
	}
	r.updates++
	r.ventas[v.ID] = *v
	return nil
}

func (r *stubVentaRepo) UpdateEstadoLineas(_ context.Context, _ *gorm.DB, ids []uuid.UUID, estado model.EstadoEntrega) error {
	for _, id := range ids {
		v := r.ventas[id]
		v.EstadoEntrega = estado
		r.ventas[id] = v
	}
	return nil
}

func (r *stubVentaRepo) DeleteByOrdenes(_ context.Context, _ *gorm.DB, ordenes []string) ([]model.Venta, error) {
	set := map[string]bool{}
	for _, o := range ordenes {
		set[o] = true
	}
	var out []model.Venta
	for id, v := range r.ventas {
		if set[v.Orden] {
			out = append(out, v)
			delete(r.ventas, id)
		}
	}
	return out, nil
}

func (r *stubVentaRepo) DeleteByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.ventas[id]; ok {
			delete(r.ventas, id)
			n++
		}
	}
	return n, nil
}

func (r *stubVentaRepo) Restaurar(_ context.Context, _ *gorm.DB, lineas []model.Venta) error {
	for _, v := range lineas {
		r.ventas[v.ID] = v
	}
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) Exportar(_ context.Context, _ dto.VentaFilter) ([]model.Venta, error) {
	out, _, err := r.List(context.Background(), dto.VentaFilter{})
	sort.Slice(out, func(i, j int) bool { return out[i].Orden < out[j].Orden })
	return out, err
}

func (r *stubVentaRepo) ListSeguimientoVence(_ context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.EstadoEntrega != model.EntregaPendiente {
			continue
		}
		for _, f := range []*time.Time{v.FechaSeguimiento1, v.FechaSeguimiento2, v.FechaSeguimiento3} {
			if f != nil && !f.Before(desde) && f.Before(hasta) {
				out = append(out, v)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) porOrden(orden string) []model.Venta {
	out, _ := r.FindByOrdenTx(context.Background(), nil, orden)
	return out
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Cuotas ────────────────────────────────────────────────────────────────────

type stubCuotaRepo struct {
	cuotas map[uuid.UUID]model.Cuota
}

func newStubCuotaRepo() *stubCuotaRepo {
	return &stubCuotaRepo{cuotas: make(map[uuid.UUID]model.Cuota)}
}

func (r *stubCuotaRepo) Create(_ context.Context, _ *gorm.DB, c *model.Cuota) error {
	for _, x := range r.cuotas {
		if x.VentaID == c.VentaID && x.NumeroCuota == c.NumeroCuota {
			return fmt.Errorf("cuota %d: %w", c.NumeroCuota, apierror.ErrConflicto)
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cuotas[c.ID] = *c
	return nil
}

func (r *stubCuotaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cuota, error) {
	c, ok := r.cuotas[id]
	if !ok {
		return nil, apierror.NoEncontrado("cuota", id)
	}
	return &c, nil
}

func (r *stubCuotaRepo) ListByOrden(ctx context.Context, orden string) ([]model.Cuota, error) {
	return r.ListByOrdenTx(ctx, nil, orden)
}

func (r *stubCuotaRepo) ListByOrdenTx(_ context.Context, _ *gorm.DB, orden string) ([]model.Cuota, error) {
	var out []model.Cuota
	for _, c := range r.cuotas {
		if c.Orden == orden {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroCuota < out[j].NumeroCuota })
	return out, nil
}

func (r *stubCuotaRepo) MaxNumero(_ context.Context, _ *gorm.DB, ventaID uuid.UUID) (int, error) {
	max := 0
	for _, c := range r.cuotas {
		if c.VentaID == ventaID && c.NumeroCuota > max {
			max = c.NumeroCuota
		}
	}
	return max, nil
}

func (r *stubCuotaRepo) Update(_ context.Context, _ *gorm.DB, c *model.Cuota) error {
	for id, x := range r.cuotas {
		if id != c.ID && x.VentaID == c.VentaID && x.NumeroCuota == c.NumeroCuota {
			return fmt.Errorf("cuota %d: %w", c.NumeroCuota, apierror.ErrConflicto)
		}
	}
	r.cuotas[c.ID] = *c
	return nil
}

func (r *stubCuotaRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.cuotas[id]; !ok {
		return apierror.NoEncontrado("cuota", id)
	}
	delete(r.cuotas, id)
	return nil
}

var _ repository.CuotaRepository = (*stubCuotaRepo)(nil)

// ── Configuracion ─────────────────────────────────────────────────────────────

type stubConfigRepo struct {
	seg    model.ConfiguracionSeguimiento
	cashea model.ConfiguracionCashea
	err    error
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{
		seg:    model.ConfiguracionSeguimiento{ID: 1, DiasFase1: 2, DiasFase2: 4, DiasFase3: 7},
		cashea: model.ConfiguracionCashea{ID: 1, Activo: true, IntervaloHoras: 4, DiasVentana: 3},
	}
}

func (r *stubConfigRepo) GetSeguimiento(_ context.Context) (*model.ConfiguracionSeguimiento, error) {
	if r.err != nil {
		return nil, r.err
	}
	c := r.seg
	return &c, nil
}

func (r *stubConfigRepo) SaveSeguimiento(_ context.Context, c *model.ConfiguracionSeguimiento) error {
	r.seg = *c
	return nil
}

func (r *stubConfigRepo) GetCashea(_ context.Context) (*model.ConfiguracionCashea, error) {
	if r.err != nil {
		return nil, r.err
	}
	c := r.cashea
	return &c, nil
}

func (r *stubConfigRepo) SaveCashea(_ context.Context, c *model.ConfiguracionCashea) error {
	r.cashea = *c
	return nil
}

var _ repository.ConfiguracionRepository = (*stubConfigRepo)(nil)

// ── Egresos ───────────────────────────────────────────────────────────────────

type stubEgresoRepo struct {
	egresos map[uuid.UUID]model.Egreso
}

func newStubEgresoRepo() *stubEgresoRepo {
	return &stubEgresoRepo{egresos: make(map[uuid.UUID]model.Egreso)}
}

func (r *stubEgresoRepo) Create(_ context.Context, _ *gorm.DB, e *model.Egreso) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.egresos[e.ID] = *e
	return nil
}

func (r *stubEgresoRepo) CreateBatch(ctx context.Context, tx *gorm.DB, egresos []model.Egreso) error {
	for _, e := range egresos {
		if e.SerieRecurrenciaID == nil || e.NumeroEnSerie == nil {
			continue
		}
		if _, err := r.FindOcurrencia(ctx, *e.SerieRecurrenciaID, *e.NumeroEnSerie); err == nil {
			return fmt.Errorf("serie: %w", apierror.ErrConflicto)
		}
	}
	for i := range egresos {
		if err := r.Create(ctx, tx, &egresos[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubEgresoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Egreso, error) {
	e, ok := r.egresos[id]
	if !ok {
		return nil, apierror.NoEncontrado("egreso", id)
	}
	return &e, nil
}

func (r *stubEgresoRepo) Update(_ context.Context, _ *gorm.DB, e *model.Egreso) error {
	r.egresos[e.ID] = *e
	return nil
}

func (r *stubEgresoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.egresos[id]; !ok {
		return apierror.NoEncontrado("egreso", id)
	}
	delete(r.egresos, id)
	return nil
}

func (r *stubEgresoRepo) DeleteByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.egresos[id]; ok {
			delete(r.egresos, id)
			n++
		}
	}
	return n, nil
}

func (r *stubEgresoRepo) List(_ context.Context, _ dto.EgresoFilter) ([]model.Egreso, int64, error) {
	var out []model.Egreso
	for _, e := range r.egresos {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaCompromiso.Before(out[j].FechaCompromiso) })
	return out, int64(len(out)), nil
}

func (r *stubEgresoRepo) Exportar(ctx context.Context, f dto.EgresoFilter) ([]model.Egreso, error) {
	out, _, err := r.List(ctx, f)
	return out, err
}

func (r *stubEgresoRepo) UltimasDeCadaSerie(_ context.Context) ([]model.Egreso, error) {
	ultimas := map[uuid.UUID]model.Egreso{}
	for _, e := range r.egresos {
		if e.SerieRecurrenciaID == nil || e.NumeroEnSerie == nil {
			continue
		}
		u, ok := ultimas[*e.SerieRecurrenciaID]
		if !ok || *e.NumeroEnSerie > *u.NumeroEnSerie {
			ultimas[*e.SerieRecurrenciaID] = e
		}
	}
	out := make([]model.Egreso, 0, len(ultimas))
	for _, e := range ultimas {
		out = append(out, e)
	}
	return out, nil
}

func (r *stubEgresoRepo) FindOcurrencia(_ context.Context, serieID uuid.UUID, numero int) (*model.Egreso, error) {
	for _, e := range r.egresos {
		if e.SerieRecurrenciaID != nil && e.NumeroEnSerie != nil && *e.SerieRecurrenciaID == serieID && *e.NumeroEnSerie == numero {
			return &e, nil
		}
	}
	return nil, apierror.NoEncontrado("ocurrencia", numero)
}

func (r *stubEgresoRepo) DB() *gorm.DB { return nil }

func (r *stubEgresoRepo) serie(id uuid.UUID) []model.Egreso {
	var out []model.Egreso
	for _, e := range r.egresos {
		if e.SerieRecurrenciaID != nil && *e.SerieRecurrenciaID == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].NumeroEnSerie < *out[j].NumeroEnSerie })
	return out
}

var _ repository.EgresoRepository = (*stubEgresoRepo)(nil)

// ── Prospectos ────────────────────────────────────────────────────────────────

type stubProspectoRepo struct {
	prospectos map[uuid.UUID]model.Prospecto
}

func newStubProspectoRepo() *stubProspectoRepo {
	return &stubProspectoRepo{prospectos: make(map[uuid.UUID]model.Prospecto)}
}

func (r *stubProspectoRepo) Create(_ context.Context, p *model.Prospecto) error {
	r.prospectos[p.ID] = *p
	return nil
}

func (r *stubProspectoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Prospecto, error) {
	p, ok := r.prospectos[id]
	if !ok {
		return nil, apierror.NoEncontrado("prospecto", id)
	}
	return &p, nil
}

func (r *stubProspectoRepo) Update(_ context.Context, p *model.Prospecto) error {
	r.prospectos[p.ID] = *p
	return nil
}

func (r *stubProspectoRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.prospectos[id]; !ok {
		return apierror.NoEncontrado("prospecto", id)
	}
	delete(r.prospectos, id)
	return nil
}

func (r *stubProspectoRepo) List(_ context.Context, _ dto.ProspectoFilter) ([]model.Prospecto, int64, error) {
	var out []model.Prospecto
	for _, p := range r.prospectos {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProspectoRepo) ListSeguimientoVence(_ context.Context, desde, hasta time.Time) ([]model.Prospecto, error) {
	var out []model.Prospecto
	for _, p := range r.prospectos {
		for _, f := range []*time.Time{p.FechaSeguimiento1, p.FechaSeguimiento2, p.FechaSeguimiento3} {
			if f != nil && !f.Before(desde) && f.Before(hasta) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

var _ repository.ProspectoRepository = (*stubProspectoRepo)(nil)

// ── Verificacion ──────────────────────────────────────────────────────────────

type stubVerificacionRepo struct {
	estados map[string]model.EstadoVerificacion // key: tipo/id
	notas   map[string]string
}

func newStubVerificacionRepo() *stubVerificacionRepo {
	return &stubVerificacionRepo{
		estados: map[string]model.EstadoVerificacion{},
		notas:   map[string]string{},
	}
}

func (r *stubVerificacionRepo) List(_ context.Context, _ dto.VerificacionFilter) ([]dto.VerificacionItem, int64, error) {
	var out []dto.VerificacionItem
	for k, e := range r.estados {
		out = append(out, dto.VerificacionItem{ID: k, Estado: string(e)})
	}
	return out, int64(len(out)), nil
}

func (r *stubVerificacionRepo) EstadoActual(_ context.Context, _ *gorm.DB, tipo, id string) (model.EstadoVerificacion, error) {
	e, ok := r.estados[tipo+"/"+id]
	if !ok {
		return "", apierror.NoEncontrado(tipo, id)
	}
	return e, nil
}

func (r *stubVerificacionRepo) Actualizar(_ context.Context, _ *gorm.DB, tipo, id string, estado model.EstadoVerificacion, notas string, _ time.Time) error {
	r.estados[tipo+"/"+id] = estado
	r.notas[tipo+"/"+id] = notas
	return nil
}

func (r *stubVerificacionRepo) DB() *gorm.DB { return nil }

var _ repository.VerificacionRepository = (*stubVerificacionRepo)(nil)

// ── Snapshots ─────────────────────────────────────────────────────────────────

type stubSnapshotRepo struct {
	snaps []model.SnapshotImportacion
}

func (r *stubSnapshotRepo) Create(_ context.Context, _ *gorm.DB, s *model.SnapshotImportacion) error {
	r.snaps = append(r.snaps, *s)
	return nil
}

func (r *stubSnapshotRepo) Ultimo(_ context.Context, _ *gorm.DB) (*model.SnapshotImportacion, error) {
	if len(r.snaps) == 0 || r.snaps[len(r.snaps)-1].Deshecho {
		return nil, apierror.NoEncontrado("importacion", "ultima")
	}
	s := r.snaps[len(r.snaps)-1]
	return &s, nil
}

func (r *stubSnapshotRepo) MarcarDeshecho(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	for i := range r.snaps {
		if r.snaps[i].ID == id {
			r.snaps[i].Deshecho = true
			return nil
		}
	}
	return apierror.NoEncontrado("importacion", id)
}

var _ repository.SnapshotRepository = (*stubSnapshotRepo)(nil)

// ── Usuarios ──────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	for _, x := range r.users {
		if x.Username == u.Username {
			return apierror.ErrConflicto
		}
	}
	u.ID = uuid.New()
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Activo && (u.Username == username || (u.Email != nil && *u.Email == username)) {
			return u, nil
		}
	}
	return nil, apierror.NoEncontrado("usuario", username)
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apierror.NoEncontrado("usuario", id)
	}
	return u, nil
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.users[id].Activo = false
	return nil
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	r.users[id].Activo = true
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Outbound mail ─────────────────────────────────────────────────────────────

type correoEncolado struct {
	Marca  model.Marca
	Correo infra.Correo
}

type stubCola struct {
	mu      sync.Mutex
	correos []correoEncolado
	err     error
}

func (c *stubCola) EncolarCorreo(_ context.Context, marca model.Marca, correo infra.Correo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.correos = append(c.correos, correoEncolado{Marca: marca, Correo: correo})
	return nil
}

var _ ColaCorreo = (*stubCola)(nil)

// ── Cashea ────────────────────────────────────────────────────────────────────

type stubCashea struct {
	filas       []map[string]json.RawMessage
	err         error
	desde, hast time.Time
}

func (c *stubCashea) Ordenes(_ context.Context, desde, hasta time.Time) ([]map[string]json.RawMessage, error) {
	c.desde, c.hast = desde, hasta
	return c.filas, c.err
}

var _ FuenteCashea = (*stubCashea)(nil)

// filaCashea builds one provider row from plain Go values.
func filaCashea(campos map[string]any) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(campos))
	for k, v := range campos {
		raw, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		out[k] = raw
	}
	return out
}

// ── Scheduler ─────────────────────────────────────────────────────────────────

type stubEjecutor struct {
	ej  *model.EjecucionTarea
	err error
}

func (s *stubEjecutor) Ejecutar(_ context.Context, _ string) (*model.EjecucionTarea, error) {
	return s.ej, s.err
}

var _ EjecutorTareas = (*stubEjecutor)(nil)

var errBoom = errors.New("boom")

type stubEjecucionRepo struct {
	ejs []model.EjecucionTarea
}

func (r *stubEjecucionRepo) Create(_ context.Context, e *model.EjecucionTarea) error {
	r.ejs = append(r.ejs, *e)
	return nil
}

func (r *stubEjecucionRepo) Update(_ context.Context, e *model.EjecucionTarea) error {
	for i := range r.ejs {
		if r.ejs[i].ID == e.ID {
			r.ejs[i] = *e
		}
	}
	return nil
}

func (r *stubEjecucionRepo) List(_ context.Context, tarea string, limit int) ([]model.EjecucionTarea, error) {
	var out []model.EjecucionTarea
	for i := len(r.ejs) - 1; i >= 0 && len(out) < limit; i-- {
		if tarea == "" || r.ejs[i].Tarea == tarea {
			out = append(out, r.ejs[i])
		}
	}
	return out, nil
}

var _ repository.EjecucionRepository = (*stubEjecucionRepo)(nil)
