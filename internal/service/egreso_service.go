package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/model"
	"colchones/internal/recurrencia"
	"colchones/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type EgresoService interface {
	Crear(ctx context.Context, req dto.CrearEgresoRequest) (*dto.EgresoResponse, error)
	Listar(ctx context.Context, filter dto.EgresoFilter) (*dto.EgresoListResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.EgresoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEgresoRequest) (*dto.EgresoResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, req dto.CambiarEstadoEgresoRequest) (*dto.EgresoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	GenerarRecurrencias(ctx context.Context) (int, error)
}

type egresoService struct {
	repo  repository.EgresoRepository
	loc   *time.Location
	ahora func() time.Time
}

func NewEgresoService(repo repository.EgresoRepository, loc *time.Location) EgresoService {
	if loc == nil {
		loc = time.UTC
	}
	return &egresoService{repo: repo, loc: loc, ahora: time.Now}
}

func (s *egresoService) Crear(ctx context.Context, req dto.CrearEgresoRequest) (*dto.EgresoResponse, error) {
	fecha, err := parseFecha("fecha", req.Fecha, s.loc)
	if err != nil {
		return nil, err
	}
	compromiso := fecha
	if req.FechaCompromiso != "" {
		if compromiso, err = parseFecha("fecha_compromiso", req.FechaCompromiso, s.loc); err != nil {
			return nil, err
		}
	}
	if !req.Monto.IsPositive() {
		return nil, apierror.Validacion("monto", "debe ser mayor a cero")
	}
	moneda := req.Moneda
	if moneda == "" {
		moneda = "USD"
	}

	e := model.Egreso{
		ID:                 uuid.New(),
		Fecha:              fecha,
		FechaCompromiso:    compromiso,
		Descripcion:        strings.TrimSpace(req.Descripcion),
		Beneficiario:       strings.TrimSpace(req.Beneficiario),
		Monto:              req.Monto,
		Moneda:             moneda,
		Tipo:               req.Tipo,
		Categoria:          req.Categoria,
		MetodoPago:         req.MetodoPago,
		Banco:              req.Banco,
		Referencia:         req.Referencia,
		Estado:             model.EgresoRegistrado,
		EstadoVerificacion: model.VerificacionPendiente,
	}
	if req.Marca != nil && *req.Marca != "" {
		m := model.Marca(*req.Marca)
		if !m.Valida() {
			return nil, apierror.Validacion("marca", "marca desconocida")
		}
		e.Marca = &m
	}

	if req.EsRecurrente {
		if req.Frecuencia == nil || req.NumeroRepeticiones == nil {
			return nil, &apierror.ErrValidacion{Campos: map[string]string{
				"frecuencia":          "requerida para un egreso recurrente",
				"numero_repeticiones": "requerido para un egreso recurrente",
			}}
		}
		f := model.Frecuencia(*req.Frecuencia)
		n := *req.NumeroRepeticiones
		// Validates the frequency and count against the whole series up front.
		if _, err := recurrencia.Serie(compromiso, f, n); err != nil {
			return nil, apierror.Validacion("frecuencia", err.Error())
		}
		serie := uuid.New()
		uno := 1
		e.EsRecurrente = true
		e.FrecuenciaRecurrencia = &f
		e.SerieRecurrenciaID = &serie
		e.NumeroEnSerie = &uno
		e.NumeroRepeticiones = &n
	}

	if err := s.repo.Create(ctx, nil, &e); err != nil {
		return nil, err
	}
	resp := egresoToResponse(&e, s.loc)
	return &resp, nil
}

func (s *egresoService) Listar(ctx context.Context, filter dto.EgresoFilter) (*dto.EgresoListResponse, error) {
	egresos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EgresoResponse, len(egresos))
	for i := range egresos {
		data[i] = egresoToResponse(&egresos[i], s.loc)
	}
	return &dto.EgresoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *egresoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.EgresoResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := egresoToResponse(e, s.loc)
	return &resp, nil
}

func (s *egresoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEgresoRequest) (*dto.EgresoResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Fecha != nil {
		if e.Fecha, err = parseFecha("fecha", *req.Fecha, s.loc); err != nil {
			return nil, err
		}
	}
	if req.FechaCompromiso != nil {
		fc, err := parseFecha("fecha_compromiso", *req.FechaCompromiso, s.loc)
		if err != nil {
			return nil, err
		}
		// Series occurrences keep the date the generator gave them.
		if e.SerieRecurrenciaID != nil && !fc.Equal(e.FechaCompromiso) {
			return nil, apierror.Validacion("fecha_compromiso", "no se puede cambiar en una ocurrencia de una serie recurrente")
		}
		e.FechaCompromiso = fc
	}
	if req.Descripcion != nil {
		e.Descripcion = strings.TrimSpace(*req.Descripcion)
	}
	if req.Beneficiario != nil {
		e.Beneficiario = strings.TrimSpace(*req.Beneficiario)
	}
	if req.Monto != nil {
		if !req.Monto.IsPositive() {
			return nil, apierror.Validacion("monto", "debe ser mayor a cero")
		}
		e.Monto = *req.Monto
	}
	if req.Moneda != nil {
		e.Moneda = *req.Moneda
	}
	if req.Tipo != nil {
		e.Tipo = *req.Tipo
	}
	if req.Categoria != nil {
		e.Categoria = *req.Categoria
	}
	if req.MetodoPago != nil {
		e.MetodoPago = *req.MetodoPago
	}
	if req.Banco != nil {
		e.Banco = *req.Banco
	}
	if req.Referencia != nil {
		e.Referencia = *req.Referencia
	}
	if err := s.repo.Update(ctx, nil, e); err != nil {
		return nil, err
	}
	resp := egresoToResponse(e, s.loc)
	return &resp, nil
}

func (s *egresoService) CambiarEstado(ctx context.Context, id uuid.UUID, req dto.CambiarEstadoEgresoRequest) (*dto.EgresoResponse, error) {
	destino := model.EstadoEgreso(req.Estado)
	if !destino.Valido() {
		return nil, apierror.Validacion("estado", "estado desconocido")
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Estado != destino {
		if !e.Estado.PuedeTransicionarA(destino) {
			return nil, apierror.Transicion(string(e.Estado), string(destino))
		}
		if destino == model.EgresoPagado {
			fecha, _ := hoyEn(s.ahora(), s.loc)
			if req.FechaPago != "" {
				if fecha, err = parseFecha("fecha_pago", req.FechaPago, s.loc); err != nil {
					return nil, err
				}
			}
			e.FechaPago = &fecha
		}
		e.Estado = destino
		if err := s.repo.Update(ctx, nil, e); err != nil {
			return nil, err
		}
	}
	resp := egresoToResponse(e, s.loc)
	return &resp, nil
}

func (s *egresoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ── GenerarRecurrencias ──────────────────────────────────────────────────────
// Daily job. For every open series whose latest occurrence is due (on or
// before today) it creates the following occurrences until one falls in the
// future or the repetition count is reached, so missed runs catch up.
// Dates always step from occurrence 1 to avoid month-end drift.

func (s *egresoService) GenerarRecurrencias(ctx context.Context) (int, error) {
	ultimas, err := s.repo.UltimasDeCadaSerie(ctx)
	if err != nil {
		return 0, err
	}
	_, manana := hoyEn(s.ahora(), s.loc)

	total := 0
	var fallos []error
	for i := range ultimas {
		ultima := &ultimas[i]
		if !ultima.SerieAbierta() || !ultima.FechaCompromiso.Before(manana) {
			continue
		}
		n, err := s.continuarSerie(ctx, ultima, manana)
		if err != nil {
			log.Error().Err(err).Str("serie", ultima.SerieRecurrenciaID.String()).Msg("recurrencias: serie no generada")
			fallos = append(fallos, err)
			continue
		}
		total += n
	}
	if total > 0 {
		log.Info().Int("ocurrencias", total).Msg("recurrencias generadas")
	}
	return total, errors.Join(fallos...)
}

func (s *egresoService) continuarSerie(ctx context.Context, ultima *model.Egreso, manana time.Time) (int, error) {
	primera := ultima
	if *ultima.NumeroEnSerie != 1 {
		p, err := s.repo.FindOcurrencia(ctx, *ultima.SerieRecurrenciaID, 1)
		if err != nil {
			return 0, err
		}
		primera = p
	}

	var nuevas []model.Egreso
	previa := ultima.FechaCompromiso
	for k := *ultima.NumeroEnSerie + 1; k <= *ultima.NumeroRepeticiones && previa.Before(manana); k++ {
		fecha, err := recurrencia.Fecha(primera.FechaCompromiso, *ultima.FrecuenciaRecurrencia, k)
		if err != nil {
			return 0, err
		}
		nuevas = append(nuevas, nuevaOcurrencia(ultima, fecha, k))
		previa = fecha
	}
	if len(nuevas) == 0 {
		return 0, nil
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateBatch(ctx, tx, nuevas)
	})
	if errors.Is(err, apierror.ErrConflicto) {
		// Already generated by a concurrent run.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(nuevas), nil
}

// nuevaOcurrencia copies the financial and classification fields; payment and
// verification start over.
func nuevaOcurrencia(base *model.Egreso, fecha time.Time, numero int) model.Egreso {
	num := numero
	return model.Egreso{
		ID:                    uuid.New(),
		Fecha:                 fecha,
		FechaCompromiso:       fecha,
		Descripcion:           base.Descripcion,
		Beneficiario:          base.Beneficiario,
		Monto:                 base.Monto,
		Moneda:                base.Moneda,
		Tipo:                  base.Tipo,
		Categoria:             base.Categoria,
		Marca:                 base.Marca,
		MetodoPago:            base.MetodoPago,
		Banco:                 base.Banco,
		Estado:                model.EgresoRegistrado,
		EstadoVerificacion:    model.VerificacionPendiente,
		EsRecurrente:          true,
		FrecuenciaRecurrencia: base.FrecuenciaRecurrencia,
		SerieRecurrenciaID:    base.SerieRecurrenciaID,
		NumeroEnSerie:         &num,
		NumeroRepeticiones:    base.NumeroRepeticiones,
	}
}
