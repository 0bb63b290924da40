package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/infra"
	"colchones/internal/model"
	"colchones/internal/repository"
	"colchones/internal/seguimiento"

	"github.com/google/uuid"
)

type ProspectoService interface {
	Crear(ctx context.Context, req dto.CrearProspectoRequest) (*dto.ProspectoResponse, error)
	Listar(ctx context.Context, filter dto.ProspectoFilter) (*dto.ProspectoListResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProspectoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProspectoRequest) (*dto.ProspectoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type prospectoService struct {
	repo   repository.ProspectoRepository
	config repository.ConfiguracionRepository
	loc    *time.Location
	region string
	ahora  func() time.Time
}

func NewProspectoService(repo repository.ProspectoRepository, config repository.ConfiguracionRepository, loc *time.Location, region string) ProspectoService {
	if loc == nil {
		loc = time.UTC
	}
	return &prospectoService{repo: repo, config: config, loc: loc, region: region, ahora: time.Now}
}

func (s *prospectoService) Crear(ctx context.Context, req dto.CrearProspectoRequest) (*dto.ProspectoResponse, error) {
	marca := model.Marca(req.Marca)
	if !marca.Valida() {
		return nil, apierror.Validacion("marca", "marca desconocida")
	}
	creacion, _ := hoyEn(s.ahora(), s.loc)
	if req.FechaCreacion != "" {
		f, err := parseFecha("fecha_creacion", req.FechaCreacion, s.loc)
		if err != nil {
			return nil, err
		}
		creacion = f
	}
	asesorID, err := parseUUIDOpcional("asesor_id", req.AsesorID)
	if err != nil {
		return nil, err
	}
	tel, err := infra.NormalizarTelefono(req.Telefono, s.region)
	if err != nil {
		return nil, apierror.Validacion("telefono", err.Error())
	}

	p := model.Prospecto{
		ID:              uuid.New(),
		Nombre:          strings.TrimSpace(req.Nombre),
		Telefono:        tel,
		Email:           strings.TrimSpace(req.Email),
		Canal:           req.Canal,
		Marca:           marca,
		ProductoInteres: req.ProductoInteres,
		AsesorID:        asesorID,
		FechaCreacion:   creacion,
		Estado:          model.ProspectoNuevo,
		Notas:           req.Notas,
	}
	editadas := [3]*string{req.FechaSeguimiento1, req.FechaSeguimiento2, req.FechaSeguimiento3}
	if err := s.aplicarFechas(&p, editadas); err != nil {
		return nil, err
	}
	s.completarSeguimiento(ctx, &p)

	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	resp := prospectoToResponse(&p, s.loc)
	return &resp, nil
}

func (s *prospectoService) Listar(ctx context.Context, filter dto.ProspectoFilter) (*dto.ProspectoListResponse, error) {
	if filter.Estado != "" && !model.EstadoProspecto(filter.Estado).Valido() {
		return nil, apierror.Validacion("estado", "estado desconocido")
	}
	ps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProspectoResponse, len(ps))
	for i := range ps {
		data[i] = prospectoToResponse(&ps[i], s.loc)
	}
	return &dto.ProspectoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *prospectoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProspectoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := prospectoToResponse(p, s.loc)
	return &resp, nil
}

func (s *prospectoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProspectoRequest) (*dto.ProspectoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Telefono != nil {
		tel, err := infra.NormalizarTelefono(*req.Telefono, s.region)
		if err != nil {
			return nil, apierror.Validacion("telefono", err.Error())
		}
		p.Telefono = tel
	}
	if req.Email != nil {
		p.Email = strings.TrimSpace(*req.Email)
	}
	if req.Canal != nil {
		p.Canal = *req.Canal
	}
	if req.ProductoInteres != nil {
		p.ProductoInteres = *req.ProductoInteres
	}
	if req.AsesorID != nil {
		a, err := parseUUIDOpcional("asesor_id", req.AsesorID)
		if err != nil {
			return nil, err
		}
		p.AsesorID = a
		p.Asesor = nil
	}
	if req.Estado != nil {
		e := model.EstadoProspecto(*req.Estado)
		if !e.Valido() {
			return nil, apierror.Validacion("estado", "estado desconocido")
		}
		p.Estado = e
	}
	if req.RespuestaSeguimiento1 != nil {
		p.RespuestaSeguimiento1 = *req.RespuestaSeguimiento1
	}
	if req.RespuestaSeguimiento2 != nil {
		p.RespuestaSeguimiento2 = *req.RespuestaSeguimiento2
	}
	if req.RespuestaSeguimiento3 != nil {
		p.RespuestaSeguimiento3 = *req.RespuestaSeguimiento3
	}
	if req.Notas != nil {
		p.Notas = *req.Notas
	}
	editadas := [3]*string{req.FechaSeguimiento1, req.FechaSeguimiento2, req.FechaSeguimiento3}
	if err := s.aplicarFechas(p, editadas); err != nil {
		return nil, err
	}
	s.completarSeguimiento(ctx, p)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := prospectoToResponse(p, s.loc)
	return &resp, nil
}

func (s *prospectoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// aplicarFechas writes explicitly sent follow-up dates. An empty string clears
// the phase so the cascade derives it again.
func (s *prospectoService) aplicarFechas(p *model.Prospecto, editadas [3]*string) error {
	destino := [3]**time.Time{&p.FechaSeguimiento1, &p.FechaSeguimiento2, &p.FechaSeguimiento3}
	for i, e := range editadas {
		if e == nil {
			continue
		}
		f, err := parseFechaOpcional(fmt.Sprintf("fecha_seguimiento_%d", i+1), e, s.loc)
		if err != nil {
			return err
		}
		*destino[i] = f
	}
	return nil
}

func (s *prospectoService) completarSeguimiento(ctx context.Context, p *model.Prospecto) {
	guardadas := [3]*time.Time{p.FechaSeguimiento1, p.FechaSeguimiento2, p.FechaSeguimiento3}
	f := seguimiento.DesdePersistido(p.FechaCreacion, diasSeguimiento(ctx, s.config), guardadas).Punteros()
	p.FechaSeguimiento1, p.FechaSeguimiento2, p.FechaSeguimiento3 = f[0], f[1], f[2]
}
