package service

import (
	"context"
	"strings"

	"colchones/internal/dto"
	"colchones/internal/model"
	"colchones/internal/repository"

	"github.com/rs/zerolog/log"
)

// ReprogramadorCashea applies a new poll schedule to the running scheduler.
type ReprogramadorCashea interface {
	ReprogramarCashea(activo bool, intervaloHoras int) error
}

type ConfiguracionService interface {
	ObtenerSeguimiento(ctx context.Context) (*dto.ConfiguracionSeguimientoResponse, error)
	GuardarSeguimiento(ctx context.Context, req dto.ConfiguracionSeguimientoRequest) (*dto.ConfiguracionSeguimientoResponse, error)
	ObtenerCashea(ctx context.Context) (*dto.ConfiguracionCasheaResponse, error)
	GuardarCashea(ctx context.Context, req dto.ConfiguracionCasheaRequest) (*dto.ConfiguracionCasheaResponse, error)
}

type configuracionService struct {
	repo      repository.ConfiguracionRepository
	scheduler ReprogramadorCashea
}

func NewConfiguracionService(repo repository.ConfiguracionRepository, scheduler ReprogramadorCashea) ConfiguracionService {
	return &configuracionService{repo: repo, scheduler: scheduler}
}

func (s *configuracionService) ObtenerSeguimiento(ctx context.Context) (*dto.ConfiguracionSeguimientoResponse, error) {
	c, err := s.repo.GetSeguimiento(ctx)
	if err != nil {
		return nil, err
	}
	return seguimientoToResponse(c), nil
}

// GuardarSeguimiento changes the offsets used for new cascades. Dates already
// stored on leads and orders are not recomputed.
func (s *configuracionService) GuardarSeguimiento(ctx context.Context, req dto.ConfiguracionSeguimientoRequest) (*dto.ConfiguracionSeguimientoResponse, error) {
	c := &model.ConfiguracionSeguimiento{
		DiasFase1:    req.DiasFase1,
		DiasFase2:    req.DiasFase2,
		DiasFase3:    req.DiasFase3,
		EmailGeneral: strings.TrimSpace(req.EmailGeneral),
	}
	if err := s.repo.SaveSeguimiento(ctx, c); err != nil {
		return nil, err
	}
	return seguimientoToResponse(c), nil
}

func (s *configuracionService) ObtenerCashea(ctx context.Context) (*dto.ConfiguracionCasheaResponse, error) {
	c, err := s.repo.GetCashea(ctx)
	if err != nil {
		return nil, err
	}
	return casheaToResponse(c), nil
}

// GuardarCashea persists the poll settings and reschedules the running job.
func (s *configuracionService) GuardarCashea(ctx context.Context, req dto.ConfiguracionCasheaRequest) (*dto.ConfiguracionCasheaResponse, error) {
	c := &model.ConfiguracionCashea{
		Activo:         req.Activo,
		IntervaloHoras: req.IntervaloHoras,
		DiasVentana:    req.DiasVentana,
	}
	if err := s.repo.SaveCashea(ctx, c); err != nil {
		return nil, err
	}
	if s.scheduler != nil {
		if err := s.scheduler.ReprogramarCashea(c.Activo, c.IntervaloHoras); err != nil {
			return nil, err
		}
	}
	log.Info().Bool("activo", c.Activo).Int("intervalo_horas", c.IntervaloHoras).Msg("configuracion cashea actualizada")
	return casheaToResponse(c), nil
}

func seguimientoToResponse(c *model.ConfiguracionSeguimiento) *dto.ConfiguracionSeguimientoResponse {
	return &dto.ConfiguracionSeguimientoResponse{
		DiasFase1:    c.DiasFase1,
		DiasFase2:    c.DiasFase2,
		DiasFase3:    c.DiasFase3,
		EmailGeneral: c.EmailGeneral,
	}
}

func casheaToResponse(c *model.ConfiguracionCashea) *dto.ConfiguracionCasheaResponse {
	return &dto.ConfiguracionCasheaResponse{
		Activo:         c.Activo,
		IntervaloHoras: c.IntervaloHoras,
		DiasVentana:    c.DiasVentana,
	}
}
