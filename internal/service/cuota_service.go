package service

import (
	"context"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/model"
	"colchones/internal/pagos"
	"colchones/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CuotaService manages installments. Every write re-runs the auto-dispatch
// check of the order in the same transaction.
type CuotaService interface {
	Crear(ctx context.Context, orden string, req dto.CrearCuotaRequest) (*dto.PagoRegistradoResponse, error)
	Listar(ctx context.Context, orden string) ([]dto.CuotaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCuotaRequest) (*dto.PagoRegistradoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) (*dto.PagoRegistradoResponse, error)
}

type cuotaService struct {
	repo   repository.CuotaRepository
	ventas repository.VentaRepository
	cola   ColaCorreo
	loc    *time.Location
}

func NewCuotaService(repo repository.CuotaRepository, ventas repository.VentaRepository, cola ColaCorreo, loc *time.Location) CuotaService {
	if loc == nil {
		loc = time.UTC
	}
	return &cuotaService{repo: repo, ventas: ventas, cola: cola, loc: loc}
}

func (s *cuotaService) Crear(ctx context.Context, orden string, req dto.CrearCuotaRequest) (*dto.PagoRegistradoResponse, error) {
	if !req.PagoCuotaUsd.IsPositive() {
		return nil, apierror.Validacion("pago_cuota_usd", "debe ser mayor a cero")
	}
	fecha, err := parseFecha("fecha_pago", req.FechaPago, s.loc)
	if err != nil {
		return nil, err
	}

	c := model.Cuota{
		ID:                 uuid.New(),
		Orden:              orden,
		FechaPago:          fecha,
		PagoCuotaUsd:       req.PagoCuotaUsd,
		MontoBs:            req.MontoBs,
		MetodoPago:         req.MetodoPago,
		Banco:              req.Banco,
		Referencia:         req.Referencia,
		EstadoVerificacion: model.VerificacionPendiente,
	}

	var (
		resumen     pagos.Resumen
		lineas      []model.Venta
		cuotas      []model.Cuota
		despachadas []uuid.UUID
	)
	txErr := runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		actuales, err := s.ventas.FindByOrdenTx(ctx, tx, orden)
		if err != nil {
			return err
		}
		principal := pagos.LineaPrincipal(actuales)
		if principal == nil {
			return apierror.NoEncontrado("orden", orden)
		}
		c.VentaID = principal.ID

		if req.NumeroCuota != nil {
			c.NumeroCuota = *req.NumeroCuota
		} else {
			max, err := s.repo.MaxNumero(ctx, tx, principal.ID)
			if err != nil {
				return err
			}
			c.NumeroCuota = max + 1
		}
		// A duplicate (venta, numero) surfaces as ErrConflicto from the unique index.
		if err := s.repo.Create(ctx, tx, &c); err != nil {
			return err
		}
		resumen, lineas, cuotas, despachadas, err = despacharSiPagada(ctx, tx, s.ventas, s.repo, orden)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("orden", orden).Int("numero", c.NumeroCuota).Str("monto", c.PagoCuotaUsd.StringFixed(2)).Msg("cuota registrada")
	notificarPago(ctx, s.cola, lineas, cuotas, resumen, "cuota")

	cr := cuotaToResponse(&c, s.loc)
	return &dto.PagoRegistradoResponse{
		Orden:       orden,
		Resumen:     resumen,
		Despachadas: idsToStrings(despachadas),
		Cuota:       &cr,
	}, nil
}

func (s *cuotaService) Listar(ctx context.Context, orden string) ([]dto.CuotaResponse, error) {
	cuotas, err := s.repo.ListByOrden(ctx, orden)
	if err != nil {
		return nil, err
	}
	return cuotasToResponse(cuotas, s.loc), nil
}

func (s *cuotaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCuotaRequest) (*dto.PagoRegistradoResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cambioPago := false
	if req.NumeroCuota != nil {
		c.NumeroCuota = *req.NumeroCuota
	}
	if req.FechaPago != nil {
		f, err := parseFecha("fecha_pago", *req.FechaPago, s.loc)
		if err != nil {
			return nil, err
		}
		c.FechaPago = f
	}
	if req.PagoCuotaUsd != nil {
		if !req.PagoCuotaUsd.IsPositive() {
			return nil, apierror.Validacion("pago_cuota_usd", "debe ser mayor a cero")
		}
		cambioPago = !c.PagoCuotaUsd.Equal(*req.PagoCuotaUsd)
		c.PagoCuotaUsd = *req.PagoCuotaUsd
	}
	if req.MontoBs != nil {
		c.MontoBs = req.MontoBs
	}
	if req.MetodoPago != nil {
		c.MetodoPago = *req.MetodoPago
	}
	if req.Banco != nil {
		cambioPago = cambioPago || c.Banco != *req.Banco
		c.Banco = *req.Banco
	}
	if req.Referencia != nil {
		cambioPago = cambioPago || c.Referencia != *req.Referencia
		c.Referencia = *req.Referencia
	}
	if cambioPago {
		c.EstadoVerificacion = model.VerificacionPendiente
		c.NotasVerificacion = ""
		c.FechaVerificacion = nil
	}

	return s.escribir(ctx, c.Orden, func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, c); err != nil {
			return err
		}
		return nil
	}, c)
}

func (s *cuotaService) Eliminar(ctx context.Context, id uuid.UUID) (*dto.PagoRegistradoResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.escribir(ctx, c.Orden, func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, c.ID)
	}, nil)
}

func (s *cuotaService) escribir(ctx context.Context, orden string, fn func(tx *gorm.DB) error, c *model.Cuota) (*dto.PagoRegistradoResponse, error) {
	var (
		resumen     pagos.Resumen
		despachadas []uuid.UUID
	)
	txErr := runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		var err error
		resumen, _, _, despachadas, err = despacharSiPagada(ctx, tx, s.ventas, s.repo, orden)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := &dto.PagoRegistradoResponse{
		Orden:       orden,
		Resumen:     resumen,
		Despachadas: idsToStrings(despachadas),
	}
	if c != nil {
		cr := cuotaToResponse(c, s.loc)
		resp.Cuota = &cr
	}
	return resp, nil
}
