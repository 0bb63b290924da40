package service

import (
	"context"
	"strings"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/model"
	"colchones/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// VerificacionService drives the bank-statement reconciliation view.
type VerificacionService interface {
	Listar(ctx context.Context, filter dto.VerificacionFilter) (*dto.VerificacionListResponse, error)
	Actualizar(ctx context.Context, tipo, id string, req dto.ActualizarVerificacionRequest) (*dto.VerificacionItem, error)
}

type verificacionService struct {
	repo  repository.VerificacionRepository
	ahora func() time.Time
}

func NewVerificacionService(repo repository.VerificacionRepository) VerificacionService {
	return &verificacionService{repo: repo, ahora: time.Now}
}

func (s *verificacionService) Listar(ctx context.Context, filter dto.VerificacionFilter) (*dto.VerificacionListResponse, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Estado = string(model.EstadoVerificacion(items[i].Estado).Normalizar())
	}
	return &dto.VerificacionListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Actualizar applies the one-way move out of Por verificar. Verified or
// rejected payments are final.
func (s *verificacionService) Actualizar(ctx context.Context, tipo, id string, req dto.ActualizarVerificacionRequest) (*dto.VerificacionItem, error) {
	if !repository.TipoPagoValido(tipo) {
		return nil, apierror.Validacion("tipo_pago", "tipo de pago desconocido")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apierror.Validacion("id", "uuid invalido")
	}
	destino := model.EstadoVerificacion(req.Estado)
	if !destino.Valido() {
		return nil, apierror.Validacion("estado", "estado de verificacion desconocido")
	}

	notas := strings.TrimSpace(req.Notas)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actual, err := s.repo.EstadoActual(ctx, tx, tipo, id)
		if err != nil {
			return err
		}
		actual = actual.Normalizar()
		if !actual.PuedeCambiarA(destino) {
			return apierror.Transicion(string(actual), string(destino))
		}
		return s.repo.Actualizar(ctx, tx, tipo, id, destino, notas, s.ahora())
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("tipo_pago", tipo).Str("id", id).Str("estado", string(destino)).Msg("pago verificado")
	return &dto.VerificacionItem{TipoPago: tipo, ID: id, Estado: string(destino), Notas: notas}, nil
}
