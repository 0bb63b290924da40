package service

import (
	"context"
	"time"

	"colchones/internal/dto"
	"colchones/internal/worker"
)

// BandejaCorreos gives access to e-mails that exhausted their retries.
// *worker.Dispatcher satisfies it.
type BandejaCorreos interface {
	CorreosFallidos(ctx context.Context, limit int) ([]worker.CorreoFallido, error)
	ReencolarCorreos(ctx context.Context, limit int) (int, error)
}

type CorreoService interface {
	Fallidos(ctx context.Context, limit int) ([]dto.CorreoFallidoResponse, error)
	Reencolar(ctx context.Context, limit int) (*dto.ReencolarResponse, error)
}

type correoService struct {
	bandeja BandejaCorreos
	loc     *time.Location
}

func NewCorreoService(bandeja BandejaCorreos, loc *time.Location) CorreoService {
	if loc == nil {
		loc = time.UTC
	}
	return &correoService{bandeja: bandeja, loc: loc}
}

func (s *correoService) Fallidos(ctx context.Context, limit int) ([]dto.CorreoFallidoResponse, error) {
	fallidos, err := s.bandeja.CorreosFallidos(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CorreoFallidoResponse, len(fallidos))
	for i, f := range fallidos {
		out[i] = dto.CorreoFallidoResponse{
			Marca:     string(f.Marca),
			Para:      f.Para,
			Asunto:    f.Asunto,
			Motivo:    f.Motivo,
			FallidoEn: f.FallidoEn.In(s.loc).Format(time.RFC3339),
			Intentos:  f.Intentos,
		}
	}
	return out, nil
}

// Reencolar requeues at most limit messages; limit is clamped to 1..500.
func (s *correoService) Reencolar(ctx context.Context, limit int) (*dto.ReencolarResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	n, err := s.bandeja.ReencolarCorreos(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &dto.ReencolarResponse{Reencolados: n}, nil
}
