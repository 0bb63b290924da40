package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/model"
	"colchones/internal/repository"
	"colchones/internal/worker"
)

// EjecutorTareas runs a registered job on demand under its distributed lock.
type EjecutorTareas interface {
	Ejecutar(ctx context.Context, nombre string) (*model.EjecucionTarea, error)
}

// TareaService exposes manual runs and the run history of scheduled jobs.
type TareaService interface {
	Ejecutar(ctx context.Context, nombre string) (*dto.EjecucionResponse, error)
	Historial(ctx context.Context, tarea string, limit int) ([]dto.EjecucionResponse, error)
}

type tareaService struct {
	ejecutor    EjecutorTareas
	ejecuciones repository.EjecucionRepository
	loc         *time.Location
}

func NewTareaService(ejecutor EjecutorTareas, ejecuciones repository.EjecucionRepository, loc *time.Location) TareaService {
	if loc == nil {
		loc = time.UTC
	}
	return &tareaService{ejecutor: ejecutor, ejecuciones: ejecuciones, loc: loc}
}

func (s *tareaService) Ejecutar(ctx context.Context, nombre string) (*dto.EjecucionResponse, error) {
	ej, err := s.ejecutor.Ejecutar(ctx, nombre)
	if errors.Is(err, worker.ErrTareaDesconocida) {
		return nil, apierror.NoEncontrado("tarea", nombre)
	}
	if err != nil {
		return nil, err
	}
	// A failed job still produced a run record; the caller reads Estado.
	resp := ejecucionToResponse(ej, s.loc)
	return &resp, nil
}

func (s *tareaService) Historial(ctx context.Context, tarea string, limit int) ([]dto.EjecucionResponse, error) {
	ejs, err := s.ejecuciones.List(ctx, tarea, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EjecucionResponse, len(ejs))
	for i := range ejs {
		out[i] = ejecucionToResponse(&ejs[i], s.loc)
	}
	return out, nil
}

func ejecucionToResponse(e *model.EjecucionTarea, loc *time.Location) dto.EjecucionResponse {
	resp := dto.EjecucionResponse{
		ID:         e.ID.String(),
		Tarea:      e.Tarea,
		Estado:     e.Estado,
		Mensaje:    e.Mensaje,
		Insertadas: e.Insertadas,
		Duplicadas: e.Duplicadas,
		IniciadaEn: e.IniciadaEn.In(loc).Format(time.RFC3339),
	}
	if e.FinalizadaEn != nil {
		f := e.FinalizadaEn.In(loc).Format(time.RFC3339)
		resp.FinalizadaEn = &f
	}
	return resp
}

// ── Job adapters ─────────────────────────────────────────────────────────────
// Bind service operations to the scheduler's Tarea signature.

func TareaCashea(svc IngestaService) worker.Tarea {
	return func(ctx context.Context) (worker.ResultadoTarea, error) {
		r, err := svc.SincronizarCashea(ctx)
		return worker.ResultadoTarea{
			Insertadas: r.Insertadas,
			Duplicadas: r.Duplicadas,
			Mensaje:    fmt.Sprintf("%d filas rechazadas", r.Rechazadas),
		}, err
	}
}

func TareaRecordatorios(svc SeguimientoService) worker.Tarea {
	return func(ctx context.Context) (worker.ResultadoTarea, error) {
		r, err := svc.EnviarRecordatorios(ctx)
		return worker.ResultadoTarea{
			Insertadas: r.Correos,
			Mensaje:    fmt.Sprintf("%d recordatorios, %d descartados sin destinatario", r.Recordatorios, r.Descartados),
		}, err
	}
}

func TareaRecurrencias(svc EgresoService) worker.Tarea {
	return func(ctx context.Context) (worker.ResultadoTarea, error) {
		n, err := svc.GenerarRecurrencias(ctx)
		return worker.ResultadoTarea{Insertadas: n, Mensaje: fmt.Sprintf("%d ocurrencias generadas", n)}, err
	}
}
