package worker

// scheduler.go
// Cron-driven background jobs: Cashea poll, daily follow-up digest and
// recurring-expense generation. Every run takes a Redis lock so replicas never
// overlap, and leaves one row in ejecuciones_tarea.

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"colchones/internal/model"
	"colchones/internal/repository"

	"github.com/bsm/redislock"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	TareaCashea        = "cashea"
	TareaRecordatorios = "recordatorios"
	TareaRecurrencias  = "recurrencias"

	EjecucionExito   = "exito"
	EjecucionError   = "error"
	EjecucionOmitida = "omitida"
)

// ErrTareaDesconocida is returned by Ejecutar for an unregistered job name.
var ErrTareaDesconocida = errors.New("tarea desconocida")

// ResultadoTarea is what a job reports back for its status row.
type ResultadoTarea struct {
	Insertadas int
	Duplicadas int
	Mensaje    string
}

// Tarea is one schedulable job.
type Tarea func(ctx context.Context) (ResultadoTarea, error)

// Scheduler owns the cron instance and the registered jobs.
type Scheduler struct {
	mu          sync.Mutex
	cron        *cron.Cron
	locker      *redislock.Client
	ejecuciones repository.EjecucionRepository
	tareas      map[string]Tarea
	entradas    map[string]cron.EntryID
	lockTTL     time.Duration
	timeout     time.Duration
}

func NewScheduler(loc *time.Location, locker *redislock.Client, ejecuciones repository.EjecucionRepository) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		locker:      locker,
		ejecuciones: ejecuciones,
		tareas:      map[string]Tarea{},
		entradas:    map[string]cron.EntryID{},
		lockTTL:     30 * time.Minute,
		timeout:     20 * time.Minute,
	}
}

// Registrar adds a job. An empty spec registers it for manual runs only.
func (s *Scheduler) Registrar(nombre, spec string, t Tarea) error {
	s.mu.Lock()
	s.tareas[nombre] = t
	s.mu.Unlock()
	return s.Reprogramar(nombre, spec)
}

// Reprogramar replaces the cron spec of a registered job. An empty spec
// unschedules it; manual runs keep working.
func (s *Scheduler) Reprogramar(nombre, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tareas[nombre]; !ok {
		return fmt.Errorf("%w: %s", ErrTareaDesconocida, nombre)
	}
	if id, ok := s.entradas[nombre]; ok {
		s.cron.Remove(id)
		delete(s.entradas, nombre)
	}
	if spec == "" {
		log.Info().Str("tarea", nombre).Msg("scheduler: job unscheduled")
		return nil
	}
	id, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Ejecutar(context.Background(), nombre); err != nil {
			log.Error().Err(err).Str("tarea", nombre).Msg("scheduler: run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: spec %q: %w", spec, err)
	}
	s.entradas[nombre] = id
	log.Info().Str("tarea", nombre).Str("spec", spec).Msg("scheduler: job scheduled")
	return nil
}

// ReprogramarCashea applies a new poll configuration without a restart.
func (s *Scheduler) ReprogramarCashea(activo bool, intervaloHoras int) error {
	if !activo || intervaloHoras < 1 {
		return s.Reprogramar(TareaCashea, "")
	}
	return s.Reprogramar(TareaCashea, fmt.Sprintf("@every %dh", intervaloHoras))
}

// Programada reports whether a job currently has a cron entry.
func (s *Scheduler) Programada(nombre string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entradas[nombre]
	return ok
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler: started")
}

// Stop halts the cron loop and waits for running jobs up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info().Msg("scheduler: stopped")
	case <-ctx.Done():
		log.Warn().Msg("scheduler: stop timed out with jobs still running")
	}
}

// Ejecutar runs a job now. When another run holds the lock the run is recorded
// as omitida and no error is returned.
func (s *Scheduler) Ejecutar(ctx context.Context, nombre string) (*model.EjecucionTarea, error) {
	s.mu.Lock()
	tarea, ok := s.tareas[nombre]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTareaDesconocida, nombre)
	}

	ej := &model.EjecucionTarea{Tarea: nombre, IniciadaEn: time.Now()}

	lock, err := s.locker.Obtain(ctx, "lock:tarea:"+nombre, s.lockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		ej.Estado = EjecucionOmitida
		ej.Mensaje = "otra ejecucion en curso"
		s.registrar(ctx, ej)
		log.Info().Str("tarea", nombre).Msg("scheduler: run skipped, lock held")
		return ej, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scheduler: lock %s: %w", nombre, err)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("tarea", nombre).Msg("scheduler: lock release failed")
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := correrRecuperando(runCtx, tarea)
	fin := time.Now()
	ej.FinalizadaEn = &fin
	ej.Insertadas = res.Insertadas
	ej.Duplicadas = res.Duplicadas
	ej.Mensaje = res.Mensaje
	if err != nil {
		ej.Estado = EjecucionError
		ej.Mensaje = err.Error()
		log.Error().Err(err).Str("tarea", nombre).Msg("scheduler: job failed")
	} else {
		ej.Estado = EjecucionExito
		log.Info().
			Str("tarea", nombre).
			Int("insertadas", res.Insertadas).
			Int("duplicadas", res.Duplicadas).
			Dur("duracion", fin.Sub(ej.IniciadaEn)).
			Msg("scheduler: job finished")
	}
	s.registrar(ctx, ej)
	return ej, nil
}

// correrRecuperando turns a panic inside t into an error so the run is still
// recorded and the cron goroutine survives.
func correrRecuperando(ctx context.Context, t Tarea) (res ResultadoTarea, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("scheduler: job panicked")
			res = ResultadoTarea{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t(ctx)
}

func (s *Scheduler) registrar(ctx context.Context, ej *model.EjecucionTarea) {
	if s.ejecuciones == nil {
		return
	}
	if err := s.ejecuciones.Create(ctx, ej); err != nil {
		log.Error().Err(err).Str("tarea", ej.Tarea).Msg("scheduler: failed to record run")
	}
}
