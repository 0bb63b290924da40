package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"colchones/internal/infra"
	"colchones/internal/model"
	"colchones/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// ── stubs ────────────────────────────────────────────────────────────────────

type stubEjecuciones struct{ rows []model.EjecucionTarea }

var _ repository.EjecucionRepository = (*stubEjecuciones)(nil)

func (s *stubEjecuciones) Create(_ context.Context, e *model.EjecucionTarea) error {
	s.rows = append(s.rows, *e)
	return nil
}
func (s *stubEjecuciones) Update(_ context.Context, _ *model.EjecucionTarea) error { return nil }
func (s *stubEjecuciones) List(_ context.Context, _ string, _ int) ([]model.EjecucionTarea, error) {
	return s.rows, nil
}

type stubEnviador struct {
	err      error
	llamadas int
	marcas   []model.Marca
}

func (s *stubEnviador) Enviar(_ context.Context, m model.Marca, _ infra.Correo) error {
	s.llamadas++
	s.marcas = append(s.marcas, m)
	return s.err
}

// ── queue ────────────────────────────────────────────────────────────────────

func TestDispatcher_EncolarCorreo(t *testing.T) {
	_, rdb := newTestRedis(t)
	d := NewDispatcher(rdb)

	err := d.EncolarCorreo(context.Background(), model.MarcaBoxiSleep, infra.Correo{Para: []string{"a@b.com"}, Asunto: "hola"})
	require.NoError(t, err)

	raw, err := rdb.RPop(context.Background(), QueueEmail).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, "email", job.Type)

	var p EmailJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, model.MarcaBoxiSleep, p.Marca)
	assert.Equal(t, "hola", p.Correo.Asunto)
}

func TestProcessJob_EntregaExitosa(t *testing.T) {
	_, rdb := newTestRedis(t)
	env := &stubEnviador{}
	ctx := context.Background()
	require.NoError(t, NewDispatcher(rdb).EncolarCorreo(ctx, model.MarcaMompox, infra.Correo{Para: []string{"x@y.com"}}))

	raw, _ := rdb.RPop(ctx, QueueEmail).Result()
	processJob(ctx, rdb, QueueEmail, raw, NewEmailWorker(env))

	assert.Equal(t, 1, env.llamadas)
	assert.Equal(t, []model.Marca{model.MarcaMompox}, env.marcas)
	n, _ := rdb.LLen(ctx, QueueEmail).Result()
	assert.Zero(t, n)
}

func TestProcessJob_ReintentaYTerminaEnDLQ(t *testing.T) {
	_, rdb := newTestRedis(t)
	env := &stubEnviador{err: errors.New("smtp caido")}
	w := NewEmailWorker(env)
	ctx := context.Background()
	require.NoError(t, NewDispatcher(rdb).EncolarCorreo(ctx, "", infra.Correo{Para: []string{"x@y.com"}}))

	for i := 0; i < MaxIntentosCorreo; i++ {
		raw, err := rdb.RPop(ctx, QueueEmail).Result()
		require.NoError(t, err)
		processJob(ctx, rdb, QueueEmail, raw, w)
	}

	assert.Equal(t, MaxIntentosCorreo, env.llamadas)
	n, _ := rdb.LLen(ctx, QueueEmail).Result()
	assert.Zero(t, n)
	dlq, _ := DLQLength(ctx, rdb, QueueEmail)
	assert.Equal(t, int64(1), dlq)

	d := NewDispatcher(rdb)
	fallidos, err := d.CorreosFallidos(ctx, 0)
	require.NoError(t, err)
	require.Len(t, fallidos, 1)
	assert.Equal(t, []string{"x@y.com"}, fallidos[0].Para)
	assert.Contains(t, fallidos[0].Motivo, "smtp caido")
	assert.Equal(t, MaxIntentosCorreo, fallidos[0].Intentos)

	movidos, err := d.ReencolarCorreos(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, movidos)
	n, _ = rdb.LLen(ctx, QueueEmail).Result()
	assert.Equal(t, int64(1), n)
}

func TestEmailWorker_SinDestinatarios(t *testing.T) {
	env := &stubEnviador{}
	payload, _ := json.Marshal(EmailJobPayload{Correo: infra.Correo{Asunto: "x"}})
	assert.NoError(t, NewEmailWorker(env).Process(context.Background(), payload))
	assert.Zero(t, env.llamadas)
}

// ── scheduler ────────────────────────────────────────────────────────────────

func TestScheduler_EjecutarRegistraExito(t *testing.T) {
	_, rdb := newTestRedis(t)
	ej := &stubEjecuciones{}
	s := NewScheduler(nil, redislock.New(rdb), ej)
	require.NoError(t, s.Registrar(TareaCashea, "", func(context.Context) (ResultadoTarea, error) {
		return ResultadoTarea{Insertadas: 4, Duplicadas: 2}, nil
	}))

	res, err := s.Ejecutar(context.Background(), TareaCashea)
	require.NoError(t, err)
	assert.Equal(t, EjecucionExito, res.Estado)
	assert.Equal(t, 4, res.Insertadas)
	assert.Equal(t, 2, res.Duplicadas)
	require.Len(t, ej.rows, 1)
	assert.NotNil(t, ej.rows[0].FinalizadaEn)
}

func TestScheduler_EjecutarRegistraError(t *testing.T) {
	_, rdb := newTestRedis(t)
	ej := &stubEjecuciones{}
	s := NewScheduler(nil, redislock.New(rdb), ej)
	require.NoError(t, s.Registrar(TareaRecurrencias, "", func(context.Context) (ResultadoTarea, error) {
		return ResultadoTarea{}, errors.New("db caida")
	}))

	res, err := s.Ejecutar(context.Background(), TareaRecurrencias)
	require.NoError(t, err)
	assert.Equal(t, EjecucionError, res.Estado)
	assert.Equal(t, "db caida", res.Mensaje)
}

func TestScheduler_EjecutarRecuperaPanico(t *testing.T) {
	_, rdb := newTestRedis(t)
	ej := &stubEjecuciones{}
	s := NewScheduler(nil, redislock.New(rdb), ej)
	require.NoError(t, s.Registrar(TareaRecordatorios, "", func(context.Context) (ResultadoTarea, error) {
		var m map[string]int
		m["x"] = 1
		return ResultadoTarea{}, nil
	}))

	var res *model.EjecucionTarea
	var err error
	require.NotPanics(t, func() { res, err = s.Ejecutar(context.Background(), TareaRecordatorios) })
	require.NoError(t, err)
	assert.Equal(t, EjecucionError, res.Estado)
	assert.Contains(t, res.Mensaje, "nil map")
	require.Len(t, ej.rows, 1)
	assert.Equal(t, EjecucionError, ej.rows[0].Estado)

	// The lock is released, so the next run is not skipped.
	res, err = s.Ejecutar(context.Background(), TareaRecordatorios)
	require.NoError(t, err)
	assert.NotEqual(t, EjecucionOmitida, res.Estado)
}

func TestScheduler_OmiteSiHayLock(t *testing.T) {
	_, rdb := newTestRedis(t)
	locker := redislock.New(rdb)
	ctx := context.Background()
	ej := &stubEjecuciones{}
	s := NewScheduler(nil, locker, ej)
	corrio := false
	require.NoError(t, s.Registrar(TareaRecordatorios, "", func(context.Context) (ResultadoTarea, error) {
		corrio = true
		return ResultadoTarea{}, nil
	}))

	lock, err := locker.Obtain(ctx, "lock:tarea:"+TareaRecordatorios, s.lockTTL, nil)
	require.NoError(t, err)
	defer func() { _ = lock.Release(ctx) }()

	res, err := s.Ejecutar(ctx, TareaRecordatorios)
	require.NoError(t, err)
	assert.Equal(t, EjecucionOmitida, res.Estado)
	assert.False(t, corrio)
}

func TestScheduler_TareaDesconocida(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewScheduler(nil, redislock.New(rdb), nil)
	_, err := s.Ejecutar(context.Background(), "nada")
	assert.ErrorIs(t, err, ErrTareaDesconocida)
}

func TestScheduler_ReprogramarCashea(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewScheduler(nil, redislock.New(rdb), nil)
	require.NoError(t, s.Registrar(TareaCashea, "@every 4h", func(context.Context) (ResultadoTarea, error) {
		return ResultadoTarea{}, nil
	}))
	assert.True(t, s.Programada(TareaCashea))

	require.NoError(t, s.ReprogramarCashea(false, 4))
	assert.False(t, s.Programada(TareaCashea))

	require.NoError(t, s.ReprogramarCashea(true, 2))
	assert.True(t, s.Programada(TareaCashea))
	assert.Len(t, s.cron.Entries(), 1)
}
