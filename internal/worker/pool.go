package worker

import (
	"context"
	"encoding/json"
	"time"

	"colchones/internal/infra"
	"colchones/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	// MaxIntentosCorreo is the number of delivery attempts before a message
	// is moved to the dead letter queue.
	MaxIntentosCorreo = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb redis.UniversalClient
}

func NewDispatcher(rdb redis.UniversalClient) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarCorreo pushes an outbound e-mail to Redis. An empty marca uses the
// default delivery path.
func (d *Dispatcher) EncolarCorreo(ctx context.Context, marca model.Marca, c infra.Correo) error {
	return d.enqueue(ctx, QueueEmail, "email", EmailJobPayload{Marca: marca, Correo: c}, 0)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}, intentos int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data, Intentos: intentos}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the e-mail queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb redis.UniversalClient, numWorkers int, emails *EmailWorker) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, emails)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb redis.UniversalClient, id int, emails *EmailWorker) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], emails)
		}
	}
}

func processJob(ctx context.Context, rdb redis.UniversalClient, queue, raw string, emails *EmailWorker) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch job.Type {
	case "email":
		err = emails.Process(ctx, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type, dropping")
		return
	}
	if err == nil {
		return
	}

	job.Intentos++
	if job.Intentos >= MaxIntentosCorreo {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Intentos)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("intentos", job.Intentos).Msg("job failed, requeueing")
	d := &Dispatcher{rdb: rdb}
	if qerr := d.enqueue(ctx, queue, job.Type, job.Payload, job.Intentos); qerr != nil {
		log.Error().Err(qerr).Str("queue", queue).Msg("failed to requeue job")
	}
}
