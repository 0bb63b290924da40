package worker

// Messages that exhaust MaxIntentosCorreo land in a Redis list per source
// queue (dlq:{queue}) until an administrator requeues them.

import (
	"context"
	"encoding/json"
	"time"

	"colchones/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry keeps the failed job verbatim plus what failed and when.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Motivo        string          `json:"motivo"`
	FallidoEn     time.Time       `json:"fallido_en"`
	Intentos      int             `json:"intentos"`
}

// CorreoFallido is the inspection view of a dead e-mail job.
type CorreoFallido struct {
	Marca     model.Marca
	Para      []string
	Asunto    string
	Motivo    string
	FallidoEn time.Time
	Intentos  int
}

// SendToDLQ parks a job that ran out of attempts. Push errors are logged
// only: the job is lost but the worker keeps draining the queue.
func SendToDLQ(ctx context.Context, rdb redis.UniversalClient, queue string, jobType string, payload json.RawMessage, motivo string, intentos int) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Motivo:        motivo,
		FallidoEn:     time.Now().UTC(),
		Intentos:      intentos,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to push entry")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("motivo", motivo).
		Int("intentos", intentos).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the backlog of a queue's DLQ.
func DLQLength(ctx context.Context, rdb redis.UniversalClient, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// CorreosFallidos lists up to limit dead e-mails, newest first, without
// removing them.
func (d *Dispatcher) CorreosFallidos(ctx context.Context, limit int) ([]CorreoFallido, error) {
	if limit <= 0 {
		limit = 50
	}
	raws, err := d.rdb.LRange(ctx, DLQPrefix+QueueEmail, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]CorreoFallido, 0, len(raws))
	for _, raw := range raws {
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		var p EmailJobPayload
		_ = json.Unmarshal(entry.Payload, &p)
		out = append(out, CorreoFallido{
			Marca:     p.Marca,
			Para:      p.Correo.Para,
			Asunto:    p.Correo.Asunto,
			Motivo:    entry.Motivo,
			FallidoEn: entry.FallidoEn,
			Intentos:  entry.Intentos,
		})
	}
	return out, nil
}

// ReencolarCorreos moves up to limit dead e-mails, oldest first, back to the
// e-mail queue with a fresh attempt counter.
func (d *Dispatcher) ReencolarCorreos(ctx context.Context, limit int) (int, error) {
	return Reencolar(ctx, d.rdb, QueueEmail, limit)
}

// Reencolar drains up to limit entries of queue's DLQ. Corrupt entries are
// discarded. Returns how many jobs were requeued.
func Reencolar(ctx context.Context, rdb redis.UniversalClient, queue string, limit int) (int, error) {
	d := &Dispatcher{rdb: rdb}
	movidos := 0
	for movidos < limit {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return movidos, err
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq: corrupt entry discarded")
			continue
		}
		if err := d.enqueue(ctx, entry.OriginalQueue, entry.JobType, entry.Payload, 0); err != nil {
			return movidos, err
		}
		movidos++
	}
	if movidos > 0 {
		log.Info().Str("queue", queue).Int("movidos", movidos).Msg("dlq: entries requeued")
	}
	return movidos, nil
}
