package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Delivers through the brand's provider (Resend for BoxiSleep, SMTP otherwise).

import (
	"context"
	"encoding/json"
	"fmt"

	"colchones/internal/infra"
	"colchones/internal/model"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	Marca  model.Marca  `json:"marca,omitempty"`
	Correo infra.Correo `json:"correo"`
}

// Enviador delivers a message through the path of a brand.
type Enviador interface {
	Enviar(ctx context.Context, m model.Marca, c infra.Correo) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	notificador Enviador
}

func NewEmailWorker(n Enviador) *EmailWorker {
	return &EmailWorker{notificador: n}
}

// Process sends one message. A malformed or addressless payload is dropped;
// only delivery errors are returned so the pool can retry them.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if len(payload.Correo.Para) == 0 {
		log.Warn().Str("asunto", payload.Correo.Asunto).Msg("email_worker: no recipients, skipping")
		return nil
	}

	if err := w.notificador.Enviar(ctx, payload.Marca, payload.Correo); err != nil {
		log.Error().Err(err).Strs("to", payload.Correo.Para).Msg("email_worker: failed to send email")
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Strs("to", payload.Correo.Para).Str("marca", string(payload.Marca)).Msg("email_worker: email sent")
	return nil
}
