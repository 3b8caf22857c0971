package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/spacefrags/kopia-status/internal/api/response"
	"github.com/spacefrags/kopia-status/internal/kopia"
	"github.com/spacefrags/kopia-status/internal/metrics"
	"github.com/spacefrags/kopia-status/internal/model"
	"github.com/spacefrags/kopia-status/internal/state"
)

// maxPayloadBytes bounds webhook bodies; Kopia reports are a few hundred
// bytes.
const maxPayloadBytes = 1 << 20

// Recorder applies a decoded payload to the instance owning a webhook ID.
type Recorder interface {
	Apply(webhookID string, p kopia.Payload) (model.Sensor, error)
}

type Webhook struct {
	recorder Recorder
	logger   zerolog.Logger
}

func NewWebhook(recorder Recorder, logger zerolog.Logger) *Webhook {
	return &Webhook{recorder: recorder, logger: logger}
}

// Receive handles POST /api/webhook/{webhookID}. The body is JSON or a
// plain-text report; undecodable payloads are logged and dropped with no
// state change.
func (h *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	webhookID := chi.URLParam(r, "webhookID")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	payload, err := kopia.Decode(r.Header.Get("Content-Type"), body)
	if err != nil {
		metrics.RecordPayloadError(webhookID)
		h.logger.Warn().
			Err(err).
			Str("webhook_id", webhookID).
			Msg("dropping undecodable webhook payload")
		response.WriteError(w, http.StatusBadRequest, "invalid payload format")
		return
	}

	sensor, err := h.recorder.Apply(webhookID, payload)
	if err != nil {
		if errors.Is(err, state.ErrUnknownWebhook) {
			response.WriteError(w, http.StatusNotFound, "unknown webhook ID")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Debug().
		Str("webhook_id", webhookID).
		Str("entity_id", sensor.EntityID).
		Str("state", sensor.State).
		Msg("webhook payload recorded")

	response.WriteText(w, http.StatusOK, "OK")
}
