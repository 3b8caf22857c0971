package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/spacefrags/kopia-status/internal/state"
)

const streamWriteTimeout = 5 * time.Second

type Stream struct {
	bus    *state.Bus
	logger zerolog.Logger
}

func NewStream(bus *state.Bus, logger zerolog.Logger) *Stream {
	return &Stream{bus: bus, logger: logger}
}

// Connect upgrades to WebSocket and forwards bus events as JSON until the
// client disconnects. Delivery is best-effort; a slow client misses events.
func (h *Stream) Connect(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Dashboards connect cross-origin.
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.CloseNow()

	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)

	// CloseRead pumps control frames and cancels the context when the
	// client goes away.
	ctx := ws.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				ws.Close(websocket.StatusNormalClosure, "stream closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := wsjson.Write(writeCtx, ws, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
