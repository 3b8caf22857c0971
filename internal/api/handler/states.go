package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spacefrags/kopia-status/internal/api/request"
	"github.com/spacefrags/kopia-status/internal/api/response"
	"github.com/spacefrags/kopia-status/internal/state"
)

type States struct {
	registry *state.Registry
}

func NewStates(registry *state.Registry) *States {
	return &States{registry: registry}
}

func (h *States) List(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.registry.Sensors())
}

func (h *States) Get(w http.ResponseWriter, r *http.Request) {
	entityID, err := request.RequireID(chi.URLParam(r, "entityID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sensor, ok := h.registry.Sensor(entityID)
	if !ok {
		response.WriteError(w, http.StatusNotFound, "unknown entity ID")
		return
	}

	response.WriteJSON(w, http.StatusOK, sensor)
}
