package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spacefrags/kopia-status/internal/api/request"
	"github.com/spacefrags/kopia-status/internal/api/response"
	"github.com/spacefrags/kopia-status/internal/model"
	"github.com/spacefrags/kopia-status/internal/platform"
	"github.com/spacefrags/kopia-status/internal/state"
)

type Instance struct {
	registry *state.Registry
}

func NewInstance(registry *state.Registry) *Instance {
	return &Instance{registry: registry}
}

func (h *Instance) List(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.registry.Instances())
}

func (h *Instance) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateInstance
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.WebhookID == "" {
		req.WebhookID = platform.NewWebhookID()
	}
	if req.HistoryLimit == 0 {
		req.HistoryLimit = model.DefaultHistoryLimit
	}

	inst, err := h.registry.Register(model.Instance{
		WebhookID:    req.WebhookID,
		Name:         req.Name,
		HistoryLimit: req.HistoryLimit,
	})
	if err != nil {
		if errors.Is(err, state.ErrDuplicateWebhook) {
			response.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, inst)
}

func (h *Instance) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inst, err := h.registry.Instance(id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, inst)
}

func (h *Instance) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registry.Unregister(id); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History returns the full ledger for one instance, most recent first.
func (h *Instance) History(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.registry.History(id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, events)
}
