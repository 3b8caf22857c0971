package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacefrags/kopia-status/internal/kopia"
	"github.com/spacefrags/kopia-status/internal/model"
)

func TestStatesList(t *testing.T) {
	registry := newTestRegistry(t)
	_, err := registry.Register(model.Instance{WebhookID: "nas_backup"})
	require.NoError(t, err)
	_, err = registry.Register(model.Instance{WebhookID: "media_backup"})
	require.NoError(t, err)

	h := NewStates(registry)

	w := httptest.NewRecorder()
	h.List(w, newRequest(http.MethodGet, "/api/v1/states", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var sensors []model.Sensor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sensors))
	require.Len(t, sensors, 2)
	assert.Equal(t, "sensor.kopia_media_backup", sensors[0].EntityID)
	assert.Equal(t, "sensor.kopia_nas_backup", sensors[1].EntityID)
}

func TestStatesGet(t *testing.T) {
	registry := newTestRegistry(t)
	_, err := registry.Register(model.Instance{WebhookID: "nas_backup"})
	require.NoError(t, err)
	_, err = registry.Apply("nas_backup", kopia.Payload{SourcePath: "/vol/NAS", Status: "success"})
	require.NoError(t, err)

	h := NewStates(registry)

	w := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodGet, "/api/v1/states/sensor.kopia_nas_backup", nil),
		"entityID", "sensor.kopia_nas_backup")
	h.Get(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var sensor model.Sensor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sensor))
	assert.Equal(t, model.StatusSuccess, sensor.State)
	assert.Equal(t, "nas", sensor.Attributes["source"])
}

func TestStatesGet_Unknown(t *testing.T) {
	registry := newTestRegistry(t)
	h := NewStates(registry)

	w := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodGet, "/api/v1/states/sensor.nope", nil),
		"entityID", "sensor.nope")
	h.Get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeErrorResponse(w)
	assert.Equal(t, "unknown entity ID", body["error"])
}
