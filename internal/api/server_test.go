package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacefrags/kopia-status/internal/model"
	"github.com/spacefrags/kopia-status/internal/state"
)

func newTestServer(t *testing.T) (*httptest.Server, *state.Registry, *state.Bus) {
	t.Helper()
	logger := zerolog.Nop()
	bus := state.NewBus(logger)
	registry := state.NewRegistry(logger, bus, filepath.Join(t.TempDir(), "state.json"))

	ts := httptest.NewServer(NewServer(logger, registry, bus))
	t.Cleanup(ts.Close)
	return ts, registry, bus
}

func TestServer_WebhookToSensorFlow(t *testing.T) {
	ts, registry, _ := newTestServer(t)
	_, err := registry.Register(model.Instance{WebhookID: "nas_backup"})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/webhook/nas_backup", "application/json",
		strings.NewReader(`{"path": "/volume1/nextcloud", "status": "SUCCESS", "size": 1024}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stateResp, err := http.Get(ts.URL + "/api/v1/states/sensor.kopia_nas_backup")
	require.NoError(t, err)
	defer stateResp.Body.Close()
	require.Equal(t, http.StatusOK, stateResp.StatusCode)

	var sensor model.Sensor
	require.NoError(t, json.NewDecoder(stateResp.Body).Decode(&sensor))
	assert.Equal(t, model.StatusSuccess, sensor.State)
	assert.Equal(t, "nextcloud", sensor.Attributes["source"])
}

func TestServer_UnknownWebhookIs404(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/webhook/ghost", "application/json",
		strings.NewReader(`{"status": "success"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Healthz(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Readyz(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StreamDeliversStateChanged(t *testing.T) {
	ts, registry, _ := newTestServer(t)
	_, err := registry.Register(model.Instance{WebhookID: "nas_backup"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// Give the handler a moment to register its bus subscription.
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Post(ts.URL+"/api/webhook/nas_backup", "application/json",
		strings.NewReader(`{"status": "warning"}`))
	require.NoError(t, err)
	resp.Body.Close()

	var ev state.Event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, state.EventStateChanged, ev.Type)
	assert.Equal(t, "sensor.kopia_nas_backup", ev.EntityID)
	require.NotNil(t, ev.Sensor)
	assert.Equal(t, model.StatusWarning, ev.Sensor.State)
}
