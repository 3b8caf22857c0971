package handler

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/spacefrags/kopia-status/internal/kopia"
	"github.com/spacefrags/kopia-status/internal/model"
	"github.com/spacefrags/kopia-status/internal/state"
)

// mockRecorder implements Recorder for webhook handler tests.
type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Apply(webhookID string, p kopia.Payload) (model.Sensor, error) {
	args := m.Called(webhookID, p)
	return args.Get(0).(model.Sensor), args.Error(1)
}

// newTestRegistry builds a registry backed by a per-test state file.
func newTestRegistry(t *testing.T) *state.Registry {
	t.Helper()
	logger := zerolog.Nop()
	return state.NewRegistry(logger, state.NewBus(logger), filepath.Join(t.TempDir(), "state.json"))
}
