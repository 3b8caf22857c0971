package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spacefrags/kopia-status/internal/ledger"
	"github.com/spacefrags/kopia-status/internal/model"
)

func TestSourceSegment(t *testing.T) {
	assert.Equal(t, "nextcloud", sourceSegment("/volume1/Nextcloud"))
	assert.Equal(t, "nextcloud", sourceSegment("/volume1/Nextcloud/"))
	assert.Equal(t, "media", sourceSegment("media"))
	assert.Equal(t, "", sourceSegment(""))
	assert.Equal(t, "", sourceSegment("///"))
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "sensor.kopia_nas_backup", EntityID("nas_backup"))
}

func TestBuildSensor_EmptyLedger(t *testing.T) {
	inst := model.Instance{WebhookID: "nas_backup", HistoryLimit: 10}
	now := time.Now().UTC()

	sensor := buildSensor(inst, ledger.New(10), now)

	assert.Equal(t, "sensor.kopia_nas_backup", sensor.EntityID)
	assert.Equal(t, model.StatusUnknown, sensor.State)
	assert.Equal(t, now, sensor.LastUpdated)
	assert.Equal(t, "Kopia Nas Backup", sensor.Attributes["friendly_name"])
	assert.Empty(t, sensor.Attributes["history"])
}

func TestBuildSensor_NamedInstance(t *testing.T) {
	inst := model.Instance{WebhookID: "nas_backup", Name: "NAS", HistoryLimit: 10}

	sensor := buildSensor(inst, ledger.New(10), time.Now())

	assert.Equal(t, "NAS", sensor.Attributes["friendly_name"])
}

func TestBuildSensor_OmitsAbsentFields(t *testing.T) {
	inst := model.Instance{WebhookID: "nas_backup", HistoryLimit: 10}
	led := ledger.New(10)
	led.Record(model.BackupEvent{ID: "a", Status: model.StatusWarning})

	sensor := buildSensor(inst, led, time.Now())

	assert.Equal(t, model.StatusWarning, sensor.State)
	assert.NotContains(t, sensor.Attributes, "size_bytes")
	assert.NotContains(t, sensor.Attributes, "duration_seconds")
	assert.NotContains(t, sensor.Attributes, "error")
}
