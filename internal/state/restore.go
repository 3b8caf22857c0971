package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spacefrags/kopia-status/internal/ledger"
	"github.com/spacefrags/kopia-status/internal/model"
)

// snapshot is the on-disk restore format: every instance with its full event
// history. Sensors are rederived on load, so they are not stored.
type snapshot struct {
	SavedAt   time.Time       `json:"saved_at"`
	Instances []instanceState `json:"instances"`
}

type instanceState struct {
	Instance model.Instance      `json:"instance"`
	Events   []model.BackupEvent `json:"events,omitempty"`
}

// Load restores instances and ledgers from the state file. A missing file is
// not an error; a corrupt one is, and leaves the registry empty.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, st := range snap.Instances {
		inst := st.Instance
		if inst.WebhookID == "" {
			continue
		}
		if inst.HistoryLimit < model.MinHistoryLimit || inst.HistoryLimit > model.MaxHistoryLimit {
			inst.HistoryLimit = model.DefaultHistoryLimit
		}
		e := &entry{
			inst:   inst,
			ledger: ledger.Restore(inst.HistoryLimit, st.Events),
		}
		e.sensor = buildSensor(inst, e.ledger, snap.SavedAt)
		r.byWebhook[inst.WebhookID] = e
		r.byID[inst.ID] = e
	}

	r.logger.Info().
		Int("instances", len(snap.Instances)).
		Str("file", r.stateFile).
		Msg("restored state")
	return nil
}

// persistLocked writes the state file atomically. Callers hold r.mu. Write
// failures are logged, never fatal: at worst the next restart loses history.
func (r *Registry) persistLocked() {
	if r.stateFile == "" {
		return
	}

	snap := snapshot{SavedAt: time.Now().UTC()}
	for _, e := range r.byWebhook {
		snap.Instances = append(snap.Instances, instanceState{
			Instance: e.inst,
			Events:   e.ledger.Events(),
		})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to encode state snapshot")
		return
	}

	tmp := r.stateFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		r.logger.Error().Err(err).Str("file", tmp).Msg("failed to write state snapshot")
		return
	}
	if err := os.Rename(tmp, r.stateFile); err != nil {
		r.logger.Error().Err(err).Str("file", r.stateFile).Msg("failed to replace state file")
	}
}

// Save forces a snapshot write, used on shutdown.
func (r *Registry) Save() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.persistLocked()
}

// StateDirWritable reports whether the state file's directory accepts writes.
// Used by the readiness probe.
func (r *Registry) StateDirWritable() error {
	dir := filepath.Dir(r.stateFile)
	f, err := os.CreateTemp(dir, ".readyz-*")
	if err != nil {
		return fmt.Errorf("state directory not writable: %w", err)
	}
	f.Close()
	os.Remove(f.Name())
	return nil
}
