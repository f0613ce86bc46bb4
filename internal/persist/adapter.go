package persist

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// envelopeVersion is bumped when a stored state shape changes incompatibly.
// Blobs written with another version hydrate as absent.
const envelopeVersion = 1

// Meta describes one persisted snapshot.
type Meta struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type envelope struct {
	Version int             `json:"version"`
	Meta                    // promoted snapshot_id / updated_at
	State   json.RawMessage `json:"state"`
}

// Adapter encodes typed state into a Backend.
type Adapter struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdapter wraps backend. A nil logger discards log output.
func NewAdapter(backend Backend, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{backend: backend, logger: logger, now: time.Now}
}

// Backend returns the wrapped backend.
func (a *Adapter) Backend() Backend {
	return a.backend
}

// Load reads the state stored under key. It never fails: a missing key,
// unreadable storage, a corrupt blob or a foreign envelope version all report
// ok=false, and only the non-missing cases are logged.
func Load[T any](a *Adapter, key string) (value T, meta Meta, ok bool) {
	var zero T
	data, err := a.backend.Read(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warn("state read failed", "key", key, "error", err)
		}
		return zero, Meta{}, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		a.logger.Warn("state blob is corrupt", "key", key, "error", err)
		return zero, Meta{}, false
	}
	if env.Version != envelopeVersion {
		a.logger.Warn("state blob version mismatch", "key", key, "version", env.Version, "want", envelopeVersion)
		return zero, Meta{}, false
	}
	if len(env.State) == 0 {
		a.logger.Warn("state blob is empty", "key", key)
		return zero, Meta{}, false
	}
	if err := json.Unmarshal(env.State, &value); err != nil {
		a.logger.Warn("state payload is corrupt", "key", key, "error", err)
		return zero, Meta{}, false
	}
	return value, env.Meta, true
}

// Save encodes value and writes it under key synchronously.
func Save[T any](a *Adapter, key string, value T) (Meta, error) {
	state, err := json.Marshal(value)
	if err != nil {
		return Meta{}, errors.Wrapf(err, "encode %s", key)
	}
	meta := Meta{
		SnapshotID: uuid.NewString(),
		UpdatedAt:  a.now().UTC(),
	}
	data, err := json.Marshal(envelope{Version: envelopeVersion, Meta: meta, State: state})
	if err != nil {
		return Meta{}, errors.Wrapf(err, "encode %s envelope", key)
	}
	if err := a.backend.Write(key, data); err != nil {
		return Meta{}, errors.Wrapf(err, "write %s", key)
	}
	a.logger.Debug("state saved", "key", key, "snapshot_id", meta.SnapshotID, "bytes", len(data))
	return meta, nil
}

// Slot binds an Adapter to one key for one state type.
type Slot[T any] struct {
	adapter *Adapter
	key     string
}

// NewSlot returns the slot for key.
func NewSlot[T any](a *Adapter, key string) Slot[T] {
	return Slot[T]{adapter: a, key: key}
}

// Key returns the storage key.
func (s Slot[T]) Key() string {
	return s.key
}

// Load hydrates the slot's state; ok is false when nothing usable is stored.
func (s Slot[T]) Load() (T, bool) {
	v, _, ok := Load[T](s.adapter, s.key)
	return v, ok
}

// Save writes v to the slot.
func (s Slot[T]) Save(v T) error {
	_, err := Save(s.adapter, s.key, v)
	return err
}
