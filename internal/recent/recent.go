// Package recent tracks recently viewed products, newest first.
package recent

import (
	"log/slog"

	"github.com/go-faster/errors"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/store"
)

// StorageKey is the persistence key for the history.
const StorageKey = "recently-viewed"

const (
	// DefaultLimit is the history length used when none is configured.
	DefaultLimit = 12
	// MaxLimit bounds configured history lengths.
	MaxLimit = 50
)

// ValidateLimit checks a configured history length.
func ValidateLimit(n int) error {
	if n < 1 || n > MaxLimit {
		return errors.Errorf("recently viewed limit %d must be between 1 and %d", n, MaxLimit)
	}
	return nil
}

// State is the persisted history, most recent first.
type State struct {
	Items catalog.Items `json:"items"`
}

// Clone deep-copies the state.
func (s State) Clone() State {
	return State{Items: s.Items.Clone()}
}

// Normalize drops duplicate and ID-less entries and keeps the newest limit.
func (s State) Normalize(limit int) State {
	items := s.Items.Unique()
	if len(items) > limit {
		items = items[:limit]
	}
	return State{Items: items}
}

// History is the recently-viewed store.
type History struct {
	store *store.Store[State]
	limit int
}

// New hydrates the history from p and keeps at most limit entries; a limit
// outside [1, MaxLimit] falls back to DefaultLimit. Hydrated history is
// de-duplicated and trimmed to limit.
func New(p store.Persister[State], limit int, logger *slog.Logger, opts ...store.Option[State]) *History {
	if ValidateLimit(limit) != nil {
		limit = DefaultLimit
	}
	opts = append([]store.Option[State]{
		store.WithClone(State.Clone),
		store.WithNormalize(func(s State) State { return s.Normalize(limit) }),
		store.WithLogger[State](logger),
	}, opts...)
	return &History{store: store.New("recent", p, opts...), limit: limit}
}

// Limit returns the configured history length.
func (h *History) Limit() int {
	return h.limit
}

// State returns a snapshot of the history.
func (h *History) State() State {
	return h.store.State()
}

// LastPersistError reports the most recent save failure, if any.
func (h *History) LastPersistError() error {
	return h.store.LastPersistError()
}

// Subscribe registers fn for every change.
func (h *History) Subscribe(fn func(State)) func() {
	return h.store.Subscribe(fn)
}

// AddItem records a view: any earlier entry for the product is dropped, the
// product goes to the front, and the oldest entries past the limit fall off.
func (h *History) AddItem(product catalog.Item) {
	_ = h.store.Update(func(prev State) (State, error) {
		next := make(catalog.Items, 0, min(len(prev.Items)+1, h.limit))
		next = append(next, product.Clone())
		for _, it := range prev.Items {
			if len(next) == h.limit {
				break
			}
			if it.ID != product.ID {
				next = append(next, it)
			}
		}
		return State{Items: next}, nil
	})
}

// RemoveItem drops productID and reports whether it was present.
func (h *History) RemoveItem(productID string) bool {
	removed := false
	_ = h.store.Update(func(prev State) (State, error) {
		if !prev.Items.Contains(productID) {
			return prev, store.ErrUnchanged
		}
		prev.Items = prev.Items.Without(productID)
		removed = true
		return prev, nil
	})
	return removed
}

// Clear empties the history.
func (h *History) Clear() {
	_ = h.store.Update(func(prev State) (State, error) {
		if len(prev.Items) == 0 {
			return prev, store.ErrUnchanged
		}
		return State{}, nil
	})
}

// Items returns the history, most recent first.
func (h *History) Items() catalog.Items {
	return h.State().Items
}
