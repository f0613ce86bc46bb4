// Package compare holds the product comparison list.
package compare

import (
	"fmt"
	"log/slog"

	"github.com/go-faster/errors"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/store"
)

// StorageKey is the persistence key for the compare list.
const StorageKey = "compare-storage"

// MaxItems is the most products that can be compared at once.
const MaxItems = 4

// ErrLimitReached matches every *LimitError.
var ErrLimitReached = errors.New("compare list is full")

// LimitError rejects an add to a full compare list.
type LimitError struct {
	ProductID string
	Limit     int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("cannot compare %s: limit of %d products reached", e.ProductID, e.Limit)
}

// Is matches ErrLimitReached.
func (e *LimitError) Is(target error) bool {
	return target == ErrLimitReached
}

// State is the persisted compare list in insertion order.
type State struct {
	Items catalog.Items `json:"items"`
}

// Clone deep-copies the state.
func (s State) Clone() State {
	return State{Items: s.Items.Clone()}
}

// Normalize drops duplicate and ID-less entries and keeps the first MaxItems.
func (s State) Normalize() State {
	items := s.Items.Unique()
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	return State{Items: items}
}

// List is the compare store.
type List struct {
	store *store.Store[State]
}

// New hydrates a compare list from p. Pass a nil p for an unpersisted list.
func New(p store.Persister[State], logger *slog.Logger, opts ...store.Option[State]) *List {
	opts = append([]store.Option[State]{
		store.WithClone(State.Clone),
		store.WithNormalize(State.Normalize),
		store.WithLogger[State](logger),
	}, opts...)
	return &List{store: store.New("compare", p, opts...)}
}

// State returns a snapshot of the list.
func (l *List) State() State {
	return l.store.State()
}

// LastPersistError reports the most recent save failure, if any.
func (l *List) LastPersistError() error {
	return l.store.LastPersistError()
}

// Subscribe registers fn for every change.
func (l *List) Subscribe(fn func(State)) func() {
	return l.store.Subscribe(fn)
}

// AddItem appends product. Adding a product already present is a no-op; a
// full list returns a *LimitError and evicts nothing.
func (l *List) AddItem(product catalog.Item) error {
	return l.store.Update(func(prev State) (State, error) {
		if prev.Items.Contains(product.ID) {
			return prev, store.ErrUnchanged
		}
		if len(prev.Items) >= MaxItems {
			return prev, &LimitError{ProductID: product.ID, Limit: MaxItems}
		}
		prev.Items = append(prev.Items, product.Clone())
		return prev, nil
	})
}

// RemoveItem drops productID and reports whether it was present.
func (l *List) RemoveItem(productID string) bool {
	removed := false
	_ = l.store.Update(func(prev State) (State, error) {
		if !prev.Items.Contains(productID) {
			return prev, store.ErrUnchanged
		}
		prev.Items = prev.Items.Without(productID)
		removed = true
		return prev, nil
	})
	return removed
}

// Toggle removes product when present and adds it otherwise.
func (l *List) Toggle(product catalog.Item) (added bool, err error) {
	if l.RemoveItem(product.ID) {
		return false, nil
	}
	if err := l.AddItem(product); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAll empties the list.
func (l *List) ClearAll() {
	_ = l.store.Update(func(prev State) (State, error) {
		if len(prev.Items) == 0 {
			return prev, store.ErrUnchanged
		}
		return State{}, nil
	})
}

// Contains reports whether productID is being compared.
func (l *List) Contains(productID string) bool {
	return l.State().Items.Contains(productID)
}

// Items returns the compared products in insertion order.
func (l *List) Items() catalog.Items {
	return l.State().Items
}

// Full reports whether another product would be rejected.
func (l *List) Full() bool {
	return len(l.State().Items) >= MaxItems
}
