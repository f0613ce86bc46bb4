// Package saved holds products the shopper set aside for later.
package saved

import (
	"log/slog"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/store"
)

// StorageKey is the persistence key for the save-for-later list.
const StorageKey = "save-for-later"

// State is the persisted list in the order products were saved.
type State struct {
	Items catalog.Items `json:"items"`
}

// Clone deep-copies the state.
func (s State) Clone() State {
	return State{Items: s.Items.Clone()}
}

// Normalize drops duplicate and ID-less entries.
func (s State) Normalize() State {
	return State{Items: s.Items.Unique()}
}

// List is the save-for-later store. It has no size limit.
type List struct {
	store *store.Store[State]
}

// New hydrates the list from p. Pass a nil p for an unpersisted list.
func New(p store.Persister[State], logger *slog.Logger, opts ...store.Option[State]) *List {
	opts = append([]store.Option[State]{
		store.WithClone(State.Clone),
		store.WithNormalize(State.Normalize),
		store.WithLogger[State](logger),
	}, opts...)
	return &List{store: store.New("saved", p, opts...)}
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

// AddItem appends product and reports whether it was added; a product
// already saved is left where it is.
func (l *List) AddItem(product catalog.Item) bool {
	added := false
	_ = l.store.Update(func(prev State) (State, error) {
		if prev.Items.Contains(product.ID) {
			return prev, store.ErrUnchanged
		}
		prev.Items = append(prev.Items, product.Clone())
		added = true
		return prev, nil
	})
	return added
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

// Clear empties the list.
func (l *List) Clear() {
	_ = l.store.Update(func(prev State) (State, error) {
		if len(prev.Items) == 0 {
			return prev, store.ErrUnchanged
		}
		return State{}, nil
	})
}

// IsInSaveForLater reports whether productID is saved.
func (l *List) IsInSaveForLater(productID string) bool {
	return l.State().Items.Contains(productID)
}

// Item returns the saved snapshot for productID.
func (l *List) Item(productID string) (catalog.Item, bool) {
	items := l.State().Items
	if i := items.Index(productID); i >= 0 {
		return items[i], true
	}
	return catalog.Item{}, false
}

// Items returns the saved products in the order they were saved.
func (l *List) Items() catalog.Items {
	return l.State().Items
}
