package shop

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/compare"
	"github.com/five82/storefront/internal/persist"
	"github.com/five82/storefront/internal/pricing"
	"github.com/five82/storefront/internal/recent"
	"github.com/five82/storefront/internal/saved"
	"github.com/five82/storefront/internal/store"
)

// ErrNotSaved is reported when a move names a product that is not in the
// source list.
var ErrNotSaved = errors.New("product is not in the list")

// Options configures a Session.
type Options struct {
	// Adapter persists every store. Nil keeps state in memory only.
	Adapter *persist.Adapter
	// Catalog serves View and Related. Nil makes both return errors.
	Catalog catalog.Source
	// Pricing defaults to pricing.DefaultConfig.
	Pricing *pricing.Config
	// RecentLimit defaults to recent.DefaultLimit.
	RecentLimit int
	Logger      *slog.Logger
	// OnPersistError is called for every failed save in any store.
	OnPersistError func(error)
}

// Session owns one shopper's stores.
type Session struct {
	Cart    *cart.Cart
	Compare *compare.List
	Saved   *saved.List
	Recent  *recent.History

	catalog catalog.Source
	pricing pricing.Config
	logger  *slog.Logger

	mu    sync.Mutex
	stock func(id string) (int, bool)
}

// Open hydrates every store from opts.Adapter.
func Open(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := pricing.DefaultConfig()
	if opts.Pricing != nil {
		cfg = *opts.Pricing
	}
	limit := opts.RecentLimit
	if limit == 0 {
		limit = recent.DefaultLimit
	}

	s := &Session{
		catalog: opts.Catalog,
		pricing: cfg,
		logger:  logger,
	}
	s.Cart = cart.New(slot[cart.State](opts.Adapter, cart.StorageKey), logger,
		store.WithPersistErrorHandler[cart.State](opts.OnPersistError))
	s.Compare = compare.New(slot[compare.State](opts.Adapter, compare.StorageKey), logger,
		store.WithPersistErrorHandler[compare.State](opts.OnPersistError))
	s.Saved = saved.New(slot[saved.State](opts.Adapter, saved.StorageKey), logger,
		store.WithPersistErrorHandler[saved.State](opts.OnPersistError))
	s.Recent = recent.New(slot[recent.State](opts.Adapter, recent.StorageKey), limit, logger,
		store.WithPersistErrorHandler[recent.State](opts.OnPersistError))

	logger.Info("session opened",
		"cart_lines", s.Cart.LineCount(),
		"compare", len(s.Compare.Items()),
		"saved", len(s.Saved.Items()),
		"recent", len(s.Recent.Items()))
	return s
}

func slot[T any](a *persist.Adapter, key string) store.Persister[T] {
	if a == nil {
		return nil
	}
	return persist.NewSlot[T](a, key)
}

// Pricing returns the session's pricing configuration.
func (s *Session) Pricing() pricing.Config {
	return s.pricing
}

// Totals prices the current cart. An empty cart owes nothing, so shipping is
// not charged on it.
func (s *Session) Totals() pricing.Summary {
	state := s.Cart.State()
	if len(state.Lines) == 0 {
		return pricing.Summary{
			Subtotal:          decimal.Zero,
			Shipping:          decimal.Zero,
			Tax:               decimal.Zero,
			Total:             decimal.Zero,
			UntilFreeShipping: s.pricing.FreeShippingThreshold,
		}
	}
	return s.pricing.Breakdown(state.Subtotal())
}

// View looks up slug in the catalog and records it as recently viewed.
func (s *Session) View(ctx context.Context, slug string) (catalog.Item, error) {
	item, err := s.Lookup(ctx, slug)
	if err != nil {
		return catalog.Item{}, err
	}
	s.RecordView(item)
	return item, nil
}

// Lookup finds slug in the catalog without touching any store.
func (s *Session) Lookup(ctx context.Context, slug string) (catalog.Item, error) {
	if s.catalog == nil {
		return catalog.Item{}, errors.New("no catalog configured")
	}
	item, err := s.catalog.ProductBySlug(ctx, slug)
	if err != nil {
		return catalog.Item{}, errors.Wrapf(err, "view %s", slug)
	}
	return item, nil
}

// RecordView adds item to the recently viewed history.
func (s *Session) RecordView(item catalog.Item) {
	s.Recent.AddItem(item)
}

// Related lists products related to item.
func (s *Session) Related(ctx context.Context, item catalog.Item) ([]catalog.Item, error) {
	if s.catalog == nil {
		return nil, errors.New("no catalog configured")
	}
	items, err := s.catalog.RelatedProducts(ctx, item)
	if err != nil {
		return nil, errors.Wrapf(err, "related to %s", item.ID)
	}
	return items, nil
}

// ApplyCatalog records the stock levels in snap for later moves and
// reconciles the cart against them. It returns the number of cart lines that
// changed. Snapshots without items are ignored.
func (s *Session) ApplyCatalog(snap catalog.Snapshot) int {
	if !snap.HasItems {
		return 0
	}
	lookup := snap.StockLookup()
	s.mu.Lock()
	s.stock = lookup
	s.mu.Unlock()

	changed := s.Cart.ReconcileStock(lookup)
	if changed > 0 {
		s.logger.Info("cart reconciled with catalog stock", "lines_changed", changed)
	}
	return changed
}

// refresh overlays the latest known stock onto a saved snapshot.
func (s *Session) refresh(item catalog.Item) catalog.Item {
	s.mu.Lock()
	lookup := s.stock
	s.mu.Unlock()
	if lookup != nil {
		if n, ok := lookup(item.ID); ok {
			item.Stock = n
		}
	}
	return item
}

// MoveToCart moves one saved product into the cart with quantity 1. The
// product is added to the cart before it leaves the saved list; when the add
// fails, for example because the product sold out, it stays saved.
func (s *Session) MoveToCart(productID string) Step {
	step := Step{ProductID: productID, Phase: PhaseLookup}
	item, ok := s.Saved.Item(productID)
	if !ok {
		step.Err = errors.Wrap(ErrNotSaved, productID)
		return step
	}
	item = s.refresh(item)
	step.Name = item.Name

	step.Phase = PhaseAdd
	out, err := s.Cart.AddItem(item, 1)
	step.Outcome = out
	if err != nil {
		step.Err = err
		return step
	}

	step.Phase = PhaseRemove
	s.Saved.RemoveItem(productID)
	step.Phase = PhaseDone
	return step
}

// MoveAllToCart moves every saved product into the cart. Products that
// cannot be added stay saved and the remaining products are still moved.
func (s *Session) MoveAllToCart() Report {
	report := Report{ID: uuid.NewString()}
	for _, id := range s.Saved.Items().IDs() {
		step := s.MoveToCart(id)
		if !step.OK() {
			s.logger.Warn("move to cart failed",
				"move_id", report.ID, "product_id", id, "phase", step.Phase, "error", step.Err)
		}
		report.Steps = append(report.Steps, step)
	}
	s.logger.Info("moved saved items to cart",
		"move_id", report.ID, "succeeded", report.Succeeded(), "failed", report.Failed())
	return report
}

// SaveForLater moves a cart line into the saved list. A product that is
// already saved keeps its existing entry and the cart line is still removed.
func (s *Session) SaveForLater(productID string) Step {
	step := Step{ProductID: productID, Phase: PhaseLookup}
	line, ok := s.Cart.Line(productID)
	if !ok {
		step.Err = errors.Wrap(ErrNotSaved, productID)
		return step
	}
	step.Name = line.Product.Name

	step.Phase = PhaseAdd
	s.Saved.AddItem(line.Product)

	step.Phase = PhaseRemove
	s.Cart.RemoveItem(productID)
	step.Phase = PhaseDone
	return step
}

// PersistError returns the first outstanding save failure across the stores.
func (s *Session) PersistError() error {
	for _, err := range []error{
		s.Cart.LastPersistError(),
		s.Compare.LastPersistError(),
		s.Saved.LastPersistError(),
		s.Recent.LastPersistError(),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// ClearAll empties every store.
func (s *Session) ClearAll() {
	s.Cart.Clear()
	s.Compare.ClearAll()
	s.Saved.Clear()
	s.Recent.Clear()
	s.logger.Info("session cleared")
}
