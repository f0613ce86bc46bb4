package shop

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/persist"
	"github.com/five82/storefront/internal/pricing"
)

func product(id string, price string, stock int) catalog.Item {
	return catalog.Item{
		ID:       id,
		Slug:     id + "-slug",
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "games",
	}
}

func TestMoveAllToCart_MixedStock(t *testing.T) {
	s := Open(Options{})
	s.Saved.AddItem(product("a", "10", 5))
	s.Saved.AddItem(product("b", "10", 0))

	report := s.MoveAllToCart()
	if report.Succeeded() != 1 || report.Total() != 2 {
		t.Fatalf("report = %s, want moved 1 of 2", report.Summary())
	}
	if report.Summary() != "moved 1 of 2" {
		t.Fatalf("Summary = %q", report.Summary())
	}
	if report.ID == "" {
		t.Fatal("report has no ID")
	}

	if !s.Cart.Contains("a") || s.Cart.Contains("b") {
		t.Fatalf("cart lines = %+v, want only a", s.Cart.State().Lines)
	}
	if got := s.Saved.Items().IDs(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("saved = %v, want [b]", got)
	}

	failed := report.Steps[1]
	if failed.Phase != PhaseAdd || !errors.Is(failed.Err, cart.ErrOutOfStock) {
		t.Fatalf("failed step = %+v, want out of stock at add", failed)
	}
}

func TestMoveToCart_UsesLatestCatalogStock(t *testing.T) {
	s := Open(Options{})
	s.Saved.AddItem(product("a", "10", 0))

	snap := catalog.Snapshot{}.Next([]catalog.Item{product("a", "10", 3)}, nil, time.Now())
	s.ApplyCatalog(snap)

	step := s.MoveToCart("a")
	if !step.OK() {
		t.Fatalf("MoveToCart = %+v, want success after restock", step)
	}
	if line, _ := s.Cart.Line("a"); line.Quantity != 1 || line.Product.Stock != 3 {
		t.Fatalf("cart line = %+v, want quantity 1 stock 3", line)
	}
}

func TestMoveToCart_MissingProduct(t *testing.T) {
	s := Open(Options{})
	step := s.MoveToCart("nope")
	if step.OK() || !errors.Is(step.Err, ErrNotSaved) || step.Phase != PhaseLookup {
		t.Fatalf("step = %+v, want lookup failure", step)
	}
}

func TestSaveForLater(t *testing.T) {
	s := Open(Options{})
	if _, err := s.Cart.AddItem(product("a", "10", 5), 2); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	step := s.SaveForLater("a")
	if !step.OK() {
		t.Fatalf("SaveForLater = %+v", step)
	}
	if s.Cart.Contains("a") || !s.Saved.IsInSaveForLater("a") {
		t.Fatal("product should have moved from cart to saved")
	}

	if again := s.SaveForLater("a"); again.OK() {
		t.Fatalf("second SaveForLater = %+v, want failure", again)
	}
}

func TestTotals(t *testing.T) {
	cfg := pricing.DefaultConfig()
	s := Open(Options{Pricing: &cfg})

	empty := s.Totals()
	if !empty.Total.IsZero() || !empty.Shipping.IsZero() {
		t.Fatalf("empty Totals = %+v, want zero", empty)
	}
	if !empty.UntilFreeShipping.Equal(cfg.FreeShippingThreshold) {
		t.Fatalf("empty UntilFreeShipping = %s", empty.UntilFreeShipping)
	}

	_, _ = s.Cart.AddItem(product("a", "20", 10), 2)
	_, _ = s.Cart.AddItem(product("b", "15.5", 10), 1)
	got := s.Totals()
	if !got.Subtotal.Equal(decimal.RequireFromString("55.5")) {
		t.Fatalf("Subtotal = %s, want 55.5", got.Subtotal)
	}
	if !got.Total.Equal(decimal.RequireFromString("69.93")) {
		t.Fatalf("Total = %s, want 69.93", got.Total)
	}
}

func TestView_RecordsRecentlyViewed(t *testing.T) {
	src := catalog.NewStatic([]catalog.Item{product("a", "1", 1), product("b", "1", 1)})
	s := Open(Options{Catalog: src})
	ctx := context.Background()

	for _, slug := range []string{"a-slug", "b-slug", "a-slug"} {
		if _, err := s.View(ctx, slug); err != nil {
			t.Fatalf("View(%s) returned error: %v", slug, err)
		}
	}
	if got := s.Recent.Items().IDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("recent = %v, want [a b]", got)
	}

	if _, err := s.View(ctx, "missing"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("View(missing) error = %v, want ErrNotFound", err)
	}
	if len(s.Recent.Items()) != 2 {
		t.Fatal("failed view should not be recorded")
	}

	related, err := s.Related(ctx, product("a", "1", 1))
	if err != nil || len(related) != 1 || related[0].ID != "b" {
		t.Fatalf("Related = %v, %v; want [b]", related, err)
	}
}

func TestOpen_HydratesFromAdapterAndClearAll(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory(), nil)
	s := Open(Options{Adapter: adapter})
	_, _ = s.Cart.AddItem(product("a", "5", 5), 1)
	_ = s.Compare.AddItem(product("b", "5", 5))
	s.Saved.AddItem(product("c", "5", 5))
	s.Recent.AddItem(product("d", "5", 5))

	for _, key := range []string{"cart-storage", "compare-storage", "save-for-later", "recently-viewed"} {
		if _, err := adapter.Backend().Read(key); err != nil {
			t.Fatalf("key %s not persisted: %v", key, err)
		}
	}

	reopened := Open(Options{Adapter: adapter})
	if !reopened.Cart.Contains("a") || !reopened.Compare.Contains("b") ||
		!reopened.Saved.IsInSaveForLater("c") || len(reopened.Recent.Items()) != 1 {
		t.Fatal("reopened session lost state")
	}

	reopened.ClearAll()
	again := Open(Options{Adapter: adapter})
	if again.Cart.LineCount() != 0 || len(again.Compare.Items()) != 0 ||
		len(again.Saved.Items()) != 0 || len(again.Recent.Items()) != 0 {
		t.Fatal("ClearAll did not persist")
	}
}

type brokenBackend struct{ persist.Backend }

func (brokenBackend) Write(string, []byte) error { return errors.New("quota exceeded") }

func TestOpen_PersistErrorsAreReportedNotRolledBack(t *testing.T) {
	var reported []error
	s := Open(Options{
		Adapter:        persist.NewAdapter(brokenBackend{persist.NewMemory()}, nil),
		OnPersistError: func(err error) { reported = append(reported, err) },
	})

	if _, err := s.Cart.AddItem(product("a", "5", 5), 1); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if !s.Cart.Contains("a") {
		t.Fatal("in-memory change rolled back after failed save")
	}
	if len(reported) != 1 || s.Cart.LastPersistError() == nil {
		t.Fatalf("reported = %v, want one persist error", reported)
	}
}
