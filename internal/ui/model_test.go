package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/persist"
	"github.com/five82/storefront/internal/prefs"
	"github.com/five82/storefront/internal/shop"
)

func testItems() []catalog.Item {
	orig := decimal.RequireFromString("25")
	return []catalog.Item{
		{ID: "p1", Slug: "kite", Name: "Kite", Price: decimal.RequireFromString("19.99"), OriginalPrice: &orig, Stock: 5, Category: "toys"},
		{ID: "p2", Slug: "ball", Name: "Ball", Price: decimal.RequireFromString("4"), Stock: 0, Category: "toys"},
		{ID: "p3", Slug: "lamp", Name: "Lamp", Price: decimal.RequireFromString("80"), Stock: 2, Category: "home"},
	}
}

func newTestModel(t *testing.T) (Model, *shop.Session) {
	t.Helper()
	session := shop.Open(shop.Options{Catalog: catalog.NewStatic(testItems())})
	m := New(Options{Session: session})
	t.Cleanup(m.Close)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(Model)
	snap := catalog.Snapshot{}.Next(testItems(), nil, time.Now())
	next, _ = m.Update(catalogMsg(snap))
	return next.(Model), session
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_AddToCartFromCatalog(t *testing.T) {
	m, session := newTestModel(t)

	m = press(t, m, "a", "a")
	if line, ok := session.Cart.Line("p1"); !ok || line.Quantity != 2 {
		t.Fatalf("cart line = %+v, %v; want quantity 2", line, ok)
	}
	if m.views.cart.ItemCount() != 2 {
		t.Fatalf("subscribed view ItemCount = %d, want 2", m.views.cart.ItemCount())
	}

	m = press(t, m, "j", "a")
	if session.Cart.Contains("p2") {
		t.Fatal("sold-out product added to cart")
	}
	if m.notice.level != noticeError || !strings.Contains(m.notice.text, "out of stock") {
		t.Fatalf("notice = %+v, want out of stock error", m.notice)
	}
}

func TestModel_CartQuantityKeysAndSummary(t *testing.T) {
	m, session := newTestModel(t)
	m = press(t, m, "j", "j", "a", "2", "+", "+")

	line, _ := session.Cart.Line("p3")
	if line.Quantity != 2 {
		t.Fatalf("quantity = %d, want clamped to stock 2", line.Quantity)
	}
	if !strings.Contains(m.notice.text, "only 2 left in stock") {
		t.Fatalf("notice = %q, want stock notice", m.notice.text)
	}

	view := m.View()
	for _, want := range []string{"Subtotal", "$160.00", "FREE"} {
		if !strings.Contains(view, want) {
			t.Fatalf("cart view missing %q", want)
		}
	}

	m = press(t, m, "-", "-")
	if session.Cart.Contains("p3") {
		t.Fatal("line should be removed at quantity 0")
	}
}

func TestModel_CompareLimitNotice(t *testing.T) {
	session := shop.Open(shop.Options{})
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = session.Compare.AddItem(catalog.Item{ID: id, Name: id, Price: decimal.NewFromInt(1), Stock: 1})
	}
	m := New(Options{Session: session})
	t.Cleanup(m.Close)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m = next.(Model)
	next, _ = m.Update(catalogMsg(catalog.Snapshot{}.Next(testItems(), nil, time.Now())))
	m = next.(Model)

	m = press(t, m, "c")
	if !strings.Contains(m.notice.text, "comparison limit reached") {
		t.Fatalf("notice = %q, want limit notice", m.notice.text)
	}
	if len(session.Compare.Items()) != 4 {
		t.Fatalf("compare has %d items, want 4", len(session.Compare.Items()))
	}
}

func TestModel_SavedMoveAll(t *testing.T) {
	m, session := newTestModel(t)
	items := testItems()
	session.Saved.AddItem(items[0])
	session.Saved.AddItem(items[1])

	m = press(t, m, "3", "M")
	if m.notice.text != "moved 1 of 2" || m.notice.level != noticeWarn {
		t.Fatalf("notice = %+v, want partial move warning", m.notice)
	}
	if got := m.views.saved.Items.IDs(); len(got) != 1 || got[0] != "p2" {
		t.Fatalf("saved view = %v, want [p2]", got)
	}
}

func TestModel_FilterNarrowsCatalog(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "/")
	if !m.filtering {
		t.Fatal("filter prompt not open")
	}
	m = press(t, m, `category == "home"`, "enter")
	if m.filter == nil {
		t.Fatalf("filter not applied, notice = %q", m.notice.text)
	}
	if got := m.visibleCatalog(); len(got) != 1 || got[0].ID != "p3" {
		t.Fatalf("visible = %v, want [p3]", catalog.Items(got).IDs())
	}

	m = press(t, m, "/", "x", "enter")
	if m.notice.level != noticeError {
		t.Fatalf("notice = %+v, want invalid filter error", m.notice)
	}

	m = press(t, m, "esc")
	if m.filter != nil || len(m.visibleCatalog()) != 3 {
		t.Fatal("esc should clear the filter")
	}
}

func TestModel_DetailRecordsRecentlyViewed(t *testing.T) {
	m, session := newTestModel(t)

	msg := m.lookup(testItems()[2])()
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.detail == nil || m.detail.item.ID != "p3" {
		t.Fatalf("detail = %+v, want p3", m.detail)
	}
	if got := session.Recent.Items().IDs(); len(got) != 1 || got[0] != "p3" {
		t.Fatalf("recent = %v, want [p3]", got)
	}
	if !strings.Contains(m.View(), "Related") {
		t.Fatal("detail view missing related products")
	}

	m = press(t, m, "esc")
	if m.detail != nil {
		t.Fatal("esc should close the detail panel")
	}
}

func TestModel_CatalogUpdateReconcilesCart(t *testing.T) {
	m, session := newTestModel(t)
	m = press(t, m, "a", "a", "a")

	items := testItems()
	items[0].Stock = 1
	next, _ := m.Update(catalogMsg(m.snapshot.Next(items, nil, time.Now())))
	m = next.(Model)

	if line, _ := session.Cart.Line("p1"); line.Quantity != 1 {
		t.Fatalf("quantity = %d, want reconciled to 1", line.Quantity)
	}
	if !strings.Contains(m.notice.text, "1 cart line updated") {
		t.Fatalf("notice = %q, want reconcile notice", m.notice.text)
	}
}

func TestModel_ThemeAndViewPersistToPrefs(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory(), nil)
	session := shop.Open(shop.Options{})
	m := New(Options{Session: session, PrefsStore: adapter, Prefs: prefs.Default()})
	t.Cleanup(m.Close)

	m = press(t, m, "T", "2")
	p := prefs.Load(adapter)
	if p.Theme != "Slate" || p.View != "cart" {
		t.Fatalf("prefs = %+v, want Slate/cart", p)
	}

	reopened := New(Options{Session: session, Prefs: p})
	t.Cleanup(reopened.Close)
	if reopened.currentView != ViewCart || reopened.theme.Name != "Slate" {
		t.Fatalf("reopened view=%s theme=%s", reopened.currentView, reopened.theme.Name)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, cursor, rows int
		start, end      int
	}{
		{0, 0, 5, 0, 0},
		{3, 0, 5, 0, 3},
		{10, 4, 5, 0, 5},
		{10, 7, 5, 3, 8},
		{10, 9, 0, 0, 0},
	}
	for _, tt := range tests {
		start, end := window(tt.n, tt.cursor, tt.rows)
		if start != tt.start || end != tt.end {
			t.Fatalf("window(%d, %d, %d) = %d, %d; want %d, %d", tt.n, tt.cursor, tt.rows, start, end, tt.start, tt.end)
		}
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(unknown) = %q, want Dracula", got)
	}
}

func TestModel_LogPanelTailsLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.log")
	body := "time=2026-01-01T00:00:00Z level=INFO msg=started\ntime=2026-01-01T00:00:01Z level=ERROR msg=\"persist failed\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	session := shop.Open(shop.Options{Catalog: catalog.NewStatic(testItems())})
	m := New(Options{Session: session, LogFile: path})
	t.Cleanup(m.Close)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("L returned no command")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if len(m.logLines) != 2 {
		t.Fatalf("logLines = %v, want 2 lines", m.logLines)
	}
	if !strings.Contains(m.View(), "persist failed") {
		t.Fatal("log panel does not show the log tail")
	}

	m = press(t, m, "esc")
	if m.logLines != nil {
		t.Fatal("esc did not close the log panel")
	}
}

func TestModel_LogPanelDisabledWithoutFile(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "L")
	if m.logLines != nil || !strings.Contains(m.notice.text, "disabled") {
		t.Fatalf("logLines=%v notice=%+v, want disabled notice", m.logLines, m.notice)
	}
}

func TestModel_PersistErrorShowsNotice(t *testing.T) {
	ch := make(chan error, 1)
	session := shop.Open(shop.Options{Catalog: catalog.NewStatic(testItems())})
	m := New(Options{Session: session, PersistErrors: ch})
	t.Cleanup(m.Close)

	ch <- errors.New("write cart-storage: disk full")
	msg := waitForPersistError(context.Background(), ch)()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if m.notice.level != noticeError || !strings.Contains(m.notice.text, "disk full") {
		t.Fatalf("notice = %+v, want save failure", m.notice)
	}
	if cmd == nil {
		t.Fatal("Update did not wait for the next persist error")
	}
}
