package recent

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/persist"
)

func item(id string) catalog.Item {
	return catalog.Item{ID: id, Slug: id, Name: id, Price: decimal.NewFromInt(1), Stock: 1}
}

func ids(h *History) string {
	return fmt.Sprint(h.Items().IDs())
}

func TestAddItem_Deduplicates(t *testing.T) {
	h := New(nil, DefaultLimit, nil)
	h.AddItem(item("a"))
	h.AddItem(item("b"))
	h.AddItem(item("a"))

	if got := ids(h); got != "[a b]" {
		t.Fatalf("Items = %s, want [a b]", got)
	}
}

func TestAddItem_TruncatesToLimit(t *testing.T) {
	h := New(nil, 3, nil)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		h.AddItem(item(id))
	}
	if got := ids(h); got != "[e d c]" {
		t.Fatalf("Items = %s, want [e d c]", got)
	}

	h.AddItem(item("c"))
	if got := ids(h); got != "[c e d]" {
		t.Fatalf("Items = %s, want [c e d]", got)
	}
}

func TestNew_LimitFallback(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{MaxLimit + 1, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
	}
	for _, tt := range tests {
		if got := New(nil, tt.in, nil).Limit(); got != tt.want {
			t.Fatalf("New(limit %d).Limit() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHistory_PersistRemoveClear(t *testing.T) {
	slot := persist.NewSlot[State](persist.NewAdapter(persist.NewMemory(), nil), StorageKey)
	h := New(slot, DefaultLimit, nil)
	h.AddItem(item("a"))
	h.AddItem(item("b"))

	reloaded := New(slot, DefaultLimit, nil)
	if got := ids(reloaded); got != "[b a]" {
		t.Fatalf("reloaded Items = %s, want [b a]", got)
	}

	if !reloaded.RemoveItem("a") || reloaded.RemoveItem("a") {
		t.Fatal("RemoveItem should succeed once")
	}
	reloaded.Clear()
	if got := ids(New(slot, DefaultLimit, nil)); got != "[]" {
		t.Fatalf("after Clear Items = %s, want []", got)
	}
}

func TestNew_RepairsHydratedHistory(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory(), nil)
	bad := State{Items: catalog.Items{item("a"), item("b"), item("a"), item("c"), item("d"), {Name: "no id"}}}
	if _, err := persist.Save(adapter, StorageKey, bad); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	h := New(persist.NewSlot[State](adapter, StorageKey), 3, nil)
	if got := ids(h); got != "[a b c]" {
		t.Fatalf("hydrated ids = %s, want [a b c]", got)
	}
	if !h.RemoveItem("a") || h.Items().Contains("a") {
		t.Fatal("RemoveItem(a) left an entry behind")
	}
}
