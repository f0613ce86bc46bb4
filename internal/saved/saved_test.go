package saved

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/persist"
)

func item(id string) catalog.Item {
	return catalog.Item{ID: id, Slug: id, Name: id, Price: decimal.NewFromInt(3), Stock: 2}
}

func TestAddItem_RejectsDuplicates(t *testing.T) {
	l := New(nil, nil)
	if !l.AddItem(item("a")) {
		t.Fatal("AddItem(a) = false, want true")
	}
	if !l.AddItem(item("b")) {
		t.Fatal("AddItem(b) = false, want true")
	}
	if l.AddItem(item("a")) {
		t.Fatal("AddItem(a) again = true, want false")
	}

	got := l.Items().IDs()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Items = %v, want [a b]", got)
	}
	if !l.IsInSaveForLater("b") || l.IsInSaveForLater("c") {
		t.Fatal("IsInSaveForLater mismatch")
	}
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	l := New(nil, nil)
	l.AddItem(item("a"))
	if !l.RemoveItem("a") {
		t.Fatal("RemoveItem(a) = false, want true")
	}
	if l.RemoveItem("a") {
		t.Fatal("second RemoveItem(a) = true, want false")
	}
}

func TestList_PersistsAndClears(t *testing.T) {
	slot := persist.NewSlot[State](persist.NewAdapter(persist.NewMemory(), nil), StorageKey)
	l := New(slot, nil)
	l.AddItem(item("a"))

	reloaded := New(slot, nil)
	it, ok := reloaded.Item("a")
	if !ok || !it.Price.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("reloaded Item(a) = %+v, %v", it, ok)
	}

	l.Clear()
	if n := len(New(slot, nil).Items()); n != 0 {
		t.Fatalf("reloaded after Clear has %d items, want 0", n)
	}
}

func TestNew_RepairsHydratedList(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory(), nil)
	bad := State{Items: catalog.Items{item("a"), item("b"), item("a"), {Name: "no id"}}}
	if _, err := persist.Save(adapter, StorageKey, bad); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	l := New(persist.NewSlot[State](adapter, StorageKey), nil)
	if got := l.Items().IDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("hydrated ids = %v, want [a b]", got)
	}
	if !l.RemoveItem("a") || l.IsInSaveForLater("a") {
		t.Fatal("RemoveItem(a) left an entry behind")
	}
}
