package compare

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/persist"
)

func item(id string) catalog.Item {
	return catalog.Item{ID: id, Slug: id, Name: id, Price: decimal.NewFromInt(1), Stock: 1}
}

func TestAddItem_Cap(t *testing.T) {
	l := New(nil, nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := l.AddItem(item(id)); err != nil {
			t.Fatalf("AddItem(%s) returned error: %v", id, err)
		}
	}

	err := l.AddItem(item("e"))
	var limitErr *LimitError
	if !errors.As(err, &limitErr) || !errors.Is(err, ErrLimitReached) {
		t.Fatalf("AddItem(e) error = %v, want *LimitError", err)
	}
	if limitErr.ProductID != "e" || limitErr.Limit != MaxItems {
		t.Fatalf("LimitError = %+v", limitErr)
	}

	got := l.Items().IDs()
	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Items = %v, want %v (no eviction)", got, want)
		}
	}
	if !l.Full() {
		t.Fatal("Full = false, want true")
	}
}

func TestAddItem_DuplicateIsNoOpEvenWhenFull(t *testing.T) {
	l := New(nil, nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = l.AddItem(item(id))
	}
	notified := 0
	l.Subscribe(func(State) { notified++ })

	if err := l.AddItem(item("b")); err != nil {
		t.Fatalf("AddItem(duplicate) error = %v, want nil", err)
	}
	if notified != 0 || len(l.Items()) != 4 {
		t.Fatalf("duplicate add changed list: notified=%d len=%d", notified, len(l.Items()))
	}
}

func TestRemoveAndToggle(t *testing.T) {
	l := New(nil, nil)
	added, err := l.Toggle(item("a"))
	if err != nil || !added {
		t.Fatalf("Toggle(a) = %v, %v; want added", added, err)
	}
	added, err = l.Toggle(item("a"))
	if err != nil || added {
		t.Fatalf("second Toggle(a) = %v, %v; want removed", added, err)
	}
	if l.Contains("a") {
		t.Fatal("a still compared after toggle off")
	}
	if l.RemoveItem("a") {
		t.Fatal("RemoveItem(missing) = true, want false")
	}
}

func TestClearAll_Persists(t *testing.T) {
	slot := persist.NewSlot[State](persist.NewAdapter(persist.NewMemory(), nil), StorageKey)
	l := New(slot, nil)
	_ = l.AddItem(item("a"))
	_ = l.AddItem(item("b"))

	if got := New(slot, nil).Items().IDs(); len(got) != 2 {
		t.Fatalf("reloaded = %v, want 2 items", got)
	}

	l.ClearAll()
	if got := New(slot, nil).Items(); len(got) != 0 {
		t.Fatalf("reloaded after ClearAll = %v, want empty", got.IDs())
	}
}

func TestNew_RepairsHydratedList(t *testing.T) {
	adapter := persist.NewAdapter(persist.NewMemory(), nil)
	bad := State{Items: catalog.Items{item("a"), item("b"), item("a"), item("c"), item("d"), item("e"), {Name: "no id"}}}
	if _, err := persist.Save(adapter, StorageKey, bad); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	l := New(persist.NewSlot[State](adapter, StorageKey), nil)
	if got := l.Items().IDs(); len(got) != MaxItems || got[0] != "a" || got[1] != "b" || got[2] != "c" || got[3] != "d" {
		t.Fatalf("hydrated ids = %v, want [a b c d]", got)
	}
	if !l.RemoveItem("a") || l.Contains("a") {
		t.Fatal("RemoveItem(a) left an entry behind")
	}
}
