package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func filterFixture() []Item {
	orig := decimal.NewFromInt(30)
	return []Item{
		{ID: "a", Name: "Rope Toy", Category: "toys", Price: decimal.RequireFromString("12.5"), Stock: 4},
		{ID: "b", Name: "Squeaky Duck", Category: "toys", Price: decimal.NewFromInt(25), OriginalPrice: &orig, Stock: 0},
		{ID: "c", Name: "Dog Bed", Category: "beds", Price: decimal.RequireFromString("89.99"), Stock: 2},
	}
}

func TestCompileFilter_Matches(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"a", "b", "c"}},
		{`category == "toys"`, []string{"a", "b"}},
		{`price < 20`, []string{"a"}},
		{`in_stock && price > 10`, []string{"a", "c"}},
		{`on_sale`, []string{"b"}},
		{`name contains "Bed"`, []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := CompileFilter(tt.expr)
			if err != nil {
				t.Fatalf("CompileFilter returned error: %v", err)
			}
			got := Items(f.Apply(filterFixture())).IDs()
			if len(got) != len(tt.want) {
				t.Fatalf("Apply = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Apply = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCompileFilter_RejectsInvalid(t *testing.T) {
	for _, src := range []string{`price +`, `unknown_field == 1`, `price + 1`} {
		if _, err := CompileFilter(src); err == nil {
			t.Fatalf("CompileFilter(%q) returned nil error, want error", src)
		}
	}
}

func TestSnapshot_ConsecutiveFailures(t *testing.T) {
	var s Snapshot
	now := time.Now()

	if s.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s = s.Next([]Item{{ID: "a", Stock: 3}}, nil, now)
	if !s.HasItems || len(s.Items) != 1 {
		t.Fatalf("snapshot items = %#v, want 1 item", s.Items)
	}

	s = s.Next(nil, errors.New("fail 1"), now)
	if s.ConsecutiveFailures != 1 || s.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", s.ConsecutiveFailures, s.IsOffline())
	}
	if len(s.Items) != 1 {
		t.Fatalf("items dropped on error: %#v", s.Items)
	}

	s = s.Next(nil, errors.New("fail 2"), now)
	if !s.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	s = s.Next([]Item{{ID: "a", Stock: 1}}, nil, now)
	if s.ConsecutiveFailures != 0 || s.LastError != nil {
		t.Fatalf("success should reset failures; got %d, %v", s.ConsecutiveFailures, s.LastError)
	}

	lookup := s.StockLookup()
	if n, ok := lookup("a"); !ok || n != 1 {
		t.Fatalf("StockLookup(a) = %d, %v; want 1, true", n, ok)
	}
	if _, ok := lookup("zzz"); ok {
		t.Fatal("StockLookup(zzz) ok = true, want false")
	}
}
