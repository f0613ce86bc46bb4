package catalog

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// relatedLimit caps RelatedProducts results.
const relatedLimit = 4

// Source is the read-only catalog service the stores consume.
type Source interface {
	Products(ctx context.Context) ([]Item, error)
	ProductBySlug(ctx context.Context, slug string) (Item, error)
	RelatedProducts(ctx context.Context, item Item) ([]Item, error)
}

var (
	_ Source = (*Static)(nil)
	_ Source = (*Client)(nil)
)

// Static serves a fixed product list from memory.
type Static struct {
	mu    sync.RWMutex
	items Items
}

// NewStatic builds a Static source over a copy of items.
func NewStatic(items []Item) *Static {
	return &Static{items: Items(items).Clone()}
}

// Products returns every product in catalog order.
func (s *Static) Products(context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Clone(), nil
}

// ProductBySlug looks up a product by slug.
func (s *Static) ProductBySlug(_ context.Context, slug string) (Item, error) {
	slug = strings.TrimSpace(slug)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.Slug == slug {
			return it.Clone(), nil
		}
	}
	return Item{}, errors.Wrapf(ErrNotFound, "slug %q", slug)
}

// RelatedProducts returns up to four other products, same category first.
func (s *Static) RelatedProducts(_ context.Context, item Item) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return related(s.items, item, relatedLimit), nil
}

// Replace swaps the product list, e.g. after a stock update.
func (s *Static) Replace(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = Items(items).Clone()
}

func related(all Items, item Item, limit int) []Item {
	out := make([]Item, 0, limit)
	for _, it := range all {
		if len(out) == limit {
			return out
		}
		if it.ID != item.ID && it.Category == item.Category {
			out = append(out, it.Clone())
		}
	}
	for _, it := range all {
		if len(out) == limit {
			break
		}
		if it.ID != item.ID && it.Category != item.Category {
			out = append(out, it.Clone())
		}
	}
	return out
}

// fileProduct is the TOML shape of one [[products]] entry.
type fileProduct struct {
	ID            string   `toml:"id"`
	Slug          string   `toml:"slug"`
	Name          string   `toml:"name"`
	Price         float64  `toml:"price"`
	OriginalPrice float64  `toml:"original_price"`
	Stock         int      `toml:"stock"`
	Images        []string `toml:"images"`
	Category      string   `toml:"category"`
}

// LoadFile reads a TOML catalog of [[products]] tables.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return ParseTOML(data)
}

// ParseTOML decodes a TOML catalog document.
func ParseTOML(data []byte) (*Static, error) {
	var raw struct {
		Products []fileProduct `toml:"products"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}

	items := make([]Item, 0, len(raw.Products))
	seen := make(map[string]struct{}, len(raw.Products))
	for i, p := range raw.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, errors.Errorf("parse catalog: product %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, errors.Errorf("parse catalog: duplicate product id %q", id)
		}
		seen[id] = struct{}{}

		item := Item{
			ID:       id,
			Slug:     strings.TrimSpace(p.Slug),
			Name:     strings.TrimSpace(p.Name),
			Price:    decimal.NewFromFloat(p.Price),
			Stock:    max(p.Stock, 0),
			Images:   p.Images,
			Category: strings.TrimSpace(p.Category),
		}
		if item.Slug == "" {
			item.Slug = id
		}
		if p.OriginalPrice > 0 {
			orig := decimal.NewFromFloat(p.OriginalPrice)
			item.OriginalPrice = &orig
		}
		items = append(items, item)
	}
	return NewStatic(items), nil
}
