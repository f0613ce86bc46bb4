package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Item is the slice of a catalog product the commerce stores reference.
// Stores keep Items by value; the catalog owns the authoritative copy.
type Item struct {
	ID            string           `json:"id"`
	Slug          string           `json:"slug"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock         int              `json:"stock"`
	Images        []string         `json:"images,omitempty"`
	Category      string           `json:"category"`
}

// Clone returns a deep copy that shares no slices or pointers with i.
func (i Item) Clone() Item {
	dup := i
	dup.Images = slices.Clone(i.Images)
	if i.OriginalPrice != nil {
		orig := *i.OriginalPrice
		dup.OriginalPrice = &orig
	}
	return dup
}

// InStock reports whether at least one unit can be purchased.
func (i Item) InStock() bool {
	return i.Stock > 0
}

// OnSale reports whether the item carries an original price above its price.
func (i Item) OnSale() bool {
	return i.OriginalPrice != nil && i.OriginalPrice.GreaterThan(i.Price)
}

// Thumbnail returns the first image or an empty string.
func (i Item) Thumbnail() string {
	if len(i.Images) == 0 {
		return ""
	}
	return i.Images[0]
}

// Items is an ordered collection of catalog snapshots keyed by ID.
type Items []Item

// Index returns the position of id, or -1.
func (items Items) Index(id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// Contains reports whether an item with id is present.
func (items Items) Contains(id string) bool {
	return items.Index(id) >= 0
}

// Without returns a copy of items with every entry for id removed.
func (items Items) Without(id string) Items {
	out := make(Items, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Unique keeps the first entry for each ID and drops entries without one.
func (items Items) Unique() Items {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make(Items, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Clone deep-copies the collection. A nil or empty collection clones to nil.
func (items Items) Clone() Items {
	if len(items) == 0 {
		return nil
	}
	dup := make(Items, len(items))
	for i, it := range items {
		dup[i] = it.Clone()
	}
	return dup
}

// IDs lists item IDs in order.
func (items Items) IDs() []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
