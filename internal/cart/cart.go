package cart

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/store"
)

// StorageKey is the persistence key for the cart.
const StorageKey = "cart-storage"

// Line is one product in the cart. Product is the snapshot taken when the
// line was created; its price stays locked for the life of the line.
type Line struct {
	Product  catalog.Item `json:"product"`
	Quantity int          `json:"quantity"`
}

// Total is price × quantity.
func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the persisted cart: at most one line per product ID, in the order
// lines were first added.
type State struct {
	Lines []Line `json:"lines"`
}

// Clone deep-copies the state.
func (s State) Clone() State {
	if len(s.Lines) == 0 {
		return State{}
	}
	lines := make([]Line, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = Line{Product: l.Product.Clone(), Quantity: l.Quantity}
	}
	return State{Lines: lines}
}

// Normalize repairs a state that breaks the cart rules: lines without an ID
// or with a quantity below one are dropped, duplicate lines merge into the
// first (keeping its locked price), and quantities are clamped to stock when
// the product has any.
func (s State) Normalize() State {
	var out State
	for _, l := range s.Lines {
		if l.Product.ID == "" || l.Quantity < 1 {
			continue
		}
		if i := out.index(l.Product.ID); i >= 0 {
			merged := out.Lines[i]
			merged.Quantity = addCapped(merged.Quantity, l.Quantity)
			out.Lines[i] = merged
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	for i, l := range out.Lines {
		if l.Product.Stock > 0 && l.Quantity > l.Product.Stock {
			out.Lines[i].Quantity = l.Product.Stock
		}
	}
	return out
}

// addCapped adds two non-negative quantities without overflowing.
func addCapped(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func (s State) index(id string) int {
	for i, l := range s.Lines {
		if l.Product.ID == id {
			return i
		}
	}
	return -1
}

// Line returns the line for id.
func (s State) Line(id string) (Line, bool) {
	if i := s.index(id); i >= 0 {
		return s.Lines[i], true
	}
	return Line{}, false
}

// Subtotal sums price × quantity over all lines using the locked prices.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// ItemCount sums quantities across lines.
func (s State) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Outcome describes what a quantity-changing call did.
type Outcome struct {
	Line      Line
	Requested int  // quantity the caller asked for
	Clamped   bool // stock limited the result
	Removed   bool // the line no longer exists
	Changed   bool
}

// Notice renders a shopper-facing note for a clamped result, or "".
func (o Outcome) Notice() string {
	if !o.Clamped {
		return ""
	}
	return fmt.Sprintf("only %d left in stock", o.Line.Product.Stock)
}

// Cart is the cart store.
type Cart struct {
	store *store.Store[State]
}

// New hydrates a cart from p. Pass a nil p for an unpersisted cart.
func New(p store.Persister[State], logger *slog.Logger, opts ...store.Option[State]) *Cart {
	opts = append([]store.Option[State]{
		store.WithClone(State.Clone),
		store.WithNormalize(State.Normalize),
		store.WithLogger[State](logger),
	}, opts...)
	return &Cart{store: store.New("cart", p, opts...)}
}

// State returns a snapshot of the cart.
func (c *Cart) State() State {
	return c.store.State()
}

// Subscribe registers fn for every cart change.
func (c *Cart) Subscribe(fn func(State)) func() {
	return c.store.Subscribe(fn)
}

// LastPersistError reports the most recent save failure, if any.
func (c *Cart) LastPersistError() error {
	return c.store.LastPersistError()
}

// AddItem adds quantity units of product. An existing line grows up to the
// product's stock and keeps its locked price; a new line starts at
// min(quantity, stock). Products without stock are rejected with a
// *StockError and the cart is left unchanged.
func (c *Cart) AddItem(product catalog.Item, quantity int) (Outcome, error) {
	if quantity < 1 {
		return Outcome{}, errors.Wrapf(ErrInvalidQuantity, "add %s: got %d", product.ID, quantity)
	}
	if product.Stock <= 0 {
		return Outcome{}, &StockError{ProductID: product.ID, Name: product.Name}
	}

	var out Outcome
	err := c.store.Update(func(prev State) (State, error) {
		out = Outcome{Requested: quantity}
		if i := prev.index(product.ID); i >= 0 {
			line := prev.Lines[i]
			line.Product.Stock = product.Stock
			if quantity > product.Stock-line.Quantity {
				line.Quantity = product.Stock
				out.Clamped = true
			} else {
				line.Quantity += quantity
			}
			out.Line = line
			if line.Quantity == prev.Lines[i].Quantity && line.Product.Stock == prev.Lines[i].Product.Stock {
				return prev, store.ErrUnchanged
			}
			prev.Lines[i] = line
			out.Changed = true
			return prev, nil
		}

		line := Line{Product: product.Clone(), Quantity: min(quantity, product.Stock)}
		out.Clamped = line.Quantity < quantity
		out.Line = line
		out.Changed = true
		prev.Lines = append(prev.Lines, line)
		return prev, nil
	})
	return out, err
}

// RemoveItem deletes the line for productID. It reports whether a line was
// removed; removing a missing line is a no-op.
func (c *Cart) RemoveItem(productID string) bool {
	removed := false
	_ = c.store.Update(func(prev State) (State, error) {
		i := prev.index(productID)
		if i < 0 {
			return prev, store.ErrUnchanged
		}
		prev.Lines = append(prev.Lines[:i], prev.Lines[i+1:]...)
		removed = true
		return prev, nil
	})
	return removed
}

// UpdateQuantity sets the quantity for productID. Zero or less removes the
// line. Otherwise the quantity is clamped to [1, stock]; for a line whose
// product is now out of stock it may only go down. A missing line is a no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) (Outcome, error) {
	var out Outcome
	err := c.store.Update(func(prev State) (State, error) {
		out = Outcome{Requested: quantity}
		i := prev.index(productID)
		if i < 0 {
			return prev, store.ErrUnchanged
		}
		line := prev.Lines[i]
		if quantity <= 0 {
			prev.Lines = append(prev.Lines[:i], prev.Lines[i+1:]...)
			out.Line = line
			out.Removed = true
			out.Changed = true
			return prev, nil
		}

		next := quantity
		if stock := line.Product.Stock; stock > 0 {
			next = min(next, stock)
		} else {
			next = min(next, line.Quantity)
		}
		out.Clamped = next < quantity
		if next == line.Quantity {
			out.Line = line
			return prev, store.ErrUnchanged
		}
		line.Quantity = next
		prev.Lines[i] = line
		out.Line = line
		out.Changed = true
		return prev, nil
	})
	return out, err
}

// Clear empties the cart.
func (c *Cart) Clear() {
	_ = c.store.Update(func(prev State) (State, error) {
		if len(prev.Lines) == 0 {
			return prev, store.ErrUnchanged
		}
		return State{}, nil
	})
}

// ReconcileStock refreshes each line's stock from lookup and lowers
// quantities that now exceed it. Prices stay locked and lines whose product
// sold out are kept. It returns the number of lines that changed.
func (c *Cart) ReconcileStock(lookup func(id string) (stock int, ok bool)) int {
	changed := 0
	_ = c.store.Update(func(prev State) (State, error) {
		changed = 0
		for i, line := range prev.Lines {
			stock, ok := lookup(line.Product.ID)
			stock = max(stock, 0)
			if !ok || stock == line.Product.Stock {
				continue
			}
			line.Product.Stock = stock
			if line.Product.Stock > 0 && line.Quantity > line.Product.Stock {
				line.Quantity = line.Product.Stock
			}
			prev.Lines[i] = line
			changed++
		}
		if changed == 0 {
			return prev, store.ErrUnchanged
		}
		return prev, nil
	})
	return changed
}

// Subtotal is the sum of price × quantity over current lines.
func (c *Cart) Subtotal() decimal.Decimal {
	return c.State().Subtotal()
}

// ItemCount is the total number of units in the cart.
func (c *Cart) ItemCount() int {
	return c.State().ItemCount()
}

// LineCount is the number of distinct products in the cart.
func (c *Cart) LineCount() int {
	return len(c.State().Lines)
}

// Contains reports whether productID has a line.
func (c *Cart) Contains(productID string) bool {
	return c.State().index(productID) >= 0
}

// Line returns the line for productID.
func (c *Cart) Line(productID string) (Line, bool) {
	return c.State().Line(productID)
}
