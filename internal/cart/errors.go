package cart

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrOutOfStock matches any *StockError.
	ErrOutOfStock = errors.New("out of stock")
	// ErrInvalidQuantity is returned when a requested quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// StockError reports an add rejected because the product has no stock.
type StockError struct {
	ProductID string
	Name      string
	Available int
}

func (e *StockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	if e.Available <= 0 {
		return fmt.Sprintf("%s is out of stock", name)
	}
	return fmt.Sprintf("only %d of %s left in stock", e.Available, name)
}

// Is lets errors.Is(err, ErrOutOfStock) match.
func (e *StockError) Is(target error) bool {
	return target == ErrOutOfStock
}
