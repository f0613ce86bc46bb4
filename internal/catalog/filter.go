package catalog

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-faster/errors"
)

// filterEnv is the variable set a filter expression can reference.
type filterEnv struct {
	ID       string  `expr:"id"`
	Slug     string  `expr:"slug"`
	Name     string  `expr:"name"`
	Category string  `expr:"category"`
	Price    float64 `expr:"price"`
	Stock    int     `expr:"stock"`
	OnSale   bool    `expr:"on_sale"`
	InStock  bool    `expr:"in_stock"`
}

// Filter is a compiled boolean product predicate, for example
// `category == "toys" && price < 25 && in_stock`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles src. An empty src yields a filter matching everything.
func CompileFilter(src string) (*Filter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(src, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "compile filter %q", src)
	}
	return &Filter{source: src, program: program}, nil
}

// String returns the expression source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the filter for item. Evaluation errors count as no match.
func (f *Filter) Match(item Item) bool {
	if f == nil || f.program == nil {
		return true
	}
	price, _ := item.Price.Float64()
	out, err := expr.Run(f.program, filterEnv{
		ID:       item.ID,
		Slug:     item.Slug,
		Name:     item.Name,
		Category: item.Category,
		Price:    price,
		Stock:    item.Stock,
		OnSale:   item.OnSale(),
		InStock:  item.InStock(),
	})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Apply returns the items matching f, preserving order.
func (f *Filter) Apply(items []Item) []Item {
	if f == nil || f.program == nil {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
