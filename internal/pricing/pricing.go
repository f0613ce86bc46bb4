// Package pricing computes shipping, tax and totals from a cart subtotal.
//
// All arithmetic is exact decimal arithmetic; nothing is rounded until Format
// renders an amount for display.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the checkout pricing parameters.
type Config struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultConfig is free shipping from 100, a 9.99 flat fee and 8% tax.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: decimal.NewFromInt(100),
		FlatShippingFee:       decimal.RequireFromString("9.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Validate rejects negative amounts and tax rates of 100% or more.
func (c Config) Validate() error {
	if c.FreeShippingThreshold.IsNegative() {
		return errors.New("free shipping threshold must not be negative")
	}
	if c.FlatShippingFee.IsNegative() {
		return errors.New("flat shipping fee must not be negative")
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.Errorf("tax rate %s must be in [0, 1)", c.TaxRate)
	}
	return nil
}

// Shipping is zero at or above the free-shipping threshold, the flat fee below it.
func (c Config) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(c.FreeShippingThreshold) {
		return decimal.Zero
	}
	return c.FlatShippingFee
}

// Tax is subtotal × rate.
func (c Config) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.TaxRate)
}

// Total is subtotal + shipping + tax.
func (c Config) Total(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(c.Shipping(subtotal)).Add(c.Tax(subtotal))
}

// Summary is the checkout breakdown for one subtotal.
type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	// UntilFreeShipping is how much more qualifies for free shipping; zero
	// once it applies.
	UntilFreeShipping decimal.Decimal
}

// FreeShipping reports whether shipping is waived.
func (s Summary) FreeShipping() bool {
	return s.Shipping.IsZero()
}

// Breakdown computes every Summary field from subtotal.
func (c Config) Breakdown(subtotal decimal.Decimal) Summary {
	remaining := c.FreeShippingThreshold.Sub(subtotal)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Summary{
		Subtotal:          subtotal,
		Shipping:          c.Shipping(subtotal),
		Tax:               c.Tax(subtotal),
		Total:             c.Total(subtotal),
		UntilFreeShipping: remaining,
	}
}
