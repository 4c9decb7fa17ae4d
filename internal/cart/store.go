package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is one purchasable configuration of a product.
type Variant struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Available      bool             `json:"available"`
}

// Product is the snapshot embedded into a line at add time. Price changes
// elsewhere never retroactively alter an existing line.
type Product struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Images   []string        `json:"images,omitempty"`
	InStock  bool            `json:"in_stock"`
	LowStock bool            `json:"low_stock,omitempty"`
	Variants []Variant       `json:"variants,omitempty"`
}

// Line is one product+variant entry with a quantity. The id is locally
// generated and stable for the life of the line; VariantID is what gets sent
// to the remote provider at checkout.
type Line struct {
	ID        string  `json:"id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	VariantID string  `json:"variant_id,omitempty"`
}

// Totals is fully derived from the line list and never mutated independently.
type Totals struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
}

// Cart is the local aggregate: ordered lines, a transient drawer flag, and
// derived totals. Only Lines survive persistence.
type Cart struct {
	Lines  []Line `json:"lines"`
	IsOpen bool   `json:"is_open"`
	Totals Totals `json:"totals"`
}

// Outcome reports what a mutation did, so callers can distinguish "nothing
// needed to change" from a bug without the store ever erroring on a bad
// target.
type Outcome string

const (
	OutcomeAdded    Outcome = "added"
	OutcomeMerged   Outcome = "merged"
	OutcomeUpdated  Outcome = "updated"
	OutcomeRemoved  Outcome = "removed"
	OutcomeNotFound Outcome = "not_found"
)

// NewCart returns the empty aggregate for a fresh browsing session.
func NewCart() *Cart {
	return &Cart{Totals: zeroTotals()}
}

// ResolveVariantID applies the default-variant rule: an explicit id wins,
// otherwise the product's first variant if it has any.
func ResolveVariantID(product Product, variantID string) string {
	if variantID != "" {
		return variantID
	}
	if len(product.Variants) > 0 {
		return product.Variants[0].ID
	}
	return ""
}

// AddItem merges into an existing (product, variant) line or appends a new
// one. A non-positive quantity is normalized to 1 so a line can never be
// created at zero or below.
func (c *Cart) AddItem(product Product, quantity int, variantID string) (Line, Outcome) {
	if quantity <= 0 {
		quantity = 1
	}
	resolved := ResolveVariantID(product, variantID)

	for i, line := range c.Lines {
		if line.Product.ID == product.ID && line.VariantID == resolved {
			c.Lines[i].Quantity += quantity
			return c.Lines[i], OutcomeMerged
		}
	}

	line := Line{
		ID:        uuid.NewString(),
		Product:   product,
		Quantity:  quantity,
		VariantID: resolved,
	}
	c.Lines = append(c.Lines, line)
	return line, OutcomeAdded
}

// UpdateQuantity sets an absolute quantity on the target line. A quantity of
// zero or below removes the line; an unknown id is a not-found no-op.
func (c *Cart) UpdateQuantity(lineID string, quantity int) Outcome {
	for i, line := range c.Lines {
		if line.ID != lineID {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return OutcomeRemoved
		}
		c.Lines[i].Quantity = quantity
		return OutcomeUpdated
	}
	return OutcomeNotFound
}

// RemoveItem deletes the line with the matching id if present.
func (c *Cart) RemoveItem(lineID string) Outcome {
	for i, line := range c.Lines {
		if line.ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return OutcomeRemoved
		}
	}
	return OutcomeNotFound
}

// Clear drops every line and zeroes the totals.
func (c *Cart) Clear() {
	c.Lines = nil
	c.Totals = zeroTotals()
}

// Open, Close, and Toggle flip the transient drawer flag only; they never
// touch lines or totals and are not persisted.
func (c *Cart) Open()   { c.IsOpen = true }
func (c *Cart) Close()  { c.IsOpen = false }
func (c *Cart) Toggle() { c.IsOpen = !c.IsOpen }
