package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/harborlane/storefront-backend/internal/cart"
	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
)

type variantPayload struct {
	ID             string `json:"id" validate:"required"`
	Title          string `json:"title"`
	Price          string `json:"price" validate:"required"`
	CompareAtPrice string `json:"compare_at_price,omitempty"`
	Available      bool   `json:"available"`
}

type productPayload struct {
	ID       string           `json:"id" validate:"required"`
	Title    string           `json:"title" validate:"required"`
	Price    string           `json:"price" validate:"required"`
	Images   []string         `json:"images"`
	InStock  bool             `json:"in_stock"`
	LowStock bool             `json:"low_stock"`
	Variants []variantPayload `json:"variants" validate:"dive"`
}

// AddItemRequest carries the product snapshot captured at add time.
type AddItemRequest struct {
	Product   productPayload `json:"product" validate:"required"`
	Quantity  int            `json:"quantity"`
	VariantID string         `json:"variant_id"`
}

// UpdateQuantityRequest sets an absolute quantity; zero or below removes the
// line, so the field is a pointer to distinguish "0" from "absent".
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// VisibilityRequest flips the transient drawer flag.
type VisibilityRequest struct {
	Action string `json:"action" validate:"required,oneof=open close toggle"`
}

func (p productPayload) toProduct() (cartsvc.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return cartsvc.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product price")
	}
	product := cartsvc.Product{
		ID:       p.ID,
		Title:    p.Title,
		Price:    price,
		Images:   p.Images,
		InStock:  p.InStock,
		LowStock: p.LowStock,
	}
	for _, v := range p.Variants {
		variantPrice, err := decimal.NewFromString(v.Price)
		if err != nil {
			return cartsvc.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant price")
		}
		variant := cartsvc.Variant{
			ID:        v.ID,
			Title:     v.Title,
			Price:     variantPrice,
			Available: v.Available,
		}
		if v.CompareAtPrice != "" {
			compareAt, err := decimal.NewFromString(v.CompareAtPrice)
			if err != nil {
				return cartsvc.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid compare-at price")
			}
			variant.CompareAtPrice = &compareAt
		}
		product.Variants = append(product.Variants, variant)
	}
	return product, nil
}
