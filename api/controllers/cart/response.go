package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/harborlane/storefront-backend/internal/cart"
)

type lineResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	VariantID    string `json:"variant_id,omitempty"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	LineTotal    string `json:"line_total"`
}

type totalsResponse struct {
	ItemCount int    `json:"item_count"`
	Subtotal  string `json:"subtotal"`
	Tax       string `json:"tax"`
	Shipping  string `json:"shipping"`
	Total     string `json:"total"`
}

type cartResponse struct {
	Lines  []lineResponse `json:"lines"`
	IsOpen bool           `json:"is_open"`
	Totals totalsResponse `json:"totals"`
}

type mutationResponse struct {
	Cart    cartResponse `json:"cart"`
	Outcome string       `json:"outcome"`
}

func newCartResponse(cart *cartsvc.Cart) cartResponse {
	resp := cartResponse{
		Lines:  []lineResponse{},
		IsOpen: cart.IsOpen,
		Totals: totalsResponse{
			ItemCount: cart.Totals.ItemCount,
			Subtotal:  cart.Totals.Subtotal.StringFixed(2),
			Tax:       cart.Totals.Tax.StringFixed(2),
			Shipping:  cart.Totals.Shipping.StringFixed(2),
			Total:     cart.Totals.Total.StringFixed(2),
		},
	}
	for _, line := range cart.Lines {
		lineTotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		resp.Lines = append(resp.Lines, lineResponse{
			ID:           line.ID,
			ProductID:    line.Product.ID,
			ProductTitle: line.Product.Title,
			VariantID:    line.VariantID,
			UnitPrice:    line.Product.Price.StringFixed(2),
			Quantity:     line.Quantity,
			LineTotal:    lineTotal.Round(2).StringFixed(2),
		})
	}
	return resp
}

func newMutationResponse(cart *cartsvc.Cart, outcome cartsvc.Outcome) mutationResponse {
	return mutationResponse{
		Cart:    newCartResponse(cart),
		Outcome: string(outcome),
	}
}
