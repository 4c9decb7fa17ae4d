package shopify

// Money is an amount/currency pair as returned by the Storefront API.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// CartCost is the provider-computed cost breakdown.
type CartCost struct {
	Subtotal Money `json:"subtotal"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

// RemoteLine is one line of the provider cart. Its id is provider-owned and
// distinct from any local line id.
type RemoteLine struct {
	ID            string `json:"id"`
	Quantity      int    `json:"quantity"`
	MerchandiseID string `json:"merchandise_id"`
	VariantTitle  string `json:"variant_title"`
	ProductTitle  string `json:"product_title"`
	UnitPrice     Money  `json:"unit_price"`
}

// Cart is the provider cart aggregate. CheckoutURL is the hand-off target for
// hosted payment once the cart exists.
type Cart struct {
	ID            string       `json:"id"`
	CheckoutURL   string       `json:"checkout_url"`
	TotalQuantity int          `json:"total_quantity"`
	Cost          CartCost     `json:"cost"`
	Lines         []RemoteLine `json:"lines"`
}

// LineInput is a (merchandiseId, quantity) pair for create/add calls.
type LineInput struct {
	MerchandiseID string
	Quantity      int
}

// LineUpdateInput targets an existing remote line by its provider id.
type LineUpdateInput struct {
	LineID   string
	Quantity int
}

// UserError is an application-level failure reported inside a 200 response.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type moneyPayload struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type cartPayload struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		SubtotalAmount moneyPayload  `json:"subtotalAmount"`
		TotalTaxAmount *moneyPayload `json:"totalTaxAmount"`
		TotalAmount    moneyPayload  `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []struct {
			Node struct {
				ID          string `json:"id"`
				Quantity    int    `json:"quantity"`
				Merchandise struct {
					ID      string       `json:"id"`
					Title   string       `json:"title"`
					Price   moneyPayload `json:"price"`
					Product struct {
						Title string `json:"title"`
					} `json:"product"`
				} `json:"merchandise"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

func (p *cartPayload) toCart() *Cart {
	if p == nil {
		return nil
	}
	cart := &Cart{
		ID:            p.ID,
		CheckoutURL:   p.CheckoutURL,
		TotalQuantity: p.TotalQuantity,
		Cost: CartCost{
			Subtotal: Money(p.Cost.SubtotalAmount),
			Total:    Money(p.Cost.TotalAmount),
		},
	}
	if p.Cost.TotalTaxAmount != nil {
		cart.Cost.Tax = Money(*p.Cost.TotalTaxAmount)
	}
	for _, edge := range p.Lines.Edges {
		node := edge.Node
		cart.Lines = append(cart.Lines, RemoteLine{
			ID:            node.ID,
			Quantity:      node.Quantity,
			MerchandiseID: node.Merchandise.ID,
			VariantTitle:  node.Merchandise.Title,
			ProductTitle:  node.Merchandise.Product.Title,
			UnitPrice:     Money(node.Merchandise.Price),
		})
	}
	return cart
}

type mutationPayload struct {
	Cart       *cartPayload `json:"cart"`
	UserErrors []UserError  `json:"userErrors"`
}

func lineInputsToVars(lines []LineInput) []map[string]any {
	out := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		out = append(out, map[string]any{
			"merchandiseId": line.MerchandiseID,
			"quantity":      line.Quantity,
		})
	}
	return out
}

func lineUpdatesToVars(lines []LineUpdateInput) []map[string]any {
	out := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		out = append(out, map[string]any{
			"id":       line.LineID,
			"quantity": line.Quantity,
		})
	}
	return out
}
