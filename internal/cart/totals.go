package cart

import "github.com/shopspring/decimal"

// PricingPolicy holds the tax/shipping constants applied when totals are
// recomputed. Defaults match the storefront policy: 8.5% tax, free shipping
// at 100.00, otherwise a 10.00 flat fee.
type PricingPolicy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultPricingPolicy returns the stock policy constants.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:               decimal.RequireFromString("0.085"),
		FreeShippingThreshold: decimal.RequireFromString("100.00"),
		FlatShippingFee:       decimal.RequireFromString("10.00"),
	}
}

// ComputeTotals derives totals from scratch off the line list. Subtotal, tax,
// and shipping are each rounded to cents independently (half away from zero)
// before summing, so no drift can accumulate across mutations.
func ComputeTotals(lines []Line, policy PricingPolicy) Totals {
	totals := zeroTotals()
	if len(lines) == 0 {
		return totals
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		totals.ItemCount += line.Quantity
		subtotal = subtotal.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	totals.Subtotal = subtotal.Round(2)
	totals.Tax = totals.Subtotal.Mul(policy.TaxRate).Round(2)
	if totals.Subtotal.GreaterThanOrEqual(policy.FreeShippingThreshold) {
		totals.Shipping = decimal.Zero
	} else {
		totals.Shipping = policy.FlatShippingFee.Round(2)
	}
	totals.Total = totals.Subtotal.Add(totals.Tax).Add(totals.Shipping).Round(2)
	return totals
}

func zeroTotals() Totals {
	return Totals{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
	}
}
