package types

import "github.com/shopspring/decimal"

// QuoteItem is the immutable snapshot of a requested product taken at
// submission time. Quantities here never change after the quote is created.
type QuoteItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// QuoteItems is stored as a jsonb column on the quote row.
type QuoteItems []QuoteItem

// PricingLine is an admin-supplied price for one requested product. The
// stored TotalPrice reflects the admin-set quantity; a customer editing
// quantities during conversion produces a different, live-computed number.
type PricingLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// PricingLines is stored as a jsonb column on the quote row.
type PricingLines []PricingLine

// Total sums the stored line totals.
func (p PricingLines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p {
		total = total.Add(line.TotalPrice)
	}
	return total.Round(2)
}
