package invoice

import (
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
)

// Totals are derived from lines on every call and never stored.
type Totals struct {
	Subtotal types.Money `json:"subtotal"`
	Tax      types.Money `json:"tax"`
	Total    types.Money `json:"total"`
}

// ComputeTotals sums line amounts and per-line tax. An empty list gives zero
// totals in currency.
func ComputeTotals(currency string, lines []*InvoiceLine) (Totals, error) {
	subtotal := types.ZeroMoney(currency)
	tax := types.ZeroMoney(currency)

	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return Totals{}, err
		}
		if !line.UnitPrice.SameCurrency(subtotal) {
			return Totals{}, ierr.NewErrorf("invoice line %s is in %s, invoice is in %s",
				line.ID, line.UnitPrice.Currency, subtotal.Currency).
				WithHint("All invoice lines must use the invoice currency").
				WithReportableDetails(map[string]any{
					"line_id":  line.ID,
					"currency": line.UnitPrice.Currency,
				}).
				Mark(ierr.ErrCurrencyMismatch)
		}

		var err error
		if subtotal, err = subtotal.Add(line.Amount()); err != nil {
			return Totals{}, err
		}
		if tax, err = tax.Add(line.Tax()); err != nil {
			return Totals{}, err
		}
	}

	total, err := subtotal.Add(tax)
	if err != nil {
		return Totals{}, err
	}

	return Totals{Subtotal: subtotal, Tax: tax, Total: total}, nil
}
