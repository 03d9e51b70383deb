package invoice

import (
	"strings"
	"time"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var maxTaxRate = decimal.NewFromInt(100)

// InvoiceLine is a single quantity-based line of an invoice.
type InvoiceLine struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	UnitPrice   types.Money     `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	// TaxRate is a percentage in [0,100].
	TaxRate decimal.Decimal `json:"tax_rate"`
	// DurationType labels a line built from a recurring charge. It never
	// changes the arithmetic; such lines always carry quantity 1.
	DurationType *types.DurationType `json:"duration_type,omitempty"`
	PeriodStart  *time.Time          `json:"period_start,omitempty"`
	PeriodEnd    *time.Time          `json:"period_end,omitempty"`
}

// NewLine builds a line with a generated id.
func NewLine(description string, unitPrice types.Money, quantity, taxRate decimal.Decimal) *InvoiceLine {
	return &InvoiceLine{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
		Description: description,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		TaxRate:     taxRate,
	}
}

// LineFromDuration converts a duration-typed charge into the canonical
// quantity form. Every duration maps to quantity 1; recurrence is handled by
// issuing one invoice per period.
func LineFromDuration(description string, unitPrice types.Money, duration types.DurationType, taxRate decimal.Decimal) (*InvoiceLine, error) {
	if err := duration.Validate(); err != nil {
		return nil, err
	}
	line := NewLine(description, unitPrice, decimal.NewFromInt(1), taxRate)
	line.DurationType = lo.ToPtr(duration)
	return line, line.Validate()
}

func (l *InvoiceLine) Validate() error {
	if strings.TrimSpace(l.Description) == "" {
		return ierr.NewError("invoice line validation failed").
			WithHint("description is required").
			Mark(ierr.ErrValidation)
	}

	if l.UnitPrice.IsNegative() {
		return ierr.NewError("invoice line validation failed").
			WithHint("unit price must be non negative").
			WithReportableDetails(map[string]any{
				"unit_price": l.UnitPrice.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	if l.Quantity.IsNegative() {
		return ierr.NewError("invoice line validation failed").
			WithHint("quantity must be non negative").
			WithReportableDetails(map[string]any{
				"quantity": l.Quantity.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if l.TaxRate.IsNegative() || l.TaxRate.GreaterThan(maxTaxRate) {
		return ierr.NewError("invoice line validation failed").
			WithHint("tax rate must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"tax_rate": l.TaxRate.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if l.PeriodStart != nil && l.PeriodEnd != nil && l.PeriodEnd.Before(*l.PeriodStart) {
		return ierr.NewError("invoice line validation failed").
			WithHint("period_end must be after period_start").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Amount is unit price times quantity, rounded half to even.
func (l *InvoiceLine) Amount() types.Money {
	return l.UnitPrice.Multiply(l.Quantity)
}

// Tax is rounded per line before aggregation.
func (l *InvoiceLine) Tax() types.Money {
	return l.Amount().PercentOf(l.TaxRate)
}

func (l *InvoiceLine) copy() *InvoiceLine {
	c := *l
	if l.DurationType != nil {
		c.DurationType = lo.ToPtr(*l.DurationType)
	}
	if l.PeriodStart != nil {
		c.PeriodStart = lo.ToPtr(*l.PeriodStart)
	}
	if l.PeriodEnd != nil {
		c.PeriodEnd = lo.ToPtr(*l.PeriodEnd)
	}
	return &c
}
