package dto

import (
	"time"

	"github.com/flexprice/console/internal/domain/invoice"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/flexprice/console/internal/validator"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one charge on an invoice form. Quantity defaults to 1.
// A duration type overrides the quantity with 1.
type InvoiceLineRequest struct {
	Description  string              `json:"description" validate:"required"`
	UnitPrice    int64               `json:"unit_price" validate:"min=0"`
	Quantity     *decimal.Decimal    `json:"quantity,omitempty"`
	TaxRate      decimal.Decimal     `json:"tax_rate"`
	DurationType *types.DurationType `json:"duration_type,omitempty"`
}

func (r *InvoiceLineRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *InvoiceLineRequest) ToLine(currency string) (*invoice.InvoiceLine, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	unit := types.NewMoney(r.UnitPrice, currency)
	if r.DurationType != nil {
		return invoice.LineFromDuration(r.Description, unit, *r.DurationType, r.TaxRate)
	}
	qty := decimal.NewFromInt(1)
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	line := invoice.NewLine(r.Description, unit, qty, r.TaxRate)
	return line, line.Validate()
}

// UpdateInvoiceLineRequest edits the set fields of an existing line.
type UpdateInvoiceLineRequest struct {
	Description *string          `json:"description,omitempty" validate:"omitempty,min=1"`
	UnitPrice   *int64           `json:"unit_price,omitempty" validate:"omitempty,min=0"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

func (r *UpdateInvoiceLineRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdateInvoiceLineRequest) Apply(line *invoice.InvoiceLine) {
	if r.Description != nil {
		line.Description = *r.Description
	}
	if r.UnitPrice != nil {
		line.UnitPrice = types.NewMoney(*r.UnitPrice, line.UnitPrice.Currency)
	}
	if r.Quantity != nil {
		line.Quantity = *r.Quantity
	}
	if r.TaxRate != nil {
		line.TaxRate = *r.TaxRate
	}
}

type CreateInvoiceRequest struct {
	ClientID  string               `json:"client_id" validate:"required"`
	Currency  string               `json:"currency" validate:"required,len=3"`
	IssueDate *time.Time           `json:"issue_date,omitempty"`
	DueDate   *time.Time           `json:"due_date,omitempty"`
	Notes     *string              `json:"notes,omitempty"`
	Terms     *string              `json:"terms,omitempty"`
	Lines     []InvoiceLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return types.ValidateCurrencyCode(r.Currency)
}

// ToNewParams fills the issue date with now and the due date with issue
// date plus dueDays.
func (r *CreateInvoiceRequest) ToNewParams(now time.Time, dueDays int) invoice.NewParams {
	issue := now
	if r.IssueDate != nil {
		issue = *r.IssueDate
	}
	due := issue.AddDate(0, 0, dueDays)
	if r.DueDate != nil {
		due = *r.DueDate
	}
	return invoice.NewParams{
		ClientID:  r.ClientID,
		Currency:  r.Currency,
		IssueDate: issue,
		DueDate:   due,
		Notes:     r.Notes,
		Terms:     r.Terms,
	}
}

type InvoiceResponse struct {
	*invoice.Invoice
	Totals invoice.Totals `json:"totals"`
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

// ComputeTotalsRequest prices a set of draft lines without saving anything.
type ComputeTotalsRequest struct {
	Currency string               `json:"currency" validate:"required,len=3"`
	Lines    []InvoiceLineRequest `json:"lines" validate:"dive"`
}

func (r *ComputeTotalsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return types.ValidateCurrencyCode(r.Currency)
}

func (r *ComputeTotalsRequest) ToLines() ([]*invoice.InvoiceLine, error) {
	lines := make([]*invoice.InvoiceLine, 0, len(r.Lines))
	for i := range r.Lines {
		line, err := r.Lines[i].ToLine(r.Currency)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Invoice line is invalid").
				WithReportableDetails(map[string]any{
					"line": i,
				}).
				Mark(ierr.ErrValidation)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

type ComputeTotalsResponse struct {
	invoice.Totals
	Lines []*invoice.InvoiceLine `json:"lines"`
}

type GenerateRecurringInvoicesRequest struct {
	Period BillingPeriod `json:"period"`
}

func (r *GenerateRecurringInvoicesRequest) Validate() error {
	return r.Period.Validate()
}

type GenerateRecurringInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	// Skipped counts entities already invoiced for the period.
	Skipped int `json:"skipped"`
	// Failed maps entity ids to the error that stopped their invoice.
	Failed map[string]string `json:"failed,omitempty"`
}
