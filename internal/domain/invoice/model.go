package invoice

import (
	"context"
	"strings"
	"time"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// SourceType names what a generated invoice bills for.
type SourceType string

const (
	SourceTypeManual            SourceType = "manual"
	SourceTypeSubscription      SourceType = "subscription"
	SourceTypeServiceAssignment SourceType = "service_assignment"
)

// Invoice is a bill to a client. Its totals are always recomputed from
// Lines; line edits go through the methods below.
type Invoice struct {
	ID            string              `json:"id"`
	ClientID      string              `json:"client_id"`
	UserID        string              `json:"user_id,omitempty"`
	Currency      string              `json:"currency"`
	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`
	IssueDate     time.Time           `json:"issue_date"`
	DueDate       time.Time           `json:"due_date"`
	Lines         []*InvoiceLine      `json:"lines"`
	Notes         *string             `json:"notes,omitempty"`
	Terms         *string             `json:"terms,omitempty"`

	SourceType  SourceType `json:"source_type"`
	SourceID    string     `json:"source_id,omitempty"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Metadata types.Metadata `json:"metadata,omitempty"`
	types.BaseModel
}

// NewParams are the inputs of a new draft invoice.
type NewParams struct {
	ClientID  string
	Currency  string
	IssueDate time.Time
	DueDate   time.Time
	Notes     *string
	Terms     *string
}

// New builds an empty draft invoice.
func New(ctx context.Context, params NewParams) (*Invoice, error) {
	if strings.TrimSpace(params.ClientID) == "" {
		return nil, ierr.NewError("client_id is required").
			WithHint("Please select a client").
			Mark(ierr.ErrValidation)
	}
	if err := types.ValidateCurrencyCode(params.Currency); err != nil {
		return nil, err
	}
	if params.DueDate.Before(params.IssueDate) {
		return nil, ierr.NewError("due date must not be before issue date").
			WithHint("Choose a due date on or after the issue date").
			WithReportableDetails(map[string]any{
				"issue_date": params.IssueDate,
				"due_date":   params.DueDate,
			}).
			Mark(ierr.ErrValidation)
	}

	return &Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		ClientID:      params.ClientID,
		UserID:        types.GetUserID(ctx),
		Currency:      strings.ToLower(params.Currency),
		InvoiceStatus: types.InvoiceStatusDraft,
		IssueDate:     params.IssueDate,
		DueDate:       params.DueDate,
		Lines:         []*InvoiceLine{},
		Notes:         params.Notes,
		Terms:         params.Terms,
		SourceType:    SourceTypeManual,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}, nil
}

// Totals recomputes subtotal, tax and total from the current lines.
func (inv *Invoice) Totals() (Totals, error) {
	return ComputeTotals(inv.Currency, inv.Lines)
}

// AddLine appends a copy of line to a draft invoice.
func (inv *Invoice) AddLine(line *InvoiceLine) error {
	return inv.SetLines(append(append([]*InvoiceLine{}, inv.Lines...), line))
}

// UpdateLine applies fn to a copy of the line with id and keeps the result
// only if the invoice stays valid.
func (inv *Invoice) UpdateLine(id string, fn func(line *InvoiceLine)) error {
	lines := inv.copyLines()
	_, idx, found := lo.FindIndexOf(lines, func(l *InvoiceLine) bool { return l.ID == id })
	if !found {
		return lineNotFound(inv.ID, id)
	}
	fn(lines[idx])
	return inv.SetLines(lines)
}

// RemoveLine drops the line with id.
func (inv *Invoice) RemoveLine(id string) error {
	lines := inv.Lines
	if !lo.ContainsBy(lines, func(l *InvoiceLine) bool { return l.ID == id }) {
		return lineNotFound(inv.ID, id)
	}
	return inv.SetLines(lo.Reject(lines, func(l *InvoiceLine, _ int) bool { return l.ID == id }))
}

// SetLines replaces every line with copies of lines, giving new lines an id.
// Neither the invoice nor the given lines change on error.
func (inv *Invoice) SetLines(lines []*InvoiceLine) error {
	if err := inv.requireDraft(); err != nil {
		return err
	}

	lines = lo.Map(lines, func(l *InvoiceLine, _ int) *InvoiceLine { return l.copy() })
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.ID == "" {
			line.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE)
		}
		if _, dup := seen[line.ID]; dup {
			return ierr.NewErrorf("duplicate invoice line id %s", line.ID).
				WithHint("Each invoice line needs a unique id").
				Mark(ierr.ErrValidation)
		}
		seen[line.ID] = struct{}{}
	}

	if _, err := ComputeTotals(inv.Currency, lines); err != nil {
		return err
	}

	inv.Lines = lines
	return nil
}

func (inv *Invoice) copyLines() []*InvoiceLine {
	return lo.Map(inv.Lines, func(l *InvoiceLine, _ int) *InvoiceLine { return l.copy() })
}

func (inv *Invoice) requireDraft() error {
	if inv.InvoiceStatus == types.InvoiceStatusDraft {
		return nil
	}
	return ierr.NewErrorf("invoice %s is %s", inv.ID, inv.InvoiceStatus).
		WithHint("Only draft invoices can be edited").
		WithReportableDetails(map[string]any{
			"invoice_id": inv.ID,
			"status":     inv.InvoiceStatus,
		}).
		Mark(ierr.ErrInvalidTransition)
}

func lineNotFound(invoiceID, lineID string) error {
	return ierr.NewErrorf("invoice line %s not found", lineID).
		WithHint("The invoice line does not exist").
		WithReportableDetails(map[string]any{
			"invoice_id": invoiceID,
			"line_id":    lineID,
		}).
		Mark(ierr.ErrNotFound)
}
