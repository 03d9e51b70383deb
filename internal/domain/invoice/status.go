package invoice

import (
	"time"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

var statusTransitions = map[types.InvoiceStatus][]types.InvoiceStatus{
	types.InvoiceStatusDraft: {
		types.InvoiceStatusSent,
		types.InvoiceStatusCancelled,
	},
	types.InvoiceStatusSent: {
		types.InvoiceStatusPaid,
		types.InvoiceStatusOverdue,
		types.InvoiceStatusCancelled,
	},
	types.InvoiceStatusOverdue: {
		types.InvoiceStatusPaid,
		types.InvoiceStatusCancelled,
	},
}

// TransitionStatus validates the invoice edge from -> to.
func TransitionStatus(from, to types.InvoiceStatus) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if lo.Contains(statusTransitions[from], to) {
		return nil
	}

	hint := "This invoice status change is not allowed"
	switch from {
	case types.InvoiceStatusPaid:
		hint = "Paid invoices cannot be changed"
	case types.InvoiceStatusCancelled:
		hint = "Cancelled invoices cannot be changed"
	}

	return ierr.NewErrorf("invalid invoice status transition from %s to %s", from, to).
		WithHint(hint).
		WithReportableDetails(map[string]any{
			"from": from,
			"to":   to,
		}).
		Mark(ierr.ErrInvalidTransition)
}

// Send issues a draft invoice. Empty invoices cannot be sent.
func (inv *Invoice) Send(now time.Time) error {
	if err := TransitionStatus(inv.InvoiceStatus, types.InvoiceStatusSent); err != nil {
		return err
	}
	if len(inv.Lines) == 0 {
		return ierr.NewError("cannot send an invoice without lines").
			WithHint("Add at least one line before sending").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	inv.InvoiceStatus = types.InvoiceStatusSent
	inv.SentAt = lo.ToPtr(now)
	return nil
}

func (inv *Invoice) MarkPaid(now time.Time) error {
	if err := TransitionStatus(inv.InvoiceStatus, types.InvoiceStatusPaid); err != nil {
		return err
	}
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidAt = lo.ToPtr(now)
	return nil
}

func (inv *Invoice) MarkOverdue() error {
	if err := TransitionStatus(inv.InvoiceStatus, types.InvoiceStatusOverdue); err != nil {
		return err
	}
	inv.InvoiceStatus = types.InvoiceStatusOverdue
	return nil
}

func (inv *Invoice) Cancel(now time.Time) error {
	if err := TransitionStatus(inv.InvoiceStatus, types.InvoiceStatusCancelled); err != nil {
		return err
	}
	inv.InvoiceStatus = types.InvoiceStatusCancelled
	inv.CancelledAt = lo.ToPtr(now)
	return nil
}

// IsPastDue reports whether a sent invoice has passed its due date.
func (inv *Invoice) IsPastDue(now time.Time) bool {
	return inv.InvoiceStatus == types.InvoiceStatusSent && now.After(inv.DueDate)
}
