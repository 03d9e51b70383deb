package memory

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/domain/invoice"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// InvoiceStore implements invoice.Repository
type InvoiceStore struct {
	*Store[*invoice.Invoice]
}

func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{
		Store: NewStore[*invoice.Invoice](),
	}
}

func (s *InvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Update(ctx, inv.ID, copyInvoice(inv))
}

func (s *InvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	invoices, err := s.Store.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return copyInvoice(inv) }), nil
}

func (s *InvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	return s.Store.Count(ctx, filter, invoiceFilterFn)
}

func (s *InvoiceStore) ExistsForPeriod(ctx context.Context, sourceID string, periodStart time.Time) (bool, error) {
	filter := types.NewInvoiceFilter()
	filter.SourceID = sourceID
	invoices, err := s.Store.List(ctx, filter, invoiceFilterFn, nil)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(invoices, func(inv *invoice.Invoice) bool {
		return inv.InvoiceStatus != types.InvoiceStatusCancelled &&
			inv.PeriodStart != nil && inv.PeriodStart.Equal(periodStart)
	}), nil
}

func invoiceFilterFn(_ context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv == nil {
		return false
	}
	f, ok := filter.(*types.InvoiceFilter)
	if !ok {
		return true
	}
	if f.ClientID != "" && inv.ClientID != f.ClientID {
		return false
	}
	if f.SourceID != "" && inv.SourceID != f.SourceID {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, inv.InvoiceStatus) {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i.IssueDate.Equal(j.IssueDate) {
		return i.ID < j.ID
	}
	return i.IssueDate.After(j.IssueDate)
}
