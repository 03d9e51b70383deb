package service

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/invoice"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/publisher"
	"github.com/flexprice/console/internal/types"
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)

	AddLine(ctx context.Context, invoiceID string, req dto.InvoiceLineRequest) (*dto.InvoiceResponse, error)
	UpdateLine(ctx context.Context, invoiceID, lineID string, req dto.UpdateInvoiceLineRequest) (*dto.InvoiceResponse, error)
	RemoveLine(ctx context.Context, invoiceID, lineID string) (*dto.InvoiceResponse, error)

	SendInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	MarkPaid(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	MarkOverdue(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// MarkOverdueInvoices moves every sent invoice past its due date to
	// overdue and returns how many changed.
	MarkOverdueInvoices(ctx context.Context) (int, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := invoice.New(ctx, req.ToNewParams(s.now(), s.Config.Invoice.DefaultDueDays))
	if err != nil {
		return nil, err
	}

	lines := make([]*invoice.InvoiceLine, 0, len(req.Lines))
	for i := range req.Lines {
		line, err := req.Lines[i].ToLine(inv.Currency)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := inv.SetLines(lines); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("invoice created",
		"invoice_id", inv.ID,
		"client_id", inv.ClientID,
		"lines", len(inv.Lines),
	)
	s.publishEvent(ctx, publisher.EventInvoiceCreated, inv.ID, inv.ClientID, inv)
	return toInvoiceResponse(inv)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice ID is required").
			WithHint("Please provide a valid invoice ID").
			Mark(ierr.ErrValidation)
	}
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv)
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewNoLimitQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation)
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListInvoicesResponse{
		Items:      make([]*dto.InvoiceResponse, 0, len(invoices)),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}
	for _, inv := range invoices {
		item, err := toInvoiceResponse(inv)
		if err != nil {
			return nil, err
		}
		response.Items = append(response.Items, item)
	}
	return response, nil
}

func (s *invoiceService) AddLine(ctx context.Context, invoiceID string, req dto.InvoiceLineRequest) (*dto.InvoiceResponse, error) {
	return s.edit(ctx, invoiceID, func(inv *invoice.Invoice) error {
		line, err := req.ToLine(inv.Currency)
		if err != nil {
			return err
		}
		return inv.AddLine(line)
	})
}

func (s *invoiceService) UpdateLine(ctx context.Context, invoiceID, lineID string, req dto.UpdateInvoiceLineRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.edit(ctx, invoiceID, func(inv *invoice.Invoice) error {
		return inv.UpdateLine(lineID, req.Apply)
	})
}

func (s *invoiceService) RemoveLine(ctx context.Context, invoiceID, lineID string) (*dto.InvoiceResponse, error) {
	return s.edit(ctx, invoiceID, func(inv *invoice.Invoice) error {
		return inv.RemoveLine(lineID)
	})
}

func (s *invoiceService) SendInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, publisher.EventInvoiceSent, func(inv *invoice.Invoice, now time.Time) error {
		return inv.Send(now)
	})
}

func (s *invoiceService) MarkPaid(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, publisher.EventInvoicePaid, func(inv *invoice.Invoice, now time.Time) error {
		return inv.MarkPaid(now)
	})
}

func (s *invoiceService) MarkOverdue(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, publisher.EventInvoiceOverdue, func(inv *invoice.Invoice, _ time.Time) error {
		return inv.MarkOverdue()
	})
}

func (s *invoiceService) CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	return s.transition(ctx, id, publisher.EventInvoiceCancelled, func(inv *invoice.Invoice, now time.Time) error {
		return inv.Cancel(now)
	})
}

func (s *invoiceService) MarkOverdueInvoices(ctx context.Context) (int, error) {
	filter := types.NewInvoiceFilter()
	filter.Statuses = []types.InvoiceStatus{types.InvoiceStatusSent}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return 0, err
	}

	now := s.now()
	marked := 0
	for _, inv := range invoices {
		if !inv.IsPastDue(now) {
			continue
		}
		if err := inv.MarkOverdue(); err != nil {
			return marked, err
		}
		inv.Touch(ctx)
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return marked, err
		}
		s.publishEvent(ctx, publisher.EventInvoiceOverdue, inv.ID, inv.ClientID, inv)
		marked++
	}

	if marked > 0 {
		s.Logger.WithContext(ctx).Infow("marked invoices overdue", "count", marked)
	}
	return marked, nil
}

func (s *invoiceService) edit(ctx context.Context, id string, apply func(inv *invoice.Invoice) error) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(inv); err != nil {
		return nil, err
	}
	inv.Touch(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv)
}

func (s *invoiceService) transition(
	ctx context.Context,
	id string,
	eventType publisher.EventType,
	apply func(inv *invoice.Invoice, now time.Time) error,
) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := inv.InvoiceStatus
	if err := apply(inv, s.now()); err != nil {
		return nil, err
	}
	inv.Touch(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("invoice status changed",
		"invoice_id", inv.ID,
		"from", from,
		"to", inv.InvoiceStatus,
	)
	s.publishEvent(ctx, eventType, inv.ID, inv.ClientID, inv)
	return toInvoiceResponse(inv)
}

func toInvoiceResponse(inv *invoice.Invoice) (*dto.InvoiceResponse, error) {
	totals, err := inv.Totals()
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{
		Invoice: inv,
		Totals:  totals,
	}, nil
}
