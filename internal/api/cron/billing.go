package cron

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/logger"
	"github.com/flexprice/console/internal/service"
)

// BillingCronHandler runs the periodic billing jobs. A scheduler calls it;
// the jobs themselves are idempotent.
type BillingCronHandler struct {
	recurringService service.RecurringInvoiceService
	invoiceService   service.InvoiceService
	logger           *logger.Logger
}

func NewBillingCronHandler(
	recurringService service.RecurringInvoiceService,
	invoiceService service.InvoiceService,
	logger *logger.Logger,
) *BillingCronHandler {
	return &BillingCronHandler{
		recurringService: recurringService,
		invoiceService:   invoiceService,
		logger:           logger,
	}
}

// RunResult summarises one cron run.
type RunResult struct {
	Created       int               `json:"created"`
	Skipped       int               `json:"skipped"`
	Failed        map[string]string `json:"failed,omitempty"`
	MarkedOverdue int               `json:"marked_overdue"`
}

// GenerateRecurringInvoices drafts the invoices of every period starting in
// req.Period.
func (h *BillingCronHandler) GenerateRecurringInvoices(ctx context.Context, req dto.GenerateRecurringInvoicesRequest) (*RunResult, error) {
	h.logger.Infow("starting recurring invoice cron job", "time", time.Now().UTC().Format(time.RFC3339))

	resp, err := h.recurringService.Generate(ctx, req)
	if err != nil {
		h.logger.Errorw("failed to generate recurring invoices", "error", err)
		return nil, err
	}

	h.logger.Infow("completed recurring invoice cron job",
		"created", len(resp.Invoices),
		"skipped", resp.Skipped,
		"failed", len(resp.Failed),
	)
	return &RunResult{
		Created: len(resp.Invoices),
		Skipped: resp.Skipped,
		Failed:  resp.Failed,
	}, nil
}

// MarkOverdueInvoices moves sent invoices past due to overdue.
func (h *BillingCronHandler) MarkOverdueInvoices(ctx context.Context) (*RunResult, error) {
	h.logger.Infow("starting overdue invoice cron job", "time", time.Now().UTC().Format(time.RFC3339))

	marked, err := h.invoiceService.MarkOverdueInvoices(ctx)
	if err != nil {
		h.logger.Errorw("failed to mark overdue invoices", "error", err, "marked", marked)
		return nil, err
	}

	h.logger.Infow("completed overdue invoice cron job", "marked", marked)
	return &RunResult{MarkedOverdue: marked}, nil
}
