package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/invoice"
	"github.com/flexprice/console/internal/domain/pricing"
	"github.com/flexprice/console/internal/publisher"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// RecurringInvoiceService drafts the periodic invoices of live recurring
// billing entities.
type RecurringInvoiceService interface {
	// Generate creates one draft invoice per entity and cycle period starting
	// inside the requested window. Periods already invoiced are skipped.
	Generate(ctx context.Context, req dto.GenerateRecurringInvoicesRequest) (*dto.GenerateRecurringInvoicesResponse, error)
}

type recurringInvoiceService struct {
	ServiceParams
}

func NewRecurringInvoiceService(params ServiceParams) RecurringInvoiceService {
	return &recurringInvoiceService{
		ServiceParams: params,
	}
}

// billingJob is one entity period to invoice.
type billingJob struct {
	sourceType  invoice.SourceType
	sourceID    string
	clientID    string
	description string
	cycle       types.BillingCycle
	periodStart time.Time
	periodEnd   time.Time
	price       func(asOf time.Time) (*pricing.ResolveResult, error)
}

type billingJobResult struct {
	invoice *dto.InvoiceResponse
	skipped bool
	err     error
}

func (s *recurringInvoiceService) Generate(ctx context.Context, req dto.GenerateRecurringInvoicesRequest) (*dto.GenerateRecurringInvoicesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	jobs, err := s.subscriptionJobs(ctx, req.Period, now)
	if err != nil {
		return nil, err
	}
	serviceJobs, err := s.serviceAssignmentJobs(ctx, req.Period, now)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, serviceJobs...)

	workers := s.Config.Invoice.RecurringWorkers
	if workers < 1 {
		workers = 1
	}

	// Each goroutine owns one slot of results.
	results := make([]billingJobResult, len(jobs))
	p := pool.New().WithMaxGoroutines(workers)
	for i := range jobs {
		p.Go(func() {
			results[i] = s.runJob(ctx, jobs[i])
		})
	}
	p.Wait()

	resp := &dto.GenerateRecurringInvoicesResponse{
		Invoices: make([]*dto.InvoiceResponse, 0, len(jobs)),
	}
	for i, r := range results {
		switch {
		case r.err != nil:
			if resp.Failed == nil {
				resp.Failed = make(map[string]string)
			}
			resp.Failed[jobKey(jobs[i])] = r.err.Error()
			s.Logger.WithContext(ctx).Errorw("failed to generate recurring invoice",
				"source_id", jobs[i].sourceID,
				"period_start", jobs[i].periodStart,
				"error", r.err,
			)
		case r.skipped:
			resp.Skipped++
		default:
			resp.Invoices = append(resp.Invoices, r.invoice)
		}
	}

	s.Logger.WithContext(ctx).Infow("recurring invoices generated",
		"period_start", req.Period.Start,
		"period_end", req.Period.End,
		"created", len(resp.Invoices),
		"skipped", resp.Skipped,
		"failed", len(resp.Failed),
	)
	return resp, nil
}

func (s *recurringInvoiceService) runJob(ctx context.Context, job billingJob) billingJobResult {
	if err := ctx.Err(); err != nil {
		return billingJobResult{err: err}
	}

	exists, err := s.InvoiceRepo.ExistsForPeriod(ctx, job.sourceID, job.periodStart)
	if err != nil {
		return billingJobResult{err: err}
	}
	if exists {
		return billingJobResult{skipped: true}
	}

	price, err := job.price(job.periodStart)
	if err != nil {
		return billingJobResult{err: err}
	}

	inv, err := invoice.New(ctx, invoice.NewParams{
		ClientID:  job.clientID,
		Currency:  price.FinalPrice.Currency,
		IssueDate: job.periodStart,
		DueDate:   job.periodStart.AddDate(0, 0, s.Config.Invoice.DefaultDueDays),
	})
	if err != nil {
		return billingJobResult{err: err}
	}
	inv.SourceType = job.sourceType
	inv.SourceID = job.sourceID
	inv.PeriodStart = lo.ToPtr(job.periodStart)
	inv.PeriodEnd = lo.ToPtr(job.periodEnd)

	line, err := invoice.LineFromDuration(job.description, price.FinalPrice, durationForCycle(job.cycle), decimal.Zero)
	if err != nil {
		return billingJobResult{err: err}
	}
	line.PeriodStart = lo.ToPtr(job.periodStart)
	line.PeriodEnd = lo.ToPtr(job.periodEnd)
	if err := inv.AddLine(line); err != nil {
		return billingJobResult{err: err}
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return billingJobResult{err: err}
	}
	s.publishEvent(ctx, publisher.EventInvoiceCreated, inv.ID, inv.ClientID, inv)

	resp, err := toInvoiceResponse(inv)
	if err != nil {
		return billingJobResult{err: err}
	}
	return billingJobResult{invoice: resp}
}

func (s *recurringInvoiceService) subscriptionJobs(ctx context.Context, period dto.BillingPeriod, now time.Time) ([]billingJob, error) {
	filter := types.NewSubscriptionFilter()
	filter.Statuses = []types.SubscriptionStatus{types.SubscriptionStatusActive}

	subs, err := s.SubscriptionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	subService := &subscriptionService{ServiceParams: s.ServiceParams}
	var jobs []billingJob
	for _, sub := range subs {
		if err := subService.refresh(ctx, sub, now); err != nil {
			return nil, err
		}

		p, err := s.PlanRepo.Get(ctx, sub.PlanID)
		if err != nil {
			return nil, err
		}

		for _, start := range periodStarts(sub.StartDate, sub.BillingCycle, period) {
			if !sub.IsBillable(start) {
				continue
			}
			jobs = append(jobs, billingJob{
				sourceType:  invoice.SourceTypeSubscription,
				sourceID:    sub.ID,
				clientID:    sub.ClientID,
				description: fmt.Sprintf("%s (%s)", p.Name, sub.BillingCycle),
				cycle:       sub.BillingCycle,
				periodStart: start,
				periodEnd:   start.AddDate(0, sub.BillingCycle.Months(), 0),
				price: func(asOf time.Time) (*pricing.ResolveResult, error) {
					return sub.Price(p, asOf)
				},
			})
		}
	}
	return jobs, nil
}

func (s *recurringInvoiceService) serviceAssignmentJobs(ctx context.Context, period dto.BillingPeriod, now time.Time) ([]billingJob, error) {
	filter := types.NewServiceAssignmentFilter()
	filter.Statuses = []types.SubscriptionStatus{types.SubscriptionStatusActive}
	filter.RecurringOnly = true

	assignments, err := s.ServiceAssignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	saService := &serviceAssignmentService{ServiceParams: s.ServiceParams}
	var jobs []billingJob
	for _, a := range assignments {
		if err := saService.refresh(ctx, a, now); err != nil {
			return nil, err
		}

		svc, err := s.BillableServiceRepo.Get(ctx, a.ServiceID)
		if err != nil {
			return nil, err
		}

		for _, start := range periodStarts(a.StartDate, a.BillingCycle, period) {
			if !a.IsBillable(start) {
				continue
			}
			jobs = append(jobs, billingJob{
				sourceType:  invoice.SourceTypeServiceAssignment,
				sourceID:    a.ID,
				clientID:    a.ClientID,
				description: fmt.Sprintf("%s (%s)", svc.Name, a.BillingCycle),
				cycle:       a.BillingCycle,
				periodStart: start,
				periodEnd:   start.AddDate(0, a.BillingCycle.Months(), 0),
				price: func(asOf time.Time) (*pricing.ResolveResult, error) {
					return a.Price(svc, asOf)
				},
			})
		}
	}
	return jobs, nil
}

// periodStarts lists the cycle boundaries anchored at anchor that fall in
// [period.Start, period.End). Each boundary is computed from the anchor so
// month-end dates do not drift.
func periodStarts(anchor time.Time, cycle types.BillingCycle, period dto.BillingPeriod) []time.Time {
	months := cycle.Months()
	var starts []time.Time
	for k := 0; ; k++ {
		start := anchor.AddDate(0, k*months, 0)
		if !start.Before(period.End) {
			break
		}
		if !start.Before(period.Start) {
			starts = append(starts, start)
		}
	}
	return starts
}

func durationForCycle(cycle types.BillingCycle) types.DurationType {
	switch cycle {
	case types.BillingCycleQuarterly:
		return types.DurationTypeQuarterly
	case types.BillingCycleAnnually:
		return types.DurationTypeAnnual
	default:
		return types.DurationTypeMonthly
	}
}

func jobKey(job billingJob) string {
	return fmt.Sprintf("%s@%s", job.sourceID, job.periodStart.Format(time.RFC3339))
}
