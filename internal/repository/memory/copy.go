package memory

import (
	"github.com/flexprice/console/internal/domain/invoice"
	"github.com/flexprice/console/internal/domain/lifecycle"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/request"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	"github.com/flexprice/console/internal/domain/subscription"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// Stores hand out copies so callers never mutate stored state without Update.

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return lo.ToPtr(*v)
}

func copyMetadata(m types.Metadata) types.Metadata {
	if m == nil {
		return nil
	}
	return lo.Assign(types.Metadata{}, m)
}

func copyState(s lifecycle.State) lifecycle.State {
	s.ExpiresAt = copyPtr(s.ExpiresAt)
	s.ActivatedAt = copyPtr(s.ActivatedAt)
	s.CancelledAt = copyPtr(s.CancelledAt)
	return s
}

func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	c := *p
	c.YearlyPrice = copyPtr(p.YearlyPrice)
	c.Features = append([]string{}, p.Features...)
	c.Discount = p.Discount.Copy()
	c.Metadata = copyMetadata(p.Metadata)
	return &c
}

func copySubscription(s *subscription.Subscription) *subscription.Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.CustomPrice = copyPtr(s.CustomPrice)
	c.Discount = s.Discount.Copy()
	if s.CustomFeatures != nil {
		c.CustomFeatures = append([]string{}, s.CustomFeatures...)
	}
	c.Metadata = copyMetadata(s.Metadata)
	c.State = copyState(s.State)
	return &c
}

func copyBillableService(s *serviceassignment.BillableService) *serviceassignment.BillableService {
	if s == nil {
		return nil
	}
	c := *s
	c.Discount = s.Discount.Copy()
	return &c
}

func copyServiceAssignment(a *serviceassignment.ServiceAssignment) *serviceassignment.ServiceAssignment {
	if a == nil {
		return nil
	}
	c := *a
	c.CustomPrice = copyPtr(a.CustomPrice)
	c.Discount = a.Discount.Copy()
	c.EndDate = copyPtr(a.EndDate)
	c.State = copyState(a.State)
	return &c
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.Lines = lo.Map(inv.Lines, func(l *invoice.InvoiceLine, _ int) *invoice.InvoiceLine {
		lc := *l
		lc.DurationType = copyPtr(l.DurationType)
		lc.PeriodStart = copyPtr(l.PeriodStart)
		lc.PeriodEnd = copyPtr(l.PeriodEnd)
		return &lc
	})
	c.Notes = copyPtr(inv.Notes)
	c.Terms = copyPtr(inv.Terms)
	c.PeriodStart = copyPtr(inv.PeriodStart)
	c.PeriodEnd = copyPtr(inv.PeriodEnd)
	c.SentAt = copyPtr(inv.SentAt)
	c.PaidAt = copyPtr(inv.PaidAt)
	c.CancelledAt = copyPtr(inv.CancelledAt)
	c.Metadata = copyMetadata(inv.Metadata)
	return &c
}

func copyRequest(r *request.Request) *request.Request {
	if r == nil {
		return nil
	}
	c := *r
	c.Item.BillingCycle = copyPtr(r.Item.BillingCycle)
	c.Item.CustomPrice = copyPtr(r.Item.CustomPrice)
	c.Notes = copyPtr(r.Notes)
	c.AdminNotes = copyPtr(r.AdminNotes)
	c.ProcessedBy = copyPtr(r.ProcessedBy)
	c.ProcessedAt = copyPtr(r.ProcessedAt)
	return &c
}
