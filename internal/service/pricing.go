package service

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/cache"
	"github.com/flexprice/console/internal/domain/discount"
	"github.com/flexprice/console/internal/domain/invoice"
	"github.com/flexprice/console/internal/domain/pricing"
	ierr "github.com/flexprice/console/internal/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

const (
	cachePrefixResolve   = "pricing:resolve"
	cachePrefixPlanQuote = "pricing:plan_quote"
)

// PricingService answers price questions without changing any state.
type PricingService interface {
	// Resolve prices an ad hoc input such as a form being filled in.
	Resolve(ctx context.Context, req dto.ResolvePriceRequest) (*dto.ResolvePriceResponse, error)
	QuotePlan(ctx context.Context, planID string, asOf *time.Time) (*pricing.PlanQuote, error)
	QuoteSubscription(ctx context.Context, id string, asOf *time.Time) (*pricing.ResolveResult, error)
	QuoteServiceAssignment(ctx context.Context, id string, asOf *time.Time) (*pricing.ResolveResult, error)
	ComputeInvoiceTotals(ctx context.Context, req dto.ComputeTotalsRequest) (*dto.ComputeTotalsResponse, error)
}

type pricingService struct {
	ServiceParams
}

func NewPricingService(params ServiceParams) PricingService {
	return &pricingService{
		ServiceParams: params,
	}
}

func (s *pricingService) Resolve(ctx context.Context, req dto.ResolvePriceRequest) (*dto.ResolvePriceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := s.resolve(ctx, req.ToResolveParams(s.now()))
	if err != nil {
		return nil, err
	}
	return &dto.ResolvePriceResponse{
		ResolveResult: result,
		Currency:      result.FinalPrice.Currency,
	}, nil
}

func (s *pricingService) QuotePlan(ctx context.Context, planID string, asOf *time.Time) (*pricing.PlanQuote, error) {
	p, err := s.PlanRepo.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	at := lo.FromPtrOr(asOf, s.now())
	policy := s.Config.Pricing.FixedDiscountProration

	// The key covers the plan content, so edits never hit a stale entry.
	key, err := quoteCacheKey(cachePrefixPlanQuote, p.Discount, at, p.MonthlyPrice, p.YearlyPrice, policy)
	if err == nil {
		if cached, ok := s.getCached(ctx, key); ok {
			if quote, ok := cache.UnmarshalCacheValue[pricing.PlanQuote](cached); ok {
				quote.PlanID = p.ID
				return quote, nil
			}
		}
	}

	quote, err := pricing.QuotePlan(p, at, policy)
	if err != nil {
		return nil, err
	}
	if key != "" {
		s.setCached(ctx, key, quote)
	}
	return quote, nil
}

func (s *pricingService) QuoteSubscription(ctx context.Context, id string, asOf *time.Time) (*pricing.ResolveResult, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	at := lo.FromPtrOr(asOf, s.now())
	return s.resolve(ctx, pricing.ResolveParams{
		BasePrice:      pricing.PlanPriceForCycle(p, sub.BillingCycle),
		CustomPrice:    sub.CustomPrice,
		UseCustomPrice: sub.UseCustomPrice,
		Discount:       sub.Discount,
		AsOf:           at,
	})
}

func (s *pricingService) QuoteServiceAssignment(ctx context.Context, id string, asOf *time.Time) (*pricing.ResolveResult, error) {
	a, err := s.ServiceAssignmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	svc, err := s.BillableServiceRepo.Get(ctx, a.ServiceID)
	if err != nil {
		return nil, err
	}

	at := lo.FromPtrOr(asOf, s.now())
	return s.resolve(ctx, pricing.ResolveParams{
		BasePrice:      a.BasePrice(svc),
		CustomPrice:    a.CustomPrice,
		UseCustomPrice: a.UseCustomPrice,
		Discount:       a.Discount,
		AsOf:           at,
	})
}

func (s *pricingService) ComputeInvoiceTotals(ctx context.Context, req dto.ComputeTotalsRequest) (*dto.ComputeTotalsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines, err := req.ToLines()
	if err != nil {
		return nil, err
	}

	totals, err := invoice.ComputeTotals(req.Currency, lines)
	if err != nil {
		return nil, err
	}
	return &dto.ComputeTotalsResponse{
		Totals: totals,
		Lines:  lines,
	}, nil
}

// resolve runs the resolver behind the quote cache. The output depends on
// nothing but params.
func (s *pricingService) resolve(ctx context.Context, params pricing.ResolveParams) (*pricing.ResolveResult, error) {
	keyed := params
	keyed.AsOf = time.Time{}
	key, err := quoteCacheKey(cachePrefixResolve, params.Discount, params.AsOf, keyed)
	if err != nil {
		s.Logger.Debugw("skipping quote cache", "error", err)
		return pricing.Resolve(params)
	}

	if cached, ok := s.getCached(ctx, key); ok {
		if result, ok := cache.UnmarshalCacheValue[pricing.ResolveResult](cached); ok {
			return result, nil
		}
	}

	result, err := pricing.Resolve(params)
	if err != nil {
		return nil, err
	}
	s.setCached(ctx, key, result)
	return result, nil
}

// quoteCacheKey fingerprints parts together with d and whether d is active at
// asOf. Prices read the clock only through the discount window, so the
// timestamp itself stays out of the key.
func quoteCacheKey(prefix string, d *discount.Discount, asOf time.Time, parts ...interface{}) (string, error) {
	return cache.Fingerprint(prefix, append(parts, d, d.IsActiveAt(asOf))...)
}

func (s *pricingService) getCached(ctx context.Context, key string) (interface{}, bool) {
	if s.Cache == nil {
		return nil, false
	}
	return s.Cache.Get(ctx, key)
}

// setCached stores the JSON form so callers never share a cached pointer.
func (s *pricingService) setCached(ctx context.Context, key string, value interface{}) {
	if s.Cache == nil {
		return
	}
	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(value)
	if err != nil {
		s.Logger.Warnw("failed to encode cache value", "key", key, "error", ierr.WithError(err).Mark(ierr.ErrSystem))
		return
	}
	s.Cache.Set(ctx, key, raw, s.Config.Cache.TTL)
}
