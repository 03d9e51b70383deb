package memory

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	"github.com/flexprice/console/internal/domain/invoice"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/request"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanStore_Create(t *testing.T) {
	ctx := context.Background()
	store := NewPlanStore()

	t.Run("successful creation", func(t *testing.T) {
		p := plan.New(ctx, "Pro", types.NewMoney(10000, "usd"))
		require.NoError(t, store.Create(ctx, p))

		got, err := store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
		assert.Equal(t, p.MonthlyPrice, got.MonthlyPrice)
	})

	t.Run("nil plan", func(t *testing.T) {
		err := store.Create(ctx, nil)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("duplicate ID", func(t *testing.T) {
		p := plan.New(ctx, "Dup", types.NewMoney(1, "usd"))
		require.NoError(t, store.Create(ctx, p))
		assert.True(t, ierr.IsAlreadyExists(store.Create(ctx, p)))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.True(t, ierr.IsNotFound(err))
	})
}

func TestPlanStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewPlanStore()

	p := plan.New(ctx, "Pro", types.NewMoney(10000, "usd"))
	p.Features = []string{"api"}
	p.Discount = &discount.Discount{Type: types.DiscountTypePercentage, Value: decimal.NewFromInt(10), Enabled: true}
	require.NoError(t, store.Create(ctx, p))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Features[0] = "changed"
	got.Discount.Value = decimal.NewFromInt(99)

	again, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, again.Features)
	assert.True(t, again.Discount.Value.Equal(decimal.NewFromInt(10)))
}

func TestPlanStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewPlanStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"A", "B", "C"} {
		p := plan.New(ctx, name, types.NewMoney(100, "usd"))
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		p.IsActive = name != "B"
		require.NoError(t, store.Create(ctx, p))
	}

	t.Run("list all newest first", func(t *testing.T) {
		plans, err := store.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "B", "A"}, lo.Map(plans, func(p *plan.Plan, _ int) string { return p.Name }))
	})

	t.Run("active only", func(t *testing.T) {
		filter := types.NewPlanFilter()
		filter.ActiveOnly = true
		plans, err := store.List(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, plans, 2)

		count, err := store.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("pagination", func(t *testing.T) {
		filter := types.NewPlanFilter()
		filter.Limit = lo.ToPtr(2)
		filter.Offset = lo.ToPtr(2)
		plans, err := store.List(ctx, filter)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, "A", plans[0].Name)

		filter.Offset = lo.ToPtr(10)
		plans, err = store.List(ctx, filter)
		require.NoError(t, err)
		assert.Empty(t, plans)
	})
}

func TestInvoiceStore_ExistsForPeriod(t *testing.T) {
	ctx := context.Background()
	store := NewInvoiceStore()
	period := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	inv, err := invoice.New(ctx, invoice.NewParams{
		ClientID: "client_1", Currency: "usd", IssueDate: period, DueDate: period,
	})
	require.NoError(t, err)
	inv.SourceType = invoice.SourceTypeSubscription
	inv.SourceID = "subs_1"
	inv.PeriodStart = lo.ToPtr(period)
	require.NoError(t, store.Create(ctx, inv))

	exists, err := store.ExistsForPeriod(ctx, "subs_1", period)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsForPeriod(ctx, "subs_1", period.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, inv.Cancel(period))
	require.NoError(t, store.Update(ctx, inv))
	exists, err = store.ExistsForPeriod(ctx, "subs_1", period)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRequestStore_UpdateIfStatus(t *testing.T) {
	ctx := context.Background()
	store := NewRequestStore()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	r, err := request.New(ctx, types.RequestKindService, "client_1", request.RequestedItem{ServiceID: "svc_1"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, r))

	first := *r
	require.NoError(t, first.Approve("admin_1", nil, now))
	second := *r
	require.NoError(t, second.Approve("admin_2", nil, now))

	require.NoError(t, store.UpdateIfStatus(ctx, &first, types.RequestStatusPending))

	err = store.UpdateIfStatus(ctx, &second, types.RequestStatusPending)
	assert.True(t, ierr.IsAlreadyProcessed(err))
	assert.Equal(t, "admin_1", ierr.GetReportableDetails(err)["processed_by"])

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin_1", lo.FromPtr(got.ProcessedBy))

	missingReq := *r
	missingReq.ID = "missing"
	assert.True(t, ierr.IsNotFound(store.UpdateIfStatus(ctx, &missingReq, types.RequestStatusPending)))
}
