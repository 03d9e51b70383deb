package plan

import (
	"context"
	"testing"

	"github.com/flexprice/console/internal/domain/discount"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Plan)
		wantErr error
	}{
		{name: "valid", mutate: func(p *Plan) {}},
		{name: "blank name", mutate: func(p *Plan) { p.Name = "  " }, wantErr: ierr.ErrValidation},
		{name: "negative monthly", mutate: func(p *Plan) { p.MonthlyPrice.Amount = -1 }, wantErr: ierr.ErrValidation},
		{name: "bad currency", mutate: func(p *Plan) { p.MonthlyPrice.Currency = "us" }, wantErr: ierr.ErrValidation},
		{
			name:    "yearly currency mismatch",
			mutate:  func(p *Plan) { p.YearlyPrice = lo.ToPtr(types.NewMoney(100, "eur")) },
			wantErr: ierr.ErrCurrencyMismatch,
		},
		{name: "blank feature", mutate: func(p *Plan) { p.Features = []string{"api", ""} }, wantErr: ierr.ErrValidation},
		{
			name: "percentage discount over 100",
			mutate: func(p *Plan) {
				p.Discount = &discount.Discount{Type: types.DiscountTypePercentage, Value: decimal.NewFromInt(101), Enabled: true}
			},
			wantErr: ierr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(context.Background(), "Pro", types.NewMoney(10000, "usd"))
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, ierr.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestPlan_SnapshotDoesNotAlias(t *testing.T) {
	p := New(context.Background(), "Pro", types.NewMoney(10000, "usd"))
	p.Features = []string{"api", "sso"}
	p.Discount = &discount.Discount{Type: types.DiscountTypeFixed, Value: decimal.NewFromInt(500), Enabled: true}

	d, features := p.Snapshot()
	p.Features[0] = "changed"
	p.Discount.Value = decimal.NewFromInt(1)

	assert.Equal(t, []string{"api", "sso"}, features)
	assert.True(t, d.Value.Equal(decimal.NewFromInt(500)))
}

func TestPlan_Deactivate(t *testing.T) {
	ctx := types.WithUserID(context.Background(), "admin_1")
	p := New(ctx, "Pro", types.NewMoney(10000, "usd"))
	p.Deactivate(ctx)
	assert.False(t, p.IsActive)
	assert.Equal(t, "admin_1", p.UpdatedBy)
}
