package invoice

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/types"
)

// Repository defines the interface for invoice persistence
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ExistsForPeriod reports whether a non-cancelled invoice for sourceID
	// covering the period starting at periodStart exists.
	ExistsForPeriod(ctx context.Context, sourceID string, periodStart time.Time) (bool, error)
}
