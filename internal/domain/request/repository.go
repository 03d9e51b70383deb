package request

import (
	"context"

	"github.com/flexprice/console/internal/types"
)

// Repository defines the interface for request persistence
type Repository interface {
	Create(ctx context.Context, req *Request) error
	Get(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, req *Request) error
	// UpdateIfStatus saves req only if the stored request is still in
	// expected, and fails with ErrAlreadyProcessed otherwise.
	UpdateIfStatus(ctx context.Context, req *Request, expected types.RequestStatus) error
	List(ctx context.Context, filter *types.RequestFilter) ([]*Request, error)
	Count(ctx context.Context, filter *types.RequestFilter) (int, error)
}
