package serviceassignment

import (
	"context"

	"github.com/flexprice/console/internal/types"
)

// BillableServiceRepository defines the interface for billable service persistence
type BillableServiceRepository interface {
	Create(ctx context.Context, svc *BillableService) error
	Get(ctx context.Context, id string) (*BillableService, error)
	Update(ctx context.Context, svc *BillableService) error
	List(ctx context.Context, filter *types.QueryFilter) ([]*BillableService, error)
}

// Repository defines the interface for service assignment persistence
type Repository interface {
	Create(ctx context.Context, assignment *ServiceAssignment) error
	Get(ctx context.Context, id string) (*ServiceAssignment, error)
	Update(ctx context.Context, assignment *ServiceAssignment) error
	List(ctx context.Context, filter *types.ServiceAssignmentFilter) ([]*ServiceAssignment, error)
	Count(ctx context.Context, filter *types.ServiceAssignmentFilter) (int, error)
}
