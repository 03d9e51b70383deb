package memory

import (
	"context"

	"github.com/flexprice/console/internal/domain/request"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// RequestStore implements request.Repository
type RequestStore struct {
	*Store[*request.Request]
}

func NewRequestStore() *RequestStore {
	return &RequestStore{
		Store: NewStore[*request.Request](),
	}
}

func (s *RequestStore) Create(ctx context.Context, r *request.Request) error {
	if r == nil {
		return ierr.NewError("request cannot be nil").
			WithHint("Request cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Create(ctx, r.ID, copyRequest(r))
}

func (s *RequestStore) Get(ctx context.Context, id string) (*request.Request, error) {
	r, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("request not found").
			WithHint("Request not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyRequest(r), nil
}

func (s *RequestStore) Update(ctx context.Context, r *request.Request) error {
	if r == nil {
		return ierr.NewError("request cannot be nil").
			WithHint("Request cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Update(ctx, r.ID, copyRequest(r))
}

// UpdateIfStatus saves r only while the stored request is still in expected.
func (s *RequestStore) UpdateIfStatus(ctx context.Context, r *request.Request, expected types.RequestStatus) error {
	if r == nil {
		return ierr.NewError("request cannot be nil").
			WithHint("Request cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.UpdateIf(ctx, r.ID, copyRequest(r), func(current *request.Request) error {
		if current.RequestStatus == expected {
			return nil
		}
		return ierr.NewErrorf("request %s is already %s", current.ID, current.RequestStatus).
			WithHint("This request has already been processed").
			WithReportableDetails(map[string]any{
				"request_id":   current.ID,
				"status":       current.RequestStatus,
				"processed_by": lo.FromPtr(current.ProcessedBy),
			}).
			Mark(ierr.ErrAlreadyProcessed)
	})
}

func (s *RequestStore) List(ctx context.Context, filter *types.RequestFilter) ([]*request.Request, error) {
	if filter == nil {
		filter = types.NewRequestFilter()
	}
	requests, err := s.Store.List(ctx, filter, requestFilterFn, requestSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(requests, func(r *request.Request, _ int) *request.Request { return copyRequest(r) }), nil
}

func (s *RequestStore) Count(ctx context.Context, filter *types.RequestFilter) (int, error) {
	if filter == nil {
		filter = types.NewRequestFilter()
	}
	return s.Store.Count(ctx, filter, requestFilterFn)
}

func requestFilterFn(_ context.Context, r *request.Request, filter interface{}) bool {
	if r == nil {
		return false
	}
	f, ok := filter.(*types.RequestFilter)
	if !ok {
		return true
	}
	if f.ClientID != "" && r.ClientID != f.ClientID {
		return false
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, r.RequestStatus) {
		return false
	}
	return true
}

// requestSortFn orders oldest first so pending requests are worked in order.
func requestSortFn(i, j *request.Request) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID < j.ID
	}
	return i.CreatedAt.Before(j.CreatedAt)
}
