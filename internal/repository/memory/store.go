package memory

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/flexprice/console/internal/errors"
)

// BaseFilter is the pagination view of a list filter.
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	IsUnlimited() bool
}

// FilterFunc reports whether item matches filter.
type FilterFunc[T any] func(ctx context.Context, item T, filter interface{}) bool

// SortFunc orders two items.
type SortFunc[T any] func(i, j T) bool

// Store is a generic thread-safe map store backing the in-memory
// repositories.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		items: make(map[string]T),
	}
}

func (s *Store[T]) Create(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewErrorf("item with id %s already exists", id).
			WithHint("An item with this id already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	return nil
}

func (s *Store[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewErrorf("item with id %s not found", id).
			WithHint("The requested item does not exist").
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *Store[T]) Update(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewErrorf("item with id %s not found", id).
			WithHint("The requested item does not exist").
			Mark(ierr.ErrNotFound)
	}
	s.items[id] = item
	return nil
}

// UpdateIf replaces the item only when check accepts the stored value. The
// check and the write happen under one lock.
func (s *Store[T]) UpdateIf(_ context.Context, id string, item T, check func(current T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.items[id]
	if !exists {
		return ierr.NewErrorf("item with id %s not found", id).
			WithHint("The requested item does not exist").
			Mark(ierr.ErrNotFound)
	}
	if err := check(current); err != nil {
		return err
	}
	s.items[id] = item
	return nil
}

func (s *Store[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewErrorf("item with id %s not found", id).
			WithHint("The requested item does not exist").
			Mark(ierr.ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

// List returns the items matching filterFn ordered by sortFn, paginated when
// filter implements BaseFilter. filter must not be a typed nil.
func (s *Store[T]) List(ctx context.Context, filter interface{}, filterFn FilterFunc[T], sortFn SortFunc[T]) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item, filter) {
			result = append(result, item)
		}
	}

	if sortFn != nil {
		sort.SliceStable(result, func(i, j int) bool { return sortFn(result[i], result[j]) })
	}

	if f, ok := filter.(BaseFilter); ok && !f.IsUnlimited() {
		start := f.GetOffset()
		if start >= len(result) {
			return []T{}, nil
		}
		end := start + f.GetLimit()
		if end > len(result) {
			end = len(result)
		}
		result = result[start:end]
	}

	return result, nil
}

// Count returns how many items match filterFn, ignoring pagination.
func (s *Store[T]) Count(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}
