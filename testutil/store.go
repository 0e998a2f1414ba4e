package testutil

import (
	"context"
	"sync"

	ierr "insurepay/errors"
)

// FilterFunc selects items in List.
type FilterFunc[T any] func(item T) bool

// InMemoryStore is a generic keyed store that lists in insertion order.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	clone func(T) T
}

func NewInMemoryStore[T any](clone func(T) T) *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
		clone: clone,
	}
}

func (s *InMemoryStore[T]) Create(_ context.Context, entity, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewErrorf("%s %s already exists", entity, id).
			WithHintf("%s %s already exists", entity, id).
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = s.clone(item)
	s.order = append(s.order, id)
	return nil
}

func (s *InMemoryStore[T]) Get(_ context.Context, entity, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return s.clone(item), nil
	}
	var zero T
	return zero, notFound(entity, id)
}

func (s *InMemoryStore[T]) Update(_ context.Context, entity, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return notFound(entity, id)
	}
	s.items[id] = s.clone(item)
	return nil
}

// Upsert stores item under id whether or not it exists.
func (s *InMemoryStore[T]) Upsert(_ context.Context, id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = s.clone(item)
}

func (s *InMemoryStore[T]) List(_ context.Context, filterFn FilterFunc[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		if filterFn == nil || filterFn(item) {
			result = append(result, s.clone(item))
		}
	}
	return result
}

// Find returns the first item matching filterFn.
func (s *InMemoryStore[T]) Find(ctx context.Context, entity, key string, filterFn FilterFunc[T]) (T, error) {
	items := s.List(ctx, filterFn)
	if len(items) == 0 {
		var zero T
		return zero, notFound(entity, key)
	}
	return items[0], nil
}

func (s *InMemoryStore[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func notFound(entity, key string) error {
	return ierr.NewErrorf("%s %s not found", entity, key).
		WithHintf("%s %s not found", entity, key).
		Mark(ierr.ErrNotFound)
}
