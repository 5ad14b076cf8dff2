package projection

import "time"

// Metadata captures persistence timestamps shared by projections.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection represents an aggregate view plus persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New wraps an entity with its persistence timestamps.
func New[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt},
	}
}

// Entities unwraps a projection list, preserving order.
func Entities[T any](list []*Projection[T]) []T {
	out := make([]T, 0, len(list))
	for _, p := range list {
		if p == nil {
			continue
		}
		out = append(out, p.Entity)
	}
	return out
}
