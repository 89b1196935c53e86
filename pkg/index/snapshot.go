package index

import (
	"fmt"
	"slices"
)

// Snapshot is the persisted form of an Index. Entities are sorted by id value
// and each one is expected to describe its own variant when encoded.
type Snapshot[E Entity] struct {
	Prefix      string `json:"prefix"`
	LastIDValue int    `json:"last-id-value"`
	Entities    []E    `json:"entities"`
}

// Snapshot captures the current content of the index.
func (x *Index[E]) Snapshot() Snapshot[E] {
	return Snapshot[E]{
		Prefix:      x.prefix,
		LastIDValue: x.LastIDValue(),
		Entities:    x.Entities(),
	}
}

// Restore rebuilds an index from a snapshot. Entities are sorted again before
// insertion and the counter is taken from the snapshot, not from the list.
func Restore[E Entity](s Snapshot[E], opts ...Option[E]) (*Index[E], error) {
	x := New(s.Prefix, opts...)

	entities := slices.Clone(s.Entities)
	slices.SortStableFunc(entities, func(a, b E) int {
		return CompareIDs(a.ID(), b.ID())
	})

	for _, e := range entities {
		if err := x.Insert(e); err != nil {
			return nil, fmt.Errorf("restore index %q: %w", s.Prefix, err)
		}
	}
	x.lastID.Store(int64(s.LastIDValue))

	return x, nil
}
