package ref

import (
	"context"

	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
)

// Group is an owning list of references, such as the object edges of a level
// or the track edges of an animation.
type Group[T any] struct {
	// Refs are the element references in record order.
	Refs []*Reference[T]
	// Resolve is false for lists that are read only to report their size.
	Resolve bool
}

// NewGroup creates a group over refs.
func NewGroup[T any](resolve bool, refs ...*Reference[T]) *Group[T] {
	return &Group[T]{Refs: refs, Resolve: resolve}
}

// Count returns the number of element references, null ones included.
func (g *Group[T]) Count() int {
	return len(g.Refs)
}

// Keys returns the element keys in record order.
func (g *Group[T]) Keys() []format.Key {
	keys := make([]format.Key, len(g.Refs))
	for i, r := range g.Refs {
		keys[i] = r.Key()
	}

	return keys
}

// ResolveAll resolves every element independently.
//
// Nothing is resolved when g.Resolve is false. An absent or null element
// stays empty and does not fail the group; recoverable failures are
// collected and the remaining elements are still resolved. Only fatal errors
// (corrupt container) and context cancellation abort the pass.
//
// Returns:
//   - int: Number of elements holding a value afterwards
//   - error: A fatal error, the context error, or a *errs.BatchError of recoverable failures
func (g *Group[T]) ResolveAll(ctx context.Context, res Resolver, p cache.Partition, flags Flags) (int, error) {
	if !g.Resolve {
		return 0, nil
	}

	var batch errs.BatchError
	resolved := 0

	for _, r := range g.Refs {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}

		_, ok, err := ResolveNow(ctx, r, res, p, flags)
		if err != nil {
			if errs.IsFatal(err) {
				return resolved, err
			}
			batch.Add(err)

			continue
		}

		if ok {
			resolved++
		}
	}

	return resolved, batch.ErrOrNil()
}

// Values returns the values of the resolved elements in record order.
func (g *Group[T]) Values() []T {
	values := make([]T, 0, len(g.Refs))
	for _, r := range g.Refs {
		if v, ok := r.Value(); ok {
			values = append(values, v)
		}
	}

	return values
}

// Register adds every unresolved element to reg.
func (g *Group[T]) Register(reg *Registry) int {
	n := 0
	for _, r := range g.Refs {
		if reg.Register(r) {
			n++
		}
	}

	return n
}
