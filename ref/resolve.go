package ref

import (
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
)

// Resolver turns a key into its canonical decoded record. It is implemented
// by loader.Loader.
type Resolver interface {
	// Resolve returns the record for key, decoding it on a cache miss.
	// An absent key yields (nil, false, nil) unless flags has Strict.
	// A key whose decode is still in flight yields errs.ErrResolutionDeferred.
	Resolve(ctx context.Context, key format.Key, typ format.FileType, p cache.Partition, flags Flags) (any, bool, error)
	// Defer parks site until its key's in-flight decode is published.
	Defer(site Site)
}

// ResolveNow resolves r through res and stores the value in r.
//
// If another reference to the same key was resolved first in this load
// context, the cached value is returned and nothing is decoded again. If the
// key's own decode is still in flight (a record reaching back to itself), the
// reference is deferred: it stays unresolved, is parked with the resolver,
// and is filled when the in-flight decode publishes.
//
// Parameters:
//   - ctx: Context of the load
//   - r: Reference to resolve
//   - res: Resolver of the load context
//   - p: Cache partition
//   - flags: Resolve flags
//
// Returns:
//   - T: Resolved value (zero if null, absent or deferred)
//   - bool: Whether a value is available now
//   - error: Resolver errors, or ErrMalformedRecord when the record is not a T
func ResolveNow[T any](ctx context.Context, r *Reference[T], res Resolver, p cache.Partition, flags Flags) (T, bool, error) {
	var zero T

	if r.IsNull() {
		return zero, false, nil
	}

	if r.resolved && !flags.Has(SkipCache) {
		return r.value, true, nil
	}

	v, ok, err := res.Resolve(ctx, r.key, r.typ, p, flags)
	if errors.Is(err, errs.ErrResolutionDeferred) {
		res.Defer(r)
		return zero, false, nil
	}
	if err != nil || !ok {
		return zero, false, err
	}

	typed, isT := v.(T)
	if !isT {
		return zero, false, errs.NewKeyError(r.key, r.typ,
			fmt.Errorf("%w: resolved %T, reference holds %T", errs.ErrMalformedRecord, v, zero))
	}
	r.set(typed)

	return typed, true, nil
}
