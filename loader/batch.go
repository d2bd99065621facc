package loader

import (
	"context"
	"errors"

	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/ref"
	"github.com/arloliu/pakref/section"
	"golang.org/x/sync/errgroup"
)

type prefetch struct {
	entry    section.Entry
	expected int
	data     []byte
}

// ResolveMany resolves keys decoded as typ in partition p.
//
// Payloads of distinct keys that are neither cached nor absent are read
// concurrently, bounded by WithConcurrency. Decoding and publishing then run
// sequentially in key order, exactly as Resolve does, so the at-most-one
// decode guarantee is unchanged.
//
// Parameters:
//   - ctx: Cancels prefetching and resolving
//   - keys: Keys to resolve; duplicates and null keys are skipped
//   - typ: File type to decode as
//   - p: Cache partition
//   - flags: Resolve flags applied to every key
//
// Returns:
//   - map[format.Key]any: Records of the keys that resolved
//   - error: The first fatal error, or *errs.BatchError aggregating recoverable ones
func (l *Loader) ResolveMany(ctx context.Context, keys []format.Key, typ format.FileType, p cache.Partition, flags ref.Flags) (map[format.Key]any, error) {
	distinct := make([]format.Key, 0, len(keys))
	seen := make(map[format.Key]struct{}, len(keys))
	for _, key := range keys {
		if key.IsNull() {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, key)
	}

	if err := l.prefetch(ctx, distinct, typ, p, flags); err != nil {
		return nil, err
	}
	defer clear(l.prefetched)

	records := make(map[format.Key]any, len(distinct))
	var batch errs.BatchError

	for _, key := range distinct {
		v, ok, err := l.Resolve(ctx, key, typ, p, flags)
		if err != nil {
			if errs.IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return records, err
			}
			l.sugar.Warnw("batch entry skipped", "key", key.String(), "type", typ.String(), "error", err)
			batch.Add(err)

			continue
		}
		if ok {
			records[key] = v
		}
	}

	return records, batch.ErrOrNil()
}

func (l *Loader) prefetch(ctx context.Context, keys []format.Key, typ format.FileType, p cache.Partition, flags ref.Flags) error {
	if typ.IsNone() || !p.Valid() {
		return nil
	}

	decoder, ok := l.table.Lookup(typ, l.version)
	if !ok {
		return nil
	}

	jobs := make([]*prefetch, 0, len(keys))
	for _, key := range keys {
		if !flags.Has(ref.SkipCache) && l.store.Contains(p, key) {
			continue
		}
		if _, busy := l.decoding[slot{p: p, key: key}]; busy {
			continue
		}
		entry, ok := l.archive.Lookup(key)
		if !ok {
			continue
		}
		jobs = append(jobs, &prefetch{entry: entry, expected: decoder.FixedSize()})
	}
	if len(jobs) < 2 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			data, err := l.archive.Payload(gctx, job.entry, job.expected)
			if err != nil {
				if errs.IsFatal(err) || gctx.Err() != nil {
					return errs.NewKeyError(job.entry.Key, typ, err)
				}

				return nil
			}
			job.data = data

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return err
	}

	for _, job := range jobs {
		if job.data != nil {
			l.prefetched[job.entry.Key] = job.data
			l.stats.Prefetched++
		}
	}

	return nil
}
