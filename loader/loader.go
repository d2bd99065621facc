package loader

import (
	"context"
	"fmt"

	"github.com/arloliu/pakref/archive"
	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/dispatch"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/internal/options"
	"github.com/arloliu/pakref/ref"
	"github.com/arloliu/pakref/section"
	"go.uber.org/zap"
)

// Stats are the resolve counters of a Loader.
type Stats struct {
	// Decodes counts records decoded and published.
	Decodes uint64
	// Hits counts resolves answered from the cache.
	Hits uint64
	// Misses counts resolves that went to the archive.
	Misses uint64
	// Absent counts resolves of keys the archive does not contain.
	Absent uint64
	// Deferred counts references parked behind an in-flight decode.
	Deferred uint64
	// Prefetched counts payloads read ahead by ResolveMany.
	Prefetched uint64
}

// slot names a key decoded into one cache partition.
type slot struct {
	p   cache.Partition
	key format.Key
}

// Loader is one load context over an archive.
type Loader struct {
	archive  *archive.Archive
	table    *dispatch.Table
	store    *cache.Store
	registry *ref.Registry
	base     *dispatch.Context

	profile     string
	version     int
	concurrency int
	cacheOpts   []cache.Option
	logger      *zap.Logger
	sugar       *zap.SugaredLogger

	// decoding marks slots whose decode is on the call stack
	decoding map[slot]struct{}
	// generation counts publishes per slot
	generation map[slot]uint64
	prefetched map[format.Key][]byte
	stats      Stats
}

var _ ref.Resolver = (*Loader)(nil)

// New creates a Loader reading arc and decoding with table.
//
// Parameters:
//   - arc: Opened archive, may be shared with other loaders
//   - table: Decoder table, read-only once loading starts
//   - opts: Loader options
//
// Returns:
//   - *Loader: Loader with an empty cache and registry
//   - error: If an option is invalid
func New(arc *archive.Archive, table *dispatch.Table, opts ...Option) (*Loader, error) {
	if arc == nil {
		return nil, fmt.Errorf("nil archive")
	}
	if table == nil {
		return nil, fmt.Errorf("nil decoder table")
	}

	l := &Loader{
		archive:     arc,
		table:       table,
		registry:    ref.NewRegistry(),
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
		decoding:    make(map[slot]struct{}),
		generation:  make(map[slot]uint64),
		prefetched:  make(map[format.Key][]byte),
	}

	if err := options.Apply(l, opts...); err != nil {
		return nil, err
	}

	store, err := cache.New(append(l.cacheOpts, cache.WithLogger(l.logger))...)
	if err != nil {
		return nil, err
	}
	l.store = store
	l.sugar = l.logger.Sugar()

	l.base = dispatch.NewContext(l.registry, arc.Config().ByteOrder(), l.logger)
	l.base.Profile, l.base.Version = l.profile, l.version

	return l, nil
}

// Resolve returns the canonical record for key decoded as typ in partition p.
//
// Steps, in order:
//  1. Unless flags has SkipCache, a cached record is returned.
//  2. A key missing from the archive yields no value, or errs.ErrMissingKey
//     under Strict.
//  3. The payload is read, decompressed and transformed.
//  4. The payload is dispatched to the decoder of typ.
//  5. Unless flags has NoCache, the record is published to p, pinned under
//     KeepAlive. Nothing is published if ctx was cancelled.
//  6. Pending references to key as typ are filled with the record.
//
// A key whose decode into p is in flight yields errs.ErrResolutionDeferred.
// Decodes of the same key into different partitions are independent.
//
// Parameters:
//   - ctx: Cancels the resolve; a cancelled resolve publishes nothing
//   - key: Content key
//   - typ: File type to decode as
//   - p: Cache partition
//   - flags: Resolve flags
//
// Returns:
//   - any: Record, nil if absent
//   - bool: Whether a record is returned
//   - error: *errs.KeyError wrapping the cause, or the context error
func (l *Loader) Resolve(ctx context.Context, key format.Key, typ format.FileType, p cache.Partition, flags ref.Flags) (any, bool, error) {
	if typ.IsNone() || key.IsNull() {
		return nil, false, nil
	}
	if !p.Valid() {
		return nil, false, errs.NewKeyError(key, typ, fmt.Errorf("unknown cache partition: %s", p))
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	if !flags.Has(ref.SkipCache) {
		if v, ok, err := l.cached(key, typ, p, flags); ok || err != nil {
			return v, ok, err
		}
	}

	at := slot{p: p, key: key}
	if _, busy := l.decoding[at]; busy {
		l.trace(flags, "resolve deferred", key, typ, p)
		return nil, false, errs.NewKeyError(key, typ, errs.ErrResolutionDeferred)
	}

	l.stats.Misses++

	entry, ok := l.archive.Lookup(key)
	if !ok {
		l.stats.Absent++
		l.trace(flags, "resolve absent", key, typ, p)
		if flags.Has(ref.Strict) {
			return nil, false, errs.NewKeyError(key, typ, errs.ErrMissingKey)
		}

		return nil, false, nil
	}

	decoder, ok := l.table.Lookup(typ, l.version)
	if !ok {
		return nil, false, errs.NewKeyError(key, typ,
			fmt.Errorf("%w: no decoder for profile version %d", errs.ErrUnknownTag, l.version))
	}

	l.decoding[at] = struct{}{}
	defer delete(l.decoding, at)
	gen := l.generation[at]

	data, err := l.payload(ctx, entry, decoder.FixedSize())
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}

		return nil, false, errs.NewKeyError(key, typ, err)
	}

	record, err := decoder.Decode(l.base.For(key, typ, p), data)
	if err != nil {
		return nil, false, errs.NewKeyError(key, typ, err)
	}

	if err := ctx.Err(); err != nil {
		l.trace(flags, "resolve cancelled before publish", key, typ, p)
		return nil, false, err
	}

	if l.generation[at] != gen {
		return nil, false, errs.NewKeyError(key, typ,
			fmt.Errorf("%w: published while its own decode was in flight", errs.ErrCyclicResolution))
	}
	l.generation[at]++
	l.stats.Decodes++

	if !flags.Has(ref.NoCache) {
		l.store.Put(p, key, typ, record, flags.Has(ref.KeepAlive))
	}
	filled := l.registry.Drain(key, typ, record)

	if flags.Has(ref.Trace) {
		l.sugar.Debugw("resolve decoded",
			"key", key.String(), "type", typ.String(), "partition", p.String(),
			"flags", flags.String(), "bytes", len(data), "filled", filled)
	}

	return record, true, nil
}

func (l *Loader) cached(key format.Key, typ format.FileType, p cache.Partition, flags ref.Flags) (any, bool, error) {
	e, ok := l.store.Get(p, key)
	if !ok {
		return nil, false, nil
	}

	if e.Type != typ {
		return nil, false, errs.NewKeyError(key, typ,
			fmt.Errorf("%w: cached as %s", errs.ErrMalformedRecord, e.Type))
	}

	l.stats.Hits++
	if flags.Has(ref.KeepAlive) {
		l.store.Pin(p, key)
	}
	l.registry.Drain(key, typ, e.Value)
	l.trace(flags, "resolve hit", key, typ, p)

	return e.Value, true, nil
}

func (l *Loader) payload(ctx context.Context, entry section.Entry, expected int) ([]byte, error) {
	if data, ok := l.prefetched[entry.Key]; ok {
		delete(l.prefetched, entry.Key)
		return data, nil
	}

	return l.archive.Payload(ctx, entry, expected)
}

func (l *Loader) trace(flags ref.Flags, msg string, key format.Key, typ format.FileType, p cache.Partition) {
	if !flags.Has(ref.Trace) {
		return
	}

	l.sugar.Debugw(msg, "key", key.String(), "type", typ.String(), "partition", p.String(), "flags", flags.String())
}

// Defer parks site until its key is published. Sites created with
// dispatch.NewReference are already registered and stay parked once.
func (l *Loader) Defer(site ref.Site) {
	l.registry.Register(site)
	l.stats.Deferred++
}

// Release removes one keep-alive pin from a cached record.
// It returns false if the record is not pinned.
func (l *Loader) Release(p cache.Partition, key format.Key) bool {
	_, ok := l.store.Release(p, key)
	return ok
}

// Evict drops an unpinned record from partition p.
func (l *Loader) Evict(p cache.Partition, key format.Key) (bool, error) {
	return l.store.Evict(p, key)
}

// Cached reports whether key is cached in partition p.
func (l *Loader) Cached(p cache.Partition, key format.Key) bool {
	return l.store.Contains(p, key)
}

// CacheStats returns the counters of partition p.
func (l *Loader) CacheStats(p cache.Partition) cache.Stats {
	return l.store.Stats(p)
}

// Stats returns the resolve counters.
func (l *Loader) Stats() Stats {
	return l.stats
}

// Registry returns the dedup registry of the load context.
func (l *Loader) Registry() *ref.Registry {
	return l.registry
}

// Archive returns the archive the Loader reads.
func (l *Loader) Archive() *archive.Archive {
	return l.archive
}

// Profile returns the profile name and version the Loader decodes with.
func (l *Loader) Profile() (string, int) {
	return l.profile, l.version
}

// Load resolves key as a T through a fresh reference.
//
// A deferred resolve returns no value; its reference is filled on publish but
// is not reachable by the caller, so Load suits top-level requests only.
func Load[T any](ctx context.Context, l *Loader, key format.Key, typ format.FileType, p cache.Partition, flags ref.Flags) (T, bool, error) {
	return ref.ResolveNow(ctx, ref.New[T](key, typ), l, p, flags)
}
