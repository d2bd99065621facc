// Package cache holds the decoded records of one load context.
//
// A Store owns one partition per cache.Partition, created lazily. Each
// partition maps a content key to the single canonical decoded record, its
// file type and a pin count. Entries persist until explicitly evicted, except
// in partitions given a capacity: there, unpinned entries beyond the capacity
// are evicted least-recently-used. Pinned (keep-alive) entries are held
// outside the LRU and survive until every pin is released.
//
// A Store belongs to exactly one loader and is not safe for concurrent use.
package cache

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/internal/options"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"
)

// Entry is one cached record.
type Entry struct {
	// Value is the decoded record.
	Value any
	// Type is the file type the record was decoded as.
	Type format.FileType
	// Pins is the number of outstanding keep-alive pins.
	Pins int
}

// Stats are the counters of one partition.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Puts      uint64
	Evictions uint64
	Len       int
	Pinned    int
}

type partition struct {
	id       Partition
	capacity int
	pinned   map[format.Key]*Entry
	lru      *simplelru.LRU[format.Key, *Entry]
	stats    Stats
	// removing suppresses eviction accounting while an entry is moved or dropped on request
	removing bool
}

// Store holds the partitions of one load context.
type Store struct {
	parts      map[Partition]*partition
	capacities map[Partition]int
	sugar      *zap.SugaredLogger
}

// Option is a functional option for configuring a Store.
type Option = options.Option[*Store]

// WithCapacity bounds the number of unpinned entries of partition p.
// A capacity of zero means unbounded.
func WithCapacity(p Partition, n int) Option {
	return options.New(func(s *Store) error {
		if !p.Valid() {
			return fmt.Errorf("unknown cache partition: %s", p)
		}
		if n < 0 {
			return fmt.Errorf("capacity of partition %s must not be negative: %d", p, n)
		}
		s.capacities[p] = n

		return nil
	})
}

// WithLogger sets the logger used to report evictions.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(s *Store) {
		if logger != nil {
			s.sugar = logger.Sugar()
		}
	})
}

// New creates an empty Store.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		parts:      make(map[Partition]*partition),
		capacities: make(map[Partition]int),
		sugar:      zap.NewNop().Sugar(),
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) partition(p Partition) *partition {
	if part, ok := s.parts[p]; ok {
		return part
	}

	part := &partition{
		id:       p,
		capacity: s.capacities[p],
		pinned:   make(map[format.Key]*Entry),
	}

	size := part.capacity
	if size == 0 {
		size = math.MaxInt
	}

	// size is always positive, so NewLRU cannot fail
	part.lru, _ = simplelru.NewLRU[format.Key, *Entry](size, func(key format.Key, e *Entry) {
		if part.removing {
			return
		}
		part.stats.Evictions++
		s.sugar.Debugw("cache entry evicted", "partition", p.String(), "key", key.String(), "type", e.Type.String())
	})
	s.parts[p] = part

	return part
}

func (part *partition) remove(key format.Key) bool {
	part.removing = true
	defer func() { part.removing = false }()

	return part.lru.Remove(key)
}

func (part *partition) peek(key format.Key) (*Entry, bool) {
	if e, ok := part.pinned[key]; ok {
		return e, true
	}

	return part.lru.Peek(key)
}

// Get returns the cached entry for key in partition p and marks it recently used.
func (s *Store) Get(p Partition, key format.Key) (Entry, bool) {
	part := s.partition(p)

	if e, ok := part.pinned[key]; ok {
		part.stats.Hits++
		return *e, true
	}

	if e, ok := part.lru.Get(key); ok {
		part.stats.Hits++
		return *e, true
	}

	part.stats.Misses++

	return Entry{}, false
}

// Contains reports whether key is cached in partition p without touching counters or recency.
func (s *Store) Contains(p Partition, key format.Key) bool {
	_, ok := s.partition(p).peek(key)
	return ok
}

// Put stores value under key in partition p, replacing any previous value.
//
// Parameters:
//   - p: Target partition
//   - key: Content key
//   - typ: File type the value was decoded as
//   - value: Decoded record
//   - pin: Add a keep-alive pin so the entry cannot be evicted until released
func (s *Store) Put(p Partition, key format.Key, typ format.FileType, value any, pin bool) {
	part := s.partition(p)
	part.stats.Puts++

	if e, ok := part.pinned[key]; ok {
		e.Value, e.Type = value, typ
		if pin {
			e.Pins++
		}

		return
	}

	if pin {
		part.remove(key)
		part.pinned[key] = &Entry{Value: value, Type: typ, Pins: 1}

		return
	}

	part.lru.Add(key, &Entry{Value: value, Type: typ})
}

// Pin adds a keep-alive pin to a cached entry.
// It returns false if key is not cached in partition p.
func (s *Store) Pin(p Partition, key format.Key) bool {
	part := s.partition(p)

	if e, ok := part.pinned[key]; ok {
		e.Pins++
		return true
	}

	e, ok := part.lru.Peek(key)
	if !ok {
		return false
	}

	part.remove(key)
	e.Pins = 1
	part.pinned[key] = e

	return true
}

// Release removes one keep-alive pin. When the last pin is released the entry
// returns to the LRU, where capacity limits apply to it again.
//
// Returns:
//   - int: Pins remaining
//   - bool: False if key is not pinned in partition p
func (s *Store) Release(p Partition, key format.Key) (int, bool) {
	part := s.partition(p)

	e, ok := part.pinned[key]
	if !ok {
		return 0, false
	}

	e.Pins--
	if e.Pins > 0 {
		return e.Pins, true
	}

	delete(part.pinned, key)
	e.Pins = 0
	part.lru.Add(key, e)

	return 0, true
}

// Evict drops an unpinned entry.
//
// Returns:
//   - bool: Whether an entry was removed
//   - error: ErrEntryPinned if the entry holds keep-alive pins
func (s *Store) Evict(p Partition, key format.Key) (bool, error) {
	part := s.partition(p)

	if e, ok := part.pinned[key]; ok {
		return false, fmt.Errorf("%w: %s in %s (%d pins)", errs.ErrEntryPinned, key, p, e.Pins)
	}

	return part.remove(key), nil
}

// Clear drops every unpinned entry of partition p and returns how many were dropped.
func (s *Store) Clear(p Partition) int {
	part := s.partition(p)
	n := part.lru.Len()

	part.removing = true
	part.lru.Purge()
	part.removing = false

	return n
}

// Len returns the number of entries, pinned included, in partition p.
func (s *Store) Len(p Partition) int {
	part := s.partition(p)
	return part.lru.Len() + len(part.pinned)
}

// Keys returns the keys cached in partition p in ascending order.
func (s *Store) Keys(p Partition) []format.Key {
	part := s.partition(p)

	keys := make([]format.Key, 0, part.lru.Len()+len(part.pinned))
	keys = append(keys, part.lru.Keys()...)
	for key := range part.pinned {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

// Stats returns the counters of partition p.
func (s *Store) Stats(p Partition) Stats {
	part := s.partition(p)

	st := part.stats
	st.Len = part.lru.Len() + len(part.pinned)
	st.Pinned = len(part.pinned)

	return st
}

// Capacity returns the configured capacity of partition p; zero means unbounded.
func (s *Store) Capacity(p Partition) int {
	return s.capacities[p]
}
