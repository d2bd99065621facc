package dispatch

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/internal/options"
)

// DecodeFunc decodes one record payload.
//
// The payload is owned by the decoder for the duration of the call; a decoder
// that keeps sub-slices of it in the record must copy them. Errors that are
// not already classified are reported as errs.ErrMalformedRecord.
type DecodeFunc func(dc *Context, data []byte) (any, error)

// EmbeddedTypeFunc extracts the type tag a payload carries about itself.
// It returns false when the payload is too short to carry one.
type EmbeddedTypeFunc func(data []byte) (format.FileType, bool)

// Entry is a registered decoder together with its constraints.
type Entry struct {
	typ        format.FileType
	decode     DecodeFunc
	fixedSize  int
	embedded   EmbeddedTypeFunc
	minVersion int
	maxVersion int
}

// EntryOption configures an Entry at registration.
type EntryOption = options.Option[*Entry]

// WithFixedSize declares that every payload of the type is exactly n bytes.
//
// The loader passes n to the archive as the expected decompressed length, so a
// compressed payload of another length fails with errs.ErrCorruptData; an
// uncompressed one fails dispatch with errs.ErrMalformedRecord.
func WithFixedSize(n int) EntryOption {
	return options.New(func(e *Entry) error {
		if n < 0 {
			return fmt.Errorf("fixed size must not be negative: %d", n)
		}
		e.fixedSize = n

		return nil
	})
}

// WithEmbeddedType sets the extractor of a type tag stored inside the payload.
// A payload whose tag differs from the dispatched type is malformed.
func WithEmbeddedType(fn EmbeddedTypeFunc) EntryOption {
	return options.NoError(func(e *Entry) {
		e.embedded = fn
	})
}

// WithVersions restricts the entry to profile versions in [minVersion, maxVersion].
func WithVersions(minVersion, maxVersion int) EntryOption {
	return options.New(func(e *Entry) error {
		if minVersion < 0 || maxVersion < minVersion {
			return fmt.Errorf("invalid version range [%d, %d]", minVersion, maxVersion)
		}
		e.minVersion, e.maxVersion = minVersion, maxVersion

		return nil
	})
}

// Type returns the file type the entry decodes.
func (e *Entry) Type() format.FileType { return e.typ }

// FixedSize returns the declared payload size, or -1 when payloads vary in length.
func (e *Entry) FixedSize() int { return e.fixedSize }

// Versions returns the inclusive profile version range of the entry.
func (e *Entry) Versions() (int, int) { return e.minVersion, e.maxVersion }

func (e *Entry) accepts(version int) bool {
	return version >= e.minVersion && version <= e.maxVersion
}

func (e *Entry) overlaps(other *Entry) bool {
	return e.minVersion <= other.maxVersion && other.minVersion <= e.maxVersion
}

// Table maps file types to decoders.
//
// A Table is populated once, before loading starts, and is read-only
// afterwards; it may then be shared by any number of loaders.
type Table struct {
	entries map[format.FileType][]*Entry
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[format.FileType][]*Entry)}
}

// Register adds a decoder for typ.
//
// Several decoders may be registered for one type as long as their version
// ranges do not overlap; without WithVersions an entry covers every version.
//
// Parameters:
//   - typ: File type to decode, never format.TypeNone
//   - fn: Decode function
//   - opts: Entry constraints
//
// Returns:
//   - error: If typ is TypeNone, fn is nil, an option is invalid, or the
//     version range overlaps an existing entry of typ
func (t *Table) Register(typ format.FileType, fn DecodeFunc, opts ...EntryOption) error {
	if typ.IsNone() {
		return fmt.Errorf("cannot register a decoder for %s", typ)
	}
	if fn == nil {
		return fmt.Errorf("nil decoder for %s", typ)
	}

	entry := &Entry{
		typ:        typ,
		decode:     fn,
		fixedSize:  -1,
		minVersion: 0,
		maxVersion: math.MaxInt,
	}
	if err := options.Apply(entry, opts...); err != nil {
		return fmt.Errorf("register %s: %w", typ, err)
	}

	for _, existing := range t.entries[typ] {
		if existing.overlaps(entry) {
			return fmt.Errorf("register %s: versions [%d, %d] overlap an existing decoder",
				typ, entry.minVersion, entry.maxVersion)
		}
	}
	t.entries[typ] = append(t.entries[typ], entry)

	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// package-level table setup.
func (t *Table) MustRegister(typ format.FileType, fn DecodeFunc, opts ...EntryOption) {
	if err := t.Register(typ, fn, opts...); err != nil {
		panic(err)
	}
}

// Lookup returns the entry decoding typ under the given profile version.
func (t *Table) Lookup(typ format.FileType, version int) (*Entry, bool) {
	if typ.IsNone() {
		return nil, false
	}

	for _, e := range t.entries[typ] {
		if e.accepts(version) {
			return e, true
		}
	}

	return nil, false
}

// Types returns the registered file types in ascending order.
func (t *Table) Types() []format.FileType {
	types := make([]format.FileType, 0, len(t.entries))
	for typ := range t.entries {
		types = append(types, typ)
	}
	slices.Sort(types)

	return types
}

// Decode dispatches data to the decoder of typ for dc's profile version.
//
// Parameters:
//   - dc: Decode context of the record
//   - typ: Requested file type
//   - data: Decompressed, transformed payload
//
// Returns:
//   - any: Decoded record with unresolved reference fields
//   - error: errs.ErrUnknownTag if no decoder applies, errs.ErrMalformedRecord
//     if the payload violates the entry's constraints or the decoder fails
func (t *Table) Decode(dc *Context, typ format.FileType, data []byte) (any, error) {
	entry, ok := t.Lookup(typ, dc.Version)
	if !ok {
		return nil, fmt.Errorf("%w: %s (profile version %d)", errs.ErrUnknownTag, typ, dc.Version)
	}

	return entry.Decode(dc, data)
}

// Decode checks data against the entry's constraints and runs its decoder.
func (e *Entry) Decode(dc *Context, data []byte) (any, error) {
	if e.fixedSize >= 0 && len(data) != e.fixedSize {
		return nil, fmt.Errorf("%w: %s payload is %d bytes, want %d",
			errs.ErrMalformedRecord, e.typ, len(data), e.fixedSize)
	}

	if e.embedded != nil {
		tag, ok := e.embedded(data)
		if !ok {
			return nil, fmt.Errorf("%w: %s payload carries no type tag", errs.ErrMalformedRecord, e.typ)
		}
		if tag != e.typ {
			return nil, fmt.Errorf("%w: payload tagged %s, dispatched as %s", errs.ErrMalformedRecord, tag, e.typ)
		}
	}

	record, err := e.decode(dc, data)
	if err != nil {
		return nil, classify(err)
	}

	return record, nil
}

func classify(err error) error {
	if errors.Is(err, errs.ErrMalformedRecord) || errors.Is(err, errs.ErrUnknownTag) || errs.IsFatal(err) {
		return err
	}

	return fmt.Errorf("%w: %w", errs.ErrMalformedRecord, err)
}
