// Package pakref reads keyed, optionally compressed record containers and
// resolves the references between their records.
//
// A container starts with an identifying tag and a fixed header, followed by
// parallel tables of offsets, sizes, content keys and flags. Each entry names
// one record region; a compressed region holds a length-prefixed stream.
// Records reference each other by content key, and a load context (a
// loader.Loader) guarantees that every key is decoded at most once: later
// references to the same key share the canonical record, and references that
// reach back to a record still being decoded are filled when it publishes.
//
// # Core Features
//
//   - Fixed-layout container index with bounds validation on open
//   - Pluggable compression (zlib, Zstd, S2, LZ4) and post-decompression
//     transforms (XOR descrambling, xxHash64 and BLAKE3 verification)
//   - Decoder dispatch by file type, with size, embedded-tag and profile
//     version constraints
//   - Partitioned record cache with optional LRU bounds and keep-alive pins
//   - Cycle-safe reference resolution with dedup fan-out
//   - Game/version profiles loaded from YAML
//
// # Basic Usage
//
// Writing a container:
//
//	b, _ := pakref.NewBuilder(nil)
//	key, _ := b.AddNamed("levels/intro/spawn", payload, true)
//	_ = os.WriteFile("intro.pak", b.Bytes(), 0o644)
//
// Loading records:
//
//	arc, _ := pakref.OpenFile("intro.pak", nil)
//	l, _ := pakref.NewLoader(arc, dispatch.NewStockTable(), nil)
//	raw, ok, err := pakref.Resolve[[]byte](ctx, l, key, format.TypeRaw)
//
// # Package Structure
//
// This package provides top-level wrappers that apply a config.Profile to the
// archive, loader and cache packages. Use those packages directly for finer
// control.
package pakref

import (
	"context"

	"github.com/arloliu/pakref/archive"
	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/config"
	"github.com/arloliu/pakref/dispatch"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/loader"
	"github.com/arloliu/pakref/ref"
	"go.uber.org/zap"
)

func profileOrDefault(profile *config.Profile) *config.Profile {
	if profile == nil {
		return config.Default()
	}

	return profile
}

// OpenFile opens the container at path with the conventions of profile.
//
// Parameters:
//   - path: Container file path
//   - profile: Game/version profile, nil for config.Default()
//
// Returns:
//   - *archive.Archive: Opened archive; Close releases the file
//   - error: Profile, I/O or header/index errors (errs.ErrHeaderMismatch,
//     errs.ErrInvalidHeaderSize, errs.ErrOutOfBounds)
func OpenFile(path string, profile *config.Profile) (*archive.Archive, error) {
	opts, err := profileOrDefault(profile).ArchiveOptions(nil)
	if err != nil {
		return nil, err
	}

	return archive.OpenFile(path, opts...)
}

// OpenBytes opens an in-memory container with the conventions of profile.
func OpenBytes(data []byte, profile *config.Profile) (*archive.Archive, error) {
	opts, err := profileOrDefault(profile).ArchiveOptions(nil)
	if err != nil {
		return nil, err
	}

	return archive.OpenBytes(data, opts...)
}

// NewBuilder creates a container writer with the conventions of profile.
func NewBuilder(profile *config.Profile) (*archive.Builder, error) {
	opts, err := profileOrDefault(profile).ArchiveOptions(nil)
	if err != nil {
		return nil, err
	}

	return archive.NewBuilder(opts...)
}

// NewLoader creates a load context over arc.
//
// Parameters:
//   - arc: Opened archive
//   - table: Decoder table
//   - profile: Game/version profile, nil for config.Default()
//   - opts: Additional loader options, applied after the profile
//
// Returns:
//   - *loader.Loader: Loader with an empty cache
//   - error: If the profile or an option is invalid
func NewLoader(arc *archive.Archive, table *dispatch.Table, profile *config.Profile, opts ...loader.Option) (*loader.Loader, error) {
	all := append([]loader.Option{loader.WithProfile(profileOrDefault(profile))}, opts...)
	return loader.New(arc, table, all...)
}

// NewLogger returns a production zap logger, or a development one when debug
// is set. Trace-flagged resolves log at debug level.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// Resolve resolves key as a T in the main partition.
func Resolve[T any](ctx context.Context, l *loader.Loader, key format.Key, typ format.FileType) (T, bool, error) {
	return loader.Load[T](ctx, l, key, typ, cache.PartitionMain, 0)
}

// Key derives the content key of an asset name.
func Key(name string) format.Key {
	return format.KeyFromName(name)
}

// NewReference creates an unresolved reference to key.
func NewReference[T any](key format.Key, typ format.FileType) *ref.Reference[T] {
	return ref.New[T](key, typ)
}
