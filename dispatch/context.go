package dispatch

import (
	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/ref"
	"go.uber.org/zap"
)

// Context describes the record being decoded and the load it belongs to.
type Context struct {
	// Profile names the game/version profile of the container.
	Profile string
	// Version selects layout variants registered with WithVersions.
	Version int
	// Key is the content key of the record being decoded.
	Key format.Key
	// Type is the file type the record is decoded as.
	Type format.FileType
	// Partition is the cache partition the record will be published to.
	Partition cache.Partition
	// ByteOrder is the byte order of the container.
	ByteOrder endian.EndianEngine
	// Registry collects the references created while decoding.
	Registry *ref.Registry

	sugar *zap.SugaredLogger
}

// NewContext creates the base decode context of a load.
//
// Parameters:
//   - registry: Dedup registry of the load, may be nil to disable registration
//   - order: Container byte order, nil means little-endian
//   - logger: Logger, nil means discard
//
// Returns:
//   - *Context: Context with no record set; use For to derive per-record contexts
func NewContext(registry *ref.Registry, order endian.EndianEngine, logger *zap.Logger) *Context {
	if order == nil {
		order = endian.GetLittleEndianEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Context{
		Key:       format.NullKey,
		ByteOrder: order,
		Registry:  registry,
		sugar:     logger.Sugar(),
	}
}

// For returns a copy of c describing the record key of type typ in partition p.
func (c *Context) For(key format.Key, typ format.FileType, p cache.Partition) *Context {
	dc := *c
	dc.Key, dc.Type, dc.Partition = key, typ, p

	return &dc
}

// Logger returns the sugared logger of the load.
func (c *Context) Logger() *zap.SugaredLogger {
	if c.sugar == nil {
		return zap.NewNop().Sugar()
	}

	return c.sugar
}

// Reader returns a cursor over data in the context's byte order.
func (c *Context) Reader(data []byte) *Reader {
	return NewReader(data, c.ByteOrder)
}

// NewReference creates a reference to key and registers it as pending with
// the context's registry, so it is filled when key is published.
//
// Null references (TypeNone or the sentinel key) are returned unregistered.
func NewReference[T any](dc *Context, key format.Key, typ format.FileType) *ref.Reference[T] {
	r := ref.New[T](key, typ)
	if dc.Registry != nil {
		dc.Registry.Register(r)
	}

	return r
}
