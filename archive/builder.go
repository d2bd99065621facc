package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/pakref/compress"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/internal/collision"
	"github.com/arloliu/pakref/internal/pool"
	"github.com/arloliu/pakref/section"
	"go.uber.org/zap"
)

type pendingRecord struct {
	key        format.Key
	region     []byte
	compressed bool
}

// Builder assembles a container in memory.
//
// Records are written in insertion order. Record bytes go through the reverse
// of the configured transforms and, when requested, are compressed and framed,
// so an Archive opened with the same options reads them back unchanged.
type Builder struct {
	cfg     *Config
	tracker *collision.Tracker
	records []pendingRecord
	sugar   *zap.SugaredLogger
}

// NewBuilder creates a Builder with the given container conventions.
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:     cfg,
		tracker: collision.NewTracker(),
		sugar:   cfg.logger.Sugar(),
	}, nil
}

// Add appends a record under key.
//
// Parameters:
//   - key: Content key, must not be NullKey or already present
//   - data: Logical record bytes
//   - compressed: Whether to store the record compressed
//
// Returns:
//   - error: ErrNullKey, ErrDuplicateKey, or a transform/compression error
func (b *Builder) Add(key format.Key, data []byte, compressed bool) error {
	if key.IsNull() {
		return errs.ErrNullKey
	}
	if err := b.tracker.TrackKey(uint32(key)); err != nil {
		return err
	}

	return b.push(key, data, compressed)
}

// AddNamed appends a record under the key derived from name.
//
// Returns:
//   - format.Key: The derived key
//   - error: ErrDuplicateKey for a repeated name, ErrKeyCollision when two names derive the same key
func (b *Builder) AddNamed(name string, data []byte, compressed bool) (format.Key, error) {
	key := format.KeyFromName(name)
	if err := b.tracker.TrackName(name, uint32(key)); err != nil {
		return format.NullKey, err
	}

	return key, b.push(key, data, compressed)
}

// AddRaw appends a region verbatim, bypassing transforms, compression and
// framing. It exists to produce damaged containers for tests and tooling.
func (b *Builder) AddRaw(key format.Key, region []byte, compressed bool) error {
	if err := b.tracker.TrackKey(uint32(key)); err != nil {
		return err
	}
	b.records = append(b.records, pendingRecord{key: key, region: bytes.Clone(region), compressed: compressed})

	return nil
}

func (b *Builder) push(key format.Key, data []byte, compressed bool) error {
	region, err := b.cfg.pipeline.Reverse(data)
	if err != nil {
		return fmt.Errorf("entry %s: %w", key, err)
	}

	if compressed {
		stream, err := b.cfg.codec.Compress(region)
		if err != nil {
			return fmt.Errorf("entry %s: %w", key, err)
		}
		region = compress.Frame(stream, b.cfg.engine)
	} else {
		region = bytes.Clone(region)
	}

	b.records = append(b.records, pendingRecord{key: key, region: region, compressed: compressed})

	return nil
}

// Name returns the asset name a key was added under, if any.
func (b *Builder) Name(key format.Key) (string, bool) {
	return b.tracker.Name(uint32(key))
}

// Config returns the conventions the Builder writes with.
func (b *Builder) Config() *Config {
	return b.cfg
}

// Len returns the number of records added.
func (b *Builder) Len() int {
	return len(b.records)
}

// Reset discards all records so the Builder can assemble a new container.
func (b *Builder) Reset() {
	b.tracker.Reset()
	b.records = b.records[:0]
}

func (b *Builder) assemble(buf *pool.ByteBuffer) {
	header := section.NewHeader(b.cfg.tag, uint32(len(b.records))) //nolint: gosec

	entries := make([]section.Entry, len(b.records))
	offset := uint64(header.DataOffset()) //nolint: gosec
	for i, r := range b.records {
		entries[i] = section.Entry{
			Key:        r.key,
			Offset:     offset,
			Size:       uint32(len(r.region)), //nolint: gosec
			Compressed: r.compressed,
		}
		offset += uint64(len(r.region))
	}

	buf.Grow(int(offset)) //nolint: gosec
	buf.B = header.Append(buf.B, b.cfg.engine)
	buf.B = section.AppendEntryTables(buf.B, entries, b.cfg.engine)
	for _, r := range b.records {
		buf.MustWrite(r.region)
	}

	b.sugar.Debugw("container assembled", "entries", len(entries), "size", buf.Len())
}

// Bytes returns the encoded container.
func (b *Builder) Bytes() []byte {
	buf := pool.GetContainerBuffer()
	defer pool.PutContainerBuffer(buf)

	b.assemble(buf)

	return bytes.Clone(buf.Bytes())
}

// WriteTo writes the encoded container to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	buf := pool.GetContainerBuffer()
	defer pool.PutContainerBuffer(buf)

	b.assemble(buf)

	return buf.WriteTo(w)
}
