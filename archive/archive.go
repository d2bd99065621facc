package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/arloliu/pakref/compress"
	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/internal/pool"
	"github.com/arloliu/pakref/section"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Archive is the parsed, read-only directory of one container.
type Archive struct {
	cfg     *Config
	src     io.ReadSeeker
	closer  io.Closer
	size    int64
	header  section.Header
	entries []section.Entry
	index   map[format.Key]int

	mu     sync.Mutex // guards src cursor
	flight singleflight.Group
	sugar  *zap.SugaredLogger
}

// Open parses the container header and entry tables from src.
//
// The cursor of src is restored before Open returns. The caller keeps
// ownership of src and must keep it open for as long as the Archive is used.
//
// Parameters:
//   - src: Container source
//   - opts: Container conventions (tag, byte order, compression, transforms, logger)
//
// Returns:
//   - *Archive: Parsed archive
//   - error: ErrHeaderMismatch, ErrInvalidHeaderSize, ErrOutOfBounds, ErrMalformedRecord or an I/O error
func Open(src io.ReadSeeker, opts ...Option) (*Archive, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		cfg:   cfg,
		src:   src,
		sugar: cfg.logger.Sugar(),
	}

	if err := a.load(); err != nil {
		return nil, err
	}

	a.sugar.Debugw("archive opened", "entries", len(a.entries), "size", a.size,
		"byteOrder", endian.Name(cfg.engine), "compression", cfg.compression.String())

	return a, nil
}

// OpenFile opens the container at path; Close releases the file.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	a, err := Open(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.closer = f

	return a, nil
}

// OpenBytes parses a container held in memory.
func OpenBytes(data []byte, opts ...Option) (*Archive, error) {
	return Open(bytes.NewReader(data), opts...)
}

// Close releases the underlying file when the archive was created by OpenFile.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}

	return a.closer.Close()
}

func (a *Archive) load() (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	restore, err := a.saveCursor()
	if err != nil {
		return err
	}
	defer restore(&err)

	if a.size, err = a.src.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("archive: measure source: %w", err)
	}
	if _, err = a.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("archive: seek header: %w", err)
	}

	headerBuf := make([]byte, len(a.cfg.tag)+section.HeaderFieldsSize)
	n, err := io.ReadFull(a.src, headerBuf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("archive: read header: %w", err)
	}

	if a.header, err = section.ParseHeader(headerBuf[:n], a.cfg.tag, a.cfg.engine); err != nil {
		return err
	}

	tablesSize := a.header.TablesSize()
	if int64(a.header.DataOffset()) > a.size {
		return fmt.Errorf("%w: entry tables need %d bytes, container has %d", errs.ErrOutOfBounds, a.header.DataOffset(), a.size)
	}

	tables := make([]byte, tablesSize)
	if _, err = io.ReadFull(a.src, tables); err != nil {
		return fmt.Errorf("%w: read entry tables: %v", errs.ErrOutOfBounds, err)
	}

	if a.entries, err = section.ParseEntryTables(tables, a.header, a.cfg.engine); err != nil {
		return err
	}

	a.index = make(map[format.Key]int, len(a.entries))
	for i, e := range a.entries {
		if !e.Within(uint64(a.size)) { //nolint: gosec
			return fmt.Errorf("%w: entry %s spans [%d, %d) of %d bytes", errs.ErrOutOfBounds, e.Key, e.Offset, e.End(), a.size)
		}
		if _, dup := a.index[e.Key]; dup {
			return fmt.Errorf("%w: %w: %s", errs.ErrMalformedRecord, errs.ErrDuplicateKey, e.Key)
		}
		a.index[e.Key] = i
	}

	return nil
}

// saveCursor records the current cursor and returns a function that restores
// it, reporting a restore failure through *err unless an error is already set.
func (a *Archive) saveCursor() (func(*error), error) {
	pos, err := a.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("archive: save cursor: %w", err)
	}

	return func(errp *error) {
		if _, serr := a.src.Seek(pos, io.SeekStart); serr != nil && *errp == nil {
			*errp = fmt.Errorf("archive: restore cursor: %w", serr)
		}
	}, nil
}

// Lookup returns the entry for key. Absence is not an error.
func (a *Archive) Lookup(key format.Key) (section.Entry, bool) {
	i, ok := a.index[key]
	if !ok {
		return section.Entry{}, false
	}

	return a.entries[i], true
}

// Contains reports whether key has an entry.
func (a *Archive) Contains(key format.Key) bool {
	_, ok := a.index[key]
	return ok
}

// Entries returns a copy of the entries in table order.
func (a *Archive) Entries() []section.Entry {
	return append([]section.Entry(nil), a.entries...)
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Size returns the total byte length of the container.
func (a *Archive) Size() int64 {
	return a.size
}

// Header returns the parsed container header.
func (a *Archive) Header() section.Header {
	return a.header
}

// Config returns the container conventions the archive was opened with.
func (a *Archive) Config() *Config {
	return a.cfg
}

// ReadRegion returns a copy of the raw bytes of an entry region.
//
// The source cursor is saved before the read and restored afterwards on
// every path, including failures.
//
// Parameters:
//   - entry: Entry obtained from Lookup or Entries
//
// Returns:
//   - []byte: Newly allocated region bytes
//   - error: ErrOutOfBounds if the region cannot be read in full
func (a *Archive) ReadRegion(entry section.Entry) ([]byte, error) {
	region := make([]byte, entry.Size)
	if err := a.readRegionInto(entry, region); err != nil {
		return nil, err
	}

	return region, nil
}

func (a *Archive) readRegionInto(entry section.Entry, dst []byte) (err error) {
	if !entry.Within(uint64(a.size)) { //nolint: gosec
		return fmt.Errorf("%w: entry %s spans [%d, %d) of %d bytes", errs.ErrOutOfBounds, entry.Key, entry.Offset, entry.End(), a.size)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	restore, err := a.saveCursor()
	if err != nil {
		return err
	}
	defer restore(&err)

	if _, err = a.src.Seek(int64(entry.Offset), io.SeekStart); err != nil { //nolint: gosec
		return fmt.Errorf("archive: seek entry %s: %w", entry.Key, err)
	}

	if _, err = io.ReadFull(a.src, dst); err != nil {
		return fmt.Errorf("%w: read entry %s: %v", errs.ErrOutOfBounds, entry.Key, err)
	}

	return nil
}

// Payload returns the logical record bytes of an entry.
//
// Compressed entries are unframed and decompressed; then the configured
// transforms run. Concurrent calls for the same entry share one read.
//
// Parameters:
//   - ctx: Cancels the call before the region is acquired
//   - entry: Entry obtained from Lookup or Entries
//   - expected: Expected record length after transforms, or a negative value if unknown
//
// Returns:
//   - []byte: Record bytes owned by the caller
//   - error: ErrOutOfBounds, ErrCorruptData, or the context error
func (a *Archive) Payload(ctx context.Context, entry section.Entry, expected int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flightKey := strconv.FormatUint(uint64(entry.Key), 16) + "/" + strconv.Itoa(expected)
	v, err, shared := a.flight.Do(flightKey, func() (any, error) {
		return a.payload(entry, expected)
	})
	if err != nil {
		return nil, err
	}

	data, _ := v.([]byte)
	if shared {
		return bytes.Clone(data), nil
	}

	return data, nil
}

func (a *Archive) payload(entry section.Entry, expected int) ([]byte, error) {
	if !entry.Compressed {
		region, err := a.ReadRegion(entry)
		if err != nil {
			return nil, err
		}

		return a.cfg.pipeline.Apply(region)
	}

	buf := pool.GetRegionBuffer()
	defer pool.PutRegionBuffer(buf)

	region := buf.Extend(int(entry.Size))
	if err := a.readRegionInto(entry, region); err != nil {
		return nil, err
	}

	stream, err := compress.Unframe(region, a.cfg.engine)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", entry.Key, err)
	}

	want := -1
	if expected >= 0 {
		want = expected + a.cfg.pipeline.Overhead()
	}

	data, err := compress.DecompressSized(a.cfg.codec, stream, want)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", entry.Key, err)
	}

	// the no-op codec hands back a view of the pooled buffer
	if a.cfg.compression == format.CompressionNone {
		data = bytes.Clone(data)
	}

	return a.cfg.pipeline.Apply(data)
}
