package dispatch

import (
	"fmt"

	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
)

// Reader is a bounds-checked cursor over a record payload.
//
// Every read that would run past the payload returns errs.ErrMalformedRecord
// and leaves the cursor unchanged.
type Reader struct {
	data   []byte
	pos    int
	engine endian.EndianEngine
}

// NewReader creates a Reader over data. A nil engine reads little-endian.
func NewReader(data []byte, engine endian.EndianEngine) *Reader {
	if engine == nil {
		engine = endian.GetLittleEndianEngine()
	}

	return &Reader{data: data, engine: engine}
}

// Pos returns the cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the payload length.
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: read of %d bytes at offset %d exceeds %d-byte payload",
			errs.ErrMalformedRecord, n, r.pos, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// U16 reads a uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

// U32 reads a uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

// U64 reads a uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(b), nil
}

// I32 reads an int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err //nolint: gosec
}

// Key reads a content key.
func (r *Reader) Key() (format.Key, error) {
	v, err := r.U32()
	return format.Key(v), err
}

// Type reads a one-byte file type tag.
func (r *Reader) Type() (format.FileType, error) {
	v, err := r.U8()
	return format.FileType(v), err
}

// Bytes reads n bytes. The result aliases the payload.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// String reads a string prefixed by its uint32 byte length.
func (r *Reader) String() (string, error) {
	start := r.pos

	n, err := r.U32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.pos = start
		return "", fmt.Errorf("%w: string of %d bytes at offset %d exceeds payload",
			errs.ErrMalformedRecord, n, start)
	}
	b, _ := r.take(int(n))

	return string(b), nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// At runs fn with the cursor at offset and restores the cursor afterwards,
// whether fn succeeds or not.
func (r *Reader) At(offset int, fn func(*Reader) error) error {
	if offset < 0 || offset > len(r.data) {
		return fmt.Errorf("%w: offset %d outside %d-byte payload", errs.ErrMalformedRecord, offset, len(r.data))
	}

	saved := r.pos
	defer func() { r.pos = saved }()
	r.pos = offset

	return fn(r)
}

// Done returns errs.ErrMalformedRecord if unread bytes remain.
func (r *Reader) Done() error {
	if rem := r.Remaining(); rem != 0 {
		return fmt.Errorf("%w: %d trailing bytes", errs.ErrMalformedRecord, rem)
	}

	return nil
}
