package section

import (
	"fmt"

	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/errs"
)

// Header is the fixed-size section at the start of a container.
type Header struct {
	// Tag is the identifying tag, compared byte-for-byte with the expected tag.
	Tag string
	// Reserved0 is an unused field preserved for round-tripping.
	Reserved0 uint32
	// Reserved1 is an unused field preserved for round-tripping.
	Reserved1 uint32
	// Count is the number of entries in each of the four entry tables.
	Count uint32
	// Reserved2 is an unused field preserved for round-tripping.
	Reserved2 uint32
}

// NewHeader creates a header with the given tag and entry count.
func NewHeader(tag string, count uint32) Header {
	return Header{Tag: tag, Count: count}
}

// Size returns the encoded size of the header in bytes.
func (h Header) Size() int {
	return len(h.Tag) + HeaderFieldsSize
}

// TablesSize returns the encoded size of the entry tables the header declares.
func (h Header) TablesSize() int {
	return EntryTablesSize(int(h.Count))
}

// DataOffset returns the byte offset of the first byte after the entry tables.
func (h Header) DataOffset() int {
	return h.Size() + h.TablesSize()
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Container bytes starting at the tag (may be longer than the header)
//   - tag: Expected identifying tag
//   - engine: Byte order of the container
//
// Returns:
//   - error: ErrHeaderMismatch if any tag byte differs, ErrInvalidHeaderSize if data is truncated
func (h *Header) Parse(data []byte, tag string, engine endian.EndianEngine) error {
	if len(tag) == 0 {
		return fmt.Errorf("%w: empty expected tag", errs.ErrHeaderMismatch)
	}

	if len(data) < len(tag) {
		return fmt.Errorf("%w: %d bytes, need %d", errs.ErrInvalidHeaderSize, len(data), len(tag)+HeaderFieldsSize)
	}

	if string(data[:len(tag)]) != tag {
		return fmt.Errorf("%w: got %q, want %q", errs.ErrHeaderMismatch, data[:len(tag)], tag)
	}

	if len(data) < len(tag)+HeaderFieldsSize {
		return fmt.Errorf("%w: %d bytes, need %d", errs.ErrInvalidHeaderSize, len(data), len(tag)+HeaderFieldsSize)
	}

	fields := data[len(tag) : len(tag)+HeaderFieldsSize]
	h.Tag = tag
	h.Reserved0 = engine.Uint32(fields[0:4])
	h.Reserved1 = engine.Uint32(fields[4:8])
	h.Count = engine.Uint32(fields[8:12])
	h.Reserved2 = engine.Uint32(fields[12:16])

	if h.Count > MaxEntries {
		return fmt.Errorf("%w: entry count %d exceeds %d", errs.ErrOutOfBounds, h.Count, MaxEntries)
	}

	return nil
}

// Bytes serializes the header into a new byte slice.
func (h Header) Bytes(engine endian.EndianEngine) []byte {
	return h.Append(make([]byte, 0, h.Size()), engine)
}

// Append appends the encoded header to dst and returns the extended slice.
func (h Header) Append(dst []byte, engine endian.EndianEngine) []byte {
	dst = append(dst, h.Tag...)
	dst = engine.AppendUint32(dst, h.Reserved0)
	dst = engine.AppendUint32(dst, h.Reserved1)
	dst = engine.AppendUint32(dst, h.Count)
	dst = engine.AppendUint32(dst, h.Reserved2)

	return dst
}

// ParseHeader parses a Header from a byte slice.
//
// Parameters:
//   - data: Container bytes starting at the tag
//   - tag: Expected identifying tag
//   - engine: Byte order of the container
//
// Returns:
//   - Header: Parsed header
//   - error: ErrHeaderMismatch or ErrInvalidHeaderSize
func ParseHeader(data []byte, tag string, engine endian.EndianEngine) (Header, error) {
	h := Header{}
	if err := h.Parse(data, tag, engine); err != nil {
		return Header{}, err
	}

	return h, nil
}
