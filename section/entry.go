package section

import (
	"fmt"

	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
)

// Entry describes one addressable record region inside a container.
type Entry struct {
	// Key is the content key of the record.
	Key format.Key
	// Offset is the absolute byte offset of the region in the container.
	Offset uint64
	// Size is the byte length of the region.
	Size uint32
	// Compressed reports whether the region holds a framed compressed stream.
	Compressed bool
}

// End returns the offset one past the last byte of the region.
func (e Entry) End() uint64 {
	return e.Offset + uint64(e.Size)
}

// Within reports whether the region lies entirely inside a source of total bytes.
func (e Entry) Within(total uint64) bool {
	return e.Offset <= total && uint64(e.Size) <= total-e.Offset
}

// ParseEntryTables parses the four parallel entry tables.
//
// Parameters:
//   - data: Bytes starting immediately after the header
//   - h: Parsed header holding the entry count
//   - engine: Byte order of the container
//
// Returns:
//   - []Entry: Entries in table order
//   - error: ErrOutOfBounds if the tables are truncated
func ParseEntryTables(data []byte, h Header, engine endian.EndianEngine) ([]Entry, error) {
	n := int(h.Count)
	if len(data) < EntryTablesSize(n) {
		return nil, fmt.Errorf("%w: entry tables need %d bytes, have %d", errs.ErrOutOfBounds, EntryTablesSize(n), len(data))
	}

	offsets := data[:n*OffsetWidth]
	sizes := data[n*OffsetWidth : n*(OffsetWidth+SizeWidth)]
	ids := data[n*(OffsetWidth+SizeWidth) : n*(OffsetWidth+SizeWidth+IDWidth)]
	flags := data[n*(OffsetWidth+SizeWidth+IDWidth) : n*EntryStride]

	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			Key:        format.Key(engine.Uint32(ids[i*IDWidth:])),
			Offset:     engine.Uint64(offsets[i*OffsetWidth:]),
			Size:       engine.Uint32(sizes[i*SizeWidth:]),
			Compressed: flags[i]&FlagCompressed != 0,
		}
	}

	return entries, nil
}

// AppendEntryTables appends the four entry tables for entries to dst.
//
// Parameters:
//   - dst: Destination slice
//   - entries: Entries in table order
//   - engine: Byte order of the container
//
// Returns:
//   - []byte: The extended slice
func AppendEntryTables(dst []byte, entries []Entry, engine endian.EndianEngine) []byte {
	for _, e := range entries {
		dst = engine.AppendUint64(dst, e.Offset)
	}
	for _, e := range entries {
		dst = engine.AppendUint32(dst, e.Size)
	}
	for _, e := range entries {
		dst = engine.AppendUint32(dst, uint32(e.Key))
	}
	for _, e := range entries {
		var flag byte
		if e.Compressed {
			flag = FlagCompressed
		}
		dst = append(dst, flag)
	}

	return dst
}
