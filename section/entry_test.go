package section

import (
	"math"
	"testing"

	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/stretchr/testify/require"
)

func TestEntryTables_RoundTrip(t *testing.T) {
	entries := []Entry{
		{Key: 1, Offset: 100, Size: 4},
		{Key: 2, Offset: 104, Size: 20, Compressed: true},
		{Key: format.Key(0xCAFEBABE), Offset: math.MaxUint32 + 1, Size: 1},
	}

	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		t.Run(endian.Name(engine), func(t *testing.T) {
			data := AppendEntryTables(nil, entries, engine)
			require.Len(t, data, EntryTablesSize(len(entries)))

			parsed, err := ParseEntryTables(data, NewHeader(DefaultTag, uint32(len(entries))), engine)
			require.NoError(t, err)
			require.Equal(t, entries, parsed)
		})
	}
}

func TestEntryTables_ParallelLayout(t *testing.T) {
	entries := []Entry{
		{Key: 0x11, Offset: 0x21, Size: 0x31, Compressed: true},
		{Key: 0x12, Offset: 0x22, Size: 0x32},
	}
	data := AppendEntryTables(nil, entries, endian.GetBigEndianEngine())

	// offsets, then sizes, then ids, then flags
	require.Equal(t, byte(0x21), data[7])
	require.Equal(t, byte(0x22), data[15])
	require.Equal(t, byte(0x31), data[19])
	require.Equal(t, byte(0x32), data[23])
	require.Equal(t, byte(0x11), data[27])
	require.Equal(t, byte(0x12), data[31])
	require.Equal(t, []byte{1, 0}, data[32:34])
}

func TestParseEntryTables_Truncated(t *testing.T) {
	data := AppendEntryTables(nil, []Entry{{Key: 1}, {Key: 2}}, endian.GetLittleEndianEngine())

	_, err := ParseEntryTables(data[:len(data)-1], NewHeader(DefaultTag, 2), endian.GetLittleEndianEngine())
	require.ErrorIs(t, err, errs.ErrOutOfBounds)
}

func TestParseEntryTables_Empty(t *testing.T) {
	entries, err := ParseEntryTables(nil, NewHeader(DefaultTag, 0), endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestEntry_Within(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		total    uint64
		expected bool
	}{
		{name: "inside", entry: Entry{Offset: 10, Size: 5}, total: 20, expected: true},
		{name: "exact end", entry: Entry{Offset: 15, Size: 5}, total: 20, expected: true},
		{name: "past end", entry: Entry{Offset: 16, Size: 5}, total: 20, expected: false},
		{name: "offset past end", entry: Entry{Offset: 30, Size: 0}, total: 20, expected: false},
		{name: "overflow", entry: Entry{Offset: math.MaxUint64 - 1, Size: 10}, total: 20, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.entry.Within(tt.total))
		})
	}
	require.Equal(t, uint64(20), Entry{Offset: 15, Size: 5}.End())
}

func BenchmarkParseEntryTables(b *testing.B) {
	entries := make([]Entry, 4096)
	for i := range entries {
		entries[i] = Entry{Key: format.Key(i), Offset: uint64(i * 64), Size: 64, Compressed: i%2 == 0}
	}
	engine := endian.GetLittleEndianEngine()
	data := AppendEntryTables(nil, entries, engine)
	h := NewHeader(DefaultTag, uint32(len(entries)))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseEntryTables(data, h, engine)
	}
}
