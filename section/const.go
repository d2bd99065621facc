package section

// Container layout constants.
const (
	// DefaultTag is the identifying tag of the stock profile's containers.
	DefaultTag = "PAKREF-CONTAINER"
	// DefaultTagSize is the width of DefaultTag in bytes.
	DefaultTagSize = len(DefaultTag)

	// HeaderFieldsSize is the size of the fixed fields following the tag:
	// reserved0, reserved1, count and reserved2, all uint32.
	HeaderFieldsSize = 16

	OffsetWidth = 8 // width of one entry in the offset table
	SizeWidth   = 4 // width of one entry in the size table
	IDWidth     = 4 // width of one entry in the id table
	FlagWidth   = 1 // width of one entry in the compressed-flag table

	// EntryStride is the number of table bytes one entry occupies across the four tables.
	EntryStride = OffsetWidth + SizeWidth + IDWidth + FlagWidth

	// FlagCompressed marks an entry whose region holds a framed compressed stream.
	FlagCompressed = 0x01

	// MaxEntries bounds the entry count a header may declare.
	MaxEntries = 1 << 24
)

// EntryTablesSize returns the byte size of the four entry tables for count entries.
func EntryTablesSize(count int) int {
	return count * EntryStride
}
