// Package section defines the binary layout of pakref containers.
//
// A container is a fixed header followed by four parallel entry tables and
// the entry payloads:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (len(tag) + 16 bytes)                            │
//	│  - Tag (ASCII, exact match, 16 bytes by default)        │
//	│  - Reserved0 (uint32)                                   │
//	│  - Reserved1 (uint32)                                   │
//	│  - Count N (uint32)                                     │
//	│  - Reserved2 (uint32)                                   │
//	├─────────────────────────────────────────────────────────┤
//	│ Offsets (N × uint64), absolute byte offsets             │
//	├─────────────────────────────────────────────────────────┤
//	│ Sizes (N × uint32), region lengths                      │
//	├─────────────────────────────────────────────────────────┤
//	│ IDs (N × uint32), content keys                          │
//	├─────────────────────────────────────────────────────────┤
//	│ Flags (N × uint8), 1 = compressed                       │
//	├─────────────────────────────────────────────────────────┤
//	│ Payloads (variable, addressed by offset)                │
//	└─────────────────────────────────────────────────────────┘
//
// Multi-byte fields use the byte order chosen for the container; nothing in
// the container itself records it, so readers take it from the profile.
//
// Entries are addressable independently of their physical order. A compressed
// entry's region starts with a uint32 compressed length followed by the
// compressed stream (see compress.Unframe).
//
// Parsing a header:
//
//	h, err := section.ParseHeader(data, section.DefaultTag, endian.GetLittleEndianEngine())
//	if errors.Is(err, errs.ErrHeaderMismatch) {
//	    // not a container of the expected kind
//	}
//	entries, err := section.ParseEntryTables(data[h.Size():], h, engine)
//
// All types in this package are value types and are safe for concurrent use.
package section
