package compress

import (
	"fmt"

	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/errs"
)

// FramePrefixSize is the width of the compressed-length prefix.
const FramePrefixSize = 4

// Frame prefixes a compressed stream with its uint32 length.
//
// Parameters:
//   - stream: Compressed stream
//   - engine: Byte order of the container
//
// Returns:
//   - []byte: Newly allocated framed region
func Frame(stream []byte, engine endian.EndianEngine) []byte {
	out := make([]byte, 0, FramePrefixSize+len(stream))
	out = engine.AppendUint32(out, uint32(len(stream))) //nolint: gosec

	return append(out, stream...)
}

// Unframe returns the compressed stream held in a framed region.
//
// Bytes after the declared stream length are padding and are ignored.
//
// Parameters:
//   - region: Entry region starting with the length prefix
//   - engine: Byte order of the container
//
// Returns:
//   - []byte: Sub-slice of region holding the stream
//   - error: ErrCorruptData if the prefix is missing or overruns the region
func Unframe(region []byte, engine endian.EndianEngine) ([]byte, error) {
	if len(region) < FramePrefixSize {
		return nil, fmt.Errorf("%w: region of %d bytes has no length prefix", errs.ErrCorruptData, len(region))
	}

	n := uint64(engine.Uint32(region))
	if n > uint64(len(region)-FramePrefixSize) {
		return nil, fmt.Errorf("%w: compressed length %d exceeds region of %d bytes", errs.ErrCorruptData, n, len(region)-FramePrefixSize)
	}

	return region[FramePrefixSize : FramePrefixSize+int(n)], nil
}
