package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor provides S2 block compression.
//
// An S2 block carries its decompressed length in its header, so DecompressSize
// rejects a size mismatch before decoding anything.
type S2Compressor struct{}

var (
	_ Codec             = (*S2Compressor)(nil)
	_ SizedDecompressor = (*S2Compressor)(nil)
)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes data as one S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decodes an S2 block of any length.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// DecompressSize decodes an S2 block whose decompressed length is known.
//
// Parameters:
//   - data: Compressed block
//   - size: Exact decompressed length
//
// Returns:
//   - []byte: Decompressed data
//   - error: If the block header is corrupt or declares a length other than size
func (c S2Compressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("s2 block declares %d bytes, expected %d", n, size)
	}

	return s2.Decode(make([]byte, n), data)
}
