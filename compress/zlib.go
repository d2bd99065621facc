package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// zlibWriterPool pools zlib writers; Reset rebinds a writer to a new destination.
var zlibWriterPool = sync.Pool{
	New: func() any {
		return zlib.NewWriter(nil)
	},
}

// ZlibCompressor provides zlib (RFC 1950) streams, the format most shipped
// game containers use for their compressed entries.
type ZlibCompressor struct{}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor creates a new zlib compressor.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{}
}

// Compress compresses the input data into a zlib stream.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed stream (nil if input is empty)
//   - error: Compression error if any
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 16)

	w, _ := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses a zlib stream.
func (c ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	return c.DecompressSize(data, 0)
}

// DecompressSize decompresses a zlib stream into a buffer pre-sized for size bytes.
//
// Parameters:
//   - data: Compressed stream
//   - size: Expected decompressed length, used only as a capacity hint
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: If the stream header or checksum is invalid
func (c ZlibCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer r.Close()

	var out bytes.Buffer
	out.Grow(max(size, len(data)*2))

	// one byte of slack lets an overlong stream show up as a length mismatch
	if size > 0 {
		if _, err := io.Copy(&out, io.LimitReader(r, int64(size)+1)); err != nil {
			return nil, fmt.Errorf("zlib decompression failed: %w", err)
		}

		return out.Bytes(), nil
	}

	if _, err := io.Copy(&out, r); err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	return out.Bytes(), nil
}
