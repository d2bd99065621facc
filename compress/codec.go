package compress

import (
	"fmt"

	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
)

// Compressor compresses a complete record payload.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller (NoOp excepted)
//   - Input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a complete compressed stream.
//
// The decompressor validates the stream format and returns an error if the
// data is corrupted or was produced by a different algorithm.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is implemented by decompressors that can use a known
// decompressed length to allocate the output buffer exactly once.
type SizedDecompressor interface {
	DecompressSize(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZlib: NewZlibCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression
//
// Returns:
//   - Codec: Shared codec instance, safe for concurrent use
//   - error: If the compression type is not supported
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// DecompressSized decompresses data and checks the result length.
//
// Parameters:
//   - d: Decompressor for the container's algorithm
//   - data: Compressed stream (already unframed)
//   - expected: Expected decompressed length, or a negative value if unknown
//
// Returns:
//   - []byte: Decompressed data
//   - error: ErrCorruptData if decompression fails or the length differs from expected
func DecompressSized(d Decompressor, data []byte, expected int) ([]byte, error) {
	var (
		out []byte
		err error
	)

	if sd, ok := d.(SizedDecompressor); ok && expected >= 0 {
		out, err = sd.DecompressSize(data, expected)
	} else {
		out, err = d.Decompress(data)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptData, err)
	}

	if expected >= 0 && len(out) != expected {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", errs.ErrCorruptData, len(out), expected)
	}

	return out, nil
}
