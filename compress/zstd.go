package compress

// ZstdCompressor provides Zstandard compression.
//
// The pure-Go implementation (klauspost/compress/zstd) is used by default;
// building with -tags zstd_cgo and cgo enabled switches to valyala/gozstd.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
