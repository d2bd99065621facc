// Package compress provides the transform pipeline applied to container entry regions.
//
// Reading an entry region runs up to three stages:
//
//  1. Unframe: a compressed region starts with a uint32 compressed length,
//     which must fit inside the region (Unframe).
//  2. Decompress: the stream is decompressed with the profile's codec and the
//     result is checked against the expected length (DecompressSized).
//  3. Transforms: optional post-decompression stages run in order, such as an
//     XOR descrambler or a trailing digest check (Pipeline.Apply).
//
// Writers run the same stages in reverse (Pipeline.Reverse, Compress, Frame).
//
// # Supported Algorithms
//
//	Algorithm  | format.CompressionType | Library
//	-----------|------------------------|-------------------------------
//	None       | CompressionNone        | -
//	Zlib       | CompressionZlib        | klauspost/compress/zlib
//	Zstd       | CompressionZstd        | klauspost/compress/zstd (gozstd with -tags zstd_cgo)
//	S2         | CompressionS2          | klauspost/compress/s2
//	LZ4        | CompressionLZ4         | pierrec/lz4/v4 (block format)
//
// Zlib is the stream format most shipped game containers use; the others are
// available for containers produced by the Builder.
//
// Example:
//
//	codec, err := compress.GetCodec(format.CompressionZlib)
//	stream, err := compress.Unframe(region, engine)
//	data, err := compress.DecompressSized(codec, stream, expected)
//	data, err = pipeline.Apply(data)
//
// # Thread Safety
//
// All codec implementations and transforms are stateless or pool their
// internal state, and are safe for concurrent use.
//
// # Error Handling
//
// Every decompression or verification failure is reported as
// errs.ErrCorruptData, so callers can classify it with errors.Is regardless
// of the codec that produced it.
package compress
