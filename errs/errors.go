// Package errs defines the sentinel errors shared across pakref packages.
//
// Errors fall into two classes. Fatal errors mean the container itself cannot
// be trusted and the whole load should stop:
//   - ErrHeaderMismatch, ErrInvalidHeaderSize, ErrOutOfBounds
//   - ErrCorruptData
//   - ErrCyclicResolution (an internal invariant was broken)
//
// Recoverable errors concern a single key and are reported to the immediate
// caller, which decides whether to skip the entry or abort:
//   - ErrUnknownTag, ErrMalformedRecord, ErrMissingKey
//
// All errors are wrapped with fmt.Errorf("...: %w") or KeyError, so callers
// should test them with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidHeaderSize indicates the container is shorter than its fixed header.
	ErrInvalidHeaderSize = errors.New("invalid container header size")
	// ErrHeaderMismatch indicates the container's identifying tag does not match the expected one.
	ErrHeaderMismatch = errors.New("container header tag mismatch")
	// ErrOutOfBounds indicates an entry table or entry region lies outside the container.
	ErrOutOfBounds = errors.New("entry out of container bounds")
	// ErrCorruptData indicates decompression or payload verification failed.
	ErrCorruptData = errors.New("corrupt entry data")
	// ErrUnknownTag indicates the dispatch table has no decoder for a file type.
	ErrUnknownTag = errors.New("unknown file type tag")
	// ErrMalformedRecord indicates a decoder rejected the shape of a record.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrMissingKey indicates a strict resolve found no archive entry for a key.
	ErrMissingKey = errors.New("key not present in archive")
	// ErrCyclicResolution indicates a key was decoded twice within one load context.
	ErrCyclicResolution = errors.New("cyclic resolution invariant violated")
	// ErrResolutionDeferred indicates a reentrant resolve hit a key whose decode is still in flight.
	ErrResolutionDeferred = errors.New("resolution deferred until in-flight decode completes")
	// ErrDuplicateKey indicates a container or builder holds the same key twice.
	ErrDuplicateKey = errors.New("duplicate content key")
	// ErrKeyCollision indicates two different asset names derive the same key.
	ErrKeyCollision = errors.New("content key collision")
	// ErrNullKey indicates the sentinel key was used where a real key is required.
	ErrNullKey = errors.New("null content key")
	// ErrEntryPinned indicates an eviction was refused for a keep-alive entry.
	ErrEntryPinned = errors.New("cache entry is pinned")
)

// IsFatal reports whether err means the enclosing load must be aborted.
func IsFatal(err error) bool {
	return errors.Is(err, ErrHeaderMismatch) ||
		errors.Is(err, ErrInvalidHeaderSize) ||
		errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrCorruptData) ||
		errors.Is(err, ErrCyclicResolution)
}
