// Package archive reads and writes pakref containers.
//
// An Archive parses a container's header and entry tables once, validates
// every entry region against the container length, and then serves entry
// payloads on demand:
//
//	f, _ := os.Open("level01.pak")
//	a, err := archive.Open(f, archive.WithBigEndian(), archive.WithTag("[ TEST CONTAINER ]"))
//	if err != nil {
//	    return err // errs.ErrHeaderMismatch, errs.ErrOutOfBounds, ...
//	}
//
//	entry, ok := a.Lookup(key)
//	if !ok {
//	    // absence is a normal outcome: the key is not in this build
//	}
//	data, err := a.Payload(ctx, entry, -1)
//
// Payload reads the entry region, unframes and decompresses it when the entry
// is flagged compressed, and runs the configured transforms. Nothing is
// decoded here; decoding belongs to the dispatch package.
//
// # Concurrency
//
// An Archive is read-only after Open. Region reads are serialized by a mutex
// and always restore the source cursor, and identical concurrent Payload
// calls are coalesced, so independent loaders may share one Archive.
//
// The Builder writes containers with the same conventions and is used by
// tooling and tests.
package archive
