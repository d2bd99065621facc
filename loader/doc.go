// Package loader resolves content keys into canonical decoded records.
//
// A Loader is one load context. It owns a cache.Store and a ref.Registry and
// guarantees at most one decode per key per partition: the first resolve of a
// key acquires the payload (region read, decompression, transforms), dispatches
// it to the decoder registered for the file type and publishes the record to
// the cache; every later resolve of the key returns that same record.
//
// Decoders never resolve. References created while decoding are registered as
// pending and filled when their key is published. If a resolve reaches a key
// whose own decode is still running, the Loader returns
// errs.ErrResolutionDeferred and ref.ResolveNow parks the reference until that
// decode publishes; a second decode of the same key is never started.
//
// A Loader is driven by one goroutine. Independent loaders may share one
// archive.Archive; each keeps its own cache.
package loader
