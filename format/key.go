package format

import (
	"fmt"

	"github.com/arloliu/pakref/internal/hash"
)

// Key is the content key naming one logical record inside a container.
//
// Keys are compared by value and are totally ordered, so they can be used
// directly as map keys and sorted for deterministic iteration.
type Key uint32

// NullKey is the sentinel key denoting an absent record.
const NullKey Key = 0xFFFFFFFF

// IsNull reports whether k is the sentinel key.
func (k Key) IsNull() bool {
	return k == NullKey
}

// String returns the key as fixed-width hex, or "null" for the sentinel.
func (k Key) String() string {
	if k.IsNull() {
		return "null"
	}

	return fmt.Sprintf("%08x", uint32(k))
}

// KeyFromName derives a key from an asset name.
//
// The xxHash64 of the name is folded to 32 bits. A fold that lands on
// NullKey is remapped so that a named asset never reads as absent.
//
// Parameters:
//   - name: Asset name (case-sensitive)
//
// Returns:
//   - Key: Derived content key, never NullKey
func KeyFromName(name string) Key {
	k := Key(hash.Fold32(hash.ID(name)))
	if k.IsNull() {
		return k - 1
	}

	return k
}
