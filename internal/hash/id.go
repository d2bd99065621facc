package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given asset name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Sum computes the xxHash64 of a byte payload.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fold32 folds a 64-bit hash into 32 bits by xoring both halves.
func Fold32(h uint64) uint32 {
	return uint32(h>>32) ^ uint32(h) //nolint: gosec
}
