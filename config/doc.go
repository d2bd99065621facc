// Package config loads game/version profiles.
//
// A container records none of its conventions: the tag it starts with, the
// byte order of its fields, the compression algorithm of its compressed
// entries and the transforms applied after decompression all depend on the
// game and the build it shipped with. A Profile names those conventions,
// together with the layout version decoders dispatch on and the capacities of
// the cache partitions:
//
//	name: console-v2
//	version: 2
//	tag: PAKREF-CONTAINER
//	byte_order: big
//	compression: zstd
//	transforms: ["xor:5a", "xxh64"]
//	partitions:
//	  audio: 64
//
// Profiles are read from YAML files, either one profile per file (Load) or a
// set of named profiles (LoadSet).
package config
