// Package endian selects the byte order a container is written in.
//
// Containers fix their byte order at the container level: consoles with
// big-endian CPUs ship big-endian archives, PC builds ship little-endian ones.
// Profiles name the order and the archive reader resolves it to an
// EndianEngine:
//
//	engine, err := endian.Parse("big")
//	count := engine.Uint32(data[offset:])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library, so readers use the ByteOrder half and the container
// builder uses the AppendByteOrder half.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

const (
	NameLittle = "little"
	NameBig    = "big"
	NameNative = "native"
)

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	if CheckEndianness() == binary.BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Parse resolves a byte order name to its engine.
//
// Parameters:
//   - name: "little", "big" or "native", case-insensitive; "" means little
//
// Returns:
//   - EndianEngine: The matching engine
//   - error: If the name is not recognized
func Parse(name string) (EndianEngine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameLittle, "le", "little-endian":
		return GetLittleEndianEngine(), nil
	case NameBig, "be", "big-endian":
		return GetBigEndianEngine(), nil
	case NameNative:
		return GetNativeEngine(), nil
	default:
		return nil, fmt.Errorf("unknown byte order: %q", name)
	}
}

// Name returns the canonical name of engine: "big" or "little".
func Name(engine EndianEngine) string {
	if engine == EndianEngine(binary.BigEndian) {
		return NameBig
	}

	return NameLittle
}
