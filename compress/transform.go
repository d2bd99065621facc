package compress

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/arloliu/pakref/errs"
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

const (
	TransformXOR    = "xor"
	TransformXXH64  = "xxh64"
	TransformBLAKE3 = "blake3"

	xxh64DigestSize  = 8
	blake3DigestSize = 32
)

// Transform is a reversible stage applied to record bytes after decompression.
type Transform interface {
	// Name returns the configuration name of the stage, e.g. "xor:5a".
	Name() string
	// Apply runs the stage in the read direction.
	Apply(data []byte) ([]byte, error)
	// Reverse runs the stage in the write direction, so Apply(Reverse(x)) == x.
	Reverse(data []byte) ([]byte, error)
	// Overhead returns the number of bytes Reverse adds to a record.
	Overhead() int
}

// Pipeline is an ordered list of transforms.
type Pipeline []Transform

// Apply runs every stage in order.
//
// Returns:
//   - []byte: Record bytes after the last stage
//   - error: The first stage failure, wrapping ErrCorruptData for verification stages
func (p Pipeline) Apply(data []byte) ([]byte, error) {
	var err error
	for _, t := range p {
		if data, err = t.Apply(data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// Reverse runs every stage's Reverse in reverse order.
func (p Pipeline) Reverse(data []byte) ([]byte, error) {
	var err error
	for i := len(p) - 1; i >= 0; i-- {
		if data, err = p[i].Reverse(data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// Overhead returns the total number of bytes the pipeline adds to a record.
func (p Pipeline) Overhead() int {
	total := 0
	for _, t := range p {
		total += t.Overhead()
	}

	return total
}

// Names returns the configuration names of the stages.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, t := range p {
		names[i] = t.Name()
	}

	return names
}

// ParseTransform builds a transform from its configuration name.
//
// Recognized names:
//   - "xor:<hex key>": XOR descrambler with a repeating key, e.g. "xor:5a" or "xor:deadbeef"
//   - "xxh64": trailing 8-byte little-endian xxHash64 digest
//   - "blake3": trailing 32-byte BLAKE3-256 digest
//
// Parameters:
//   - def: Configuration name, case-insensitive
//
// Returns:
//   - Transform: The transform
//   - error: If the name or its argument is invalid
func ParseTransform(def string) (Transform, error) {
	name, arg, _ := strings.Cut(strings.ToLower(strings.TrimSpace(def)), ":")

	switch name {
	case TransformXOR:
		key, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid xor key %q: %w", arg, err)
		}

		return XOR(key)
	case TransformXXH64:
		return VerifyXXH64(), nil
	case TransformBLAKE3:
		return VerifyBLAKE3(), nil
	default:
		return nil, fmt.Errorf("unknown transform: %q", def)
	}
}

// ParsePipeline builds a pipeline from configuration names, in order.
func ParsePipeline(defs []string) (Pipeline, error) {
	p := make(Pipeline, 0, len(defs))
	for _, def := range defs {
		t, err := ParseTransform(def)
		if err != nil {
			return nil, err
		}
		p = append(p, t)
	}

	return p, nil
}

type xorTransform struct {
	key []byte
}

// XOR returns a transform that XORs record bytes with a repeating key.
func XOR(key []byte) (Transform, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("xor key must not be empty")
	}

	return xorTransform{key: bytes.Clone(key)}, nil
}

func (t xorTransform) Name() string {
	return TransformXOR + ":" + hex.EncodeToString(t.key)
}

func (t xorTransform) Apply(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ t.key[i%len(t.key)]
	}

	return out, nil
}

func (t xorTransform) Reverse(data []byte) ([]byte, error) {
	return t.Apply(data)
}

func (t xorTransform) Overhead() int { return 0 }

type digestTransform struct {
	name string
	size int
	sum  func([]byte) []byte
}

// VerifyXXH64 returns a transform that checks and strips a trailing
// little-endian xxHash64 digest of the preceding bytes.
func VerifyXXH64() Transform {
	return digestTransform{
		name: TransformXXH64,
		size: xxh64DigestSize,
		sum: func(data []byte) []byte {
			return binary.LittleEndian.AppendUint64(nil, xxhash.Sum64(data))
		},
	}
}

// VerifyBLAKE3 returns a transform that checks and strips a trailing
// BLAKE3-256 digest of the preceding bytes.
func VerifyBLAKE3() Transform {
	return digestTransform{
		name: TransformBLAKE3,
		size: blake3DigestSize,
		sum: func(data []byte) []byte {
			sum := blake3.Sum256(data)
			return sum[:]
		},
	}
}

func (t digestTransform) Name() string { return t.name }

func (t digestTransform) Apply(data []byte) ([]byte, error) {
	if len(data) < t.size {
		return nil, fmt.Errorf("%w: %s digest missing from %d-byte record", errs.ErrCorruptData, t.name, len(data))
	}

	body, digest := data[:len(data)-t.size], data[len(data)-t.size:]
	if !bytes.Equal(t.sum(body), digest) {
		return nil, fmt.Errorf("%w: %s digest mismatch", errs.ErrCorruptData, t.name)
	}

	return body, nil
}

func (t digestTransform) Reverse(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)+t.size)
	out = append(out, data...)

	return append(out, t.sum(data)...), nil
}

func (t digestTransform) Overhead() int { return t.size }
