package dispatch

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/arloliu/pakref/endian"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/arloliu/pakref/ref"
	"github.com/fxamacker/cbor/v2"
)

// GroupHeaderSize is the size of a group payload before its key list:
// element type (u8), resolve flag (u8), reserved (u16), count (u32).
const GroupHeaderSize = 8

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error

	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dispatch: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("dispatch: CBOR decoder initialization failed: " + err.Error())
	}
}

// Typed adapts a decoder returning a concrete record type into a DecodeFunc.
func Typed[T any](fn func(dc *Context, data []byte) (T, error)) DecodeFunc {
	return func(dc *Context, data []byte) (any, error) {
		v, err := fn(dc, data)
		if err != nil {
			return nil, err
		}

		return v, nil
	}
}

// RawDecoder decodes a payload into a private copy of its bytes.
func RawDecoder(_ *Context, data []byte) (any, error) {
	return bytes.Clone(data), nil
}

// Int32Decoder decodes a 4-byte payload into an int32 in the container byte order.
func Int32Decoder(dc *Context, data []byte) (any, error) {
	r := dc.Reader(data)

	v, err := r.I32()
	if err != nil {
		return nil, err
	}
	if err := r.Done(); err != nil {
		return nil, err
	}

	return v, nil
}

// GroupDecoder decodes an owning list of references into a *ref.Group[any].
//
// Payload layout: element type (u8), resolve flag (u8), reserved (u16),
// count (u32), then count keys (u32 each). Every element is created with
// NewReference, so it is pending until its key is published.
func GroupDecoder(dc *Context, data []byte) (any, error) {
	r := dc.Reader(data)

	elemType, err := r.Type()
	if err != nil {
		return nil, err
	}
	resolve, err := r.U8()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(2); err != nil {
		return nil, err
	}
	count, err := r.U32()
	if err != nil {
		return nil, err
	}
	if uint64(count)*4 != uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w: group declares %d keys in %d bytes", errs.ErrMalformedRecord, count, r.Remaining())
	}

	refs := make([]*ref.Reference[any], count)
	for i := range refs {
		key, _ := r.Key()
		refs[i] = NewReference[any](dc, key, elemType)
	}

	return ref.NewGroup(resolve != 0, refs...), nil
}

// EncodeGroup builds a GroupDecoder payload.
func EncodeGroup(engine endian.EndianEngine, elemType format.FileType, resolve bool, keys ...format.Key) []byte {
	if engine == nil {
		engine = endian.GetLittleEndianEngine()
	}

	buf := make([]byte, 0, GroupHeaderSize+4*len(keys))
	buf = append(buf, uint8(elemType))
	if resolve {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = engine.AppendUint16(buf, 0)
	buf = engine.AppendUint32(buf, uint32(len(keys))) //nolint: gosec
	for _, k := range keys {
		buf = engine.AppendUint32(buf, uint32(k))
	}

	return buf
}

// CBORDecoder returns a decoder for records stored as CBOR documents, such as
// metadata-style variable blocks. The record is a T; maps decode as
// map[string]any.
func CBORDecoder[T any]() DecodeFunc {
	return Typed(func(_ *Context, data []byte) (T, error) {
		var v T
		if err := cborDecMode.Unmarshal(data, &v); err != nil {
			var zero T
			return zero, fmt.Errorf("%w: cbor: %w", errs.ErrMalformedRecord, err)
		}

		return v, nil
	})
}

// EncodeCBOR encodes v with core deterministic CBOR, the form CBORDecoder reads.
func EncodeCBOR(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// EmbeddedTypeAt returns an extractor reading a one-byte type tag at offset.
func EmbeddedTypeAt(offset int) EmbeddedTypeFunc {
	return func(data []byte) (format.FileType, bool) {
		if offset < 0 || offset >= len(data) {
			return format.TypeNone, false
		}

		return format.FileType(data[offset]), true
	}
}

// NewStockTable returns a Table with the stock decoders registered:
// TypeRaw as raw bytes, TypeGroup as *ref.Group[any] and TypeVariableBlock as
// a CBOR map[string]any.
func NewStockTable() *Table {
	t := NewTable()
	t.MustRegister(format.TypeRaw, RawDecoder)
	t.MustRegister(format.TypeGroup, GroupDecoder)
	t.MustRegister(format.TypeVariableBlock, CBORDecoder[map[string]any]())

	return t
}
