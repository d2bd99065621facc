package compress

import (
	"bytes"
	"testing"

	"github.com/arloliu/pakref/errs"
	"github.com/stretchr/testify/require"
)

func TestParseTransform(t *testing.T) {
	tests := []struct {
		def     string
		name     string
		overhead int
		wantErr  bool
	}{
		{def: "xor:5a", name: "xor:5a"},
		{def: "XOR:0xDEADBEEF", name: "xor:deadbeef"},
		{def: "xxh64", name: "xxh64", overhead: 8},
		{def: " blake3 ", name: "blake3", overhead: 32},
		{def: "xor:", wantErr: true},
		{def: "xor:zz", wantErr: true},
		{def: "lzss", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			tr, err := ParseTransform(tt.def)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.name, tr.Name())
			require.Equal(t, tt.overhead, tr.Overhead())
		})
	}
}

func TestTransforms_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("variable-block"), 20)

	for _, def := range []string{"xor:a5", "xor:01020304", "xxh64", "blake3"} {
		t.Run(def, func(t *testing.T) {
			tr, err := ParseTransform(def)
			require.NoError(t, err)

			encoded, err := tr.Reverse(data)
			require.NoError(t, err)
			require.Len(t, encoded, len(data)+tr.Overhead())

			decoded, err := tr.Apply(encoded)
			require.NoError(t, err)
			require.Equal(t, data, decoded)
		})
	}
}

func TestXOR(t *testing.T) {
	tr, err := XOR([]byte{0xFF})
	require.NoError(t, err)

	out, err := tr.Apply([]byte{0x00, 0x0F})
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xF0}, out)

	_, err = XOR(nil)
	require.Error(t, err)
}

func TestDigestTransforms_Corruption(t *testing.T) {
	for _, tr := range []Transform{VerifyXXH64(), VerifyBLAKE3()} {
		t.Run(tr.Name(), func(t *testing.T) {
			sealed, err := tr.Reverse([]byte{1, 0, 0, 0})
			require.NoError(t, err)

			sealed[0] ^= 0x01
			_, err = tr.Apply(sealed)
			require.ErrorIs(t, err, errs.ErrCorruptData)

			_, err = tr.Apply([]byte{1, 2})
			require.ErrorIs(t, err, errs.ErrCorruptData)
		})
	}
}

func TestPipeline(t *testing.T) {
	p, err := ParsePipeline([]string{"xxh64", "xor:33"})
	require.NoError(t, err)
	require.Equal(t, []string{"xxh64", "xor:33"}, p.Names())
	require.Equal(t, 8, p.Overhead())

	data := []byte{0x01, 0x00, 0x00, 0x00}
	encoded, err := p.Reverse(data)
	require.NoError(t, err)

	decoded, err := p.Apply(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)

	var empty Pipeline
	out, err := empty.Apply(data)
	require.NoError(t, err)
	require.Equal(t, data, out)

	_, err = ParsePipeline([]string{"xxh64", "nope"})
	require.Error(t, err)
}
