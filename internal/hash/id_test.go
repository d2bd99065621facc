package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
			assert.Equal(t, tt.id, Sum([]byte(tt.data)))
		})
	}
}

func TestFold32(t *testing.T) {
	assert.Equal(t, uint32(0), Fold32(0))
	assert.Equal(t, uint32(0x12345678^0x9abcdef0), Fold32(0x123456789abcdef0))
	assert.Equal(t, uint32(0xef46db37^0x51d8e999), Fold32(ID("")))
}

func BenchmarkID(b *testing.B) {
	name := "levels/intro/objects/spawn_point_01"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ID(name)
	}
}
