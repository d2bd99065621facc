package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(RegionBufferDefaultSize)

	bb.MustWrite([]byte("hello"))
	n, err := bb.Write([]byte(" world"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, []byte("hello world"), bb.Bytes())

	originalCap := cap(bb.B)
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, cap(bb.B))
}

func TestByteBuffer_Extend(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{0xAA})

	window := bb.Extend(8)
	require.Len(t, window, 8)
	require.Equal(t, make([]byte, 8), window)

	window[0] = 0x01
	require.Equal(t, 9, bb.Len())
	require.Equal(t, byte(0xAA), bb.B[0])
	require.Equal(t, byte(0x01), bb.B[1])
}

func TestByteBuffer_Extend_ClearsRecycledBytes(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte{1, 2, 3, 4})
	bb.Reset()

	window := bb.Extend(4)
	require.Equal(t, []byte{0, 0, 0, 0}, window)
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(100)
		bb.Grow(50)
		assert.Equal(t, 100, cap(bb.B))
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(10)
		bb.MustWrite(make([]byte, 10))
		bb.Grow(1)
		assert.Equal(t, 10+RegionBufferDefaultSize, cap(bb.B))
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		size := 8 * RegionBufferDefaultSize
		bb := NewByteBuffer(size)
		bb.MustWrite(make([]byte, size))
		bb.Grow(1)
		assert.Equal(t, size+size/4, cap(bb.B))
	})

	t.Run("growth honours required bytes", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(RegionBufferDefaultSize * 3)
		assert.GreaterOrEqual(t, cap(bb.B), RegionBufferDefaultSize*3)
	})

	t.Run("preserves data", func(t *testing.T) {
		bb := NewByteBuffer(2)
		bb.MustWrite([]byte("ab"))
		bb.Grow(1024)
		assert.Equal(t, []byte("ab"), bb.Bytes())
	})
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
	require.Equal(t, "payload", out.String())

	_, err = bb.WriteTo(errorWriter{})
	require.Error(t, err)
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(16, 64)

	oversized := NewByteBuffer(128)
	p.Put(oversized)

	got := p.Get()
	require.NotSame(t, oversized, got)
	require.Equal(t, 16, cap(got.B))

	p.Put(nil)
}

func TestDefaultPools(t *testing.T) {
	region := GetRegionBuffer()
	require.NotNil(t, region)
	require.Equal(t, 0, region.Len())
	region.MustWrite([]byte("region"))
	PutRegionBuffer(region)

	container := GetContainerBuffer()
	require.NotNil(t, container)
	require.Equal(t, 0, container.Len())
	require.GreaterOrEqual(t, cap(container.B), ContainerBufferDefaultSize)
	PutContainerBuffer(container)
}

func TestPool_ConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				bb := GetRegionBuffer()
				bb.MustWrite([]byte("x"))
				PutRegionBuffer(bb)
			}
		}()
	}
	wg.Wait()
}

func BenchmarkPool_GetExtendPut(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bb := GetRegionBuffer()
		bb.Extend(4096)
		PutRegionBuffer(bb)
	}
}
