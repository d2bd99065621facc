package pool

import (
	"io"
	"sync"
)

const (
	RegionBufferDefaultSize       = 1024 * 16        // 16KiB, typical compressed record
	RegionBufferMaxThreshold      = 1024 * 1024      // 1MiB
	ContainerBufferDefaultSize    = 1024 * 256       // 256KiB
	ContainerBufferMaxThreshold   = 1024 * 1024 * 16 // 16MiB
	smallBufferGrowthMultiplicand = 4
)

// ByteBuffer is a growable byte slice that can be recycled through a ByteBufferPool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Write appends data and implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// Extend returns a zeroed window of n bytes appended to the buffer, growing
// it if necessary. Fixed-width fields are written into the window in place.
func (bb *ByteBuffer) Extend(n int) []byte {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]

	window := bb.B[start : start+n]
	clear(window)

	return window
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by RegionBufferDefaultSize; buffers larger than four
// times that grow by 25% of their capacity, or by requiredBytes if larger.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := RegionBufferDefaultSize
	if cap(bb.B) > smallBufferGrowthMultiplicand*RegionBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	growBy = max(growBy, requiredBytes)

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// ByteBufferPool recycles ByteBuffers through a sync.Pool.
//
// Buffers whose capacity grew beyond maxThreshold are dropped on Put so a
// single oversized record does not pin memory for the lifetime of the pool.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given initial capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	regionPool    = NewByteBufferPool(RegionBufferDefaultSize, RegionBufferMaxThreshold)
	containerPool = NewByteBufferPool(ContainerBufferDefaultSize, ContainerBufferMaxThreshold)
)

// GetRegionBuffer retrieves a buffer for reading one archive entry region.
func GetRegionBuffer() *ByteBuffer {
	return regionPool.Get()
}

// PutRegionBuffer returns a region buffer to its pool.
func PutRegionBuffer(bb *ByteBuffer) {
	regionPool.Put(bb)
}

// GetContainerBuffer retrieves a buffer for assembling a whole container.
func GetContainerBuffer() *ByteBuffer {
	return containerPool.Get()
}

// PutContainerBuffer returns a container buffer to its pool.
func PutContainerBuffer(bb *ByteBuffer) {
	containerPool.Put(bb)
}
