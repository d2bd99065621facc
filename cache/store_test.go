package cache

import (
	"testing"

	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s, err := New(opts...)
	require.NoError(t, err)

	return s
}

func TestStore_PutGet(t *testing.T) {
	s := newStore(t)

	_, ok := s.Get(PartitionMain, 1)
	require.False(t, ok)

	record := &struct{ N int }{N: 1}
	s.Put(PartitionMain, 1, format.TypeGameObject, record, false)

	e, ok := s.Get(PartitionMain, 1)
	require.True(t, ok)
	require.Same(t, record, e.Value)
	require.Equal(t, format.TypeGameObject, e.Type)
	require.Equal(t, 0, e.Pins)

	st := s.Stats(PartitionMain)
	require.Equal(t, uint64(1), st.Hits)
	require.Equal(t, uint64(1), st.Misses)
	require.Equal(t, uint64(1), st.Puts)
	require.Equal(t, 1, st.Len)
}

func TestStore_PartitionsAreIndependent(t *testing.T) {
	s := newStore(t)

	s.Put(PartitionMain, 7, format.TypeSound, "main", false)
	s.Put(PartitionAudio, 7, format.TypeSound, "audio", false)

	main, ok := s.Get(PartitionMain, 7)
	require.True(t, ok)
	audio, ok := s.Get(PartitionAudio, 7)
	require.True(t, ok)

	require.Equal(t, "main", main.Value)
	require.Equal(t, "audio", audio.Value)
	require.False(t, s.Contains(PartitionScratch, 7))
}

func TestStore_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	s := newStore(t, WithCapacity(PartitionAudio, 2), WithLogger(zap.NewNop()))
	require.Equal(t, 2, s.Capacity(PartitionAudio))

	s.Put(PartitionAudio, 1, format.TypeSound, 1, false)
	s.Put(PartitionAudio, 2, format.TypeSound, 2, false)
	_, _ = s.Get(PartitionAudio, 1) // 2 is now least recently used
	s.Put(PartitionAudio, 3, format.TypeSound, 3, false)

	require.True(t, s.Contains(PartitionAudio, 1))
	require.False(t, s.Contains(PartitionAudio, 2))
	require.True(t, s.Contains(PartitionAudio, 3))
	require.Equal(t, uint64(1), s.Stats(PartitionAudio).Evictions)

	// unbounded partitions never evict
	for key := format.Key(0); key < 100; key++ {
		s.Put(PartitionMain, key, format.TypeRaw, key, false)
	}
	require.Equal(t, 100, s.Len(PartitionMain))
}

func TestStore_PinnedEntriesSurviveCapacity(t *testing.T) {
	s := newStore(t, WithCapacity(PartitionMain, 1))

	s.Put(PartitionMain, 1, format.TypeTexture, "kept", true)
	s.Put(PartitionMain, 2, format.TypeTexture, "a", false)
	s.Put(PartitionMain, 3, format.TypeTexture, "b", false)

	require.True(t, s.Contains(PartitionMain, 1))
	require.False(t, s.Contains(PartitionMain, 2))
	require.True(t, s.Contains(PartitionMain, 3))

	st := s.Stats(PartitionMain)
	require.Equal(t, 2, st.Len)
	require.Equal(t, 1, st.Pinned)
}

func TestStore_PinRelease(t *testing.T) {
	s := newStore(t, WithCapacity(PartitionMain, 1))

	require.False(t, s.Pin(PartitionMain, 1))

	s.Put(PartitionMain, 1, format.TypePalette, "p", false)
	require.True(t, s.Pin(PartitionMain, 1))
	require.True(t, s.Pin(PartitionMain, 1))

	e, _ := s.Get(PartitionMain, 1)
	require.Equal(t, 2, e.Pins)

	_, err := s.Evict(PartitionMain, 1)
	require.ErrorIs(t, err, errs.ErrEntryPinned)

	left, ok := s.Release(PartitionMain, 1)
	require.True(t, ok)
	require.Equal(t, 1, left)

	left, ok = s.Release(PartitionMain, 1)
	require.True(t, ok)
	require.Equal(t, 0, left)

	_, ok = s.Release(PartitionMain, 1)
	require.False(t, ok)

	// back under the LRU: the next insert pushes it out
	s.Put(PartitionMain, 2, format.TypePalette, "q", false)
	require.False(t, s.Contains(PartitionMain, 1))
}

func TestStore_PutRefreshesPinnedEntry(t *testing.T) {
	s := newStore(t)

	s.Put(PartitionMain, 1, format.TypeRaw, "old", true)
	s.Put(PartitionMain, 1, format.TypeRaw, "new", false)

	e, ok := s.Get(PartitionMain, 1)
	require.True(t, ok)
	require.Equal(t, "new", e.Value)
	require.Equal(t, 1, e.Pins)

	s.Put(PartitionMain, 1, format.TypeRaw, "newer", true)
	e, _ = s.Get(PartitionMain, 1)
	require.Equal(t, 2, e.Pins)
}

func TestStore_EvictClearKeys(t *testing.T) {
	s := newStore(t)

	s.Put(PartitionScratch, 3, format.TypeRaw, 3, false)
	s.Put(PartitionScratch, 1, format.TypeRaw, 1, false)
	s.Put(PartitionScratch, 2, format.TypeRaw, 2, true)
	require.Equal(t, []format.Key{1, 2, 3}, s.Keys(PartitionScratch))

	removed, err := s.Evict(PartitionScratch, 3)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = s.Evict(PartitionScratch, 3)
	require.NoError(t, err)
	require.False(t, removed)

	require.Equal(t, 1, s.Clear(PartitionScratch))
	require.Equal(t, []format.Key{2}, s.Keys(PartitionScratch))
	require.Equal(t, uint64(0), s.Stats(PartitionScratch).Evictions, "explicit removal is not an eviction")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithCapacity(PartitionMain, -1))
	require.Error(t, err)

	_, err = New(WithCapacity(Partition(42), 1))
	require.Error(t, err)
}

func TestPartition(t *testing.T) {
	for _, p := range Partitions() {
		parsed, err := ParsePartition(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
		require.True(t, p.Valid())
	}

	parsed, err := ParsePartition(" Audio ")
	require.NoError(t, err)
	require.Equal(t, PartitionAudio, parsed)

	_, err = ParsePartition("video")
	require.Error(t, err)
	require.Equal(t, "partition(9)", Partition(9).String())
	require.False(t, Partition(9).Valid())
}

func BenchmarkStore_GetHit(b *testing.B) {
	s, err := New(WithCapacity(PartitionMain, 1024))
	if err != nil {
		b.Fatal(err)
	}
	for key := format.Key(0); key < 1024; key++ {
		s.Put(PartitionMain, key, format.TypeRaw, key, false)
	}

	b.ReportAllocs()
	var key format.Key
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Get(PartitionMain, key%1024)
		key++
	}
}
