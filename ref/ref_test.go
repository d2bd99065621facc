package ref

import (
	"context"
	"fmt"
	"testing"

	"github.com/arloliu/pakref/cache"
	"github.com/arloliu/pakref/errs"
	"github.com/arloliu/pakref/format"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	records  map[format.Key]any
	errors   map[format.Key]error
	inFlight map[format.Key]bool
	calls    map[format.Key]int
	registry *Registry
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		records:  make(map[format.Key]any),
		errors:   make(map[format.Key]error),
		inFlight: make(map[format.Key]bool),
		calls:    make(map[format.Key]int),
		registry: NewRegistry(),
	}
}

func (f *fakeResolver) Resolve(_ context.Context, key format.Key, typ format.FileType, _ cache.Partition, flags Flags) (any, bool, error) {
	f.calls[key]++

	if f.inFlight[key] {
		return nil, false, errs.ErrResolutionDeferred
	}
	if err, ok := f.errors[key]; ok {
		return nil, false, errs.NewKeyError(key, typ, err)
	}

	v, ok := f.records[key]
	if !ok && flags.Has(Strict) {
		return nil, false, errs.NewKeyError(key, typ, errs.ErrMissingKey)
	}

	return v, ok, nil
}

func (f *fakeResolver) Defer(site Site) {
	f.registry.Register(site)
}

func (f *fakeResolver) publish(key format.Key, typ format.FileType, v any) int {
	f.inFlight[key] = false
	f.records[key] = v

	return f.registry.Drain(key, typ, v)
}

func TestReference_IsNull(t *testing.T) {
	tests := []struct {
		name     string
		ref      *Reference[int32]
		expected bool
	}{
		{name: "valid", ref: New[int32](1, format.TypeVariableBlock), expected: false},
		{name: "none type", ref: New[int32](1, format.TypeNone), expected: true},
		{name: "sentinel key", ref: New[int32](format.NullKey, format.TypeVariableBlock), expected: true},
		{name: "null constructor", ref: Null[int32](), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.ref.IsNull())
		})
	}
}

func TestReference_Fill(t *testing.T) {
	r := New[int32](1, format.TypeRaw)

	require.False(t, r.Fill("not an int32"))
	require.False(t, r.IsResolved())

	require.True(t, r.Fill(int32(5)))
	require.False(t, r.Fill(int32(6)), "a reference is filled exactly once")

	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, int32(5), v)

	require.False(t, Null[int32]().Fill(int32(1)))
	require.Equal(t, "ref(00000001:raw)", r.String())
	require.Equal(t, "ref(null)", Null[int32]().String())
}

func TestRegistry_RegisterDrain(t *testing.T) {
	reg := NewRegistry()

	a := New[string](1, format.TypeRaw)
	b := New[string](1, format.TypeRaw)
	c := New[string](2, format.TypeRaw)
	wrongType := New[int](1, format.TypeRaw)

	require.True(t, reg.Register(a))
	require.True(t, reg.Register(b))
	require.True(t, reg.Register(c))
	require.True(t, reg.Register(wrongType))
	require.False(t, reg.Register(a), "registering twice is a no-op")
	require.False(t, reg.Register(Null[string]()))
	require.Equal(t, 4, reg.Len())
	require.Equal(t, 3, reg.Pending(1))
	require.Equal(t, []format.Key{1, 2}, reg.Keys())

	require.Equal(t, 2, reg.Drain(1, format.TypeRaw, "shared"))

	va, _ := a.Value()
	vb, _ := b.Value()
	require.Equal(t, "shared", va)
	require.Equal(t, "shared", vb)
	require.False(t, c.IsResolved())
	require.False(t, wrongType.IsResolved())
	require.Equal(t, 1, reg.Pending(1), "type mismatch stays pending")
	require.Equal(t, 2, reg.Len())

	require.Equal(t, 0, reg.Drain(99, format.TypeRaw, "nothing"))

	resolved := New[string](3, format.TypeRaw)
	resolved.set("done")
	require.False(t, reg.Register(resolved))

	reg.Reset()
	require.Equal(t, 0, reg.Len())
	require.Empty(t, reg.Keys())
}

func TestRegistry_DrainDropsSitesResolvedElsewhere(t *testing.T) {
	reg := NewRegistry()
	r := New[string](1, format.TypeRaw)
	require.True(t, reg.Register(r))

	r.set("direct")
	require.Equal(t, 0, reg.Drain(1, format.TypeRaw, "drained"))
	require.Equal(t, 0, reg.Len())

	v, _ := r.Value()
	require.Equal(t, "direct", v)
}

func TestRegistry_DrainMatchesFileType(t *testing.T) {
	reg := NewRegistry()
	raw := New[any](1, format.TypeRaw)
	block := New[any](1, format.TypeVariableBlock)
	require.True(t, reg.Register(raw))
	require.True(t, reg.Register(block))
	require.Equal(t, 2, reg.Pending(1))

	require.Equal(t, 1, reg.Drain(1, format.TypeRaw, []byte{9}))
	require.True(t, raw.IsResolved())
	require.False(t, block.IsResolved(), "a site waiting for another file type stays pending")
	require.Equal(t, 1, reg.Pending(1))
	require.Equal(t, 1, reg.Len())

	require.Zero(t, reg.Drain(1, format.TypeRaw, []byte{9}))
	require.Equal(t, 1, reg.Drain(1, format.TypeVariableBlock, map[string]any{"a": 1}))
	v, ok := block.Value()
	require.True(t, ok)
	require.Equal(t, map[string]any{"a": 1}, v)
	require.Zero(t, reg.Len())
	require.Empty(t, reg.Keys())
}

func TestResolveNow(t *testing.T) {
	ctx := context.Background()
	res := newFakeResolver()
	res.records[1] = int32(1)
	res.records[2] = "not an int32"

	t.Run("resolves and caches in the reference", func(t *testing.T) {
		r := New[int32](1, format.TypeRaw)

		v, ok, err := ResolveNow(ctx, r, res, cache.PartitionMain, 0)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int32(1), v)

		calls := res.calls[1]
		_, _, err = ResolveNow(ctx, r, res, cache.PartitionMain, 0)
		require.NoError(t, err)
		require.Equal(t, calls, res.calls[1])

		_, _, err = ResolveNow(ctx, r, res, cache.PartitionMain, SkipCache)
		require.NoError(t, err)
		require.Equal(t, calls+1, res.calls[1])
	})

	t.Run("null never reaches the resolver", func(t *testing.T) {
		_, ok, err := ResolveNow(ctx, Null[int32](), res, cache.PartitionMain, Strict)
		require.NoError(t, err)
		require.False(t, ok)
		require.Zero(t, res.calls[format.NullKey])
	})

	t.Run("absent", func(t *testing.T) {
		r := New[int32](3, format.TypeRaw)

		_, ok, err := ResolveNow(ctx, r, res, cache.PartitionMain, 0)
		require.NoError(t, err)
		require.False(t, ok)

		_, _, err = ResolveNow(ctx, r, res, cache.PartitionMain, Strict)
		require.ErrorIs(t, err, errs.ErrMissingKey)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, _, err := ResolveNow(ctx, New[int32](2, format.TypeRaw), res, cache.PartitionMain, 0)
		require.ErrorIs(t, err, errs.ErrMalformedRecord)

		var keyErr *errs.KeyError
		require.ErrorAs(t, err, &keyErr)
		require.Equal(t, format.Key(2), keyErr.Key)
	})

	t.Run("deferred until publish", func(t *testing.T) {
		res.inFlight[4] = true
		r := New[int32](4, format.TypeRaw)

		_, ok, err := ResolveNow(ctx, r, res, cache.PartitionMain, 0)
		require.NoError(t, err)
		require.False(t, ok)
		require.False(t, r.IsResolved())
		require.Equal(t, 1, res.registry.Pending(4))

		require.Equal(t, 1, res.publish(4, format.TypeRaw, int32(4)))
		v, ok := r.Value()
		require.True(t, ok)
		require.Equal(t, int32(4), v)
	})
}

func TestGroup_ResolveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("absent elements do not fail the group", func(t *testing.T) {
		res := newFakeResolver()
		res.records[1] = "one"
		res.records[2] = "two"

		g := NewGroup(true,
			New[string](1, format.TypeRaw),
			New[string](9, format.TypeRaw),
			Null[string](),
			New[string](2, format.TypeRaw),
		)

		n, err := g.ResolveAll(ctx, res, cache.PartitionMain, 0)
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, 4, g.Count())
		require.Equal(t, []string{"one", "two"}, g.Values())
		require.Equal(t, []format.Key{1, 9, format.NullKey, 2}, g.Keys())
	})

	t.Run("count-only groups never resolve", func(t *testing.T) {
		res := newFakeResolver()
		g := NewGroup(false, New[string](1, format.TypeRaw), New[string](2, format.TypeRaw))

		n, err := g.ResolveAll(ctx, res, cache.PartitionMain, Strict)
		require.NoError(t, err)
		require.Zero(t, n)
		require.Equal(t, 2, g.Count())
		require.Empty(t, res.calls)
	})

	t.Run("recoverable errors are aggregated", func(t *testing.T) {
		res := newFakeResolver()
		res.records[3] = "three"
		res.errors[1] = errs.ErrUnknownTag
		res.errors[2] = fmt.Errorf("%w: short", errs.ErrMalformedRecord)

		g := NewGroup(true,
			New[string](1, format.TypeRaw),
			New[string](2, format.TypeRaw),
			New[string](3, format.TypeRaw),
		)

		n, err := g.ResolveAll(ctx, res, cache.PartitionMain, 0)
		require.Equal(t, 1, n)

		var batch *errs.BatchError
		require.ErrorAs(t, err, &batch)
		require.Equal(t, 2, batch.Len())
		require.ErrorIs(t, err, errs.ErrUnknownTag)
		require.ErrorIs(t, err, errs.ErrMalformedRecord)
	})

	t.Run("fatal errors abort", func(t *testing.T) {
		res := newFakeResolver()
		res.records[2] = "two"
		res.errors[1] = errs.ErrCorruptData

		g := NewGroup(true, New[string](1, format.TypeRaw), New[string](2, format.TypeRaw))

		n, err := g.ResolveAll(ctx, res, cache.PartitionMain, 0)
		require.ErrorIs(t, err, errs.ErrCorruptData)
		require.Zero(t, n)
		require.Zero(t, res.calls[2])
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		g := NewGroup(true, New[string](1, format.TypeRaw))
		_, err := g.ResolveAll(cctx, newFakeResolver(), cache.PartitionMain, 0)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("register", func(t *testing.T) {
		reg := NewRegistry()
		g := NewGroup(true, New[string](1, format.TypeRaw), Null[string](), New[string](1, format.TypeRaw))

		require.Equal(t, 2, g.Register(reg))
		require.Equal(t, 2, reg.Drain(1, format.TypeRaw, "shared"))
		require.Equal(t, []string{"shared", "shared"}, g.Values())
	})
}

func TestFlags(t *testing.T) {
	require.Equal(t, "none", Flags(0).String())
	require.Equal(t, "skip-cache|strict", (SkipCache | Strict).String())
	require.True(t, (KeepAlive | Trace).Has(Trace))
	require.False(t, KeepAlive.Has(KeepAlive|Trace))
}
