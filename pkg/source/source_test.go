package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mscrnt/mchtimings/pkg/chipset/i915"
)

func TestDefaults(t *testing.T) {
	src := Defaults(i915.NewCatalog())

	v, err := src.ReadRegister(context.Background(), i915.C0DRT1)
	require.NoError(t, err)
	assert.Equal(t, uint32(i915.DefaultC0DRT1), v)

	_, err = src.ReadRegister(context.Background(), 0x200)
	assert.ErrorIs(t, err, ErrUnknownRegister)
	assert.Equal(t, "default", name(src))
}

func TestStatic(t *testing.T) {
	src := Static{0x110: 0x12345678}

	v, err := src.ReadRegister(context.Background(), 0x110)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)

	_, err = src.ReadRegister(context.Background(), 0x114)
	assert.ErrorIs(t, err, ErrUnknownRegister)
}

type failing struct{ err error }

func (f failing) ReadRegister(context.Context, uint32) (uint32, error) {
	return 0, f.err
}

func TestFallback(t *testing.T) {
	boom := errors.New("tool not found")

	t.Run("primary succeeds", func(t *testing.T) {
		called := false
		src := Fallback(Static{0x110: 1}, Static{0x110: 2}, func(uint32, error) { called = true })

		v, err := src.ReadRegister(context.Background(), 0x110)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), v)
		assert.False(t, called)
	})

	t.Run("primary fails", func(t *testing.T) {
		var reported []uint32
		src := Fallback(failing{boom}, Static{0x110: 2}, func(addr uint32, err error) {
			assert.ErrorIs(t, err, boom)
			reported = append(reported, addr)
		})

		v, err := src.ReadRegister(context.Background(), 0x110)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), v)
		assert.Equal(t, []uint32{0x110}, reported)
	})

	t.Run("both fail", func(t *testing.T) {
		src := Fallback(failing{boom}, Static{}, nil)

		_, err := src.ReadRegister(context.Background(), 0x110)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "fallback")
	})

	t.Run("cancelled context does not fall back", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		src := Fallback(failing{context.Canceled}, Static{0x110: 2}, func(uint32, error) {
			t.Fatal("fallback must not be reported")
		})
		_, err := src.ReadRegister(ctx, 0x110)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("name", func(t *testing.T) {
		src := Fallback(Static{}, Defaults(i915.NewCatalog()), nil)
		assert.Equal(t, "static, falling back to default", name(src))
		assert.Equal(t, "source.failing", name(failing{}))
	})
}
