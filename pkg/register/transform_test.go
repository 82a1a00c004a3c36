package register

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	cl := LookupInts(map[uint32]int64{0: 5, 1: 4, 2: 3})

	for raw, want := range map[uint32]int64{0: 5, 1: 4, 2: 3} {
		v, err := cl(raw)
		require.NoError(t, err)
		n, ok := v.Int()
		require.True(t, ok)
		assert.Equal(t, want, n)
	}

	_, err := cl(3)
	var unmapped *UnmappedCodeError
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, uint32(3), unmapped.Code)
}

func TestLookupMixed(t *testing.T) {
	idle := Lookup(map[uint32]Value{0: Label("N/A"), 1: Int(8), 7: Label("Inf")})

	v, err := idle(7)
	require.NoError(t, err)
	assert.True(t, v.IsLabel())
	assert.Equal(t, "Inf", v.String())

	_, err = idle(5)
	assert.Error(t, err)
}

func TestSubtract(t *testing.T) {
	rtw := Subtract(9)
	for raw, want := range map[uint32]int64{0: 9, 1: 8, 2: 7, 3: 6} {
		v, err := rtw(raw)
		require.NoError(t, err)
		assert.Equal(t, Int(want), v)
	}
}

func TestFlag(t *testing.T) {
	bl := Flag(Int(8), Int(4))

	v, _ := bl(1)
	assert.Equal(t, Int(8), v)
	v, _ = bl(0)
	assert.Equal(t, Int(4), v)
}

func TestSaturate(t *testing.T) {
	timer := Saturate(31, "Inf")

	v, _ := timer(31)
	assert.Equal(t, Label("Inf"), v)
	v, _ = timer(16)
	assert.Equal(t, Int(16), v)
}

func TestPlus(t *testing.T) {
	rcd := LookupInts(map[uint32]int64{0: 1, 1: 2, 2: 3, 3: 4, 4: 5}).Plus(1)

	v, err := rcd(1)
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)

	_, err = rcd(7)
	var unmapped *UnmappedCodeError
	assert.True(t, errors.As(err, &unmapped), "unmapped codes propagate through Plus")

	_, err = Lookup(map[uint32]Value{0: Label("N/A")}).Plus(1)(0)
	assert.Error(t, err)
}

func TestTransformsArePure(t *testing.T) {
	transforms := map[string]Transform{
		"lookup":   LookupInts(map[uint32]int64{0: 4, 1: 8}),
		"subtract": Subtract(6),
		"flag":     Flag(Label("Y"), Label("N")),
		"saturate": Saturate(31, "Inf"),
		"plus":     LookupInts(map[uint32]int64{0: 1, 1: 2}).Plus(1),
	}

	for name, tr := range transforms {
		t.Run(name, func(t *testing.T) {
			for raw := uint32(0); raw < 2; raw++ {
				first, err1 := tr(raw)
				second, err2 := tr(raw)
				assert.Equal(t, err1, err2)
				assert.Equal(t, first, second)
			}
		})
	}
}

func TestApplyNil(t *testing.T) {
	var tr Transform
	v, err := tr.Apply(26)
	require.NoError(t, err)
	assert.Equal(t, Int(26), v)
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal([]Value{Int(3), Label("7.8"), {}})
	require.NoError(t, err)
	assert.JSONEq(t, `[3, "7.8", 0]`, string(data))
}
