package decoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mscrnt/mchtimings/pkg/register"
)

type mapSource map[uint32]uint32

func (m mapSource) ReadRegister(_ context.Context, address uint32) (uint32, error) {
	v, ok := m[address]
	if !ok {
		return 0, fmt.Errorf("no value for 0x%X", address)
	}
	return v, nil
}

func (m mapSource) String() string {
	return "map"
}

func testCatalog(t *testing.T) *register.Catalog {
	t.Helper()

	cat := register.NewCatalog()
	require.NoError(t, cat.Register("T0", 0x110, 0x00000321, []register.BitField{
		{Bits: register.Bits(3, 0), ID: "A", Range: register.Between(0, 2)},
		{Bits: register.Bits(7, 4), ID: "B", Transform: register.Subtract(9)},
		{Bits: register.Bit(31), Description: "display only"},
	}))
	require.NoError(t, cat.Register("T1", 0x114, 0x00000002, []register.BitField{
		{Bits: register.Bits(1, 0), ID: "C", Transform: register.LookupInts(map[uint32]int64{0: 5, 1: 4, 2: 3})},
		{Bits: register.Bits(11, 8), ID: "A"},
	}))
	return cat
}

func TestDecodeField(t *testing.T) {
	f := register.BitField{
		Bits:      register.Bits(9, 8),
		ID:        "CL",
		Transform: register.LookupInts(map[uint32]int64{0: 5, 1: 4, 2: 3}),
		Range:     register.Between(3, 4),
	}

	df, err := DecodeField(f, 0x0290D211)
	require.NoError(t, err)
	assert.Equal(t, "CL", df.ID)
	assert.Equal(t, uint32(2), df.Raw)
	assert.Equal(t, register.Int(3), df.Value)
	assert.Equal(t, "10", df.Binary)
	assert.True(t, df.InRange)

	df, err = DecodeField(f, 0x00000000)
	require.NoError(t, err)
	assert.Equal(t, register.Int(5), df.Value, "zero code maps through the table")
	assert.False(t, df.InRange)

	_, err = DecodeField(f, 0x00000300)
	var unmapped *register.UnmappedCodeError
	assert.True(t, errors.As(err, &unmapped))
}

func TestDecodeRegisterUnmapped(t *testing.T) {
	reg := &register.Register{Name: "T", Fields: []register.BitField{
		{Bits: register.Bits(1, 0), ID: "X", Transform: register.LookupInts(map[uint32]int64{0: 1, 1: 2, 2: 3})},
	}}

	_, _, err := DecodeRegister(reg, 0x3, NewValues())
	require.Error(t, err)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "T", fieldErr.Register)
	assert.Equal(t, "X", fieldErr.ID)
	assert.Equal(t, uint32(3), fieldErr.Raw)

	var unmapped *register.UnmappedCodeError
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, uint32(3), unmapped.Code)
}

func TestDecodeDefaults(t *testing.T) {
	rep, err := Decode(context.Background(), testCatalog(t), nil)
	require.NoError(t, err)
	require.Len(t, rep.Registers, 2)

	t0 := rep.Registers[0]
	assert.Equal(t, "T0", t0.Register.Name)
	assert.Equal(t, OriginDefault, t0.Origin)
	require.Len(t, t0.Fields, 3)
	assert.Equal(t, register.Int(1), t0.Fields[0].Value)
	assert.Equal(t, register.Int(7), t0.Fields[1].Value)

	// Display-only fields are decoded but not mapped
	assert.Equal(t, []string{"A", "B", "C"}, rep.Values.Keys())

	// T1.A shadows T0.A
	a, _ := rep.Values.Get("A")
	assert.Equal(t, register.Int(0), a)
	assert.Equal(t, "T1", rep.Values.Origin("A"))
	require.Len(t, rep.Shadowed, 1)
	assert.Equal(t, Shadow{ID: "A", Previous: register.Int(1), From: "T0", By: "T1"}, rep.Shadowed[0])
}

func TestDecodeOverridesWinOverSource(t *testing.T) {
	cat := testCatalog(t)
	cat.Override(0x114, 0x00000001)

	src := mapSource{0x110: 0x00000012}
	rep, err := Decode(context.Background(), cat, src)
	require.NoError(t, err)

	assert.Equal(t, "map", rep.Registers[0].Origin)
	assert.Equal(t, uint32(0x12), rep.Registers[0].Raw)
	assert.Equal(t, OriginOverride, rep.Registers[1].Origin)

	c, _ := rep.Values.Get("C")
	assert.Equal(t, register.Int(4), c)
}

func TestDecodeSourceFailure(t *testing.T) {
	_, err := Decode(context.Background(), testCatalog(t), mapSource{0x110: 0})
	require.Error(t, err)

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, "T1", readErr.Register)
	assert.Equal(t, uint32(0x114), readErr.Address)
}

func TestReportOutOfRange(t *testing.T) {
	cat := testCatalog(t)
	cat.Override(0x110, 0x0000000F)

	rep, err := Decode(context.Background(), cat, nil)
	require.NoError(t, err)

	flagged := rep.OutOfRange()
	require.Len(t, flagged, 1)
	assert.Equal(t, "A", flagged[0].ID)

	rr, ok := rep.Register("T1")
	require.True(t, ok)
	assert.Equal(t, uint32(0x114), rr.Register.Address)
	_, ok = rep.Register("nope")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	rep, err := Decode(context.Background(), testCatalog(t), nil)
	require.NoError(t, err)

	for _, rr := range rep.Registers {
		var rebuilt uint32
		for _, f := range rr.Fields {
			rebuilt |= f.Field.Bits.Insert(f.Raw)
		}
		mask := rr.Register.CoveredMask()
		assert.Equal(t, rr.Raw&mask, rebuilt, rr.Register.Name)
	}
}

func TestValuesJSONKeepsOrder(t *testing.T) {
	vs := NewValues()
	vs.Set("Z", "r", register.Int(1))
	vs.Set("A", "r", register.Label("Inf"))
	vs.Set("Z", "r", register.Int(2))

	data, err := json.Marshal(vs)
	require.NoError(t, err)
	assert.Equal(t, `{"Z":2,"A":"Inf"}`, string(data))
	assert.Equal(t, 2, vs.Len())
}
