package decoder

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// extractFromString slices the MSB-first binary rendering, the way the
// datasheet tables are read by hand
func extractFromString(value uint32, spec register.BitSpec) uint32 {
	bin := Binary32(value)
	start := 31 - int(spec.High)
	n, _ := strconv.ParseUint(bin[start:start+int(spec.Width())], 2, 32)
	return uint32(n)
}

func TestExtractMatchesShiftAndMask(t *testing.T) {
	rng := rand.New(rand.NewSource(91))
	values := []uint32{0, 0xFFFFFFFF, 0x80000000, 0x7FFFFFFF, 0x987820C8, 0x0290D211}
	for i := 0; i < 64; i++ {
		values = append(values, rng.Uint32())
	}

	for high := 0; high <= register.MaxBit; high++ {
		for low := 0; low <= high; low++ {
			spec := register.Bits(uint8(high), uint8(low))
			for _, v := range values {
				want := uint32((uint64(v) >> low) & ((uint64(1) << (high - low + 1)) - 1))
				got := Extract(v, spec)
				if got != want {
					t.Fatalf("Extract(0x%08X, %s) = %d, want %d", v, spec, got, want)
				}
				if s := extractFromString(v, spec); s != got {
					t.Fatalf("Extract(0x%08X, %s) = %d, binary string gives %d", v, spec, got, s)
				}
			}
		}
	}
}

func TestExtractSingleBitEqualsRange(t *testing.T) {
	rng := rand.New(rand.NewSource(915))
	for i := 0; i < 256; i++ {
		v := rng.Uint32()
		for b := uint8(0); b <= register.MaxBit; b++ {
			require.Equal(t, Extract(v, register.Bits(b, b)), Extract(v, register.Bit(b)))
		}
	}
}

func TestExtractTopBit(t *testing.T) {
	assert.Equal(t, uint32(1), Extract(0x80000000, register.Bits(31, 31)))
	assert.Equal(t, uint32(0), Extract(0x7FFFFFFF, register.Bits(31, 31)))
	assert.Equal(t, uint32(0xFFFFFFFF), Extract(0xFFFFFFFF, register.Bits(31, 0)))
}

func TestBinaryRendering(t *testing.T) {
	assert.Equal(t, "10011000011110000010000011001000", Binary32(0x987820C8))
	assert.Equal(t, "1001 1000 0111 1000 0010 0000 1100 1000", Nibbles(0x987820C8))
	assert.Equal(t, "00010", FieldBinary(2, 5))
	assert.Equal(t, "1", FieldBinary(1, 1))
}
