// Package decoder turns raw register values into decoded timing fields and
// computes the values derived from them.
package decoder

import (
	"fmt"
	"strings"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// Extract returns bits spec.High down to spec.Low of value as an unsigned integer
func Extract(value uint32, spec register.BitSpec) uint32 {
	mask := (uint64(1) << spec.Width()) - 1
	return uint32((uint64(value) >> spec.Low) & mask)
}

// Binary32 renders value as 32 binary digits, most significant bit first
func Binary32(value uint32) string {
	return fmt.Sprintf("%032b", value)
}

// Nibbles renders value as 32 binary digits grouped by four
func Nibbles(value uint32) string {
	bin := Binary32(value)
	groups := make([]string, 0, 8)
	for i := 0; i < len(bin); i += 4 {
		groups = append(groups, bin[i:i+4])
	}
	return strings.Join(groups, " ")
}

// FieldBinary renders raw zero-padded to width digits
func FieldBinary(raw uint32, width uint) string {
	return fmt.Sprintf("%0*b", int(width), raw)
}
