// Package register describes memory controller registers and the bitfields
// they are made of. Everything in here is static configuration: a Register is
// built once from the documented layout and never mutated while decoding.
package register

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxBit is the highest bit index of a 32-bit register
const MaxBit = 31

// BitSpec identifies an inclusive range of bits inside a 32-bit register.
// A single bit is stored as High == Low.
type BitSpec struct {
	High uint8
	Low  uint8
}

// Bit returns the spec for a single bit
func Bit(b uint8) BitSpec {
	return BitSpec{High: b, Low: b}
}

// Bits returns the spec for the inclusive range high:low
func Bits(high, low uint8) BitSpec {
	return BitSpec{High: high, Low: low}
}

// ParseBitSpec parses the "31:28" / "16" notation used in chipset datasheets
func ParseBitSpec(s string) (BitSpec, error) {
	s = strings.TrimSpace(s)
	hi, lo, isRange := strings.Cut(s, ":")

	high, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 8)
	if err != nil {
		return BitSpec{}, fmt.Errorf("invalid bit spec %q: %w", s, err)
	}
	low := high
	if isRange {
		low, err = strconv.ParseUint(strings.TrimSpace(lo), 10, 8)
		if err != nil {
			return BitSpec{}, fmt.Errorf("invalid bit spec %q: %w", s, err)
		}
	}

	spec := BitSpec{High: uint8(high), Low: uint8(low)}
	if err := spec.Validate(); err != nil {
		return BitSpec{}, err
	}
	return spec, nil
}

// Validate checks that the spec lies within a 32-bit register and high >= low
func (s BitSpec) Validate() error {
	if s.High > MaxBit {
		return fmt.Errorf("bit %d out of range 0..%d", s.High, MaxBit)
	}
	if s.High < s.Low {
		return fmt.Errorf("invalid bit range %d:%d: high bit below low bit", s.High, s.Low)
	}
	return nil
}

// Single reports whether the spec covers exactly one bit
func (s BitSpec) Single() bool {
	return s.High == s.Low
}

// Width returns the number of bits covered
func (s BitSpec) Width() uint {
	return uint(s.High-s.Low) + 1
}

// Mask returns the covered bits in register position
func (s BitSpec) Mask() uint32 {
	return uint32(((uint64(1) << s.Width()) - 1) << s.Low)
}

// Insert places raw into the covered bits, dropping anything wider than the field
func (s BitSpec) Insert(raw uint32) uint32 {
	return uint32(uint64(raw)<<s.Low) & s.Mask()
}

func (s BitSpec) String() string {
	if s.Single() {
		return strconv.Itoa(int(s.High))
	}
	return fmt.Sprintf("%d:%d", s.High, s.Low)
}

// Range is an advisory inclusive bound on a decoded value
type Range struct {
	Min int64
	Max int64
}

// Between returns the range lo..hi
func Between(lo, hi int64) *Range {
	return &Range{Min: lo, Max: hi}
}

// Contains reports whether v is inside the range. Labels are never flagged.
func (r *Range) Contains(v Value) bool {
	if r == nil {
		return true
	}
	n, ok := v.Int()
	if !ok {
		return true
	}
	return n >= r.Min && n <= r.Max
}

func (r *Range) String() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d..%d", r.Min, r.Max)
}

// BitField describes one documented field of a register
type BitField struct {
	Bits        BitSpec
	ID          string    // Key in the decoded value mapping, empty for display-only fields
	Description string    // Datasheet description
	Transform   Transform // Raw code to physical value, nil means the raw value is used as is
	Range       *Range    // Advisory range of the decoded value
	Note        string    // Minimum constraint from the datasheet, e.g. "CL - 1 + BL/2 + WR"
}

// Register is a named 32-bit controller register at a fixed offset
type Register struct {
	Name    string
	Address uint32
	Default uint32
	Fields  []BitField
}

// Validate checks the register name, every bit spec and field id uniqueness
func (r *Register) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("register at 0x%X: name cannot be empty", r.Address)
	}

	ids := make(map[string]struct{}, len(r.Fields))
	for i, f := range r.Fields {
		if err := f.Bits.Validate(); err != nil {
			return fmt.Errorf("register %s field %d: %w", r.Name, i, err)
		}
		if f.ID == "" {
			continue
		}
		if _, exists := ids[f.ID]; exists {
			return fmt.Errorf("register %s: field id %q used twice", r.Name, f.ID)
		}
		ids[f.ID] = struct{}{}
	}

	return nil
}

// Field returns the field with the given id
func (r *Register) Field(id string) (BitField, bool) {
	for _, f := range r.Fields {
		if f.ID != "" && f.ID == id {
			return f, true
		}
	}
	return BitField{}, false
}

// CoveredMask returns the union of all field masks
func (r *Register) CoveredMask() uint32 {
	var mask uint32
	for _, f := range r.Fields {
		mask |= f.Bits.Mask()
	}
	return mask
}
