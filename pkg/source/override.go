package source

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// overridePattern matches "110=88BC10D8" and "0x110=0x88BC10D8". The three
// digits are the low 12 bits of the register offset, read as hex.
var overridePattern = regexp.MustCompile(`(?i)^(?:0x)?(\d{3})=(?:0x)?([0-9a-f]+)$`)

// Override is a raw value supplied for one register
type Override struct {
	Address uint32
	Value   uint32
	Token   string
}

func (o Override) String() string {
	return fmt.Sprintf("0x%03X=0x%08X", o.Address, o.Value)
}

// ParseOverride parses a single address=value token. ok is false for tokens
// that do not follow the syntax or whose value does not fit 32 bits.
func ParseOverride(token string) (o Override, ok bool) {
	m := overridePattern.FindStringSubmatch(token)
	if m == nil {
		return Override{}, false
	}

	addr, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return Override{}, false
	}
	value, err := strconv.ParseUint(m[2], 16, 32)
	if err != nil {
		return Override{}, false
	}

	return Override{Address: uint32(addr), Value: uint32(value), Token: token}, true
}

// ParseOverrides parses every token of args. Tokens that do not parse are
// not an error; they are returned in ignored so the caller may mention them.
func ParseOverrides(args []string) (overrides []Override, ignored []string) {
	for _, arg := range args {
		o, ok := ParseOverride(arg)
		if !ok {
			ignored = append(ignored, arg)
			continue
		}
		overrides = append(overrides, o)
	}
	return overrides, ignored
}

// Apply records overrides in cat and returns the ones naming no known register
func Apply(cat *register.Catalog, overrides []Override) (unknown []Override) {
	for _, o := range overrides {
		if !cat.Override(o.Address, o.Value) {
			unknown = append(unknown, o)
		}
	}
	return unknown
}
