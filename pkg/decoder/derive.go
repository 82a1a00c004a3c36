package decoder

import (
	"strconv"
	"strings"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// Derivation computes a named value from ids already in the mapping
type Derivation struct {
	Name    string
	Inputs  []string
	Formula string // Human readable form, e.g. "RAS + RP"
	Compute func(inputs []int64) int64
}

// Const derives a fixed value, for timings the registers do not encode
func Const(name string, n int64) Derivation {
	return Derivation{
		Name:    name,
		Formula: strconv.FormatInt(n, 10),
		Compute: func([]int64) int64 { return n },
	}
}

// Sum derives the sum of the given ids
func Sum(name string, ids ...string) Derivation {
	return Derivation{
		Name:    name,
		Inputs:  ids,
		Formula: strings.Join(ids, " + "),
		Compute: func(in []int64) int64 {
			var total int64
			for _, n := range in {
				total += n
			}
			return total
		},
	}
}

func (d Derivation) String() string {
	return d.Name + " = " + d.Formula
}

// Derive runs derivations in order. Each one may only use ids decoded from
// a register or derived earlier in the same pass.
func Derive(values *Values, derivations []Derivation) ([]Shadow, error) {
	var shadowed []Shadow

	for _, d := range derivations {
		inputs := make([]int64, 0, len(d.Inputs))
		for _, id := range d.Inputs {
			v, ok := values.Get(id)
			if !ok {
				return shadowed, &MissingDependencyError{Name: d.Name, ID: id}
			}
			n, ok := v.Int()
			if !ok {
				return shadowed, &NotNumericError{Name: d.Name, ID: id, Label: v.String()}
			}
			inputs = append(inputs, n)
		}

		result := register.Int(d.Compute(inputs))
		if shadow, exists := values.Set(d.Name, "derived", result); exists {
			shadowed = append(shadowed, shadow)
		}
	}

	return shadowed, nil
}
