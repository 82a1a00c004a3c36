package register

import "fmt"

// Transform converts the raw code of a field into its decoded value.
// Transforms must be pure: the same raw code always yields the same result.
type Transform func(raw uint32) (Value, error)

// Lookup maps raw codes through a table. Codes missing from the table fail
// with *UnmappedCodeError instead of falling back to a guess.
func Lookup(table map[uint32]Value) Transform {
	return func(raw uint32) (Value, error) {
		v, ok := table[raw]
		if !ok {
			return Value{}, &UnmappedCodeError{Code: raw}
		}
		return v, nil
	}
}

// LookupInts is Lookup for tables holding only integers
func LookupInts(table map[uint32]int64) Transform {
	values := make(map[uint32]Value, len(table))
	for code, n := range table {
		values[code] = Int(n)
	}
	return Lookup(values)
}

// Subtract decodes a field encoded as from - raw
func Subtract(from int64) Transform {
	return func(raw uint32) (Value, error) {
		return Int(from - int64(raw)), nil
	}
}

// Flag decodes a single bit: set when raw is non-zero, unset otherwise
func Flag(set, unset Value) Transform {
	return func(raw uint32) (Value, error) {
		if raw != 0 {
			return set, nil
		}
		return unset, nil
	}
}

// Saturate passes raw through except for one reserved code, which becomes label
func Saturate(code uint32, label string) Transform {
	return func(raw uint32) (Value, error) {
		if raw == code {
			return Label(label), nil
		}
		return Int(int64(raw)), nil
	}
}

// Plus adds n to the result of t. It fails if t yields a label.
func (t Transform) Plus(n int64) Transform {
	return func(raw uint32) (Value, error) {
		v, err := t(raw)
		if err != nil {
			return Value{}, err
		}
		i, ok := v.Int()
		if !ok {
			return Value{}, fmt.Errorf("cannot add %d to label %q", n, v)
		}
		return Int(i + n), nil
	}
}

// Apply runs the transform, or returns raw as an integer when t is nil
func (t Transform) Apply(raw uint32) (Value, error) {
	if t == nil {
		return Int(int64(raw)), nil
	}
	return t(raw)
}
