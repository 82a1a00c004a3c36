package register

import (
	"encoding/json"
	"strconv"
)

// Kind tells which member of a Value is set
type Kind uint8

const (
	KindInt   Kind = iota // Numeric value, clocks or raw code
	KindLabel             // Symbolic value such as "Inf" or "N/A"
)

// Value is a decoded field value: either an integer or a symbolic label.
// The zero Value is the integer 0.
type Value struct {
	kind  Kind
	n     int64
	label string
}

// Int returns an integer value
func Int(n int64) Value {
	return Value{kind: KindInt, n: n}
}

// Label returns a symbolic value
func Label(s string) Value {
	return Value{kind: KindLabel, label: s}
}

// Kind returns the value kind
func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the integer and true, or 0 and false for labels
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.n, true
}

// IsLabel reports whether v holds a symbolic label
func (v Value) IsLabel() bool {
	return v.kind == KindLabel
}

func (v Value) String() string {
	if v.kind == KindLabel {
		return v.label
	}
	return strconv.FormatInt(v.n, 10)
}

// MarshalJSON encodes integers as JSON numbers and labels as strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindLabel {
		return json.Marshal(v.label)
	}
	return json.Marshal(v.n)
}
