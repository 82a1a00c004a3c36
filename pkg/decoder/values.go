package decoder

import (
	"bytes"
	"encoding/json"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// Values is the identifier to value mapping built during one run.
// Setting an existing id overwrites it; iteration follows first insertion.
type Values struct {
	order  []string
	values map[string]register.Value
	origin map[string]string
}

// Shadow records an id overwritten by a later field or derivation
type Shadow struct {
	ID       string
	Previous register.Value
	From     string // Origin of the overwritten value
	By       string // Origin of the new value
}

// NewValues creates an empty mapping
func NewValues() *Values {
	return &Values{
		values: make(map[string]register.Value),
		origin: make(map[string]string),
	}
}

// Set stores v under id. origin names the register or derivation the value
// comes from. When id was already set the overwritten entry is returned.
func (vs *Values) Set(id, origin string, v register.Value) (Shadow, bool) {
	prev, exists := vs.values[id]
	var shadow Shadow
	if exists {
		shadow = Shadow{ID: id, Previous: prev, From: vs.origin[id], By: origin}
	} else {
		vs.order = append(vs.order, id)
	}

	vs.values[id] = v
	vs.origin[id] = origin
	return shadow, exists
}

// Get returns the value stored under id
func (vs *Values) Get(id string) (register.Value, bool) {
	v, ok := vs.values[id]
	return v, ok
}

// Origin returns where the value stored under id came from
func (vs *Values) Origin(id string) string {
	return vs.origin[id]
}

// Keys returns ids in first insertion order
func (vs *Values) Keys() []string {
	return append([]string(nil), vs.order...)
}

// Len returns the number of ids
func (vs *Values) Len() int {
	return len(vs.order)
}

// MarshalJSON encodes the mapping as an object keeping insertion order
func (vs *Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range vs.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(vs.values[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
