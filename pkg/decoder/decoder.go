package decoder

import (
	"context"
	"fmt"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// Origins of a register's raw value
const (
	OriginDefault  = "default"
	OriginOverride = "override"
)

// Source supplies raw register contents by address
type Source interface {
	ReadRegister(ctx context.Context, address uint32) (uint32, error)
}

// DecodedField is one field of a register after extraction and transform
type DecodedField struct {
	ID      string
	Raw     uint32
	Value   register.Value
	Binary  string // Raw value zero-padded to the field width
	InRange bool   // False when the value falls outside the advisory range
	Field   register.BitField
}

// RegisterReport holds a register, the raw value decoded and its fields
type RegisterReport struct {
	Register *register.Register
	Raw      uint32
	Origin   string
	Fields   []DecodedField
}

// Report is the result of one decoding run
type Report struct {
	Registers   []RegisterReport
	Values      *Values
	Shadowed    []Shadow
	Derivations []Derivation
	Summary     Summary
}

// DecodeField extracts and transforms a single field of value
func DecodeField(f register.BitField, value uint32) (DecodedField, error) {
	raw := Extract(value, f.Bits)

	v, err := f.Transform.Apply(raw)
	if err != nil {
		return DecodedField{}, err
	}

	return DecodedField{
		ID:      f.ID,
		Raw:     raw,
		Value:   v,
		Binary:  FieldBinary(raw, f.Bits.Width()),
		InRange: f.Range.Contains(v),
		Field:   f,
	}, nil
}

// DecodeRegister decodes every field of reg in order and records the ones
// with an id in values. Ids already present are overwritten and reported.
func DecodeRegister(reg *register.Register, value uint32, values *Values) ([]DecodedField, []Shadow, error) {
	fields := make([]DecodedField, 0, len(reg.Fields))
	var shadowed []Shadow

	for _, f := range reg.Fields {
		df, err := DecodeField(f, value)
		if err != nil {
			return nil, nil, &FieldError{
				Register: reg.Name,
				Bits:     f.Bits.String(),
				ID:       f.ID,
				Raw:      Extract(value, f.Bits),
				Err:      err,
			}
		}
		fields = append(fields, df)

		if f.ID == "" || values == nil {
			continue
		}
		if shadow, exists := values.Set(f.ID, reg.Name, df.Value); exists {
			shadowed = append(shadowed, shadow)
		}
	}

	return fields, shadowed, nil
}

// Decode resolves the raw value of every catalog register and decodes it,
// in registration order. Overrides win over the source, and the source is
// not consulted for overridden registers. A nil source means catalog defaults.
func Decode(ctx context.Context, cat *register.Catalog, src Source) (*Report, error) {
	rep := &Report{Values: NewValues()}

	for _, reg := range cat.Registers() {
		raw, origin, err := resolve(ctx, cat, reg, src)
		if err != nil {
			return nil, err
		}

		fields, shadowed, err := DecodeRegister(reg, raw, rep.Values)
		if err != nil {
			return nil, err
		}

		rep.Registers = append(rep.Registers, RegisterReport{
			Register: reg,
			Raw:      raw,
			Origin:   origin,
			Fields:   fields,
		})
		rep.Shadowed = append(rep.Shadowed, shadowed...)
	}

	return rep, nil
}

// Run decodes every register of cat, runs derivations over the result and
// collects the summary tuples.
func Run(ctx context.Context, cat *register.Catalog, src Source, derivations []Derivation) (*Report, error) {
	rep, err := Decode(ctx, cat, src)
	if err != nil {
		return nil, err
	}
	if err := rep.Derive(derivations); err != nil {
		return nil, err
	}

	rep.Summary, err = Summarize(rep.Values)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func resolve(ctx context.Context, cat *register.Catalog, reg *register.Register, src Source) (uint32, string, error) {
	raw, overridden, _ := cat.Raw(reg.Address)
	if overridden {
		return raw, OriginOverride, nil
	}
	if src == nil {
		return raw, OriginDefault, nil
	}

	v, err := src.ReadRegister(ctx, reg.Address)
	if err != nil {
		return 0, "", &ReadError{Register: reg.Name, Address: reg.Address, Err: err}
	}
	return v, sourceName(src), nil
}

func sourceName(src Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}

// Derive runs derivations against the report's mapping and keeps them for display
func (r *Report) Derive(derivations []Derivation) error {
	shadowed, err := Derive(r.Values, derivations)
	r.Shadowed = append(r.Shadowed, shadowed...)
	if err != nil {
		return err
	}
	r.Derivations = append(r.Derivations, derivations...)
	return nil
}

// Register returns the report of the named register
func (r *Report) Register(name string) (RegisterReport, bool) {
	for _, rr := range r.Registers {
		if rr.Register.Name == name {
			return rr, true
		}
	}
	return RegisterReport{}, false
}

// OutOfRange returns the decoded fields flagged by their advisory range
func (r *Report) OutOfRange() []DecodedField {
	var flagged []DecodedField
	for _, rr := range r.Registers {
		for _, f := range rr.Fields {
			if !f.InRange {
				flagged = append(flagged, f)
			}
		}
	}
	return flagged
}
