// Package source provides the raw register values fed to the decoder:
// catalog defaults, fixed tables, and live reads through RWEverything.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/mscrnt/mchtimings/pkg/register"
)

// ErrUnknownRegister is returned for addresses a source has no value for
var ErrUnknownRegister = errors.New("unknown register")

// Source supplies raw register contents by address
type Source interface {
	ReadRegister(ctx context.Context, address uint32) (uint32, error)
}

type defaults struct {
	cat *register.Catalog
}

// Defaults returns a source answering with the catalog default of each register
func Defaults(cat *register.Catalog) Source {
	return defaults{cat: cat}
}

func (d defaults) ReadRegister(_ context.Context, address uint32) (uint32, error) {
	reg, ok := d.cat.Get(address)
	if !ok {
		return 0, fmt.Errorf("0x%03X: %w", address, ErrUnknownRegister)
	}
	return reg.Default, nil
}

func (d defaults) String() string {
	return "default"
}

// Static is a fixed address to value table
type Static map[uint32]uint32

// ReadRegister implements Source
func (s Static) ReadRegister(_ context.Context, address uint32) (uint32, error) {
	v, ok := s[address]
	if !ok {
		return 0, fmt.Errorf("0x%03X: %w", address, ErrUnknownRegister)
	}
	return v, nil
}

func (s Static) String() string {
	return "static"
}

type fallback struct {
	primary   Source
	secondary Source
	onError   func(address uint32, err error)
}

// Fallback reads from primary and, when that fails, from secondary. onError
// is told about every primary failure so the caller can warn about values
// that did not come from the primary source.
func Fallback(primary, secondary Source, onError func(address uint32, err error)) Source {
	return &fallback{primary: primary, secondary: secondary, onError: onError}
}

func (f *fallback) ReadRegister(ctx context.Context, address uint32) (uint32, error) {
	v, err := f.primary.ReadRegister(ctx, address)
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		return 0, err
	}

	if f.onError != nil {
		f.onError(address, err)
	}

	v, err2 := f.secondary.ReadRegister(ctx, address)
	if err2 != nil {
		return 0, fmt.Errorf("%w (fallback: %v)", err, err2)
	}
	return v, nil
}

func (f *fallback) String() string {
	return fmt.Sprintf("%s, falling back to %s", name(f.primary), name(f.secondary))
}

func name(s Source) string {
	if st, ok := s.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", s)
}
