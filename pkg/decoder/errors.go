package decoder

import "fmt"

// FieldError reports a field that could not be decoded
type FieldError struct {
	Register string
	Bits     string
	ID       string
	Raw      uint32
	Err      error
}

func (e *FieldError) Error() string {
	name := e.ID
	if name == "" {
		name = "bits " + e.Bits
	}
	return fmt.Sprintf("%s %s: raw %d: %v", e.Register, name, e.Raw, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ReadError reports a register whose raw value could not be read from the source
type ReadError struct {
	Register string
	Address  uint32
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s (0x%03X): %v", e.Register, e.Address, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// MissingDependencyError is returned when a derivation references an id that
// is not in the mapping yet
type MissingDependencyError struct {
	Name string // Derived value being computed
	ID   string // Missing input
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("cannot derive %s: %s not decoded yet", e.Name, e.ID)
}

// MissingFieldError is returned when a summary id is absent from the mapping
type MissingFieldError struct {
	ID string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("summary field %s missing", e.ID)
}

// NotNumericError is returned when arithmetic meets a symbolic label
type NotNumericError struct {
	Name  string
	ID    string
	Label string
}

func (e *NotNumericError) Error() string {
	return fmt.Sprintf("cannot derive %s: %s is %q, not a number", e.Name, e.ID, e.Label)
}
