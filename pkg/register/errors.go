package register

import "fmt"

// DuplicateRegisterError is returned when two registers claim the same address
type DuplicateRegisterError struct {
	Address  uint32
	Existing string // Name of the register already in the catalog
	Name     string // Name of the rejected register
}

func (e *DuplicateRegisterError) Error() string {
	return fmt.Sprintf("register %s: address 0x%03X already used by %s", e.Name, e.Address, e.Existing)
}

// UnmappedCodeError is returned by lookup transforms for codes missing from their table
type UnmappedCodeError struct {
	Code uint32
}

func (e *UnmappedCodeError) Error() string {
	return fmt.Sprintf("no mapping for code %d (0b%b)", e.Code, e.Code)
}
