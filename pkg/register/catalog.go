package register

import (
	"fmt"
	"sort"
)

// Catalog holds the registers known to one decoding session, keyed by address
type Catalog struct {
	registers map[uint32]*Register
	order     []uint32
	overrides map[uint32]uint32
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		registers: make(map[uint32]*Register),
		overrides: make(map[uint32]uint32),
	}
}

// Register adds a register to the catalog. Registering an address twice
// fails with *DuplicateRegisterError.
func (c *Catalog) Register(name string, address, defaultRaw uint32, fields []BitField) error {
	reg := &Register{
		Name:    name,
		Address: address,
		Default: defaultRaw,
		Fields:  append([]BitField(nil), fields...),
	}

	if err := reg.Validate(); err != nil {
		return err
	}

	if existing, exists := c.registers[address]; exists {
		return &DuplicateRegisterError{
			Address:  address,
			Existing: existing.Name,
			Name:     name,
		}
	}

	c.registers[address] = reg
	c.order = append(c.order, address)
	return nil
}

// MustRegister is Register for static catalogs built at startup
func (c *Catalog) MustRegister(name string, address, defaultRaw uint32, fields []BitField) {
	if err := c.Register(name, address, defaultRaw, fields); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}

// Get returns the register at address
func (c *Catalog) Get(address uint32) (*Register, bool) {
	reg, ok := c.registers[address]
	return reg, ok
}

// Lookup returns the register with the given name
func (c *Catalog) Lookup(name string) (*Register, bool) {
	for _, addr := range c.order {
		if reg := c.registers[addr]; reg.Name == name {
			return reg, true
		}
	}
	return nil, false
}

// Registers returns all registers in registration order
func (c *Catalog) Registers() []*Register {
	regs := make([]*Register, 0, len(c.order))
	for _, addr := range c.order {
		regs = append(regs, c.registers[addr])
	}
	return regs
}

// Len returns the number of registers
func (c *Catalog) Len() int {
	return len(c.order)
}

// Override replaces the raw value used for decoding the register at address.
// The default stays untouched. It returns false when no register lives at
// address; the override is kept but never used.
func (c *Catalog) Override(address, raw uint32) bool {
	c.overrides[address] = raw
	_, known := c.registers[address]
	return known
}

// ClearOverrides drops every override
func (c *Catalog) ClearOverrides() {
	c.overrides = make(map[uint32]uint32)
}

// Overrides returns a copy of the override table
func (c *Catalog) Overrides() map[uint32]uint32 {
	overrides := make(map[uint32]uint32, len(c.overrides))
	for addr, raw := range c.overrides {
		overrides[addr] = raw
	}
	return overrides
}

// Raw returns the value to decode for address: the override if one was
// given, the catalog default otherwise. ok is false for unknown addresses.
func (c *Catalog) Raw(address uint32) (raw uint32, overridden, ok bool) {
	reg, known := c.registers[address]
	if !known {
		return 0, false, false
	}
	if v, exists := c.overrides[address]; exists {
		return v, true, true
	}
	return reg.Default, false, true
}

// Addresses returns all register addresses in ascending order
func (c *Catalog) Addresses() []uint32 {
	addrs := append([]uint32(nil), c.order...)
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i] < addrs[j]
	})
	return addrs
}
