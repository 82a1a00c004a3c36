// Package i915 holds the DRAM timing register layout of the Intel
// 915GM/910GML memory controller hub (channel 0) as used on the EeePC 701/900.
package i915

import (
	"github.com/mscrnt/mchtimings/pkg/decoder"
	"github.com/mscrnt/mchtimings/pkg/register"
)

// MCHBAR is the default memory controller hub base address
const MCHBAR uint32 = 0xFED14000

// Register offsets from MCHBAR
const (
	C0DRT0 uint32 = 0x110 // DRAM Timing Register 0
	C0DRT1 uint32 = 0x114 // DRAM Timing Register 1
	C0DRT2 uint32 = 0x118 // DRAM Timing Register 2
	C0DRC0 uint32 = 0x120 // DRAM Controller Mode 0
)

// Defaults for DDR2-400 CL3-3-3-9
const (
	DefaultC0DRT0 uint32 = 0x987820C8
	DefaultC0DRT1 uint32 = 0x0290D211
	DefaultC0DRT2 uint32 = 0x80000230
	DefaultC0DRC0 uint32 = 0x40000906
)

// Write recovery and write-to-read turnaround are not encoded in any register;
// these are the DDR2-400 values.
const (
	DefaultWTR = 2
	DefaultWR  = 3
)

// DefaultClockMHz is the memory clock the defaults are specified for
const DefaultClockMHz = 200

var (
	na   = register.Label("N/A")
	inf  = register.Label("Inf")
	yes  = register.Label("Y")
	no   = register.Label("N")
	clks = register.LookupInts(map[uint32]int64{0: 1, 1: 2, 2: 3, 3: 4, 4: 5})
)

// C0DRT0Fields is the layout of DRAM Timing Register 0
func C0DRT0Fields() []register.BitField {
	return []register.BitField{
		{Bits: register.Bits(31, 28), ID: "WTP", Description: "Write To Precharge Command Spacing (Same bank)", Range: register.Between(5, 13), Note: "CL - 1 + BL/2 + WR"},
		{Bits: register.Bits(27, 24), ID: "WTR2", Description: "Write To Read Command Spacing (Same rank)", Range: register.Between(4, 11), Note: "CL - 1 + BL/2 + WTR"},
		{Bits: register.Bits(23, 22), ID: "WRD", Description: "Write-Read Command Spacing (Different Rank)", Transform: register.Subtract(6), Note: "BL/2 + TA - 1"},
		{Bits: register.Bits(21, 20), ID: "RTW", Description: "Read-Write Command Spacing", Transform: register.Subtract(9), Note: "BL/2 + TA + 1"},
		{Bits: register.Bits(19, 18), ID: "CCDw", Description: "Write Command Spacing", Transform: register.Subtract(6), Note: "BL/2 + TA"},
		{Bits: register.Bit(16), ID: "CCDr", Description: "Read Command Spacing", Transform: register.Flag(register.Int(5), register.Int(6)), Range: register.Between(5, 6)},
		{Bits: register.Bits(15, 11), ID: "RD", Description: "Read Delay", Range: register.Between(3, 31)},
		{Bits: register.Bits(8, 4), ID: "WTP2", Description: "Write Auto precharge to Activate (Same bank)", Range: register.Between(4, 19), Note: "CL - 1 + BL/2 + WR + RP"},
		{Bits: register.Bits(3, 0), ID: "RTP", Description: "Read Auto precharge to Activate (Same bank)", Note: "RTPC + RP"},
	}
}

// C0DRT1Fields is the layout of DRAM Timing Register 1
func C0DRT1Fields() []register.BitField {
	return []register.BitField{
		{Bits: register.Bits(29, 28), ID: "RTPC", Description: "Read to Pre-charge BL/2", Transform: register.LookupInts(map[uint32]int64{0: 4, 1: 8})},
		{Bits: register.Bits(23, 20), ID: "RAS", Description: "Active to Precharge Delay"},
		{Bits: register.Bit(17), ID: "RRD", Description: "Activate to activate delay (clk)", Transform: register.LookupInts(map[uint32]int64{0: 2, 1: 3})},
		{Bits: register.Bit(16), Description: "tRPALL Pre-All to Activate Delay"},
		{Bits: register.Bits(15, 11), ID: "RFC", Description: "Refresh Cycle Time", Range: register.Between(3, 31)},
		{Bits: register.Bits(9, 8), ID: "CL", Description: "CAS Latency", Transform: register.LookupInts(map[uint32]int64{0: 5, 1: 4, 2: 3})},
		{Bits: register.Bits(6, 4), ID: "RCD", Description: "RAS to CAS Delay", Transform: clks.Plus(1)},
		{Bits: register.Bits(2, 0), ID: "RP", Description: "Precharge to Activate Delay", Transform: clks.Plus(1)},
	}
}

// C0DRT2Fields is the layout of DRAM Timing Register 2
func C0DRT2Fields() []register.BitField {
	return []register.BitField{
		{Bits: register.Bits(31, 30), Description: "CKE Deassert Duration", Transform: register.Lookup(map[uint32]register.Value{0: register.Int(1), 1: na, 2: register.Int(3), 3: na})},
		{Bits: register.Bits(9, 8), ID: "XPDN", Description: "Power Down Exit to CS# active time", Transform: register.Lookup(map[uint32]register.Value{0: na, 1: register.Int(1), 2: register.Int(2), 3: register.Int(1)}), Range: register.Between(1, 2)},
		// 001 = 8 clocks, 010 = 16 clocks, 111 = never, others reserved
		{Bits: register.Bits(7, 5), Description: "DRAM Page Close Idle Timer", Transform: register.Lookup(map[uint32]register.Value{0: na, 1: register.Int(8), 2: register.Int(16), 3: register.Label("!res"), 7: inf})},
		// 16 for DDR2-400, 8 for DDR2-533
		{Bits: register.Bits(4, 0), Description: "DRAM Power down Idle Timer", Transform: register.Saturate(31, inf.String()), Range: register.Between(8, 16)},
	}
}

// C0DRC0Fields is the layout of DRAM Controller Mode Register 0
func C0DRC0Fields() []register.BitField {
	return []register.BitField{
		{Bits: register.Bit(29), ID: "IC", Description: "Initialization Complete", Transform: register.Flag(yes, no)},
		{Bits: register.Bits(27, 24), Description: "Active SDRAM Ranks"},
		{Bits: register.Bit(15), Description: "CMD copy enable (Single channel only)"},
		// refresh interval in microseconds
		{Bits: register.Bits(10, 8), ID: "RMS", Description: "Refresh Mode Select (RMS)", Transform: register.Lookup(map[uint32]register.Value{0: no, 1: register.Label("15.6"), 2: register.Label("7.8")})},
		{Bits: register.Bits(6, 4), ID: "SMD", Description: "Mode Select"},
		{Bits: register.Bit(2), ID: "BL", Description: "Burst Length", Transform: register.Flag(register.Int(8), register.Int(4))},
		{Bits: register.Bits(1, 0), ID: "DT", Description: "DRAM Type"},
	}
}

// Register registers the four timing registers with cat
func Register(cat *register.Catalog) error {
	regs := []struct {
		name    string
		address uint32
		value   uint32
		fields  []register.BitField
	}{
		{"C0DRT0", C0DRT0, DefaultC0DRT0, C0DRT0Fields()},
		{"C0DRT1", C0DRT1, DefaultC0DRT1, C0DRT1Fields()},
		{"C0DRT2", C0DRT2, DefaultC0DRT2, C0DRT2Fields()},
		{"C0DRC0", C0DRC0, DefaultC0DRC0, C0DRC0Fields()},
	}

	for _, r := range regs {
		if err := cat.Register(r.name, r.address, r.value, r.fields); err != nil {
			return err
		}
	}
	return nil
}

// NewCatalog returns a catalog holding the four timing registers
func NewCatalog() *register.Catalog {
	cat := register.NewCatalog()
	if err := Register(cat); err != nil {
		// The layout is static; a failure here is a programming error
		panic(err)
	}
	return cat
}

// Derivations returns the derived timings for the given speed grade constants.
// RC must come after RAS and RP have been decoded.
func Derivations(wtr, wr int64) []decoder.Derivation {
	return []decoder.Derivation{
		decoder.Const("WTR", wtr),
		decoder.Const("WR", wr),
		decoder.Sum("RC", "RAS", "RP"),
	}
}

// References returns the SPD timings of the modules shipped with the platform
func References() []decoder.Reference {
	return []decoder.Reference{
		{Part: "HYMP125S64CP8-S6", ClockMHz: 400, Summary: decoder.NewSummary([]int64{6, 6, 6, 18}, []int64{24, 51, 3, 6, 3, 3})},
		{Part: "HYMP125S64CP8-S6", ClockMHz: 333, Summary: decoder.NewSummary([]int64{5, 5, 5, 15}, []int64{20, 43, 3, 5, 3, 3})},
		{Part: "HYMP125S64CP8-S6", ClockMHz: 266, Summary: decoder.NewSummary([]int64{4, 4, 4, 12}, []int64{16, 34, 2, 4, 2, 2})},
		{Part: "HYMP125S64CP8-Y5", ClockMHz: 200, Summary: decoder.NewSummary([]int64{3, 3, 3, 9}, []int64{12, 26, 2, 3, 2, 2})},
	}
}
