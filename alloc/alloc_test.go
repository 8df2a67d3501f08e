package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/memplan/bank"
	"github.com/ezrec/memplan/segment"
)

func doCatalog(t *testing.T, banks ...bank.Bank) *bank.Catalog {
	cat, err := bank.NewCatalog(banks...)
	assert.NoError(t, err)
	return cat
}

func doRegistry(t *testing.T, segs ...segment.Segment) *segment.Registry {
	reg := &segment.Registry{}
	for _, seg := range segs {
		assert.NoError(t, reg.Add(seg))
	}
	return reg
}

func TestAllocate_FirstFit(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "DTCM", Origin: 0x20000000, Length: 0x20000, Caps: bank.CAP_ZERO_WAIT},
		bank.Bank{Name: "AXISRAM", Origin: 0x24000000, Length: 0x80000, Caps: bank.CAP_DMA},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "a", Size: 0x100, Align: 4},
		segment.Segment{Name: "b", Size: 0x100, Align: 4, Needs: bank.CAP_DMA},
		segment.Segment{Name: "c", Size: 0x100, Align: 4},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.NoError(err)
	assert.Nil(asn.Stack)

	// No requirements: first declared bank. DMA: first DMA bank.
	pl, ok := asn.Lookup("a")
	assert.True(ok)
	assert.Equal("DTCM", pl.Bank)
	assert.Equal(uint32(0), pl.Offset)

	pl, ok = asn.Lookup("b")
	assert.True(ok)
	assert.Equal("AXISRAM", pl.Bank)
	assert.Equal(uint32(0), pl.Offset)

	// Bump allocation within the bank, in registration order.
	pl, ok = asn.Lookup("c")
	assert.True(ok)
	assert.Equal("DTCM", pl.Bank)
	assert.Equal(uint32(0x100), pl.Offset)
	assert.Equal(uint32(0x20000100), pl.Address(cat))
}

func TestAllocate_Alignment(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "RAM", Origin: 0x20000000, Length: 0x10000},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "a", Size: 10, Align: 1},
		segment.Segment{Name: "b", Size: 3, Align: 64},
		segment.Segment{Name: "c", Size: 1, Align: 8},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.NoError(err)

	for _, pl := range asn.Placements {
		assert.Zero(pl.Offset%pl.Segment.Align, pl.Segment.Name)
	}

	pl, _ := asn.Lookup("b")
	assert.Equal(uint32(64), pl.Offset)
	pl, _ = asn.Lookup("c")
	assert.Equal(uint32(72), pl.Offset)
}

func TestAllocate_ZeroSize(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "RAM", Origin: 0x20000000, Length: 0x100},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "a", Size: 10, Align: 1},
		segment.Segment{Name: "guard", Size: 0, Align: 64},
		segment.Segment{Name: "b", Size: 1, Align: 1},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.NoError(err)

	// The guard occupies no bytes but still consumed alignment padding.
	pl, _ := asn.Lookup("guard")
	assert.Equal(uint32(64), pl.Offset)
	pl, _ = asn.Lookup("b")
	assert.Equal(uint32(64), pl.Offset)
}

func TestAllocate_AlignAtTopOfBank(t *testing.T) {
	assert := assert.New(t)

	// Rounding the cursor up to the alignment near the top of a
	// maximally sized bank must not wrap to a low offset; the
	// segment does not fit and the whole allocation fails.
	cat := doCatalog(t,
		bank.Bank{Name: "BIG", Origin: 0, Length: 0xffffffff},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "bulk", Size: 0xffffff00, Align: 1},
		segment.Segment{Name: "tail", Size: 0x10, Align: 0x200},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.Nil(asn)
	var oos *ErrOutOfSpace
	if assert.ErrorAs(err, &oos) {
		assert.Equal("tail", oos.Segment)
		assert.Equal([]Tried{{Bank: "BIG", Remaining: 0xff}}, oos.Tried)
	}
}

func TestAllocate_NoOverlap(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "RAM", Origin: 0x20000000, Length: 0x1000},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "a", Size: 0x300, Align: 4},
		segment.Segment{Name: "b", Size: 0x10, Align: 0x400},
		segment.Segment{Name: "c", Size: 0x200, Align: 16},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.NoError(err)

	// No two placements in the same bank may intersect.
	for n := range asn.Placements {
		for p := range n {
			a := &asn.Placements[n]
			b := &asn.Placements[p]
			if a.Bank != b.Bank {
				continue
			}
			aEnd := a.Offset + a.Segment.Size
			bEnd := b.Offset + b.Segment.Size
			disjoint := aEnd <= b.Offset || bEnd <= a.Offset ||
				a.Segment.Size == 0 || b.Segment.Size == 0
			assert.True(disjoint, "%v and %v overlap", b.Segment.Name, a.Segment.Name)
		}
	}
}

func TestAllocate_StackPinned(t *testing.T) {
	assert := assert.New(t)

	// The scenario from the hardware bring-up notes: a zero-sized
	// stack reservation still pins _stack_start to the top of RAM,
	// and a 256K DMA buffer lands at the bottom of AXISRAM.
	cat := doCatalog(t,
		bank.Bank{Name: "RAM", Origin: 0x20000000, Length: 128 * 1024},
		bank.Bank{Name: "AXISRAM", Origin: 0x24000000, Length: 512 * 1024, Caps: bank.CAP_DMA},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "buffer", Size: 256 * 1024, Align: 4, Needs: bank.CAP_DMA},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, &segment.StackSpec{Bank: "RAM", Size: 0})
	assert.NoError(err)

	pl, ok := asn.Lookup("buffer")
	assert.True(ok)
	assert.Equal("AXISRAM", pl.Bank)
	assert.Equal(uint32(0), pl.Offset)

	if assert.NotNil(asn.Stack) {
		assert.Equal("RAM", asn.Stack.Bank)
		assert.Equal(uint32(0x20000000+131072), asn.Stack.Start)
	}
}

func TestAllocate_StackShrinks(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "RAM", Origin: 0x20000000, Length: 0x1000},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "big", Size: 0xe00, Align: 4},
	)

	// Without the stack the segment fits.
	al := &Allocator{}
	_, err := al.Allocate(cat, reg, nil)
	assert.NoError(err)

	// The stack reservation comes off the top first.
	_, err = al.Allocate(cat, reg, &segment.StackSpec{Bank: "RAM", Size: 0x400})
	var oos *ErrOutOfSpace
	if assert.ErrorAs(err, &oos) {
		assert.Equal("big", oos.Segment)
		assert.Equal([]Tried{{Bank: "RAM", Remaining: 0xc00}}, oos.Tried)
	}
}

func TestAllocate_StackErrors(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "RAM", Origin: 0x20000000, Length: 0x1000},
	)
	reg := &segment.Registry{}

	al := &Allocator{}
	_, err := al.Allocate(cat, reg, &segment.StackSpec{Bank: "SRAM9", Size: 0x100})
	assert.ErrorIs(err, bank.ErrBankMissing("SRAM9"))

	_, err = al.Allocate(cat, reg, &segment.StackSpec{Bank: "RAM", Size: 0x1001})
	var size *ErrStackSize
	assert.ErrorAs(err, &size)
}

func TestAllocate_Unsatisfiable(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "RAM", Origin: 0x20000000, Length: 0x20000},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "clockstate", Size: 64, Align: 8, Needs: bank.CAP_RETAINED},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.Nil(asn)
	var nobank *ErrNoBank
	if assert.ErrorAs(err, &nobank) {
		assert.Equal("clockstate", nobank.Segment)
		assert.Equal(bank.CAP_RETAINED, nobank.Needs)
	}
}

func TestAllocate_OutOfSpace(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "SRAM4", Origin: 0x38000000, Length: 64 * 1024, Caps: bank.CAP_DMA},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "first", Size: 64 * 1024, Align: 4, Needs: bank.CAP_DMA},
		segment.Segment{Name: "second", Size: 64 * 1024, Align: 4, Needs: bank.CAP_DMA},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.Nil(asn)
	var oos *ErrOutOfSpace
	if assert.ErrorAs(err, &oos) {
		assert.Equal("second", oos.Segment)
		assert.Equal([]Tried{{Bank: "SRAM4", Remaining: 0}}, oos.Tried)
	}
}

func TestAllocate_FullBankSkipped(t *testing.T) {
	assert := assert.New(t)

	// A full candidate is skipped, not an error, when a later bank
	// still has room.
	cat := doCatalog(t,
		bank.Bank{Name: "SRAM4", Origin: 0x38000000, Length: 0x100, Caps: bank.CAP_DMA},
		bank.Bank{Name: "AXISRAM", Origin: 0x24000000, Length: 0x80000, Caps: bank.CAP_DMA},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "small", Size: 0x100, Align: 4, Needs: bank.CAP_DMA},
		segment.Segment{Name: "large", Size: 0x200, Align: 4, Needs: bank.CAP_DMA},
	)

	al := &Allocator{}
	asn, err := al.Allocate(cat, reg, nil)
	assert.NoError(err)

	pl, _ := asn.Lookup("small")
	assert.Equal("SRAM4", pl.Bank)
	pl, _ = asn.Lookup("large")
	assert.Equal("AXISRAM", pl.Bank)
}

func TestAllocate_Deterministic(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "DTCM", Origin: 0x20000000, Length: 0x20000, Caps: bank.CAP_ZERO_WAIT},
		bank.Bank{Name: "AXISRAM", Origin: 0x24000000, Length: 0x80000, Caps: bank.CAP_DMA},
		bank.Bank{Name: "SRAM1", Origin: 0x30000000, Length: 0x20000, Caps: bank.CAP_DMA},
	)
	reg := doRegistry(t,
		segment.Segment{Name: "a", Size: 0x123, Align: 4, Needs: bank.CAP_DMA},
		segment.Segment{Name: "b", Size: 0x2000, Align: 64},
		segment.Segment{Name: "c", Size: 0x7, Align: 2, Needs: bank.CAP_DMA, NoLoad: true},
	)
	stack := &segment.StackSpec{Bank: "DTCM", Size: 0x1000}

	al := &Allocator{}
	first, err := al.Allocate(cat, reg, stack)
	assert.NoError(err)
	second, err := al.Allocate(cat, reg, stack)
	assert.NoError(err)

	assert.Equal(first.Placements, second.Placements)
	assert.Equal(first.Stack, second.Stack)
}

func TestAllocate_Monotonic(t *testing.T) {
	assert := assert.New(t)

	cat := doCatalog(t,
		bank.Bank{Name: "DTCM", Origin: 0x20000000, Length: 0x20000, Caps: bank.CAP_ZERO_WAIT},
		bank.Bank{Name: "AXISRAM", Origin: 0x24000000, Length: 0x80000, Caps: bank.CAP_DMA},
	)
	segs := []segment.Segment{
		{Name: "a", Size: 0x123, Align: 4, Needs: bank.CAP_DMA},
		{Name: "b", Size: 0x2000, Align: 64},
	}

	al := &Allocator{}
	before, err := al.Allocate(cat, doRegistry(t, segs...), nil)
	assert.NoError(err)

	segs = append(segs, segment.Segment{Name: "late", Size: 0x100, Align: 4})
	after, err := al.Allocate(cat, doRegistry(t, segs...), nil)
	assert.NoError(err)

	// Registering one more segment never moves the earlier ones.
	assert.Equal(before.Placements, after.Placements[:len(before.Placements)])
}
