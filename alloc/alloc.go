// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package alloc

import (
	"log"

	"github.com/ezrec/memplan/bank"
	"github.com/ezrec/memplan/segment"
)

// Placement is one segment's reserved extent within its bank.
type Placement struct {
	Segment segment.Segment // The placed segment.
	Bank    string          // Name of the hosting bank.
	Offset  uint32          // Offset of the segment within the bank.
}

// Address returns the absolute address of the placement.
func (pl *Placement) Address(cat *bank.Catalog) (addr uint32) {
	bk, err := cat.Lookup(pl.Bank)
	if err != nil {
		// Placements are only ever built from the catalog they
		// are queried against.
		log.Fatalf("placement %v in unknown bank %v", pl.Segment.Name, pl.Bank)
	}
	return bk.Origin + pl.Offset
}

// StackPlacement pins the stack region to the top of its bank.
type StackPlacement struct {
	Bank  string // Name of the hosting bank.
	Start uint32 // Absolute address of the stack start (top of bank).
	Size  uint32 // Bytes reserved below Start.
}

// Assignment is the validated mapping of every segment to a bank
// offset, in registration order.
type Assignment struct {
	Placements []Placement
	Stack      *StackPlacement

	byName map[string]int
}

// Lookup finds a placement by segment name.
func (asn *Assignment) Lookup(name string) (pl *Placement, ok bool) {
	n, found := asn.byName[name]
	if !found {
		return
	}
	return &asn.Placements[n], true
}

// alignUp rounds offset up to the next multiple of align, in 64 bits
// so a cursor near the top of a bank cannot wrap to a low offset.
// align must be a power of two; the registry enforces that.
func alignUp(offset uint32, align uint32) uint64 {
	return (uint64(offset) + uint64(align) - 1) &^ (uint64(align) - 1)
}

// Allocator assigns segments to banks, first-fit. It holds no state
// across invocations of Allocate.
type Allocator struct {
	Verbose bool // If set, verbosely logs placement decisions.
}

// Allocate places every registered segment into a catalog bank, in
// registration order, choosing for each segment the first bank in
// declaration order that offers the required capabilities and has
// enough aligned room left. The optional stack reservation is taken
// off the top of its bank before any ordinary placement.
//
// Allocation either fully succeeds or fails; there is no partial
// layout.
func (al *Allocator) Allocate(cat *bank.Catalog, reg *segment.Registry, stack *segment.StackSpec) (asn *Assignment, err error) {
	// Per-bank bump cursor and usable limit.
	cursor := make(map[string]uint32, cat.Len())
	limit := make(map[string]uint32, cat.Len())
	for bk := range cat.All() {
		limit[bk.Name] = bk.Length
	}

	result := &Assignment{
		byName: make(map[string]int, reg.Len()),
	}

	if stack != nil {
		var bk *bank.Bank
		bk, err = cat.Lookup(stack.Bank)
		if err != nil {
			return
		}
		if stack.Size > bk.Length {
			err = &ErrStackSize{Bank: bk.Name, Size: stack.Size, Length: bk.Length}
			return
		}
		limit[bk.Name] = bk.Length - stack.Size
		result.Stack = &StackPlacement{
			Bank:  bk.Name,
			Start: bk.Top(),
			Size:  stack.Size,
		}
		if al.Verbose {
			log.Printf("stack: %v bytes below %#08x (%v)\n", stack.Size, bk.Top(), bk.Name)
		}
	}

	for seg := range reg.All() {
		var tried []Tried
		candidates := 0

		for bk := range cat.All() {
			if !bk.Caps.HasAll(seg.Needs) {
				continue
			}
			candidates += 1

			offset64 := alignUp(cursor[bk.Name], seg.Align)
			end := offset64 + uint64(seg.Size)
			if end > uint64(limit[bk.Name]) {
				remaining := uint32(0)
				if cursor[bk.Name] < limit[bk.Name] {
					remaining = limit[bk.Name] - cursor[bk.Name]
				}
				tried = append(tried, Tried{Bank: bk.Name, Remaining: remaining})
				continue
			}

			// end <= limit <= bank length here, so the
			// narrowing is exact.
			offset := uint32(offset64)

			result.byName[seg.Name] = len(result.Placements)
			result.Placements = append(result.Placements, Placement{
				Segment: seg,
				Bank:    bk.Name,
				Offset:  offset,
			})
			cursor[bk.Name] = offset + seg.Size

			if al.Verbose {
				log.Printf("segment %v: %v bytes at %#08x (%v+%#x)\n",
					seg.Name, seg.Size, bk.Origin+offset, bk.Name, offset)
			}

			tried = nil
			break
		}

		if tried != nil || candidates == 0 {
			if candidates == 0 {
				err = &ErrNoBank{Segment: seg.Name, Needs: seg.Needs}
			} else {
				err = &ErrOutOfSpace{Segment: seg.Name, Size: seg.Size, Tried: tried}
			}
			return
		}
	}

	asn = result

	return
}
