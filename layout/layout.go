// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package layout

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/memplan/alloc"
	"github.com/ezrec/memplan/bank"
	"github.com/ezrec/memplan/internal"
)

// Layout is the read-only rendering and query surface over one
// completed assignment.
type Layout struct {
	cat *bank.Catalog
	asn *alloc.Assignment
}

// New wraps a catalog and the assignment computed from it.
func New(cat *bank.Catalog, asn *alloc.Assignment) (lay *Layout) {
	return &Layout{cat: cat, asn: asn}
}

// Address returns the hosting bank and absolute address of a segment.
func (lay *Layout) Address(name string) (bankName string, addr uint32, err error) {
	pl, ok := lay.asn.Lookup(name)
	if !ok {
		err = ErrSymbolMissing(name)
		return
	}
	bankName = pl.Bank
	addr = pl.Address(lay.cat)
	return
}

// NoLoad reports whether a segment is excluded from the flashed image.
// Startup code uses this to decide between copy-initialization and
// explicit zeroing.
func (lay *Layout) NoLoad(name string) (noload bool, err error) {
	pl, ok := lay.asn.Lookup(name)
	if !ok {
		err = ErrSymbolMissing(name)
		return
	}
	noload = pl.Segment.NoLoad
	return
}

// StackStart returns the pinned stack start address, if a stack region
// was reserved.
func (lay *Layout) StackStart() (addr uint32, ok bool) {
	if lay.asn.Stack == nil {
		return
	}
	return lay.asn.Stack.Start, true
}

// Reserved returns the number of bytes consumed in a bank by ordinary
// segments (the stack reservation is reported separately).
func (lay *Layout) Reserved(bankName string) (bytes uint32) {
	for n := range lay.asn.Placements {
		pl := &lay.asn.Placements[n]
		if pl.Bank != bankName {
			continue
		}
		end := pl.Offset + pl.Segment.Size
		if end > bytes {
			bytes = end
		}
	}
	return
}

// bankSections iterates the placements of one bank, in offset order.
// Bump allocation keeps registration order and offset order identical
// within a bank.
func (lay *Layout) bankSections(bankName string) iter.Seq[*alloc.Placement] {
	return func(yield func(pl *alloc.Placement) bool) {
		for n := range lay.asn.Placements {
			pl := &lay.asn.Placements[n]
			if pl.Bank != bankName {
				continue
			}
			if !yield(pl) {
				return
			}
		}
	}
}

// Sections iterates every placement, grouped by bank in catalog
// declaration order.
func (lay *Layout) Sections() iter.Seq[*alloc.Placement] {
	var seqs []iter.Seq[*alloc.Placement]
	for bk := range lay.cat.All() {
		seqs = append(seqs, lay.bankSections(bk.Name))
	}
	return internal.IterSeqConcat(seqs...)
}

// Symbols iterates every (symbol, absolute address) pair the startup
// code may query: one per segment, plus _stack_start when reserved.
func (lay *Layout) Symbols() iter.Seq2[string, uint32] {
	segments := func(yield func(name string, addr uint32) bool) {
		for pl := range lay.Sections() {
			if !yield(pl.Segment.Name, pl.Address(lay.cat)) {
				return
			}
		}
	}
	stack := func(yield func(name string, addr uint32) bool) {
		if lay.asn.Stack != nil {
			yield("_stack_start", lay.asn.Stack.Start)
		}
	}
	return internal.IterSeq2Concat(segments, stack)
}

// lengthStr renders a byte count the way linker scripts prefer.
func lengthStr(bytes uint32) string {
	if bytes != 0 && bytes%1024 == 0 {
		return fmt.Sprintf("%vK", bytes/1024)
	}
	return fmt.Sprintf("%v", bytes)
}

// String renders the GNU ld style layout artifact: a MEMORY block, one
// output section per placement with NOLOAD markers, a per-bank summary
// with every (segment, offset, length), and the pinned stack symbol.
func (lay *Layout) String() string {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "MEMORY\n{\n")
	for bk := range lay.cat.All() {
		fmt.Fprintf(sb, "    %v : ORIGIN = %#08x, LENGTH = %v\n",
			bk.Name, bk.Origin, lengthStr(bk.Length))
	}
	fmt.Fprintf(sb, "}\n\nSECTIONS\n{\n")
	for pl := range lay.Sections() {
		section := fmt.Sprintf(".%v.%v", strings.ToLower(pl.Bank), pl.Segment.Name)
		noload := ""
		if pl.Segment.NoLoad {
			noload = " (NOLOAD)"
		}
		fmt.Fprintf(sb, "    %v%v : ALIGN(%v)\n    {\n        *(%v);\n    } > %v\n",
			section, noload, pl.Segment.Align, section, pl.Bank)
	}
	fmt.Fprintf(sb, "}\n")

	for bk := range lay.cat.All() {
		reserved := lay.Reserved(bk.Name)
		stacked := uint32(0)
		if lay.asn.Stack != nil && lay.asn.Stack.Bank == bk.Name {
			stacked = lay.asn.Stack.Size
		}
		fmt.Fprintf(sb, "\n/* %v: %v of %v bytes reserved", bk.Name, reserved, bk.Length)
		if stacked != 0 {
			fmt.Fprintf(sb, ", %v for the stack", stacked)
		}
		for pl := range lay.bankSections(bk.Name) {
			fmt.Fprintf(sb, "\n * %v: offset %#x, length %v",
				pl.Segment.Name, pl.Offset, pl.Segment.Size)
		}
		fmt.Fprintf(sb, " */")
	}
	fmt.Fprintf(sb, "\n")

	if lay.asn.Stack != nil {
		fmt.Fprintf(sb, "\n_stack_start = %#08x;\n", lay.asn.Stack.Start)
	}

	return sb.String()
}

var _ io.WriterTo = &Layout{}

// WriteTo writes the rendered artifact to w.
func (lay *Layout) WriteTo(w io.Writer) (n int64, err error) {
	nw, err := io.WriteString(w, lay.String())
	n = int64(nw)
	return
}
