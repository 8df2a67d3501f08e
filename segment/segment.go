// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package segment

import (
	"iter"
	"math/bits"

	"github.com/ezrec/memplan/bank"
)

// Segment is a named unit of firmware state or code that needs a home
// in some bank.
type Segment struct {
	Name   string          // Segment identity, unique within a build.
	Size   uint32          // Required size in bytes. May be zero.
	Align  uint32          // Required alignment in bytes, a power of two.
	Needs  bank.Capability // Capabilities the chosen bank must offer.
	NoLoad bool            // If set, contents are not loaded from the image.
}

// StackSpec reserves the distinguished stack region at the top of a
// named bank. The stack never participates in ordinary allocation.
type StackSpec struct {
	Bank string // Bank whose top hosts the stack.
	Size uint32 // Bytes reserved below the top of the bank.
}

// Registry is the ordered set of segments of one firmware build.
// Registration order is preserved; the allocator depends on it for
// reproducible layouts.
type Registry struct {
	segments []Segment
	byName   map[string]int
}

// Add registers a segment. Duplicate names and non-power-of-two
// alignments are rejected. No validation against any bank catalog
// happens here.
func (reg *Registry) Add(seg Segment) (err error) {
	if seg.Align == 0 || bits.OnesCount32(seg.Align) != 1 {
		err = &ErrAlignInvalid{Segment: seg.Name, Align: seg.Align}
		return
	}

	if reg.byName == nil {
		reg.byName = make(map[string]int, 16)
	}
	_, ok := reg.byName[seg.Name]
	if ok {
		err = ErrSegmentDuplicate(seg.Name)
		return
	}

	reg.byName[seg.Name] = len(reg.segments)
	reg.segments = append(reg.segments, seg)

	return
}

// All iterates the segments in registration order.
func (reg *Registry) All() iter.Seq[Segment] {
	return func(yield func(seg Segment) bool) {
		for _, seg := range reg.segments {
			if !yield(seg) {
				return
			}
		}
	}
}

// Len returns the number of registered segments.
func (reg *Registry) Len() int {
	return len(reg.segments)
}
