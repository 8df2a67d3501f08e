// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package layout

import (
	"io"

	"github.com/marcinbor85/gohex"
)

// covered returns how many bytes from addr onward fall inside a loaded
// placement. Zero means addr is outside every loaded segment.
func (lay *Layout) covered(addr uint32) (bytes uint32) {
	for n := range lay.asn.Placements {
		pl := &lay.asn.Placements[n]
		if pl.Segment.NoLoad {
			continue
		}
		start := pl.Address(lay.cat)
		end := start + pl.Segment.Size
		if addr >= start && addr < end {
			return end - addr
		}
	}
	return
}

// CheckImage parses an Intel HEX firmware image and verifies that every
// data record lands inside a loaded segment of the layout. Image data
// aimed at a no-load segment or at unreserved memory is a build defect:
// it would be wiped, never flashed, or silently corrupt a neighbor.
func (lay *Layout) CheckImage(r io.Reader) (err error) {
	mem := gohex.NewMemory()
	if err = mem.ParseIntelHex(r); err != nil {
		return
	}

	for _, data := range mem.GetDataSegments() {
		addr := data.Address
		left := uint32(len(data.Data))
		for left > 0 {
			bytes := lay.covered(addr)
			if bytes == 0 {
				err = &ErrImageRange{Address: addr, Length: left}
				return
			}
			if bytes > left {
				bytes = left
			}
			addr += bytes
			left -= bytes
		}
	}

	return
}
