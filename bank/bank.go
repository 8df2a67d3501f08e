// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package bank

import (
	"strings"
)

// Capability is a set of hardware attributes a memory bank offers.
type Capability uint32

const (
	CAP_DMA       Capability = 1 << iota // Reachable by a DMA engine.
	CAP_RETAINED                         // Contents survive a warm reset.
	CAP_ZERO_WAIT                        // Zero-wait-state access from the core.
	CAP_EXECUTE                          // Code may execute from the bank.
)

// capNames is the canonical name of each capability bit, in bit order.
var capNames = []struct {
	cap  Capability
	name string
}{
	{CAP_DMA, "dma"},
	{CAP_RETAINED, "retained"},
	{CAP_ZERO_WAIT, "zerowait"},
	{CAP_EXECUTE, "execute"},
}

// String returns the '+' joined names of the set capabilities, or "none".
func (caps Capability) String() (str string) {
	var names []string
	for _, cn := range capNames {
		if caps&cn.cap != 0 {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// HasAll reports whether every capability in need is present in caps.
func (caps Capability) HasAll(need Capability) bool {
	return caps&need == need
}

// ParseCapability returns the capability named by word.
func ParseCapability(word string) (cap Capability, err error) {
	for _, cn := range capNames {
		if cn.name == word {
			cap = cn.cap
			return
		}
	}
	err = ErrCapabilityInvalid(word)
	return
}

// Bank is one physically distinct, contiguous memory region.
type Bank struct {
	Name   string     // Bank identity, unique within a catalog.
	Origin uint32     // First address of the bank.
	Length uint32     // Size of the bank in bytes.
	Caps   Capability // Hardware attributes the bank offers.
}

// Top returns the first address past the end of the bank.
func (bk *Bank) Top() uint32 {
	return bk.Origin + bk.Length
}

// overlaps reports whether two banks' address ranges intersect.
func (bk *Bank) overlaps(other *Bank) bool {
	return bk.Origin < other.Top() && other.Origin < bk.Top()
}
