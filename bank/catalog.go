// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package bank

import (
	"iter"
	"math"
)

// Catalog is the immutable table of memory banks of one hardware target.
// Declaration order is preserved and used for deterministic tie-breaking
// during allocation.
type Catalog struct {
	banks  []Bank
	byName map[string]int
}

// NewCatalog builds a catalog from banks in declaration order.
// Zero-length banks, wrapping address ranges, duplicate names, and
// overlapping address ranges are all rejected.
func NewCatalog(banks ...Bank) (cat *Catalog, err error) {
	cat = &Catalog{
		banks:  banks,
		byName: make(map[string]int, len(banks)),
	}

	for n := range banks {
		bk := &banks[n]
		if bk.Length == 0 {
			err = ErrBankEmpty(bk.Name)
			return
		}
		if uint64(bk.Origin)+uint64(bk.Length) > math.MaxUint32 {
			err = ErrBankWraps(bk.Name)
			return
		}
		_, ok := cat.byName[bk.Name]
		if ok {
			err = ErrBankDuplicate(bk.Name)
			return
		}
		cat.byName[bk.Name] = n

		for p := range n {
			if bk.overlaps(&banks[p]) {
				err = &ErrBankOverlap{A: banks[p].Name, B: bk.Name}
				return
			}
		}
	}

	return
}

// Lookup finds a bank by name.
func (cat *Catalog) Lookup(name string) (bk *Bank, err error) {
	n, ok := cat.byName[name]
	if !ok {
		err = ErrBankMissing(name)
		return
	}
	bk = &cat.banks[n]
	return
}

// All iterates the banks in declaration order.
func (cat *Catalog) All() iter.Seq[*Bank] {
	return func(yield func(bk *Bank) bool) {
		for n := range cat.banks {
			if !yield(&cat.banks[n]) {
				return
			}
		}
	}
}

// Len returns the number of banks in the catalog.
func (cat *Catalog) Len() int {
	return len(cat.banks)
}
