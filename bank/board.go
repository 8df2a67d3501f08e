// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package bank

import (
	"context"

	"github.com/ezrec/memplan/config"
)

// FromConfig converts a Pkl board description into a catalog.
func FromConfig(board *config.BoardConfig) (cat *Catalog, err error) {
	banks := make([]Bank, 0, len(board.Banks))
	for _, mb := range board.Banks {
		var caps Capability
		for _, word := range mb.Capabilities {
			var cap Capability
			cap, err = ParseCapability(word)
			if err != nil {
				return
			}
			caps |= cap
		}
		banks = append(banks, Bank{
			Name:   mb.Name,
			Origin: mb.Origin,
			Length: mb.Length,
			Caps:   caps,
		})
	}

	return NewCatalog(banks...)
}

// LoadCatalog evaluates a Pkl board description file into a catalog.
func LoadCatalog(ctx context.Context, path string) (cat *Catalog, err error) {
	board, err := config.LoadFromPath(ctx, path)
	if err != nil {
		return
	}
	return FromConfig(board)
}
