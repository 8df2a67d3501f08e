// Package bank describes the physical memory banks of a hardware target.
//
// A Catalog is the immutable table of banks available on one chip: each
// Bank carries an address range and the set of hardware capabilities it
// offers (DMA reachability, retention across warm reset, zero-wait-state
// access, executability). Catalogs are built once per target, either
// directly with NewCatalog or from a Pkl board description file, and are
// never mutated afterwards.
package bank
