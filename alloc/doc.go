// Package alloc assigns firmware segments to memory banks.
//
// The allocator is first-fit and deterministic: segments are placed in
// registration order, banks are tried in catalog declaration order, and
// space within a bank is handed out by a bump cursor rounded up to each
// segment's alignment. Determinism is load-bearing — the same catalog
// and registry must always produce a byte-identical assignment so that
// firmware builds are reproducible.
//
// The allocator runs once per build, single-threaded, and never emits a
// partial layout: any unsatisfiable or oversized segment aborts the
// whole allocation.
package alloc
