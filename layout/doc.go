// Package layout renders a completed assignment for the toolchain and
// answers address queries for firmware startup code.
//
// Rendering is pure: given a valid assignment it always produces the
// same artifact and never fails. The artifact is a GNU ld style script
// fragment with a MEMORY block, one output section per segment (NOLOAD
// where the segment is excluded from the image), a per-bank summary of
// every segment's offset and length, and the pinned _stack_start
// symbol.
package layout
