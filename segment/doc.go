// Package segment declares the firmware segments that need placement.
//
// A Registry holds the named segments of one build in registration
// order, each with its required size, alignment, capability set, and
// load/no-load flag. The Parser reads the declaration file format used
// by firmware builds, with equates and compile-time $() expressions.
package segment
