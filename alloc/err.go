package alloc

import (
	"fmt"
	"strings"

	"github.com/ezrec/memplan/bank"
	"github.com/ezrec/memplan/translate"
)

var f = translate.From

// ErrNoBank reports a segment whose required capability set no bank in
// the catalog offers.
type ErrNoBank struct {
	Segment string
	Needs   bank.Capability
}

func (err *ErrNoBank) Error() string {
	return f("segment %v: no bank offers %v", err.Segment, err.Needs)
}

// Tried records one candidate bank that had no room.
type Tried struct {
	Bank      string
	Remaining uint32
}

// ErrOutOfSpace reports a segment for which candidate banks exist but
// none has enough aligned room left.
type ErrOutOfSpace struct {
	Segment string
	Size    uint32
	Tried   []Tried
}

func (err *ErrOutOfSpace) Error() string {
	var tried []string
	for _, t := range err.Tried {
		tried = append(tried, fmt.Sprintf("%v:%v", t.Bank, t.Remaining))
	}
	return f("segment %v: %v bytes do not fit (tried %v)",
		err.Segment, err.Size, strings.Join(tried, " "))
}

// ErrStackSize reports a stack reservation larger than its bank.
type ErrStackSize struct {
	Bank   string
	Size   uint32
	Length uint32
}

func (err *ErrStackSize) Error() string {
	return f("stack: %v bytes do not fit in bank %v of %v bytes",
		err.Size, err.Bank, err.Length)
}
