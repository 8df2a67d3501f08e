package layout

import (
	"github.com/ezrec/memplan/translate"
)

var f = translate.From

type ErrSymbolMissing string

func (err ErrSymbolMissing) Error() string {
	return f("segment %v is not in the layout", string(err))
}

// ErrImageRange reports image data outside every loaded segment.
type ErrImageRange struct {
	Address uint32
	Length  uint32
}

func (err *ErrImageRange) Error() string {
	return f("image data at %#08x (%v bytes) is outside every loaded segment",
		err.Address, err.Length)
}
