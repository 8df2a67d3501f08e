package bank

import (
	"github.com/ezrec/memplan/translate"
)

var f = translate.From

type ErrBankEmpty string

func (err ErrBankEmpty) Error() string {
	return f("bank %v has zero length", string(err))
}

type ErrBankWraps string

func (err ErrBankWraps) Error() string {
	return f("bank %v wraps the address space", string(err))
}

type ErrBankDuplicate string

func (err ErrBankDuplicate) Error() string {
	return f("bank %v declared twice", string(err))
}

type ErrBankMissing string

func (err ErrBankMissing) Error() string {
	return f("bank %v is not in the catalog", string(err))
}

type ErrBankOverlap struct {
	A string
	B string
}

func (err *ErrBankOverlap) Error() string {
	return f("banks %v and %v overlap", err.A, err.B)
}

type ErrCapabilityInvalid string

func (err ErrCapabilityInvalid) Error() string {
	return f("'%v' is not a capability", string(err))
}
