package segment

import (
	"errors"

	"github.com/ezrec/memplan/translate"
)

var f = translate.From

var (
	// Declaration errors
	ErrSegmentSyntax  = errors.New(f("segment NAME SIZE ALIGN [flags] syntax"))
	ErrStackSyntax    = errors.New(f("stack BANK SIZE syntax"))
	ErrStackDuplicate = errors.New(f("stack declared twice"))

	// Equate errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
)

type ErrSegmentDuplicate string

func (err ErrSegmentDuplicate) Error() string {
	return f("segment %v declared twice", string(err))
}

type ErrAlignInvalid struct {
	Segment string
	Align   uint32
}

func (err *ErrAlignInvalid) Error() string {
	return f("segment %v alignment %v is not a power of two", err.Segment, err.Align)
}

type ErrDirectiveInvalid string

func (err ErrDirectiveInvalid) Error() string {
	return f("'%v' is not a declaration", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
