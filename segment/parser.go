// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package segment

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/memplan/bank"
)

// Predefined system equates
var sysEquate = map[string]string{
	"KB": "1024",
	"MB": "1048576",
}

// Parser is a single pass reader for segment declaration files.
//
// The format is line based: ';' starts a comment, '.equ NAME VALUE'
// defines an equate, '$(...)' evaluates a compile-time expression over
// the integer equates, 'segment NAME SIZE ALIGN [flags...]' registers a
// segment, and 'stack BANK SIZE' reserves the stack region.
type Parser struct {
	Verbose bool              // If set, verbosely logs the parser actions.
	Equate  map[string]string // Map of equates.

	predefine map[string]string // Predefines
}

// Predefine defines a new equate or redefines an existing equate.
func (par *Parser) Predefine(equ string, value string) {
	if par.predefine == nil {
		par.predefine = map[string]string{equ: value}
	} else {
		par.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (par *Parser) valueOf(word string) (value uint32, err error) {
	v64, err := strconv.ParseUint(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}
	value = uint32(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (par *Parser) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range par.Equate {
		var value32 uint32
		value32, err = par.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be bank or
			// capability names.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xffffffff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine splits a declaration line into words, after expanding
// equates and $() expressions.
func (par *Parser) parseLine(line string) (words []string, err error) {
	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := par.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	all_words := strings.Split(line, " ")
	for _, single := range all_words {
		if len(single) > 0 {
			words = append(words, single)
		}
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := par.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		par.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := par.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// parseWords evaluates the words of one declaration.
func (par *Parser) parseWords(words []string, reg *Registry, stack **StackSpec) (err error) {
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case "segment":
		if len(words) < 4 {
			err = ErrSegmentSyntax
			return
		}
		seg := Segment{Name: words[1]}
		seg.Size, err = par.valueOf(words[2])
		if err != nil {
			return
		}
		seg.Align, err = par.valueOf(words[3])
		if err != nil {
			return
		}
		for _, flag := range words[4:] {
			if flag == "noload" {
				seg.NoLoad = true
				continue
			}
			var cap bank.Capability
			cap, err = bank.ParseCapability(flag)
			if err != nil {
				return
			}
			seg.Needs |= cap
		}
		err = reg.Add(seg)
	case "stack":
		if len(words) != 3 {
			err = ErrStackSyntax
			return
		}
		if *stack != nil {
			err = ErrStackDuplicate
			return
		}
		spec := &StackSpec{Bank: words[1]}
		spec.Size, err = par.valueOf(words[2])
		if err != nil {
			return
		}
		*stack = spec
	default:
		err = ErrDirectiveInvalid(words[0])
	}

	return
}

// Parse reads a declaration stream into a registry and an optional
// stack reservation. Declaration order becomes registration order.
func (par *Parser) Parse(input io.Reader) (reg *Registry, stack *StackSpec, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	par.Equate = maps.Clone(sysEquate)
	for attr, val := range par.predefine {
		par.Equate[attr] = val
	}

	reg = &Registry{}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if par.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = par.parseLine(line)
		if err != nil {
			return
		}

		err = par.parseWords(words, reg, &stack)
		if err != nil {
			return
		}
	}
	err = scanner.Err()

	return
}
