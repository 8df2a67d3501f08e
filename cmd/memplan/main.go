// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ezrec/memplan/alloc"
	"github.com/ezrec/memplan/bank"
	"github.com/ezrec/memplan/layout"
	"github.com/ezrec/memplan/segment"
)

func main() {
	var board string
	var segments string
	var output string
	var query string
	var image string
	var verbose bool

	parser := &segment.Parser{}

	flag.StringVar(&board, "b", "", "Board description (.pkl file)")
	flag.StringVar(&segments, "s", "", "Segment declarations (.seg file)")
	flag.StringVar(&output, "o", "-", "Layout artifact output")
	flag.StringVar(&query, "q", "", "Print the address of a single segment")
	flag.StringVar(&image, "i", "", "Intel HEX image to check against the layout")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Func("D", "Predefine an equate (NAME=VALUE)", func(arg string) (err error) {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected NAME=VALUE, got '%v'", arg)
		}
		parser.Predefine(name, value)
		return
	})

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(board) == 0 || len(segments) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cat, err := bank.LoadCatalog(context.Background(), board)
	if err != nil {
		log.Fatalf("%v: %v", board, err)
	}

	inf, err := os.Open(segments)
	if err != nil {
		log.Fatalf("%v: %v", segments, err)
	}
	defer inf.Close()

	parser.Verbose = verbose
	reg, stack, err := parser.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", segments, err)
	}

	al := &alloc.Allocator{Verbose: verbose}
	asn, err := al.Allocate(cat, reg, stack)
	if err != nil {
		log.Fatalf("%v: %v", segments, err)
	}

	lay := layout.New(cat, asn)

	if len(image) != 0 {
		imf, err := os.Open(image)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
		defer imf.Close()
		if err = lay.CheckImage(imf); err != nil {
			log.Fatalf("%v: %v", image, err)
		}
	}

	if len(query) != 0 {
		bankName, addr, err := lay.Address(query)
		if err != nil {
			log.Fatalf("%v: %v", query, err)
		}
		fmt.Printf("%v %#08x\n", bankName, addr)
		return
	}

	ouf := os.Stdout
	if output != "-" {
		ouf, err = os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
	}

	if _, err = lay.WriteTo(ouf); err != nil {
		log.Fatalf("%v: %v", output, err)
	}
}
