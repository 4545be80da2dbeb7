// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/ezrec/emumem/machine"
	"github.com/ezrec/emumem/mapscript"
	"github.com/ezrec/emumem/memory"
	"github.com/ezrec/emumem/translate"
)

func boot(filename string, verbose bool) (mach *machine.Machine, err error) {
	logger := memory.NewLogger(verbose)

	script, err := mapscript.Load(filename, nil, mapscript.Options{Logger: logger})
	if err != nil {
		return
	}

	mach, err = machine.New(logger, script, machine.Options{Verbose: verbose})
	return
}

// check boots every script, reporting each result. The error is that of
// the first script to fail.
func check(filenames []string, verbose bool) (err error) {
	errs := make([]error, len(filenames))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for n, filename := range filenames {
		g.Go(func() error {
			_, errs[n] = boot(filename, verbose)
			if errs[n] != nil {
				return &ErrArgument{Field: "script", Text: filename, Err: errs[n]}
			}
			return nil
		})
	}
	err = g.Wait()

	for n, filename := range filenames {
		if errs[n] != nil {
			fmt.Fprintf(os.Stderr, "%v: %v\n", filename, errs[n])
			continue
		}
		fmt.Printf("%v: ok\n", filename)
	}

	return
}

func columns() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}

	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func main() {
	var verbose bool
	var dump bool
	var checkOnly bool
	var lang string
	var peeks listFlag
	var pokes listFlag
	var banks listFlag

	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&dump, "dump", false, "Dump the read and write maps of every space")
	flag.BoolVar(&checkOnly, "check", false, "Boot every script argument, and report success")
	flag.StringVar(&lang, "lang", "", "Message language, overriding the locale")
	flag.Var(&peeks, "peek", "Read device:space:address[:width] (repeatable)")
	flag.Var(&pokes, "poke", "Write device:space:address=value[:width] (repeatable)")
	flag.Var(&banks, "bank", "Switch bank [device:space:]tag=entry (repeatable)")

	flag.Parse()

	if len(lang) != 0 {
		err := translate.SetLanguage(lang)
		if err != nil {
			log.Fatalf("%v: -lang %v: %v", os.Args[0], lang, err)
		}
	}

	if checkOnly {
		if flag.NArg() == 0 {
			log.Fatalf("%v: -check needs at least one script", os.Args[0])
		}
		if check(flag.Args(), verbose) != nil {
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one script, got %v", os.Args[0], flag.Args())
	}

	filename := flag.Arg(0)
	mach, err := boot(filename, verbose)
	if err != nil {
		log.Fatalf("%v: %v", filename, err)
	}

	for _, text := range banks {
		bs, err := parseBank(text)
		if err != nil {
			log.Fatalf("-bank %v", err)
		}
		if bs.device == "" {
			err = mach.SwitchBank(bs.tag, bs.entry)
		} else {
			var space memory.AddressSpace
			space, err = mach.Space(bs.device, bs.space)
			if err == nil {
				err = mach.SwitchSpaceBank(space, bs.tag, bs.entry)
			}
		}
		if err != nil {
			log.Fatalf("-bank %v: %v", text, err)
		}
	}

	for _, text := range pokes {
		acc, err := parseAccess(text, true)
		if err != nil {
			log.Fatalf("-poke %v", err)
		}
		space, err := mach.Space(acc.device, acc.space)
		if err != nil {
			log.Fatalf("-poke %v: %v", text, err)
		}
		if acc.width == 0 {
			acc.width = space.DataWidth()
		}
		err = mach.Poke(space, acc.address, acc.value, acc.width)
		if err != nil {
			log.Fatalf("-poke %v: %v", text, err)
		}
	}

	for _, text := range peeks {
		acc, err := parseAccess(text, false)
		if err != nil {
			log.Fatalf("-peek %v", err)
		}
		space, err := mach.Space(acc.device, acc.space)
		if err != nil {
			log.Fatalf("-peek %v: %v", text, err)
		}
		if acc.width == 0 {
			acc.width = space.DataWidth()
		}
		value, err := mach.Peek(space, acc.address, acc.width)
		if err != nil {
			log.Fatalf("-peek %v: %v", text, err)
		}
		fmt.Printf("%s:%s:%s = %0*X\n", acc.device, space.Name(), space.Config().FormatAddr(acc.address), acc.width/4, value)
	}

	if dump {
		err = mach.Dump(os.Stdout, columns())
		if err != nil {
			log.Fatalf("%v: %v", filename, err)
		}
	}
}
