// Command crprintfdemo exercises the crprintf pipeline end to end: compile
// a markup format string once, then run it against the given arguments.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mackabu-dev/crprintf"
)

func main() {
	var (
		noColor = flag.Bool("no-color", false, "disable SGR escape output")
		disasm  = flag.Bool("disasm", false, "print the compiled bytecode disassembly to stderr")
		hexdump = flag.Bool("hexdump", false, "print the compiled bytecode hex dump to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] format [args...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *noColor {
		crprintf.SetColorEnabled(false)
	}
	crprintf.SetDebugDisasm(*disasm)
	crprintf.SetDebugHex(*hexdump)

	format := flag.Arg(0)
	args := make([]any, 0, flag.NArg()-1)
	for _, a := range flag.Args()[1:] {
		args = append(args, a)
	}

	prog := crprintf.Compile(format)
	if _, err := prog.Fprint(os.Stdout, args...); err != nil {
		fmt.Fprintln(os.Stderr, "crprintfdemo:", err)
		os.Exit(1)
	}
}
