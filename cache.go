package crprintf

import (
	"io"
	"os"
	"sync"
)

// ProgramCache is the Go analogue of the C macros' per-call-site static
// cached *program_t: since Go has no per-call-site statics, a ProgramCache
// keys its cache by the format string itself, compiling on first use and
// returning the same *Program thereafter. A zero-value ProgramCache is
// ready to use.
type ProgramCache struct {
	m sync.Map // string -> *Program
}

// Cached returns the Program compiled from format, compiling and caching it
// on first use. Concurrent calls with the same format string may race to
// compile, but since Compile is pure and a Program is immutable once built,
// the loser's Program is simply discarded in favor of whichever sync.Map
// entry won the race - wasted work, not a correctness hazard.
func (c *ProgramCache) Cached(format string) *Program {
	if v, ok := c.m.Load(format); ok {
		return v.(*Program)
	}
	actual, _ := c.m.LoadOrStore(format, Compile(format))
	return actual.(*Program)
}

// defaultCache backs the package-level Sprintf/Fprintf/Printf convenience
// functions below.
var defaultCache ProgramCache

// Sprintf compiles format (using the package-level cache) and renders it
// against args, returning the result as a string.
func Sprintf(format string, args ...any) string {
	return defaultCache.Cached(format).Sprint(args...)
}

// Fprintf compiles format (using the package-level cache) and writes the
// rendered result to w.
func Fprintf(w io.Writer, format string, args ...any) (int, error) {
	return defaultCache.Cached(format).Fprint(w, args...)
}

// Printf compiles format (using the package-level cache) and writes the
// rendered result to os.Stdout.
func Printf(format string, args ...any) (int, error) {
	return Fprintf(os.Stdout, format, args...)
}
