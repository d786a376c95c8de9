package crprintf

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/xyproto/env/v2"
)

// Process-global configuration: these toggles are intended to be set once
// at startup and read during subsequent compilations/runs. No internal
// locking beyond the atomics themselves is provided - a concurrent caller
// must establish its own happens-before ordering around any of the Set*
// functions below, exactly as the variable table requires around SetVar.
var (
	colorEnabled atomic.Bool
	debugDisasm  atomic.Bool
	debugHexdump atomic.Bool
	debugWriter  atomic.Pointer[io.Writer]
)

func init() {
	color := stdoutIsTerminal()
	if _, set := os.LookupEnv("CRPRINTF_NO_COLOR"); set {
		color = !env.Bool("CRPRINTF_NO_COLOR")
	}
	colorEnabled.Store(color)
	debugDisasm.Store(env.Bool("CRPRINTF_DEBUG"))
	debugHexdump.Store(env.Bool("CRPRINTF_DEBUG_HEX"))
	var w io.Writer = os.Stderr
	debugWriter.Store(&w)
}

// SetColorEnabled toggles whether style opcodes emit SGR escape sequences.
// Disabled, the VM still runs padding, newline and literal opcodes exactly
// as normal - only the escape bytes themselves are suppressed. Overrides
// whatever CRPRINTF_NO_COLOR was read as at process start.
func SetColorEnabled(enable bool) { colorEnabled.Store(enable) }

// ColorEnabled reports the current color toggle.
func ColorEnabled() bool { return colorEnabled.Load() }

// SetDebugDisasm toggles disassembling every newly compiled Program to the
// debug writer (see SetDebugWriter) as a side effect of Compile.
func SetDebugDisasm(enable bool) { debugDisasm.Store(enable) }

// DebugDisasm reports the current disassembly-on-compile toggle.
func DebugDisasm() bool { return debugDisasm.Load() }

// SetDebugHex toggles hex-dumping every newly compiled Program's
// instruction stream and literal pool to the debug writer, alongside
// SetDebugDisasm.
func SetDebugHex(enable bool) { debugHexdump.Store(enable) }

// DebugHex reports the current hexdump-on-compile toggle.
func DebugHex() bool { return debugHexdump.Load() }

// SetDebugWriter redirects where DebugDisasm/DebugHex output goes (stderr
// by default).
func SetDebugWriter(w io.Writer) { debugWriter.Store(&w) }

func currentDebugWriter() io.Writer {
	return *debugWriter.Load()
}
