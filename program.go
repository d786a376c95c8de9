// Package crprintf implements printf with inline color-and-style markup,
// compiled once into a small bytecode program and executed against
// variadic arguments on every subsequent call.
//
// Usage:
//
//	p := crprintf.MustCompile("<red>error:</red> something went wrong\n")
//	p.Fprint(os.Stderr)
//
//	p := crprintf.MustCompile("<bold><cyan>info:</cyan></bold> hello %s\n")
//	p.Fprint(os.Stdout, name)
//
//	p := crprintf.MustCompile("<#ff8800>orange text</#ff8800>\n")
//
//	p := crprintf.MustCompile("  <pad=18><green>%s</green></pad> %s\n")
//	p.Fprint(os.Stdout, cmd.Name, cmd.Desc)
//
// Supported markup:
//
//	<red> <green> <yellow> <blue> <magenta> <cyan> <white> <black>
//	<gray>/<grey> <bright_red> <bright_green> ... etc
//	<bg_red> <bg_green> ... <bg_#RGB> <bg_#RRGGBB>
//	<bold> <dim> <ul> (underline) <i>/<italic> <strike> <invert>
//	<bold_red> <dim_cyan> etc - combine styles with underscores
//	<bold+red> <dim+cyan+bg_blue> etc - combine styles with +
//	<#RRGGBB> or <#RGB> for arbitrary 24-bit foreground colors
//	<pad=N> ... </pad>  - left-align, pad contents to N visible columns
//	<br/> - emit a newline, <br=N/> - emit N newlines
//	<rpad=N> ... </rpad> - right-align pad contents to N visible columns
//	<space=N/> - emit N spaces; <gap=N/> - alias for space
//	<let name=style1+style2> or <let name=style1, name2=style2> - define a variable
//	{let name=style1+style2} - alternative brace syntax
//	quoted values: {let label='hello'} or <let label="world"/>
//	<$name> to apply a variable as a style, {name} to emit its value (a value
//	containing '<' is compiled as markup, one containing a conversion consumes an argument)
//	{~name} for lowercase, {^name} for uppercase; {~'string'}/{^'string'} for literals
//	</> or an unrecognized </tagname> to reset (pops one style level)
//	</bold>, </red>, </bg_blue> etc - clear just that property and repaint (no pop)
//	<reset/> to reset all styles (clears entire stack)
//	<< and >> to emit literal < and >; %% to emit a literal %
package crprintf

// Opcode identifies one instruction in a compiled Program.
type Opcode uint32

const (
	OpNop Opcode = iota
	OpEmitLit
	OpEmitFmt
	OpSetFG
	OpSetBG
	OpSetFGRGB
	OpSetBGRGB
	OpSetBold
	OpSetDim
	OpSetUL
	OpSetItalic
	OpSetStrike
	OpSetInvert
	OpStylePush
	OpStyleFlush
	OpStyleReset
	OpStyleResetAll
	OpPadBegin
	OpRPadBegin
	OpPadEnd
	OpEmitSpaces
	OpEmitNewlines
	OpHalt
	opMax
)

var opNames = [opMax]string{
	OpNop:           "NOP",
	OpEmitLit:       "EMIT_LIT",
	OpEmitFmt:       "EMIT_FMT",
	OpSetFG:         "SET_FG",
	OpSetBG:         "SET_BG",
	OpSetFGRGB:      "SET_FG_RGB",
	OpSetBGRGB:      "SET_BG_RGB",
	OpSetBold:       "SET_BOLD",
	OpSetDim:        "SET_DIM",
	OpSetUL:         "SET_UL",
	OpSetItalic:     "SET_ITALIC",
	OpSetStrike:     "SET_STRIKE",
	OpSetInvert:     "SET_INVERT",
	OpStylePush:     "STYLE_PUSH",
	OpStyleFlush:    "STYLE_FLUSH",
	OpStyleReset:    "STYLE_RESET",
	OpStyleResetAll: "STYLE_RESET_ALL",
	OpPadBegin:      "PAD_BEGIN",
	OpRPadBegin:     "RPAD_BEGIN",
	OpPadEnd:        "PAD_END",
	OpEmitSpaces:    "EMIT_SPACES",
	OpEmitNewlines:  "EMIT_NEWLINES",
	OpHalt:          "HALT",
}

func (op Opcode) String() string {
	if op < opMax {
		return opNames[op]
	}
	return "???"
}

// instruction is a fixed-width {opcode, operand} record. EMIT_FMT packs its
// operand as (class<<28)|(offset&0x0FFFFFFF): a 28-bit literal-pool offset
// plus a 4-bit argument-class tag.
type instruction struct {
	op      Opcode
	operand uint32
}

const (
	litOffsetMask = 0x0FFFFFFF
	litClassShift = 28
)

// Program is the immutable, compile-once output of Compile: an instruction
// stream plus the literal pool its EMIT_LIT/EMIT_FMT operands reference.
// A Program is safe for concurrent use by multiple VM runs.
type Program struct {
	code []instruction
	pool literalPool
}

// NumInstructions reports the length of the compiled instruction stream,
// including the trailing HALT.
func (p *Program) NumInstructions() int {
	return len(p.code)
}
