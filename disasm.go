package crprintf

import (
	"fmt"
	"io"
)

// colorName renders a palette code the way disassembly output names it.
func colorName(col uint32) string {
	switch col {
	case colNone:
		return "none"
	case colBlack:
		return "black"
	case colRed:
		return "red"
	case colGreen:
		return "green"
	case colYellow:
		return "yellow"
	case colBlue:
		return "blue"
	case colMagenta:
		return "magenta"
	case colCyan:
		return "cyan"
	case colWhite:
		return "white"
	case colGray:
		return "gray"
	case colBrightRed:
		return "bright_red"
	case colBrightGreen:
		return "bright_green"
	case colBrightYellow:
		return "bright_yellow"
	case colBrightBlue:
		return "bright_blue"
	case colBrightMagenta:
		return "bright_magenta"
	case colBrightCyan:
		return "bright_cyan"
	case colBrightWhite:
		return "bright_white"
	default:
		return "?"
	}
}

func escapeLiteral(s string, maxChars int) string {
	out := make([]byte, 0, len(s))
	truncated := false
	for i := 0; i < len(s); i++ {
		if maxChars >= 0 && i >= maxChars {
			truncated = true
			break
		}
		switch c := s[i]; {
		case c == '\n':
			out = append(out, '\\', 'n')
		case c == '\t':
			out = append(out, '\\', 't')
		case c == '"':
			out = append(out, '\\', '"')
		case c < 0x20:
			out = append(out, []byte(fmt.Sprintf("\\x%02x", c))...)
		default:
			out = append(out, c)
		}
	}
	if truncated {
		out = append(out, '.', '.', '.')
	}
	return string(out)
}

func quoted(s string, maxChars int) string {
	return `"` + escapeLiteral(s, maxChars) + `"`
}

// operandText renders one instruction's operand for the two dump views:
// compact mode truncates literals to 24 bytes and omits zero-valued
// unnamed operands, full mode always shows the raw hex value.
func operandText(prog *Program, ins instruction, compact bool) string {
	maxChars := -1
	if compact {
		maxChars = 24
	}

	switch ins.op {
	case OpEmitLit:
		return quoted(prog.pool.str(ins.operand), maxChars)

	case OpEmitFmt:
		off := ins.operand & litOffsetMask
		cls := ArgClass(ins.operand >> litClassShift)
		return fmt.Sprintf("%s (%s)", quoted(prog.pool.str(off), maxChars), cls)

	case OpSetFG, OpSetBG:
		if compact {
			return colorName(ins.operand)
		}
		return fmt.Sprintf("%s (ANSI %d)", colorName(ins.operand), ins.operand)

	case OpSetFGRGB, OpSetBGRGB:
		r, g, b := unpackRGB(ins.operand)
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)

	case OpSetBold, OpSetDim, OpSetUL, OpSetItalic, OpSetStrike, OpSetInvert:
		if ins.operand != 0 {
			return "ON"
		}
		return "OFF"

	case OpPadBegin, OpRPadBegin:
		return fmt.Sprintf("width=%d", ins.operand)

	case OpEmitSpaces, OpEmitNewlines:
		return fmt.Sprintf("%d", ins.operand)

	case OpNop, OpStylePush, OpStyleFlush, OpStyleReset, OpStyleResetAll, OpPadEnd, OpHalt:
		return ""

	default:
		if compact {
			if ins.operand != 0 {
				return fmt.Sprintf("0x%x", ins.operand)
			}
			return ""
		}
		return fmt.Sprintf("0x%08x", ins.operand)
	}
}

// Disasm writes a human-readable instruction listing of prog to out, one
// line per instruction: address, opcode mnemonic and decoded operand.
func Disasm(prog *Program, out io.Writer) {
	fmt.Fprintf(out, "; crprintf bytecode — %d instructions, %d bytes literal pool\n",
		len(prog.code), len(prog.pool.buf))
	fmt.Fprintf(out, "; %-4s  %-16s %s\n", "addr", "opcode", "operand")
	fmt.Fprintf(out, "; ----  ---------------- -------\n")

	for i, ins := range prog.code {
		fmt.Fprintf(out, "  %04d  %-16s %s\n", i, ins.op, operandText(prog, ins, false))
	}
}

// Hexdump writes prog's raw instruction bytes and literal pool to out
// alongside their decoded form, for inspecting exactly what Compile
// produced.
func Hexdump(prog *Program, out io.Writer) {
	fmt.Fprintf(out, "; crprintf hex dump — %d instructions, %d bytes literal pool\n",
		len(prog.code), len(prog.pool.buf))
	fmt.Fprintf(out, "; %-4s  %-26s %s\n", "addr", "bytes", "decoded")
	fmt.Fprintf(out, "; ----  -------------------------  --------\n")

	for i, ins := range prog.code {
		fmt.Fprintf(out, "  %04d  %02x %02x %02x %02x %02x %02x %02x %02x  ; %s %s\n",
			i,
			byte(ins.op), byte(ins.op>>8), byte(ins.op>>16), byte(ins.op>>24),
			byte(ins.operand), byte(ins.operand>>8), byte(ins.operand>>16), byte(ins.operand>>24),
			ins.op, operandText(prog, ins, true))
	}

	if len(prog.pool.buf) == 0 {
		return
	}

	fmt.Fprintf(out, "\n; literal pool (%d bytes):\n", len(prog.pool.buf))
	lit := prog.pool.buf
	for off := 0; off < len(lit); off += 16 {
		fmt.Fprintf(out, "  %04x  ", off)

		end := off + 16
		if end > len(lit) {
			end = len(lit)
		}
		for b := off; b < off+16; b++ {
			if b < end {
				fmt.Fprintf(out, "%02x ", lit[b])
			} else {
				fmt.Fprint(out, "   ")
			}
			if b == off+7 {
				fmt.Fprint(out, " ")
			}
		}

		fmt.Fprint(out, " |")
		for b := off; b < end; b++ {
			c := lit[b]
			if c < 0x20 || c >= 0x7f {
				c = '.'
			}
			fmt.Fprintf(out, "%c", c)
		}
		fmt.Fprint(out, "|\n")
	}
}
