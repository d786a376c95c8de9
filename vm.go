package crprintf

import "io"

// padEntry records a pending PAD_BEGIN/RPAD_BEGIN: the output offset where
// the padded region starts, the target visible width, and whether the
// padding is applied by shifting the region right (right-align) or simply
// appended after it (left-align).
type padEntry struct {
	mark       int
	width      int
	rightAlign bool
}

// vm executes one Program run: the style register, its bounded push
// stack, the bounded pad stack, and the output being accumulated.
type vm struct {
	prog       *Program
	current    styleState
	styleStack []styleState
	padStack   []padEntry
	out        vmBuffer
}

// Exec runs p against args and returns the rendered bytes. Each EMIT_FMT
// instruction whose class is not ArgNone consumes exactly one element of
// args (ArgNone, for '%' and 'n' conversions, consumes none), selected by position,
// regardless of whether rendering that specifier succeeds - this keeps the
// argument cursor in lockstep with the compiled program even when a
// specifier is malformed or its argument is the wrong Go type.
func (p *Program) Exec(args ...any) []byte {
	m := &vm{prog: p}
	m.run(args)
	return m.out.commit()
}

// Fprint executes p and writes the result to w.
func (p *Program) Fprint(w io.Writer, args ...any) (int, error) {
	return w.Write(p.Exec(args...))
}

// Sprint executes p and returns the result as a string.
func (p *Program) Sprint(args ...any) string {
	return string(p.Exec(args...))
}

// FormatToBuffer renders p against args into out, writing at most
// len(out)-1 bytes plus a trailing NUL. It returns the full length that
// would have been written, uncapped by len(out), so the caller can detect
// truncation by comparing the return value against len(out).
func (p *Program) FormatToBuffer(out []byte, args ...any) int {
	full := p.Exec(args...)
	if len(out) == 0 {
		return len(full)
	}
	n := len(full)
	if n > len(out)-1 {
		n = len(out) - 1
	}
	copy(out, full[:n])
	out[n] = 0
	return len(full)
}

func (m *vm) run(args []any) {
	argIdx := 0
	for ip := 0; ip < len(m.prog.code); ip++ {
		ins := m.prog.code[ip]
		switch ins.op {
		case OpNop:

		case OpEmitLit:
			m.out.writeString(m.prog.pool.str(ins.operand))

		case OpEmitFmt:
			off := ins.operand & litOffsetMask
			cls := ArgClass(ins.operand >> litClassShift)
			spec := m.prog.pool.str(off)

			var arg any
			if argIdx < len(args) {
				arg = args[argIdx]
			}
			if cls != ArgNone {
				argIdx++
			}
			m.out.writeString(renderFmt(spec, cls, arg))

		case OpSetFG:
			m.current.fg = ins.operand
		case OpSetBG:
			m.current.bg = ins.operand
		case OpSetFGRGB:
			m.current.fg = colRGB
			m.current.fgRGB = ins.operand
		case OpSetBGRGB:
			m.current.bg = colRGB
			m.current.bgRGB = ins.operand

		case OpSetBold:
			m.setFlag(flagBold, ins.operand != 0)
		case OpSetDim:
			m.setFlag(flagDim, ins.operand != 0)
		case OpSetUL:
			m.setFlag(flagUL, ins.operand != 0)
		case OpSetItalic:
			m.setFlag(flagItalic, ins.operand != 0)
		case OpSetStrike:
			m.setFlag(flagStrike, ins.operand != 0)
		case OpSetInvert:
			m.setFlag(flagInvert, ins.operand != 0)

		case OpStylePush:
			if len(m.styleStack) < maxStyleDepth {
				m.styleStack = append(m.styleStack, m.current)
			}

		case OpStyleFlush:
			m.emitSGR()

		case OpStyleReset:
			if n := len(m.styleStack); n > 0 {
				m.current = m.styleStack[n-1]
				m.styleStack = m.styleStack[:n-1]
			} else {
				m.current = styleState{}
			}
			m.emitSGR()

		case OpStyleResetAll:
			m.current = styleState{}
			m.styleStack = m.styleStack[:0]
			if ColorEnabled() {
				m.out.writeString("\x1b[0m")
			}

		case OpPadBegin:
			if len(m.padStack) < maxPadDepth {
				m.padStack = append(m.padStack, padEntry{mark: m.out.len(), width: int(ins.operand)})
			}
		case OpRPadBegin:
			if len(m.padStack) < maxPadDepth {
				m.padStack = append(m.padStack, padEntry{mark: m.out.len(), width: int(ins.operand), rightAlign: true})
			}
		case OpPadEnd:
			m.padEnd()

		case OpEmitSpaces:
			m.out.fill(' ', int(ins.operand))
		case OpEmitNewlines:
			m.out.fill('\n', int(ins.operand))

		case OpHalt:
			return
		}
	}
}

func (m *vm) setFlag(bit uint8, on bool) {
	if on {
		m.current.flags |= bit
	} else {
		m.current.flags &^= bit
	}
}

// emitSGR writes the full SGR escape for the current style, unless color
// output is disabled. Every STYLE_* opcode that changes the visible style
// funnels through here; the style registers update either way.
func (m *vm) emitSGR() {
	if ColorEnabled() {
		m.out.writeString(sgrEscape(m.current))
	}
}

// padEnd closes the innermost pending pad region: if its contents are
// already at least as wide as requested, nothing happens; otherwise it is
// padded with spaces, either appended (left-align) or inserted at the
// region's start with the existing bytes shifted right (right-align).
func (m *vm) padEnd() {
	n := len(m.padStack)
	if n == 0 {
		return
	}
	pe := m.padStack[n-1]
	m.padStack = m.padStack[:n-1]

	vis := visibleLen(m.out.buf[pe.mark:])
	if pe.width <= vis {
		return
	}

	pad := pe.width - vis
	if pe.rightAlign {
		m.out.insertSpaces(pe.mark, pad)
	} else {
		m.out.fill(' ', pad)
	}
}

// visibleLen counts the bytes of s that fall outside ANSI escape
// sequences ("\x1b" through the next ASCII letter). It is byte-based, not
// Unicode-aware, matching this package's byte-oriented semantics
// elsewhere.
func visibleLen(s []byte) int {
	vis := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			i++
			for i < len(s) && !isAlphaByte(s[i]) {
				i++
			}
		} else {
			vis++
		}
	}
	return vis
}

func isAlphaByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
