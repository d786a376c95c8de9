package crprintf

import "strings"

// maxFragmentDepth bounds the recursion that occurs when a variable's value
// is itself expanded as markup (scanVarBrace -> compileFragment). A pair of
// variables that reference each other's brace syntax would otherwise
// recurse forever; compilation gives up silently past this depth.
const maxFragmentDepth = 4

// compiler turns one format string into a Program. It carries the
// per-compilation variable table (a snapshot of the process-global table,
// extended by any `{let ...}`/`<let .../>` directives encountered so far)
// and a recursion guard for brace-expanded variable values.
type compiler struct {
	prog  *Program
	vars  varTable
	depth int
}

// Compile parses format into a compiled Program. Markup is resolved against
// the process-global variable table as it stood at the moment Compile was
// called; Compile itself never fails, since any malformed markup it
// encounters falls back to emitting the offending delimiter as a literal
// character and resumes scanning right after it.
func Compile(format string) *Program {
	c := &compiler{prog: &Program{}, vars: snapshotGlobalVars()}
	c.compileFragment(format)
	c.emit(OpHalt, 0)

	if DebugDisasm() {
		Disasm(c.prog, currentDebugWriter())
	}
	if DebugHex() {
		Hexdump(c.prog, currentDebugWriter())
	}
	return c.prog
}

// MustCompile is Compile. It exists for call sites that want to state, by
// name, that a compiled program is being built once and reused - Compile
// never actually panics or returns an error.
func MustCompile(format string) *Program {
	return Compile(format)
}

func (c *compiler) emit(op Opcode, operand uint32) {
	c.prog.code = append(c.prog.code, instruction{op: op, operand: operand})
}

func (c *compiler) addLiteral(s string) uint32 {
	return c.prog.pool.add(s)
}

func (c *compiler) flushLit(s string, start, end int) {
	if end <= start {
		return
	}
	c.emit(OpEmitLit, c.addLiteral(s[start:end]))
}

// compileFragment is the main scan loop: a left-to-right pass over s that
// recognizes escapes, brace directives and angle tags, and falls back to
// accumulating plain bytes as a pending literal run otherwise.
func (c *compiler) compileFragment(s string) {
	if c.depth >= maxFragmentDepth {
		return
	}
	c.depth++
	defer func() { c.depth-- }()

	i, lit := 0, 0
	for i < len(s) {
		switch {
		case s[i] == '<' && i+1 < len(s) && s[i+1] == '<':
			i = c.scanEscape(s, i, &lit, "<")
		case s[i] == '>' && i+1 < len(s) && s[i+1] == '>':
			i = c.scanEscape(s, i, &lit, ">")
		case s[i] == '%' && i+1 < len(s) && s[i+1] == '%':
			i = c.scanEscape(s, i, &lit, "%")
		case s[i] == '{' && strings.HasPrefix(s[i:], "{let "):
			i = c.scanLetBrace(s, i, &lit)
		case s[i] == '{':
			i = c.scanVarBrace(s, i, &lit)
		case s[i] == '<':
			i = c.scanTag(s, i, &lit)
		case s[i] == '%' && i+1 < len(s) && s[i+1] != '%':
			i = c.scanFmt(s, i, &lit)
		default:
			i++
		}
	}
	c.flushLit(s, lit, i)
}

func (c *compiler) scanEscape(s string, i int, lit *int, emit string) int {
	c.flushLit(s, *lit, i)
	c.emit(OpEmitLit, c.addLiteral(emit))
	*lit = i + 2
	return *lit
}

// scanFmt consumes one printf conversion specifier starting at s[i]=='%' and
// emits an EMIT_FMT whose operand packs the specifier's literal-pool offset
// with its statically-derived argument class.
func (c *compiler) scanFmt(s string, i int, lit *int) int {
	c.flushLit(s, *lit, i)
	specLen := scanConversion(s[i:])
	spec := s[i : i+specLen]
	off := c.addLiteral(spec)
	c.emit(OpEmitFmt, off|(uint32(classifyArg(spec))<<litClassShift))
	*lit = i + specLen
	return *lit
}

// scanTag handles one '<...>' span: '</>' resets one style level, '</name>'
// resets the attribute/color/padding 'name' names, and everything else is
// handed to compileTag. A malformed or unrecognized tag body falls back to
// emitting a literal '<' and resuming the scan right after it.
func (c *compiler) scanTag(s string, i int, lit *int) int {
	c.flushLit(s, *lit, i)

	start := i + 1
	closing := false
	if start < len(s) && s[start] == '/' {
		closing = true
		start++
	}

	if closing && start < len(s) && s[start] == '>' {
		c.emit(OpStyleReset, 0)
		*lit = start + 1
		return *lit
	}

	end := start
	for end < len(s) && s[end] != '>' {
		end++
	}

	if end < len(s) && s[end] == '>' && c.compileTag(s[start:end], closing) {
		*lit = end + 1
		return *lit
	}

	c.emit(OpEmitLit, c.addLiteral("<"))
	*lit = i + 1
	return *lit
}

func (c *compiler) compileTag(tag string, closing bool) bool {
	if closing {
		if tag == "pad" || tag == "rpad" {
			c.emit(OpPadEnd, 0)
			return true
		}
		if c.matchAttrOff(tag) || c.matchFGOff(tag) || c.matchBGOff(tag) {
			c.emit(OpStyleFlush, 0)
			return true
		}
		c.emit(OpStyleReset, 0)
		return true
	}

	if strings.HasPrefix(tag, "let ") {
		return c.compileLet(tag[4:])
	}
	if strings.HasPrefix(tag, "$") && len(tag) > 1 {
		return c.compileVarRef(tag)
	}

	if strings.HasPrefix(tag, "pad=") {
		c.emit(OpPadBegin, tagInt(tag[4:]))
		return true
	}
	if strings.HasPrefix(tag, "rpad=") {
		c.emit(OpRPadBegin, tagInt(tag[5:]))
		return true
	}
	if strings.HasPrefix(tag, "space=") && strings.HasSuffix(tag, "/") {
		c.emit(OpEmitSpaces, tagInt(tag[6:]))
		return true
	}
	if strings.HasPrefix(tag, "gap=") && strings.HasSuffix(tag, "/") {
		c.emit(OpEmitSpaces, tagInt(tag[4:]))
		return true
	}
	if tag == "reset/" {
		c.emit(OpStyleResetAll, 0)
		return true
	}
	if tag == "br/" {
		c.emit(OpEmitNewlines, 1)
		return true
	}
	if strings.HasPrefix(tag, "br=") && strings.HasSuffix(tag, "/") {
		c.emit(OpEmitNewlines, tagInt(tag[3:]))
		return true
	}

	c.emit(OpStylePush, 0)

	if c.matchAttr(tag) {
		c.emit(OpStyleFlush, 0)
		return true
	}
	if c.matchFG(tag) {
		c.emit(OpStyleFlush, 0)
		return true
	}
	if c.matchBG(tag) {
		c.emit(OpStyleFlush, 0)
		return true
	}

	if strings.HasPrefix(tag, "#") {
		if !c.compileHexFG(tag) {
			return false
		}
		c.emit(OpStyleFlush, 0)
		return true
	}

	if strings.HasPrefix(tag, "bg_#") {
		if !c.compileHexBG(tag[3:]) {
			return false
		}
		c.emit(OpStyleFlush, 0)
		return true
	}

	if strings.Contains(tag, "+") {
		if c.compilePlusSegs(tag) > 0 {
			c.emit(OpStyleFlush, 0)
			return true
		}
	}

	// Underscore-combined segments: "bold_red", "bold_bg_blue", etc. "bg"
	// consumes the segment after it from the bare (unprefixed) color table.
	seg, n, emitted := 0, len(tag), 0
	for seg < n {
		segEnd := indexByteFrom(tag, seg, '_')

		switch {
		case c.matchAttr(tag[seg:segEnd]):
		case tag[seg:segEnd] == "bg" && segEnd < n:
			bgStart := segEnd + 1
			bgEnd := indexByteFrom(tag, bgStart, '_')
			if !c.matchSegBG(tag[bgStart:bgEnd]) {
				return false
			}
			segEnd = bgEnd
		default:
			if !c.matchFG(tag[seg:segEnd]) {
				return false
			}
		}

		emitted++
		if segEnd < n {
			seg = segEnd + 1
		} else {
			seg = n
		}
	}

	if emitted > 0 {
		c.emit(OpStyleFlush, 0)
		return true
	}
	return false
}

// tagInt reads the decimal number at the start of s, stopping at the first
// non-digit (atoi-style, so "10/" and "10" both read as 10). No digits
// reads as 0.
func tagInt(s string) uint32 {
	var n uint32
	for i := 0; i < len(s) && isDigit(s[i]); i++ {
		n = n*10 + uint32(s[i]-'0')
	}
	return n
}

// indexByteFrom returns the index of the next b in s at or after from, or
// len(s) if there is none.
func indexByteFrom(s string, from int, b byte) int {
	idx := strings.IndexByte(s[from:], b)
	if idx < 0 {
		return len(s)
	}
	return from + idx
}

func (c *compiler) matchAttr(s string) bool {
	if op, ok := attrOps[s]; ok {
		c.emit(op, 1)
		return true
	}
	return false
}

func (c *compiler) matchAttrOff(s string) bool {
	if op, ok := attrOps[s]; ok {
		c.emit(op, 0)
		return true
	}
	return false
}

func (c *compiler) matchFG(s string) bool {
	if col, ok := fgColors[s]; ok {
		c.emit(OpSetFG, col)
		return true
	}
	return false
}

func (c *compiler) matchFGOff(s string) bool {
	if _, ok := fgColors[s]; ok {
		c.emit(OpSetFG, colNone)
		return true
	}
	if strings.HasPrefix(s, "#") {
		c.emit(OpSetFG, colNone)
		return true
	}
	return false
}

func (c *compiler) matchBG(s string) bool {
	if col, ok := bgColors[s]; ok {
		c.emit(OpSetBG, col)
		return true
	}
	return false
}

func (c *compiler) matchBGOff(s string) bool {
	if _, ok := bgColors[s]; ok {
		c.emit(OpSetBG, colNone)
		return true
	}
	if strings.HasPrefix(s, "bg_#") {
		c.emit(OpSetBG, colNone)
		return true
	}
	return false
}

func (c *compiler) matchSegBG(s string) bool {
	if col, ok := segBGColors[s]; ok {
		c.emit(OpSetBG, col)
		return true
	}
	return false
}

func (c *compiler) compileHexFG(tag string) bool {
	rgb, ok := parseHexRGB(tag)
	if !ok {
		return false
	}
	c.emit(OpSetFGRGB, rgb)
	return true
}

func (c *compiler) compileHexBG(hex string) bool {
	rgb, ok := parseHexRGB(hex)
	if !ok {
		return false
	}
	c.emit(OpSetBGRGB, rgb)
	return true
}

// parseHexRGB parses a leading '#' followed by either 3 ("#RGB") or 6
// ("#RRGGBB") hex digits.
func parseHexRGB(hex string) (uint32, bool) {
	switch len(hex) {
	case 4:
		r, g, b := hexDigit(hex[1]), hexDigit(hex[2]), hexDigit(hex[3])
		if r < 0 || g < 0 || b < 0 {
			return 0, false
		}
		return packRGB(r*17, g*17, b*17), true
	case 7:
		r1, r2 := hexDigit(hex[1]), hexDigit(hex[2])
		g1, g2 := hexDigit(hex[3]), hexDigit(hex[4])
		b1, b2 := hexDigit(hex[5]), hexDigit(hex[6])
		if r1 < 0 || r2 < 0 || g1 < 0 || g2 < 0 || b1 < 0 || b2 < 0 {
			return 0, false
		}
		return packRGB((r1<<4)+r2, (g1<<4)+g2, (b1<<4)+b2), true
	}
	return 0, false
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// compilePlusSegs compiles a '+'-joined list of style segments ("bold+red",
// "bg_blue") and returns how many segments it emitted, or 0 if the string
// was empty or any segment failed to match.
func (c *compiler) compilePlusSegs(s string) int {
	if len(s) == 0 {
		return 0
	}
	seg, n, emitted := 0, len(s), 0
	for seg < n {
		end := indexByteFrom(s, seg, '+')
		if !c.matchPlusSeg(s[seg:end]) {
			return 0
		}
		emitted++
		if end < n {
			seg = end + 1
		} else {
			seg = n
		}
	}
	return emitted
}

func (c *compiler) matchPlusSeg(seg string) bool {
	if c.matchAttr(seg) {
		return true
	}
	if c.matchFG(seg) {
		return true
	}
	if c.matchBG(seg) {
		return true
	}
	if len(seg) > 0 && seg[0] == '#' {
		return c.compileHexFG(seg)
	}
	if strings.HasPrefix(seg, "bg_#") {
		return c.compileHexBG(seg[3:])
	}
	if strings.HasPrefix(seg, "bg_") {
		return c.matchSegBG(seg[3:])
	}
	return false
}

// compileVarRef handles "<$name>" and "<$name+extra+segs>": it pushes a
// style level, applies the named variable's value as a '+'-joined style
// list, optionally applies a trailing '+'-joined list of its own, and
// flushes. An unknown variable, or one whose value or trailing list does not
// resolve entirely to style segments, fails the match, so scanTag falls back
// to emitting the '<$name>' text literally.
func (c *compiler) compileVarRef(tag string) bool {
	name := tag[1:]
	plusIdx := strings.IndexByte(name, '+')
	varName := name
	if plusIdx >= 0 {
		varName = name[:plusIdx]
	}

	v, ok := c.vars.lookup(varName)
	if !ok {
		return false
	}

	c.emit(OpStylePush, 0)
	if c.compilePlusSegs(v.value) == 0 {
		return false
	}

	if plusIdx >= 0 {
		rest := name[plusIdx+1:]
		if len(rest) > 0 && c.compilePlusSegs(rest) == 0 {
			return false
		}
	}

	c.emit(OpStyleFlush, 0)
	return true
}

// scanVarBrace handles "{name}", "{~name}"/"{^name}" (case-folded),
// "{'literal'}"/"{\"literal\"}" and their case-folded forms. An unterminated
// or unresolved reference falls back to a literal '{'.
func (c *compiler) scanVarBrace(s string, i int, lit *int) int {
	c.flushLit(s, *lit, i)

	namePos := i + 1
	end := namePos
	for end < len(s) && s[end] != '}' {
		end++
	}
	if end >= len(s) || s[end] != '}' {
		return c.emitBraceLiteral(s, i, lit)
	}

	name := s[namePos:end]
	lower, upper := false, false
	switch {
	case strings.HasPrefix(name, "~"):
		lower = true
		name = name[1:]
	case strings.HasPrefix(name, "^"):
		upper = true
		name = name[1:]
	}

	if len(name) > 0 && (name[0] == '\'' || name[0] == '"') {
		quote := name[0]
		body := name[1:]
		qend := strings.IndexByte(body, quote)
		if qend < 0 {
			return c.emitBraceLiteral(s, i, lit)
		}
		val := body[:qend]
		if len(val) > 0 && len(val) <= maxVarValue {
			if lower || upper {
				val = applyCase(val, lower)
			}
			c.emit(OpEmitLit, c.addLiteral(val))
		}
		*lit = end + 1
		return *lit
	}

	if v, ok := c.vars.lookup(name); ok {
		val := v.value
		if lower || upper {
			val = applyCase(val, lower)
		}
		switch {
		case strings.ContainsRune(val, '<'):
			c.compileFragment(val)
		case v.isFmt:
			c.emit(OpEmitFmt, c.addLiteral(val)|(uint32(classifyArg(val))<<litClassShift))
		default:
			c.emit(OpEmitLit, c.addLiteral(val))
		}
		*lit = end + 1
		return *lit
	}

	return c.emitBraceLiteral(s, i, lit)
}

func (c *compiler) emitBraceLiteral(s string, i int, lit *int) int {
	c.emit(OpEmitLit, c.addLiteral("{"))
	*lit = i + 1
	return *lit
}

// applyCase folds s to lower- or uppercase one byte at a time. ASCII only,
// not Unicode-aware, consistent with this package's byte-based semantics
// elsewhere.
func applyCase(s string, lower bool) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case lower && ch >= 'A' && ch <= 'Z':
			ch += 'a' - 'A'
		case !lower && ch >= 'a' && ch <= 'z':
			ch -= 'a' - 'A'
		}
		b[i] = ch
	}
	return string(b)
}

// scanLetBrace handles "{let name=value, name2=value2}" (and a trailing
// '/' is tolerated for symmetry with the angle-tag form). An unterminated
// or malformed body falls back to a literal '{'.
func (c *compiler) scanLetBrace(s string, i int, lit *int) int {
	c.flushLit(s, *lit, i)

	body := i + 5
	end := body
	for end < len(s) && s[end] != '}' {
		end++
	}

	if end < len(s) && s[end] == '}' && c.compileLet(s[body:end]) {
		*lit = end + 1
		return *lit
	}
	return c.emitBraceLiteral(s, i, lit)
}

// compileLet parses a comma/space-separated list of name=value pairs (value
// may be bareword or quoted) into a draft copy of the variable table,
// committing it only if the entire body parses successfully - a partially
// malformed `let` directive must leave no bindings behind.
func (c *compiler) compileLet(body string) bool {
	if len(body) > 0 && body[len(body)-1] == '/' {
		body = body[:len(body)-1]
	}

	draft := c.vars.clone()
	i, n := 0, len(body)

	for i < n {
		for i < n && (body[i] == ' ' || body[i] == ',') {
			i++
		}
		if i >= n {
			break
		}

		eq := strings.IndexByte(body[i:], '=')
		if eq < 0 {
			return false
		}
		eq += i
		name := body[i:eq]
		vstart := eq + 1

		if vstart < n && (body[vstart] == '\'' || body[vstart] == '"') {
			quote := body[vstart]
			vstart++
			vend := vstart
			for vend < n && body[vend] != quote {
				vend++
			}
			if vend >= n {
				return false
			}
			after := vend + 1
			for after < n && (body[after] == ' ' || body[after] == ',') {
				after++
			}
			value := body[vstart:vend]
			if len(name) == 0 || len(name) > maxVarName || len(value) > maxVarValue {
				return false
			}
			if !draft.appendLet(name, value) {
				return false
			}
			i = after
			continue
		}

		vend := vstart
		for vend < n && body[vend] != ',' {
			vend++
		}
		value := body[vstart:vend]
		if len(name) == 0 || len(name) > maxVarName || len(value) == 0 || len(value) > maxVarValue {
			return false
		}
		if !draft.appendLet(name, value) {
			return false
		}
		i = vend
	}

	c.vars = draft
	return true
}
