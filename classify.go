package crprintf

// ArgClass is the static classification of a printf conversion specifier,
// used by the VM to know exactly which variadic argument kind a given
// EMIT_FMT must consume, independent of whether the formatter itself
// succeeds. The zero value, ArgNone, consumes nothing.
type ArgClass uint32

const (
	ArgNone ArgClass = iota
	ArgInt
	ArgLong
	ArgLLong
	ArgSize
	ArgDouble
	ArgCStr
	ArgPtr
	ArgWInt
	ArgWStr
)

var argClassNames = map[ArgClass]string{
	ArgNone:   "none",
	ArgInt:    "int",
	ArgLong:   "long",
	ArgLLong:  "llong",
	ArgSize:   "size_t",
	ArgDouble: "double",
	ArgCStr:   "char*",
	ArgPtr:    "void*",
	ArgWInt:   "wint_t",
	ArgWStr:   "wchar_t*",
}

func (c ArgClass) String() string {
	if name, ok := argClassNames[c]; ok {
		return name
	}
	return "?"
}

// classifyArg derives the argument class of a printf conversion specifier
// (the full "%...X" text, e.g. "%-08.2lld") from its flags, width,
// precision, length modifier and conversion character.
func classifyArg(spec string) ArgClass {
	conv := spec[len(spec)-1]
	switch conv {
	case '%', 'n':
		return ArgNone
	case 's':
		// length modifier determines narrow vs wide string; fall through
		// to the modifier scan below.
	case 'p':
		return ArgPtr
	case 'f', 'F', 'e', 'E', 'g', 'G', 'a', 'A':
		return ArgDouble
	}

	i := 1
	for i < len(spec) && isFlagByte(spec[i]) {
		i++
	}
	if i < len(spec) && spec[i] == '*' {
		i++
	} else {
		for i < len(spec) && isDigit(spec[i]) {
			i++
		}
	}
	if i < len(spec) && spec[i] == '.' {
		i++
		if i < len(spec) && spec[i] == '*' {
			i++
		} else {
			for i < len(spec) && isDigit(spec[i]) {
				i++
			}
		}
	}

	var mod byte
	var modLen int
	if i < len(spec) {
		mod = spec[i]
		modLen = 1
		if mod == 'l' && i+1 < len(spec) && spec[i+1] == 'l' {
			modLen = 2
		}
	}

	switch {
	case mod == 'z':
		return ArgSize
	case mod == 'l' && modLen == 2:
		return ArgLLong
	case mod == 'l' && conv == 'c':
		return ArgWInt
	case mod == 'l' && conv == 's':
		return ArgWStr
	case mod == 'l':
		return ArgLong
	case mod == 'j':
		return ArgLLong
	case conv == 's':
		return ArgCStr
	}
	return ArgInt
}

func isFlagByte(b byte) bool {
	return b == '-' || b == '+' || b == ' ' || b == '#' || b == '0'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// scanConversion scans a printf conversion specifier starting at fmt[0]=='%'
// and returns the specifier's length (flags, width, precision, length
// modifier and exactly one conversion character). It does not validate that
// the conversion character is one of a fixed set: whatever byte follows the
// modifiers ends the specifier, and an unrecognized one classifies like an
// integer conversion (ArgInt, or the class its length modifier selects).
func scanConversion(fmt string) (specLen int) {
	i := 1
	for i < len(fmt) && isFlagByte(fmt[i]) {
		i++
	}
	if i < len(fmt) && fmt[i] == '*' {
		i++
	} else {
		for i < len(fmt) && isDigit(fmt[i]) {
			i++
		}
	}
	if i < len(fmt) && fmt[i] == '.' {
		i++
		if i < len(fmt) && fmt[i] == '*' {
			i++
		} else {
			for i < len(fmt) && isDigit(fmt[i]) {
				i++
			}
		}
	}
	for i < len(fmt) && isLengthModifier(fmt[i]) {
		i++
	}
	if i < len(fmt) {
		i++ // the conversion character itself
	}
	return i
}

func isLengthModifier(b byte) bool {
	switch b {
	case 'h', 'l', 'L', 'z', 'j', 't':
		return true
	}
	return false
}
