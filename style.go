package crprintf

import "fmt"

// Style flag bits, packed into styleState.flags.
const (
	flagBold = 1 << iota
	flagDim
	flagUL
	flagItalic
	flagStrike
	flagInvert
)

// colRGB is the fg/bg sentinel meaning "use the packed *RGB field instead
// of a palette code". colNone clears a channel back to the terminal default.
const (
	colNone = 0
	colRGB  = 0xFF
)

// styleState is the VM's current style register: palette or RGB
// foreground/background plus an attribute bitset. The zero value is the
// default style (no color, no attributes).
type styleState struct {
	fg    uint32
	bg    uint32
	fgRGB uint32
	bgRGB uint32
	flags uint8
}

const maxStyleDepth = 8
const maxPadDepth = 8

func packRGB(r, g, b int) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func unpackRGB(c uint32) (r, g, b int) {
	return int(c >> 16 & 0xFF), int(c >> 8 & 0xFF), int(c & 0xFF)
}

// sgrEscape renders the full SGR sequence for s: a reset (ESC[0m) followed
// by one sequence per active property, in the fixed order the VM always
// uses (bold, dim, underline, italic, strike, invert, foreground,
// background).
func sgrEscape(s styleState) string {
	var b []byte
	b = append(b, "\x1b[0m"...)
	if s.flags&flagBold != 0 {
		b = append(b, "\x1b[1m"...)
	}
	if s.flags&flagDim != 0 {
		b = append(b, "\x1b[2m"...)
	}
	if s.flags&flagUL != 0 {
		b = append(b, "\x1b[4m"...)
	}
	if s.flags&flagItalic != 0 {
		b = append(b, "\x1b[3m"...)
	}
	if s.flags&flagStrike != 0 {
		b = append(b, "\x1b[9m"...)
	}
	if s.flags&flagInvert != 0 {
		b = append(b, "\x1b[7m"...)
	}
	if s.fg == colRGB {
		r, g, bb := unpackRGB(s.fgRGB)
		b = append(b, fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, bb)...)
	} else if s.fg != 0 {
		b = append(b, fmt.Sprintf("\x1b[%dm", s.fg)...)
	}
	if s.bg == colRGB {
		r, g, bb := unpackRGB(s.bgRGB)
		b = append(b, fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, bb)...)
	} else if s.bg != 0 {
		b = append(b, fmt.Sprintf("\x1b[%dm", s.bg+10)...)
	}
	return string(b)
}
