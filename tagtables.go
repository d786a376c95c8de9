package crprintf

// Palette codes (ANSI SGR 30-37 normal, 90-97 bright).
const (
	colBlack = 30 + iota
	colRed
	colGreen
	colYellow
	colBlue
	colMagenta
	colCyan
	colWhite
)

const (
	colBrightBlack = 90 + iota // aka gray
	colBrightRed
	colBrightGreen
	colBrightYellow
	colBrightBlue
	colBrightMagenta
	colBrightCyan
	colBrightWhite
)

const colGray = colBrightBlack

// fgColors maps foreground color names (as they appear in markup) to their
// palette code.
var fgColors = map[string]uint32{
	"black": colBlack, "red": colRed, "green": colGreen, "yellow": colYellow,
	"blue": colBlue, "magenta": colMagenta, "cyan": colCyan, "white": colWhite,
	"gray": colGray, "grey": colGray,
	"bright_red": colBrightRed, "bright_green": colBrightGreen,
	"bright_yellow": colBrightYellow, "bright_blue": colBrightBlue,
	"bright_magenta": colBrightMagenta, "bright_cyan": colBrightCyan,
	"bright_white": colBrightWhite,
}

// bgColors maps "bg_<name>" markup tags to their underlying palette code
// (the VM adds 10 at emission time to get the background SGR range).
var bgColors = map[string]uint32{
	"bg_black": colBlack, "bg_red": colRed, "bg_green": colGreen,
	"bg_yellow": colYellow, "bg_blue": colBlue, "bg_magenta": colMagenta,
	"bg_cyan": colCyan, "bg_white": colWhite,
}

// segBGColors maps the bare color name used after a "bg_" segment inside an
// underscore-combined tag (e.g. the "blue" in "bold_bg_blue").
var segBGColors = map[string]uint32{
	"black": colBlack, "red": colRed, "green": colGreen, "yellow": colYellow,
	"blue": colBlue, "magenta": colMagenta, "cyan": colCyan, "white": colWhite,
}

// attrOps maps attribute names to the opcode that sets them.
var attrOps = map[string]Opcode{
	"bold": OpSetBold, "dim": OpSetDim, "ul": OpSetUL,
	"i": OpSetItalic, "italic": OpSetItalic,
	"strike": OpSetStrike, "invert": OpSetInvert,
}
