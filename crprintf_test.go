package crprintf

import (
	"strings"
	"testing"
)

// withColor runs fn with the color toggle forced to the given state,
// restoring the previous value afterward - color is process-global, so
// tests that flip it must not leak into their neighbors.
func withColor(t *testing.T, enabled bool, fn func()) {
	t.Helper()
	prev := ColorEnabled()
	SetColorEnabled(enabled)
	t.Cleanup(func() { SetColorEnabled(prev) })
	fn()
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{"basic string", "hello world", nil, "hello world"},
		{"color off tag", "<red>hello</red>", nil, "hello"},
		{"left pad", "<pad=10>hi</pad>", nil, "hi        "},
		{"right pad", "<rpad=10>hi</rpad>", nil, "        hi"},
		{"single br", "a<br/>b", nil, "a\nb"},
		{"br repeat", "a<br=2/>b", nil, "a\n\nb"},
		{"space tag", "a<space=3/>b", nil, "a   b"},
		{"gap alias", "a<gap=2/>b", nil, "a  b"},
		{"escapes", "<< >> %%", nil, "< > %"},
		{"empty closer", "<red>x</>", nil, "x"},
		{"reset mid string", "<red>hello <reset/>world", nil, "hello world"},
		{"printf conversion", "num: %d", []any{42}, "num: 42"},
		{"string conversion", "str: %s", []any{"test"}, "str: test"},
		{"hex conversion", "hex: 0x%x", []any{255}, "hex: 0xff"},
		{"float precision", "float: %.2f", []any{3.14}, "float: 3.14"},
		{"left justify width", "[%-8s]", []any{"ab"}, "[ab      ]"},
		{"long conversion", "%ld", []any{int64(1) << 40}, "1099511627776"},
		{"pad around conversion", "<pad=6>%d</pad>!", []any{42}, "42    !"},
	}

	withColor(t, false, func() {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := Compile(tt.format).Sprint(tt.args...)
				if got != tt.want {
					t.Errorf("Sprint(%q) = %q, want %q", tt.format, got, tt.want)
				}
			})
		}
	})
}

func TestVarEmission(t *testing.T) {
	withColor(t, false, func() {
		SetVar("v", "hi")
		t.Cleanup(func() { globalVars = varTable{} })

		got := Compile("{v}").Sprint()
		if got != "hi" {
			t.Errorf("got %q, want %q", got, "hi")
		}
	})
}

func TestFormatToBufferTruncation(t *testing.T) {
	withColor(t, false, func() {
		prog := Compile("hello world this is long")
		buf := make([]byte, 8)
		n := prog.FormatToBuffer(buf)
		if n != 24 {
			t.Errorf("FormatToBuffer length = %d, want 24", n)
		}
		if string(buf) != "hello w\x00" {
			t.Errorf("FormatToBuffer buf = %q, want %q", buf, "hello w\x00")
		}
	})
}

func TestColorOnEmitsEscapes(t *testing.T) {
	withColor(t, true, func() {
		out := Compile("<red>x</red>").Sprint()
		if !strings.HasPrefix(out, "\x1b[0m\x1b[31m") {
			t.Errorf("output %q does not start with reset+red SGR prefix", out)
		}
		if !strings.Contains(out, "x") {
			t.Errorf("output %q missing visible character", out)
		}
		if !strings.HasSuffix(out, "\x1b[0m") {
			t.Errorf("output %q does not end in a reset", out)
		}
		if visibleLen([]byte(out)) != 1 {
			t.Errorf("visible width = %d, want 1", visibleLen([]byte(out)))
		}
	})
}

func TestColorDisabledNeverEmitsESC(t *testing.T) {
	withColor(t, false, func() {
		inputs := []string{
			"<red>x</red>", "<bold+bg_blue>y</bold+bg_blue>", "<#ff00aa>z</#ff00aa>",
			"<pad=4>a</pad>", "<$missing>", "plain text",
		}
		for _, in := range inputs {
			out := Compile(in).Sprint()
			if strings.ContainsRune(out, 0x1b) {
				t.Errorf("Compile(%q).Sprint() contains ESC with color disabled: %q", in, out)
			}
		}
	})
}

func TestCompileNeverFails(t *testing.T) {
	inputs := []string{
		"", "<", ">", "%", "{", "{let", "<nonsense_tag_xyz>", "<$undefined_var>",
		"{unclosed", "%", "%q%z%", strings.Repeat("<a+b+c_d_e>", 20),
	}
	for _, in := range inputs {
		p := Compile(in)
		if p.NumInstructions() == 0 || p.code[len(p.code)-1].op != OpHalt {
			t.Errorf("Compile(%q) did not end with HALT", in)
		}
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	const format = "<bold+red>warn:</bold+red> {msg} %d%%"
	a := Compile(format)
	b := Compile(format)
	if len(a.code) != len(b.code) || string(a.pool.buf) != string(b.pool.buf) {
		t.Fatalf("Compile(%q) produced different programs across calls", format)
	}
	for i := range a.code {
		if a.code[i] != b.code[i] {
			t.Fatalf("instruction %d differs: %+v vs %+v", i, a.code[i], b.code[i])
		}
	}
}

// TestBalancedTagStyleStackDepth checks that </> pops exactly the level its
// opener pushed: after a fully-nested run closed with </>, the VM's style
// stack is back to empty and the current style back to default.
func TestBalancedTagStyleStackDepth(t *testing.T) {
	withColor(t, false, func() {
		p := Compile("<red><bold>x</></>y")
		m := &vm{prog: p}
		m.run(nil)
		if len(m.styleStack) != 0 {
			t.Errorf("style stack not empty at HALT: depth=%d", len(m.styleStack))
		}
		if m.current != (styleState{}) {
			t.Errorf("current style not reset to default at HALT: %+v", m.current)
		}
	})
}

// TestSelectiveCloserRepaints pins down the named-closer semantics: </bold>
// and </red> clear just their own property and repaint the remaining state
// with a fresh flush - they do not pop the level their opener pushed, so
// the pushed entries stay on the stack at HALT.
func TestSelectiveCloserRepaints(t *testing.T) {
	withColor(t, true, func() {
		p := Compile("<red><bold>x</bold>y</red>")
		m := &vm{prog: p}
		m.run(nil)

		want := "\x1b[0m\x1b[31m" + "\x1b[0m\x1b[1m\x1b[31m" + "x" +
			"\x1b[0m\x1b[31m" + "y" + "\x1b[0m"
		if got := string(m.out.buf); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if len(m.styleStack) != 2 {
			t.Errorf("style stack depth = %d, want 2 (selective closers do not pop)", len(m.styleStack))
		}
		if m.current != (styleState{}) {
			t.Errorf("current style = %+v, want default after both properties cleared", m.current)
		}
	})
}

func TestLetDirectives(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"angle let applied as style", "<let err=bold+red><$err>fail</>", "fail"},
		{"brace let applied as style", "{let warn=yellow}<$warn>w</>", "w"},
		{"self closing let", "<let label='hello world'/>{label}", "hello world"},
		{"quoted value keeps commas", `{let msg="a, b"}{msg}`, "a, b"},
		{"two bindings", "<let a=red, b=blue><$a>x</><$b>y</>", "xy"},
		{"malformed let falls back", "{let oops}rest", "{let oops}rest"},
	}
	withColor(t, false, func() {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Compile(tt.format).Sprint(); got != tt.want {
					t.Errorf("Sprint(%q) = %q, want %q", tt.format, got, tt.want)
				}
			})
		}
	})
}

func TestVarStyleApplication(t *testing.T) {
	withColor(t, true, func() {
		got := Compile("<let err=bold+red><$err>fail</>").Sprint()
		want := "\x1b[0m\x1b[1m\x1b[31m" + "fail" + "\x1b[0m"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}

		// Trailing segments after the variable name combine with its value.
		got = Compile("<let base=cyan><$base+ul>u</>").Sprint()
		want = "\x1b[0m\x1b[4m\x1b[36m" + "u" + "\x1b[0m"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestHexColorEscapes(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"short fg form", "<#f80>x</>", "\x1b[0m\x1b[38;2;255;136;0mx\x1b[0m"},
		{"long fg form", "<#102030>x</>", "\x1b[0m\x1b[38;2;16;32;48mx\x1b[0m"},
		{"bg form", "<bg_#0a0b0c>y</>", "\x1b[0m\x1b[48;2;10;11;12my\x1b[0m"},
	}
	withColor(t, true, func() {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Compile(tt.format).Sprint(); got != tt.want {
					t.Errorf("Sprint(%q) = %q, want %q", tt.format, got, tt.want)
				}
			})
		}
	})
}

func TestCombinedTags(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"underscore attr+fg", "<bold_red>x</>", "\x1b[0m\x1b[1m\x1b[31mx\x1b[0m"},
		{"underscore with bg", "<bold_bg_blue>x</>", "\x1b[0m\x1b[1m\x1b[44mx\x1b[0m"},
		{"plus attr+fg", "<dim+cyan>y</>", "\x1b[0m\x1b[2m\x1b[36my\x1b[0m"},
		{"plus with bg", "<ul+bg_green>z</>", "\x1b[0m\x1b[4m\x1b[42mz\x1b[0m"},
		{"bright fg", "<bright_cyan>b</>", "\x1b[0m\x1b[96mb\x1b[0m"},
	}
	withColor(t, true, func() {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Compile(tt.format).Sprint(); got != tt.want {
					t.Errorf("Sprint(%q) = %q, want %q", tt.format, got, tt.want)
				}
			})
		}
	})
}

func TestCaseTransforms(t *testing.T) {
	withColor(t, false, func() {
		SetVar("mixed", "MiXeD")
		t.Cleanup(func() { globalVars = varTable{} })

		tests := []struct {
			name   string
			format string
			want   string
		}{
			{"lowercase var", "{~mixed}", "mixed"},
			{"uppercase var", "{^mixed}", "MIXED"},
			{"uppercase literal", "{^'abc'}", "ABC"},
			{"lowercase literal", "{~'AbC'}", "abc"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Compile(tt.format).Sprint(); got != tt.want {
					t.Errorf("Sprint(%q) = %q, want %q", tt.format, got, tt.want)
				}
			})
		}
	})
}

// TestFmtVarAsymmetry pins the argument-consumption asymmetry: a variable
// whose value is a conversion specifier consumes a variadic argument when
// expanded through {name}, but <$name> only resolves style segments, so the
// same variable applied as a style falls back to literal text and consumes
// nothing.
func TestFmtVarAsymmetry(t *testing.T) {
	withColor(t, false, func() {
		SetVar("count", "%d")
		t.Cleanup(func() { globalVars = varTable{} })

		if got := Compile("n={count}!").Sprint(7); got != "n=7!" {
			t.Errorf("brace expansion got %q, want %q", got, "n=7!")
		}
		if got := Compile("<$count>").Sprint(7); got != "<$count>" {
			t.Errorf("style application got %q, want %q", got, "<$count>")
		}
	})
}

// TestRecursiveVariableMarkup: a variable whose value contains '<' is
// recompiled as a nested markup fragment, bounded at maxFragmentDepth so a
// self-referential binding terminates instead of looping.
func TestRecursiveVariableMarkup(t *testing.T) {
	withColor(t, false, func() {
		SetVar("banner", "<bold>B</>")
		t.Cleanup(func() { globalVars = varTable{} })

		if got := Compile("{banner}!").Sprint(); got != "B!" {
			t.Errorf("got %q, want %q", got, "B!")
		}

		SetVar("loop", "<b>{loop}")
		if got := Compile("{loop}").Sprint(); got != "<b><b><b>" {
			t.Errorf("self-referential expansion got %q, want %q", got, "<b><b><b>")
		}
	})
}

func TestGracefulFallback(t *testing.T) {
	inputs := []string{
		"<unknown>t", "<pad>", "<#zz>", "{missing}", "{~}", "<$undefined>",
		"{'unterminated}", "<red",
	}
	withColor(t, false, func() {
		for _, in := range inputs {
			if got := Compile(in).Sprint(); got != in {
				t.Errorf("Compile(%q).Sprint() = %q, want the input unchanged", in, got)
			}
		}
	})
}

func TestNestedPadding(t *testing.T) {
	withColor(t, false, func() {
		got := Compile("<pad=12><rpad=6>hi</rpad></pad>").Sprint()
		if len(got) != 12 {
			t.Errorf("len(%q) = %d, want 12", got, len(got))
		}
		if got != "    hi      " {
			t.Errorf("got %q, want %q", got, "    hi      ")
		}
	})
}
