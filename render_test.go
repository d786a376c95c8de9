package crprintf

import "testing"

func TestRenderFmt(t *testing.T) {
	tests := []struct {
		spec string
		arg  any
		want string
	}{
		{"%s", "hi", "hi"},
		{"%5d", 42, "   42"},
		{"%-5d", 42, "42   "},
		{"%05.1f", 3.14159, "003.1"},
		{"%x", 255, "ff"},
		{"%#x", 255, "0xff"},
		{"%u", 7, "7"},
		{"%c", 65, "A"},
		{"%i", -3, "-3"},
		{"%lld", int64(1) << 40, "1099511627776"},
		{"%zu", 12, "12"},
		{"%05%", nil, "%"},
		{"%n", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got := renderFmt(tt.spec, classifyArg(tt.spec), tt.arg)
			if got != tt.want {
				t.Errorf("renderFmt(%q, %v) = %q, want %q", tt.spec, tt.arg, got, tt.want)
			}
		})
	}
}

// Each argument-consuming EMIT_FMT takes exactly one argument by static class, so a
// malformed or mistyped conversion cannot desynchronize later ones.
func TestArgConsumptionStaysInSync(t *testing.T) {
	withColor(t, false, func() {
		got := Compile("%s %q %d").Sprint("a", "weird", 3)
		if got[len(got)-1] != '3' {
			t.Errorf("argument cursor drifted: got %q, want trailing %q", got, "3")
		}
	})
}
