package cli

import (
	"bytes"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	fn()
	return buf.String()
}

func TestSwatch(t *testing.T) {
	tests := []struct {
		in       string
		wantHex  bool
		wantIcon bool
	}{
		{"#3366cc", true, true},
		{"", false, false},
		{"red", false, false},
	}
	for _, tt := range tests {
		got := swatch(tt.in)
		if strings.Contains(got, iconSwatch) != tt.wantIcon {
			t.Errorf("swatch(%q) = %q, icon = %v", tt.in, got, !tt.wantIcon)
		}
		if tt.wantHex && !strings.HasSuffix(got, tt.in) {
			t.Errorf("swatch(%q) = %q, want hex suffix", tt.in, got)
		}
		if !tt.wantIcon && got != tt.in {
			t.Errorf("swatch(%q) = %q, want unchanged", tt.in, got)
		}
	}
}

func TestPrintChartStats(t *testing.T) {
	out := captureStdout(t, func() { printChartStats(3, 14, "ft", true) })
	for _, want := range []string{"3 people", "14 marks", "ft", iconCached} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	out = captureStdout(t, func() { printChartStats(0, 0, "cm", false) })
	if !strings.Contains(out, iconFresh) {
		t.Errorf("output %q missing %q", out, iconFresh)
	}
}

func TestPrintHelpers(t *testing.T) {
	out := captureStdout(t, func() {
		printSuccess("Added %s", "Ana")
		printError("failed %d", 2)
		printInfo("note")
		printKeyValue("Unit", "cm")
		printFile("out/team.svg")
	})
	for _, want := range []string{iconSuccess + " Added Ana", iconError + " failed 2", iconInfo + " note", "Unit", "out/team.svg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
