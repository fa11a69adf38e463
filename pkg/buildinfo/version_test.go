package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} ") || !strings.Contains(tmpl, Version) {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.HasSuffix(tmpl, "\n") {
		t.Error("template should end with a newline")
	}
}

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
