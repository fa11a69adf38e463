package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/units"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"case and spaces", " SVG , Json ", []string{"svg", "json"}},
		{"drops empty entries", "png,,", []string{"png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "boards/team.yaml", "boards/team"},
		{"", "team", "team"},
		{"-", "team.yaml", "-"},
		{"out/chart.svg", "team.yaml", "out/chart"},
		{"out/chart.PDF", "team.yaml", "out/chart.PDF"},
		{"out/chart", "team.yaml", "out/chart"},
		{"out/v1.2", "team.yaml", "out/v1.2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestChartFlagsOptions(t *testing.T) {
	t.Run("board mode and name", func(t *testing.T) {
		f := chartFlags{}
		opts, err := f.options("Team", units.ModeFoot)
		if err != nil {
			t.Fatal(err)
		}
		if opts.Mode != units.ModeFoot || opts.Title != "Team" || opts.Board != "Team" {
			t.Errorf("opts = %+v", opts)
		}
		if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
			t.Errorf("formats = %v", opts.Formats)
		}
	})

	t.Run("mode flag overrides board", func(t *testing.T) {
		f := chartFlags{mode: "cm", title: "Custom", formats: "png,json"}
		opts, err := f.options("Team", units.ModeFoot)
		if err != nil {
			t.Fatal(err)
		}
		if opts.Mode != units.ModeCentimeter || opts.Title != "Custom" || len(opts.Formats) != 2 {
			t.Errorf("opts = %+v", opts)
		}
	})

	t.Run("bad mode", func(t *testing.T) {
		f := chartFlags{mode: "yards"}
		if _, err := f.options("Team", units.ModeAuto); !errors.Is(err, errors.ErrCodeInvalidUnit) {
			t.Errorf("err = %v, want INVALID_UNIT", err)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		f := chartFlags{formats: "svg,bmp"}
		if _, err := f.options("Team", units.ModeAuto); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("err = %v, want INVALID_FORMAT", err)
		}
	})

	t.Run("stdout takes one format", func(t *testing.T) {
		f := chartFlags{output: "-", formats: "svg,png"}
		if _, err := f.options("Team", units.ModeAuto); err == nil {
			t.Error("expected error")
		}
		f.formats = "png"
		if _, err := f.options("Team", units.ModeAuto); err != nil {
			t.Errorf("single format to stdout: %v", err)
		}
	})
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "dir", "chart")
	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	}

	paths, err := writeArtifacts(base, artifacts, []string{"svg", "pdf", "json"})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || paths[0] != base+".svg" || paths[1] != base+".json" {
		t.Errorf("paths = %v", paths)
	}
	data, err := os.ReadFile(base + ".svg")
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("svg = %q, %v", data, err)
	}
	if _, err := os.Stat(base + ".pdf"); !os.IsNotExist(err) {
		t.Error("missing artifact should not be written")
	}
}

func TestWatchFileDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "team.yaml")
	if err := os.WriteFile(path, []byte("name: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	c := New(io.Discard, LogInfo)
	done := make(chan error, 1)
	go func() {
		done <- c.watchFile(ctx, path, func() error {
			calls <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("name: b\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("no re-render after write")
	}
	select {
	case <-calls:
		t.Error("burst of writes should trigger one re-render")
	case <-time.After(watchDebounce * 2):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchFile returned %v", err)
	}
}
