package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/units"
)

const yamlBoard = `name: Team
mode: ft
people:
  - name: Ana
    height: 168
    gender: Female
    color: "#c44144"
  - name: Ben
    height: 5'11"
    image: https://example.com/ben.png
  - name: Cy
    height: "1.8m"
`

func TestReadBoardYAML(t *testing.T) {
	b, err := ReadBoard(strings.NewReader(yamlBoard), FormatYAML)
	if err != nil {
		t.Fatalf("ReadBoard() error: %v", err)
	}
	if b.Name != "Team" || b.Mode != units.ModeFoot {
		t.Errorf("name, mode = %q, %v", b.Name, b.Mode)
	}
	heights := []float64{float64(b.People[0].Height), float64(b.People[1].Height), float64(b.People[2].Height)}
	if diff := cmp.Diff([]float64{168, 180, 180}, heights, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("heights mismatch (-want +got):\n%s", diff)
	}

	c, err := b.Collection()
	if err != nil {
		t.Fatal(err)
	}
	people := c.List()
	if people[0].Gender != entity.Female || people[0].Color.Hex() != "#c44144" {
		t.Errorf("Ana = %+v", people[0])
	}
	if people[1].ImageURL != "https://example.com/ben.png" || people[1].Gender != entity.Other {
		t.Errorf("Ben = %+v", people[1])
	}
	if people[2].Color.IsZero() {
		t.Error("missing color should get a palette color")
	}
}

func TestReadBoardJSON(t *testing.T) {
	in := `{"mode": "cm", "people": [{"name": "Ana", "height": 168.5}, {"name": "Ben", "height": "6ft"}]}`
	b, err := ReadBoard(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("ReadBoard() error: %v", err)
	}
	if b.Mode != units.ModeCentimeter || len(b.People) != 2 {
		t.Fatalf("board = %+v", b)
	}
	if b.People[0].Height != 168.5 || b.People[1].Height != Height(units.FeetInchesToCm(6, 0)) {
		t.Errorf("heights = %v, %v", b.People[0].Height, b.People[1].Height)
	}
}

func TestReadBoardErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		format Format
		code   errors.Code
	}{
		{"bad json", `{`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"people": [], "extra": 1}`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"bad height expr", `{"people": [{"name": "x", "height": "tall"}]}`, FormatJSON, errors.ErrCodeInvalidHeight},
		{"zero height", "people:\n  - name: x\n    height: 0\n", FormatYAML, errors.ErrCodeInvalidHeight},
		{"empty name", "people:\n  - name: \"\"\n    height: 100\n", FormatYAML, errors.ErrCodeInvalidName},
		{"bad color", "people:\n  - name: x\n    height: 100\n    color: blue\n", FormatYAML, errors.ErrCodeInvalidColor},
		{"bad image", "people:\n  - name: x\n    height: 100\n    image: javascript:alert(1)\n", FormatYAML, errors.ErrCodeInvalidInput},
		{"bad mode", "mode: furlong\n", FormatYAML, errors.ErrCodeInvalidUnit},
		{"list height", "people:\n  - name: x\n    height: [1]\n", FormatYAML, errors.ErrCodeInvalidHeight},
		{"bad format", `{}`, Format("toml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBoard(strings.NewReader(tt.in), tt.format)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestReadBoardEmptyYAML(t *testing.T) {
	b, err := ReadBoard(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.People) != 0 || b.Mode != units.ModeAuto {
		t.Errorf("empty board = %+v", b)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	c := entity.NewCollection()
	c.Add(entity.Spec{Name: "Ana", Height: 168, Gender: entity.Female, Color: entity.Palette[1]})
	c.Add(entity.Spec{Name: "Goku", Height: 175, Gender: entity.Male, Color: entity.Palette[0], ImageURL: "https://img.example/goku.png"})
	want := FromPeople("Round trip", units.ModeFoot, c.List())

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "board"+ext)
			if err := ExportBoard(path, want); err != nil {
				t.Fatalf("ExportBoard() error: %v", err)
			}
			got, err := ImportBoard(path)
			if err != nil {
				t.Fatalf("ImportBoard() error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteBoardYAMLIsReadable(t *testing.T) {
	var buf bytes.Buffer
	b := &Board{Mode: units.ModeCentimeter, People: []Person{{Name: "Ana", Height: 168}}}
	if err := WriteBoard(&buf, b, FormatYAML); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "mode: cm") || !strings.Contains(out, "height: 168") {
		t.Errorf("yaml output:\n%s", out)
	}
}

func TestImportBoardErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ImportBoard(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	txt := filepath.Join(dir, "board.txt")
	os.WriteFile(txt, []byte("{}"), 0o644)
	if _, err := ImportBoard(txt); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad extension error = %v", err)
	}
}
