package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
	"github.com/matzehuels/heightcompare/pkg/units"
)

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func board() []entity.Entity {
	return []entity.Entity{
		{ID: "a", Name: "Average Man", Height: 175, Gender: entity.Male, Color: entity.Palette[0]},
		{ID: "b", Name: "Average Woman", Height: 162, Gender: entity.Female, Color: entity.Palette[1]},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Formats: []string{"svg", "png", "svg"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if diff := cmp.Diff([]string{"svg", "png"}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %v, got %v", DefaultHeight, opts.Height)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}

	empty := Options{}
	_ = empty.ValidateAndSetDefaults()
	if diff := cmp.Diff([]string{FormatSVG}, empty.Formats); diff != "" {
		t.Errorf("default formats mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative height", Options{Height: -1}, errors.ErrCodeInvalidInput},
		{"huge height", Options{Height: MaxHeight + 1}, errors.ErrCodeInvalidInput},
		{"bad scale", Options{Scale: 20}, errors.ErrCodeInvalidInput},
		{"bad mode", Options{Mode: units.Mode(9)}, errors.ErrCodeInvalidUnit},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Mode: units.ModeFoot, Height: 600, Scale: 3, NoWatermark: true}
	svg := opts.ArtifactKeyOpts(FormatSVG)
	png := opts.ArtifactKeyOpts(FormatPNG)

	if svg.Scale != 0 || png.Scale != 3 {
		t.Errorf("scale should only key PNG: svg=%v png=%v", svg.Scale, png.Scale)
	}
	if svg.Mode != "ft" || svg.Watermark != "-" || !svg.Grid {
		t.Errorf("svg key opts = %+v", svg)
	}
}

func TestResolve(t *testing.T) {
	r := quietRunner(nil)

	res, marks := r.Resolve(context.Background(), nil, units.ModeAuto)
	if res.Unit != units.Centimeter || res.Range.Min != -20 || res.Range.Max != 260 {
		t.Errorf("empty board resolution = %+v", res)
	}
	if len(marks) == 0 {
		t.Error("empty board should still have marks")
	}

	res, _ = r.Resolve(context.Background(), board(), units.ModeFoot)
	if res.Unit != units.Foot {
		t.Errorf("forced feet: unit = %v", res.Unit)
	}
}

func TestRunnerRender(t *testing.T) {
	r := quietRunner(nil)

	result, err := r.Render(context.Background(), board(), Options{Formats: []string{FormatSVG, FormatJSON}, Board: "b1"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(result.Layout.Figures) != 2 {
		t.Errorf("figures = %d, want 2", len(result.Layout.Figures))
	}
	if !bytes.HasPrefix(result.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact missing")
	}

	var out struct {
		Board string `json:"board"`
	}
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &out); err != nil || out.Board != "b1" {
		t.Errorf("json artifact board = %q, err = %v", out.Board, err)
	}
	if result.Stats.People != 2 || result.Stats.Marks != len(result.Marks) {
		t.Errorf("stats = %+v", result.Stats)
	}
}

func TestRunnerCachesArtifacts(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	r := quietRunner(c)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG}}

	first, err := r.Render(ctx, board(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first render should miss the cache")
	}

	second, err := r.Render(ctx, board(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second render should hit the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs")
	}

	// Changing the board changes the hash.
	changed := board()
	changed[0].Height = 180
	third, _ := r.Render(ctx, changed, opts)
	if third.CacheInfo.RenderHit || third.BoardHash == first.BoardHash {
		t.Error("edited board should not reuse cached artifacts")
	}

	// Partial hit: svg cached, json rendered.
	mixed, err := r.Render(ctx, board(), Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if mixed.CacheInfo.RenderHit || !mixed.CacheInfo.Hits[FormatSVG] || mixed.CacheInfo.Hits[FormatJSON] {
		t.Errorf("cache info = %+v", mixed.CacheInfo)
	}

	refreshed, _ := r.Render(ctx, board(), Options{Formats: []string{FormatSVG}, Refresh: true})
	if refreshed.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRenderLayoutUnsupported(t *testing.T) {
	if _, err := renderFormat(layout.Layout{}, "gif", Options{}); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestContentType(t *testing.T) {
	if ContentType(FormatPNG) != "image/png" || ContentType("x") != "application/octet-stream" {
		t.Error("ContentType mismatch")
	}
}
