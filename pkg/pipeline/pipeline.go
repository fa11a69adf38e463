// Package pipeline provides the chart pipeline shared by the CLI and the API.
//
// The pipeline turns a collection of people into rendered charts in three
// steps:
//
//  1. Resolve: select the display unit and window, then generate ruler marks
//  2. Layout: place figures, labels and ticks on the canvas
//  3. Render: produce output in the requested formats (SVG, PNG, PDF, JSON)
//
// Rendered artifacts are cached per board content and options, so repeated
// requests for an unchanged board are served from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Render(ctx, board.People, pipeline.Options{
//	    Mode:    units.ModeAuto,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
	"github.com/matzehuels/heightcompare/pkg/ruler"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultHeight is the default drawing height in pixels.
	DefaultHeight = layout.DefaultHeight

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// MaxHeight bounds the drawing height accepted from callers.
	MaxHeight = 4000

	// ArtifactTTL is how long rendered artifacts stay cached.
	ArtifactTTL = 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps formats to their MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a chart render.
// This struct supports JSON serialization for API requests.
type Options struct {
	Mode    units.Mode `json:"mode"`
	Formats []string   `json:"formats,omitempty"`

	// Height is the drawing height in pixels (default 600).
	Height float64 `json:"height,omitempty"`
	Title  string  `json:"title,omitempty"`

	// Watermark replaces the default watermark text; NoWatermark removes it.
	Watermark   string `json:"watermark,omitempty"`
	NoWatermark bool   `json:"no_watermark,omitempty"`
	NoGrid      bool   `json:"no_grid,omitempty"`

	// Scale is the PNG scale factor (default 2).
	Scale float64 `json:"scale,omitempty"`

	// Board names the board in JSON output.
	Board string `json:"-"`

	// Refresh bypasses the artifact cache.
	Refresh bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Resolution scale.Resolution
	Marks      []ruler.Mark
	Layout     layout.Layout

	// BoardHash is the content hash of the people that were rendered.
	BoardHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	People     int
	Marks      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which artifacts came from the cache.
type CacheInfo struct {
	RenderHit bool            // every requested artifact was cached
	Hits      map[string]bool // per-format cache hits
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = dedupe(o.Formats)

	switch {
	case o.Height == 0:
		o.Height = DefaultHeight
	case o.Height < 0 || o.Height > MaxHeight:
		return errors.New(errors.ErrCodeInvalidInput, "chart height %v out of range (1-%d)", o.Height, MaxHeight)
	}
	switch {
	case o.Scale == 0:
		o.Scale = DefaultScale
	case o.Scale < 0 || o.Scale > 8:
		return errors.New(errors.ErrCodeInvalidInput, "png scale %v out of range (0-8]", o.Scale)
	}
	if o.Mode < units.ModeAuto || o.Mode > units.ModeFoot {
		return errors.New(errors.ErrCodeInvalidUnit, "unknown unit mode %d", o.Mode)
	}
	return nil
}

// LayoutOptions returns the layout options for these settings.
func (o *Options) LayoutOptions() []layout.Option {
	opts := []layout.Option{layout.WithHeight(o.Height), layout.WithTitle(o.Title)}
	switch {
	case o.NoWatermark:
		opts = append(opts, layout.WithWatermark(""))
	case o.Watermark != "":
		opts = append(opts, layout.WithWatermark(o.Watermark))
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:    format,
		Mode:      o.Mode.String(),
		Height:    int(o.Height),
		Title:     o.Title,
		Watermark: o.Watermark,
		Grid:      !o.NoGrid,
	}
	if o.NoWatermark {
		k.Watermark = "-"
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if ct, ok := ContentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// String formats options for logs.
func (o Options) String() string {
	return fmt.Sprintf("mode=%s formats=%v height=%v", o.Mode, o.Formats, o.Height)
}
