// Package fonts provides the font data used by the chart sinks.
//
// The Go font family (golang.org/x/image/font/gofont) is compiled into the
// binary, so PDF and PNG output looks the same on every machine. SVG output
// references the family by name and falls back to system sans-serif fonts.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Regular returns the Go Regular TTF data.
func Regular() []byte { return goregular.TTF }

// Bold returns the Go Bold TTF data.
func Bold() []byte { return gobold.TTF }

// Cache for base64-encoded fonts (computed once on first access).
var (
	regularBase64     string
	regularBase64Once sync.Once
)

// RegularBase64 returns the Go Regular TTF as base64, for embedding in an
// SVG @font-face rule. The result is cached after first computation.
func RegularBase64() string {
	regularBase64Once.Do(func() {
		regularBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return regularBase64
}

// FontFamily is the family name registered for the embedded font.
const FontFamily = "Go"

// FallbackFontFamily is the CSS font-family list used in SVG output.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`
