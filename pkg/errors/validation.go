package errors

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength bounds entity and board names.
const MaxNameLength = 120

// ValidateName checks an entity or board name: not blank, at most
// MaxNameLength runes, and free of control characters.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}
	if len([]rune(name)) > MaxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidateHeight checks that a height in centimeters is finite and positive.
func ValidateHeight(cm float64) error {
	if math.IsNaN(cm) || math.IsInf(cm, 0) {
		return New(ErrCodeInvalidHeight, "height must be a finite number")
	}
	if cm <= 0 {
		return New(ErrCodeInvalidHeight, "height must be positive, got %g", cm)
	}
	return nil
}

// ValidateURL checks a figure image reference: an absolute http or
// https URL with a host. The SVG sink emits it as an <image> href, so
// other schemes are refused.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "image URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "image URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "image URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "image URL %q has no host", rawURL)
	}
	return nil
}

var boardIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateBoardID checks that a board identifier is safe to use as a file
// name and a cache key.
func ValidateBoardID(id string) error {
	if !boardIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid board id: %q", id)
	}
	return nil
}
