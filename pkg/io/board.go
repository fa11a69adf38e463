package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// Format is a board file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported board file %q (want .json, .yaml or .yml)", filepath.Base(path))
}

// Board is the file representation of a chart.
type Board struct {
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Mode   units.Mode `json:"mode" yaml:"mode"`
	People []Person   `json:"people" yaml:"people"`
}

// Person is one entry of a board file.
type Person struct {
	Name   string `json:"name" yaml:"name"`
	Height Height `json:"height" yaml:"height"`
	Gender string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
	Image  string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Height is a height in centimeters that decodes from a number or a height
// expression.
type Height float64

// UnmarshalJSON accepts 175, 175.5 or "5'9\"".
func (h *Height) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return h.parse(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidHeight, err, "invalid height %s", data)
	}
	*h = Height(v)
	return nil
}

// UnmarshalYAML accepts numeric and string scalars.
func (h *Height) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.New(errors.ErrCodeInvalidHeight, "line %d: height must be a number or a string", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		v, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidHeight, err, "line %d: invalid height", node.Line)
		}
		*h = Height(v)
		return nil
	}
	return h.parse(node.Value)
}

func (h *Height) parse(expr string) error {
	cm, err := units.ParseHeight(expr)
	if err != nil {
		return err
	}
	*h = Height(cm)
	return nil
}

// ReadBoard decodes a board file from r. ReadBoard does not close r.
func ReadBoard(r io.Reader, format Format) (*Board, error) {
	var b Board
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			return nil, decodeErr(err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil && err != io.EOF {
			return nil, decodeErr(err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported board format %q", format)
	}
	if _, err := b.Specs(); err != nil {
		return nil, err
	}
	return &b, nil
}

func decodeErr(err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode board")
}

// ImportBoard reads the board file at path; the format follows the extension.
func ImportBoard(path string) (*Board, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "board file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	b, err := ReadBoard(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Specs converts the people to entity specs, validating each one.
func (b *Board) Specs() ([]entity.Spec, error) {
	specs := make([]entity.Spec, len(b.People))
	for i, p := range b.People {
		s, err := p.Spec()
		if err != nil {
			return nil, fmt.Errorf("person %d: %w", i+1, err)
		}
		specs[i] = s
	}
	return specs, nil
}

// Spec validates the person and converts it to an entity spec.
func (p Person) Spec() (entity.Spec, error) {
	if err := errors.ValidateName(p.Name); err != nil {
		return entity.Spec{}, err
	}
	if err := errors.ValidateHeight(float64(p.Height)); err != nil {
		return entity.Spec{}, err
	}
	s := entity.Spec{
		Name:     p.Name,
		Height:   float64(p.Height),
		Gender:   entity.ParseGender(p.Gender),
		ImageURL: p.Image,
	}
	if p.Color != "" {
		c, err := entity.ParseColor(p.Color)
		if err != nil {
			return entity.Spec{}, err
		}
		s.Color = &c
	}
	if p.Image != "" {
		if err := errors.ValidateURL(p.Image); err != nil {
			return entity.Spec{}, err
		}
	}
	return s, nil
}

// Collection builds a fresh collection holding the board's people.
func (b *Board) Collection(opts ...entity.Option) (*entity.Collection, error) {
	specs, err := b.Specs()
	if err != nil {
		return nil, err
	}
	c := entity.NewCollection(opts...)
	for i, s := range specs {
		if _, err := c.Add(s); err != nil {
			return nil, fmt.Errorf("person %d: %w", i+1, err)
		}
	}
	return c, nil
}

// FromPeople builds a board from entities.
func FromPeople(name string, mode units.Mode, people []entity.Entity) *Board {
	b := &Board{Name: name, Mode: mode, People: make([]Person, len(people))}
	for i, e := range people {
		b.People[i] = Person{
			Name:   e.Name,
			Height: Height(e.Height),
			Gender: string(e.Gender),
			Color:  e.Color.Hex(),
			Image:  e.ImageURL,
		}
	}
	return b
}

// WriteBoard encodes b to w.
func WriteBoard(w io.Writer, b *Board, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported board format %q", format)
}

// ExportBoard writes b to path; the format follows the extension.
func ExportBoard(path string, b *Board) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteBoard(&buf, b, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
