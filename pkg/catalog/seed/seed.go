// Package seed loads a catalog from a YAML file, for offline use and tests.
//
// The file mirrors the hosted tables, heights in meters:
//
//	categories:
//	  - {id: 3, name: Anime, path: anime}
//	characters:
//	  - id: goku
//	    name: Goku
//	    height: 1.75
//	    cat_ids: [3]
//	    gender: male
package seed

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/errors"
)

// File is the YAML document layout.
type File struct {
	Categories []catalog.CategoryRecord `yaml:"categories"`
	Characters []catalog.Record         `yaml:"characters"`
}

// Read decodes a seed document and returns it as a snapshot.
func Read(r io.Reader) (*catalog.Snapshot, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode seed catalog")
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	cats := make([]catalog.Category, len(f.Categories))
	for i, c := range f.Categories {
		cats[i] = catalog.FromCategoryRecord(c)
	}
	return catalog.NewSnapshot(catalog.FromRecords(f.Characters, cats), cats), nil
}

// Load reads the seed file at path.
func Load(path string) (*catalog.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "seed catalog %s", path)
		}
		return nil, fmt.Errorf("open seed catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes chars and cats as a seed document.
func Write(w io.Writer, chars []catalog.Character, cats []catalog.Category) error {
	f := File{
		Categories: make([]catalog.CategoryRecord, len(cats)),
		Characters: make([]catalog.Record, len(chars)),
	}
	for i, c := range cats {
		f.Categories[i] = catalog.CategoryRecord{ID: c.ID, Name: c.Name, Path: c.Path, PID: c.ParentID}
	}
	for i, c := range chars {
		f.Characters[i] = catalog.ToRecord(c)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func (f File) validate() error {
	seen := make(map[string]bool, len(f.Characters))
	for i, c := range f.Characters {
		if c.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "character %d: missing id", i)
		}
		if seen[c.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "character %q: duplicate id", c.ID)
		}
		seen[c.ID] = true
		if err := errors.ValidateName(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "character %q", c.ID)
		}
		if !(c.Height > 0) {
			return errors.New(errors.ErrCodeInvalidHeight, "character %q: height must be positive meters, got %v", c.ID, c.Height)
		}
	}
	return nil
}
