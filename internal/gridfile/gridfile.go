// Package gridfile reads and writes occupancy grids as YAML documents:
//
//	width: 4
//	height: 2
//	rows:
//	  - "..#."
//	  - "...."
//
// and watches grid files for changes.
package gridfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/gridpath"
)

// Document is the on-disk form of a grid.
type Document struct {
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Rows   []string `yaml:"rows"`
	// Start and End are optional suggested endpoints.
	Start *gridpath.Node `yaml:"start,omitempty"`
	End   *gridpath.Node `yaml:"end,omitempty"`
}

// FromGrid converts g into a Document.
func FromGrid(g *gridpath.Grid) Document {
	return Document{Width: g.Width(), Height: g.Height(), Rows: g.Rows()}
}

// Grid validates the document and builds the snapshot.
func (d Document) Grid() (*gridpath.Grid, error) {
	if len(d.Rows) != d.Height {
		return nil, fmt.Errorf("%w: height is %d but %d rows given", gridpath.ErrInvalidDimensions, d.Height, len(d.Rows))
	}
	g, err := gridpath.ParseGrid(d.Rows...)
	if err != nil {
		return nil, err
	}
	if g.Width() != d.Width {
		return nil, fmt.Errorf("%w: width is %d but rows have %d cells", gridpath.ErrInvalidDimensions, d.Width, g.Width())
	}
	return g, nil
}

// Decode reads one YAML document from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, errors.New("empty grid document")
		}
		return doc, fmt.Errorf("decode grid: %w", err)
	}
	return doc, nil
}

// Encode writes doc to w as YAML.
func Encode(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}
	return enc.Close()
}

// Load reads and validates the grid file at path.
func Load(path string) (Document, *gridpath.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, nil, err
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return doc, nil, fmt.Errorf("%s: %w", path, err)
	}
	g, err := doc.Grid()
	if err != nil {
		return doc, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, g, nil
}

// Save writes doc to path, replacing any existing file.
func Save(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
