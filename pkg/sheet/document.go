package sheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when a document does not describe a
// consistent sheet.
var ErrInvalidDocument = errors.New("invalid document")

// Document is the input of the engine: the systems of a sheet with the
// candidate inters produced upstream and the glyphs still to interpret.
// Inters and relations refer to each other through document local refs.
type Document struct {
	Name      string      `json:"name" yaml:"name" validate:"required"`
	Interline float64     `json:"interline" yaml:"interline" validate:"gt=0"`
	Systems   []SystemDoc `json:"systems" yaml:"systems" validate:"required,dive"`
}

type SystemDoc struct {
	ID        int           `json:"id" yaml:"id"`
	Staves    []StaffDoc    `json:"staves" yaml:"staves" validate:"dive"`
	Stacks    []StackDoc    `json:"stacks,omitempty" yaml:"stacks,omitempty" validate:"dive"`
	Glyphs    []Glyph       `json:"glyphs,omitempty" yaml:"glyphs,omitempty" validate:"dive"`
	Inters    []InterDoc    `json:"inters" yaml:"inters" validate:"dive"`
	Relations []RelationDoc `json:"relations,omitempty" yaml:"relations,omitempty" validate:"dive"`
}

type StaffDoc struct {
	ID    int     `json:"id" yaml:"id"`
	Top   float64 `json:"top" yaml:"top"`
	Left  float64 `json:"left" yaml:"left"`
	Right float64 `json:"right" yaml:"right" validate:"gtfield=Left"`
}

type StackDoc struct {
	Left  float64 `json:"left" yaml:"left"`
	Right float64 `json:"right" yaml:"right" validate:"gtfield=Left"`
}

// Glyph is a classified connected component not yet turned into an inter.
type Glyph struct {
	Ref      string      `json:"ref" yaml:"ref" validate:"required"`
	Shape    sig.Shape   `json:"shape" yaml:"shape" validate:"required"`
	Grade    float64     `json:"grade" yaml:"grade" validate:"min=0,max=1"`
	Bounds   geom.Rect   `json:"bounds" yaml:"bounds"`
	Centroid *geom.Point `json:"centroid,omitempty" yaml:"centroid,omitempty"`
	Staff    int         `json:"staff" yaml:"staff"`
}

// MassCenter returns the centroid, the bounds center when unknown.
func (g Glyph) MassCenter() geom.Point {
	if g.Centroid != nil {
		return *g.Centroid
	}
	return g.Bounds.Center()
}

type InterDoc struct {
	Ref       string `json:"ref" yaml:"ref" validate:"required"`
	sig.Inter `yaml:",inline"`
}

type RelationDoc struct {
	From string      `json:"from" yaml:"from" validate:"required"`
	To   string      `json:"to" yaml:"to" validate:"required"`
	Kind sig.RelKind `json:"kind" yaml:"kind" validate:"required"`
	Side sig.Side    `json:"side,omitempty" yaml:"side,omitempty"`
}

// Format is the encoding of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf guesses the format from a file name, JSON by default.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads and validates a document.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeBytes is Decode for an in-memory document.
func DecodeBytes(data []byte, format Format) (*Document, error) {
	return Decode(bytes.NewReader(data), format)
}

// DecodeFile reads a document from disk, the format follows the extension.
func DecodeFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatOf(path))
}

var validate = validator.New()

// Validate checks field constraints, kinds and refs.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	for _, sys := range d.Systems {
		refs := make(map[string]struct{}, len(sys.Inters)+len(sys.Glyphs))
		for _, g := range sys.Glyphs {
			if _, dup := refs[g.Ref]; dup {
				return fmt.Errorf("%w: system %d: duplicate ref %q", ErrInvalidDocument, sys.ID, g.Ref)
			}
			refs[g.Ref] = struct{}{}
		}
		for _, in := range sys.Inters {
			if !in.Kind.Valid() {
				return fmt.Errorf("%w: system %d: inter %q has unknown kind %q", ErrInvalidDocument, sys.ID, in.Ref, in.Kind)
			}
			if _, dup := refs[in.Ref]; dup {
				return fmt.Errorf("%w: system %d: duplicate ref %q", ErrInvalidDocument, sys.ID, in.Ref)
			}
			refs[in.Ref] = struct{}{}
		}
		for _, rel := range sys.Relations {
			for _, ref := range []string{rel.From, rel.To} {
				if _, ok := refs[ref]; !ok {
					return fmt.Errorf("%w: system %d: relation %s refers to unknown %q", ErrInvalidDocument, sys.ID, rel.Kind, ref)
				}
			}
		}
	}
	return nil
}
