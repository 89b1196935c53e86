package sig

import (
	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/index"
)

// Voice identifies a melodic line.
type Voice struct {
	ID int `json:"id" yaml:"id"`
}

// AlterInfo is the payload of alteration inters.
type AlterInfo struct {
	Pitch         int     `json:"pitch" yaml:"pitch"`
	MeasuredPitch float64 `json:"measured_pitch" yaml:"measured_pitch"`
}

// TextInfo is the payload of sentences and words.
type TextInfo struct {
	Role  TextRole `json:"role,omitempty" yaml:"role,omitempty"`
	Value string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Inter is one interpretation of a piece of the sheet. Kind selects the
// variant, kind specific data lives in the matching payload field.
type Inter struct {
	index.Base `yaml:",inline"`

	Kind    Kind      `json:"kind" yaml:"kind"`
	Shape   Shape     `json:"shape,omitempty" yaml:"shape,omitempty"`
	Grade   float64   `json:"grade" yaml:"grade"`
	Impacts *Impacts  `json:"impacts,omitempty" yaml:"impacts,omitempty"`
	Bounds  geom.Rect `json:"bounds" yaml:"bounds"`
	Staff   int       `json:"staff,omitempty" yaml:"staff,omitempty"`
	Voice   *Voice    `json:"voice,omitempty" yaml:"voice,omitempty"`

	Alter *AlterInfo `json:"alter,omitempty" yaml:"alter,omitempty"`
	Line  *geom.Line `json:"line,omitempty" yaml:"line,omitempty"`
	Text  *TextInfo  `json:"text,omitempty" yaml:"text,omitempty"`

	sig     *Graph
	handle  int
	removed bool
}

// NewInter creates a detached inter.
func NewInter(kind Kind, shape Shape, grade float64, bounds geom.Rect) *Inter {
	return &Inter{Kind: kind, Shape: shape, Grade: grade, Bounds: bounds}
}

// BestGrade returns the grade derived from impacts when present, the
// intrinsic grade otherwise.
func (i *Inter) BestGrade() float64 {
	if i.Impacts != nil {
		return i.Impacts.Grade()
	}
	return i.Grade
}

// Graph returns the graph owning the inter, nil when detached.
func (i *Inter) Graph() *Graph {
	return i.sig
}

// Removed reports whether the inter has been deleted from its graph.
func (i *Inter) Removed() bool {
	return i.removed
}

func (i *Inter) Center() geom.Point {
	return i.Bounds.Center()
}

// TopLine returns the wedge top line, falling back to the bounds mid line.
func (i *Inter) TopLine() geom.Line {
	if i.Line != nil {
		return *i.Line
	}
	return geom.Line{P1: i.Bounds.CenterLeft(), P2: i.Bounds.CenterRight()}
}

// Location returns the text anchor, the bottom left corner of the bounds.
func (i *Inter) Location() geom.Point {
	return geom.Point{X: i.Bounds.X, Y: i.Bounds.Bottom()}
}

// Role returns the text role of a sentence, empty when unknown.
func (i *Inter) Role() TextRole {
	if i.Text == nil {
		return ""
	}
	return i.Text.Role
}

// Visitor dispatches on the kind of an inter. Kinds without entry are ignored.
type Visitor map[Kind]func(*Inter)

// Accept calls the visitor function registered for the inter kind.
func (i *Inter) Accept(v Visitor) {
	if fn, ok := v[i.Kind]; ok {
		fn(i)
	}
}
