// Package sheet models the page level context the linking passes depend on:
// scale, staves, measure stacks and the systems that partition a sheet.
package sheet

import (
	"cmp"
	"slices"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/index"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// InterPrefix is the id prefix of the sheet-wide inter index.
const InterPrefix = "I"

// Scale converts between pixels and interline fractions.
type Scale struct {
	Interline float64 `json:"interline" yaml:"interline"`
}

// ToPixels converts an interline fraction to pixels.
func (s Scale) ToPixels(frac float64) float64 {
	return frac * s.Interline
}

// PixelsToFrac converts pixels to an interline fraction.
func (s Scale) PixelsToFrac(px float64) float64 {
	if s.Interline == 0 {
		return 0
	}
	return px / s.Interline
}

// Staff is a five line staff. Top is the ordinate of the top line.
type Staff struct {
	ID        int
	Top       float64
	Left      float64
	Right     float64
	Interline float64
}

// Bottom returns the ordinate of the bottom line.
func (s *Staff) Bottom() float64 {
	return s.Top + 4*s.Interline
}

// PitchPositionOf returns the pitch position of p: 0 on the middle line, one
// step per line or space, growing downward (-4 top line, +4 bottom line).
func (s *Staff) PitchPositionOf(p geom.Point) float64 {
	mid := s.Top + 2*s.Interline
	return 2 * (p.Y - mid) / s.Interline
}

// Sheet is a page made of ordered systems sharing one inter index.
type Sheet struct {
	Name    string
	Scale   Scale
	Inters  *index.Index[*sig.Inter]
	systems []*System
}

// New creates a sheet with an empty inter index.
func New(name string, scale Scale, vipIDs ...int) *Sheet {
	return &Sheet{
		Name:  name,
		Scale: scale,
		Inters: index.New[*sig.Inter](InterPrefix,
			index.WithVipIDs[*sig.Inter](vipIDs...),
			index.WithValidator(func(i *sig.Inter) bool { return !i.Removed() }),
		),
	}
}

// AddSystem creates a new system with its own graph.
func (s *Sheet) AddSystem(id int) *System {
	sys := &System{
		ID:    id,
		sheet: s,
		graph: sig.NewGraph(s.Inters),
	}
	s.systems = append(s.systems, sys)
	slices.SortStableFunc(s.systems, func(a, b *System) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return sys
}

// Systems returns the systems ordered by id.
func (s *Sheet) Systems() []*System {
	return slices.Clone(s.systems)
}
