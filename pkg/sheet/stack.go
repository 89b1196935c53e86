package sheet

import (
	"cmp"
	"math"
	"slices"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// MeasureStack answers the chord queries the linking passes rely on.
// Standard chords exclude grace chords.
type MeasureStack interface {
	StandardChordAbove(p geom.Point) *sig.Inter
	StandardChordBelow(p geom.Point) *sig.Inter
	StandardChordsAbove(p geom.Point) []*sig.Inter
	StandardChordsBelow(p geom.Point) []*sig.Inter
	EventChord(p geom.Point) *sig.Inter
}

// Stack is the vertical slice of a system made of one measure per staff.
// Its chords are the standard chords of the system graph whose center lies
// within [Left, Right).
type Stack struct {
	Left  float64
	Right float64

	system *System
}

// Chords returns the standard chords of the stack.
func (s *Stack) Chords() []*sig.Inter {
	var out []*sig.Inter
	for _, chord := range s.system.graph.Inters(sig.KindChord) {
		x := chord.Center().X
		if x >= s.Left && x < s.Right {
			out = append(out, chord)
		}
	}
	return out
}

// StandardChordsAbove returns the chords above p whose abscissa range
// contains p, closest first.
func (s *Stack) StandardChordsAbove(p geom.Point) []*sig.Inter {
	var out []*sig.Inter
	for _, chord := range s.Chords() {
		if chord.Bounds.ContainsX(p.X) && chord.Bounds.Bottom() <= p.Y {
			out = append(out, chord)
		}
	}
	slices.SortStableFunc(out, func(a, b *sig.Inter) int {
		return cmp.Compare(b.Bounds.Bottom(), a.Bounds.Bottom())
	})
	return out
}

// StandardChordsBelow returns the chords below p whose abscissa range
// contains p, closest first.
func (s *Stack) StandardChordsBelow(p geom.Point) []*sig.Inter {
	var out []*sig.Inter
	for _, chord := range s.Chords() {
		if chord.Bounds.ContainsX(p.X) && chord.Bounds.Y >= p.Y {
			out = append(out, chord)
		}
	}
	slices.SortStableFunc(out, func(a, b *sig.Inter) int {
		return cmp.Compare(a.Bounds.Y, b.Bounds.Y)
	})
	return out
}

func (s *Stack) StandardChordAbove(p geom.Point) *sig.Inter {
	if chords := s.StandardChordsAbove(p); len(chords) > 0 {
		return chords[0]
	}
	return nil
}

func (s *Stack) StandardChordBelow(p geom.Point) *sig.Inter {
	if chords := s.StandardChordsBelow(p); len(chords) > 0 {
		return chords[0]
	}
	return nil
}

// EventChord returns the chord best aligned with p: the smallest horizontal
// distance wins, then the smallest vertical distance.
func (s *Stack) EventChord(p geom.Point) *sig.Inter {
	var best *sig.Inter
	bestDx, bestDy := math.Inf(1), math.Inf(1)
	for _, chord := range s.Chords() {
		dx := rangeDistance(p.X, chord.Bounds.X, chord.Bounds.Right())
		dy := rangeDistance(p.Y, chord.Bounds.Y, chord.Bounds.Bottom())
		if dx < bestDx || (dx == bestDx && dy < bestDy) {
			best, bestDx, bestDy = chord, dx, dy
		}
	}
	return best
}

func rangeDistance(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}
