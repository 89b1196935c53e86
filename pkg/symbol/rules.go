package symbol

import (
	"math"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// linkDynamicsWithChord links a dynamics mark to the chord it is the most
// horizontally aligned with, within a lookup box around the mark.
func (l *Linker) linkDynamicsWithChord(dyn *sig.Inter, chords []*sig.Inter) (bool, error) {
	scale := l.system.Scale()
	s := l.c.ChordDynamics
	center := dyn.Center()
	xMax := scale.ToPixels(s.XGapMax)
	yMax := scale.ToPixels(s.YGapMax)
	box := geom.Rect{
		X:      center.X - xMax,
		Y:      dyn.Bounds.Y - yMax,
		Width:  2 * xMax,
		Height: dyn.Bounds.Height + 2*yMax,
	}

	candidates := l.graph.IntersectedInters(chords, sig.ByAbscissa, box)
	best, ok := sig.Best(candidates, func(chord *sig.Inter) (*sig.Relation, float64) {
		xGap := math.Abs(chord.Center().X - center.X)
		yGap := geom.VerticalGap(dyn.Bounds, chord.Bounds)
		rel := sig.NewConnection(sig.RelChordDynamics, scale.PixelsToFrac(xGap), scale.PixelsToFrac(yGap), s)
		return rel, xGap
	})
	if !ok {
		return false, nil
	}
	if _, err := l.graph.AddEdge(best.Inter, dyn, best.Relation); err != nil {
		return false, err
	}
	return true, nil
}

// linkLyrics maps every syllable of a lyrics line to a chord.
func (l *Linker) linkLyrics(sentence *sig.Inter) error {
	for _, item := range l.graph.Members(sentence) {
		if item.Kind != sig.KindLyricItem {
			continue
		}
		ok, err := l.mapLyricItem(item)
		if err != nil {
			return err
		}
		if ok {
			l.linked(PassTexts)
		} else {
			l.unlinked(PassTexts, item, "No chord for lyric item")
		}
	}
	return nil
}

// mapLyricItem links a syllable to the closest chord, abscissa wise, of the
// staff right above the lyrics line.
func (l *Linker) mapLyricItem(item *sig.Inter) (bool, error) {
	center := item.Center()
	staff := l.system.StaffAbove(center)
	if staff == nil {
		return false, nil
	}

	var chords []*sig.Inter
	for _, chord := range l.graph.Inters(sig.KindChord) {
		if chord.Staff == staff.ID && chord.Bounds.Bottom() <= center.Y {
			chords = append(chords, chord)
		}
	}

	scale := l.system.Scale()
	s := l.c.ChordSyllable
	best, ok := sig.Best(chords, func(chord *sig.Inter) (*sig.Relation, float64) {
		xGap := math.Abs(chord.Center().X - center.X)
		yGap := geom.VerticalGap(item.Bounds, chord.Bounds)
		rel := sig.NewConnection(sig.RelChordSyllable, scale.PixelsToFrac(xGap), scale.PixelsToFrac(yGap), s)
		return rel, xGap
	})
	if !ok {
		return false, nil
	}
	if _, err := l.graph.AddEdge(best.Inter, item, best.Relation); err != nil {
		return false, err
	}
	return true, nil
}
