package symbol

import (
	"math"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// linkFermatas builds a fermata out of each arc and its dot, then links it to
// a barline or to chords. Arcs without dot, and fermatas that cannot be linked
// along with their parts, are deleted.
func (l *Linker) linkFermatas() error {
	for _, arc := range l.graph.Inters(sig.KindFermataArc) {
		if !l.graph.Contains(arc) {
			continue
		}
		l.vip(PassFermatas, arc)

		dot := l.fermataDot(arc)
		if dot == nil {
			logger.Debug("[Links] Fermata arc without dot", "system", l.system.ID, "id", arc.ID())
			l.delete(arc)
			continue
		}

		fermata := newFermata(arc, dot)
		if err := l.graph.AddVertex(fermata); err != nil {
			return err
		}
		for _, part := range []*sig.Inter{arc, dot} {
			if _, err := l.graph.AddEdge(fermata, part, sig.NewRelation(sig.RelContainment)); err != nil {
				return err
			}
		}

		ok, err := l.linkFermataWithBarline(fermata)
		if err != nil {
			return err
		}
		if !ok {
			if ok, err = l.linkFermataWithChords(fermata); err != nil {
				return err
			}
		}
		if !ok {
			l.unlinked(PassFermatas, fermata, "No barline or chord for fermata")
			l.delete(fermata, arc, dot)
			continue
		}
		l.linked(PassFermatas)
	}
	return nil
}

func (l *Linker) fermataDot(arc *sig.Inter) *sig.Inter {
	for _, e := range l.graph.Relations(arc, sig.RelDotFermata) {
		if other := l.graph.Opposite(arc, e); other.Kind == sig.KindFermataDot {
			return other
		}
	}
	return nil
}

// newFermata creates the composite fermata of arc and dot. An arc opened
// downward gives a fermata above the staff, FERMATA, an arc opened upward
// gives FERMATA_BELOW.
func newFermata(arc, dot *sig.Inter) *sig.Inter {
	shape := sig.ShapeFermata
	if arc.Shape == sig.ShapeFermataArcBelow {
		shape = sig.ShapeFermataBelow
	}
	grade := 0.5 * (arc.BestGrade() + dot.BestGrade())
	fermata := sig.NewInter(sig.KindFermata, shape, grade, arc.Bounds.Union(dot.Bounds))
	fermata.Staff = arc.Staff
	return fermata
}

func (l *Linker) linkFermataWithBarline(fermata *sig.Inter) (bool, error) {
	scale := l.system.Scale()
	s := l.c.FermataBarline
	center := fermata.Center()
	xMax := scale.ToPixels(s.XGapMax)
	yMax := scale.ToPixels(s.YGapMax)
	box := geom.Rect{
		X:      center.X - xMax,
		Y:      fermata.Bounds.Y - yMax,
		Width:  2 * xMax,
		Height: fermata.Bounds.Height + 2*yMax,
	}

	barlines := l.graph.IntersectedInters(l.graph.Inters(sig.KindBarline), sig.ByAbscissa, box)
	best, ok := sig.Best(barlines, func(bar *sig.Inter) (*sig.Relation, float64) {
		xGap := math.Abs(bar.Center().X - center.X)
		yGap := geom.VerticalGap(fermata.Bounds, bar.Bounds)
		rel := sig.NewConnection(sig.RelFermataBarline, scale.PixelsToFrac(xGap), scale.PixelsToFrac(yGap), s)
		return rel, yGap
	})
	if !ok {
		return false, nil
	}
	if _, err := l.graph.AddEdge(fermata, best.Inter, best.Relation); err != nil {
		return false, err
	}
	return true, nil
}

// linkFermataWithChords links an upright fermata to the chords below it, and
// an inverted one to the chords above it.
func (l *Linker) linkFermataWithChords(fermata *sig.Inter) (bool, error) {
	center := fermata.Center()
	stack := l.system.MeasureStackAt(center)
	if stack == nil {
		return false, nil
	}

	var chords []*sig.Inter
	if fermata.Shape == sig.ShapeFermataBelow {
		chords = stack.StandardChordsAbove(center)
	} else {
		chords = stack.StandardChordsBelow(center)
	}

	scale := l.system.Scale()
	s := l.c.FermataChord
	best, ok := sig.Best(chords, func(chord *sig.Inter) (*sig.Relation, float64) {
		xGap := math.Abs(chord.Center().X - center.X)
		yGap := geom.VerticalGap(fermata.Bounds, chord.Bounds)
		rel := sig.NewConnection(sig.RelFermataChord, scale.PixelsToFrac(xGap), scale.PixelsToFrac(yGap), s)
		return rel, yGap
	})
	if !ok {
		return false, nil
	}
	if _, err := l.graph.AddEdge(fermata, best.Inter, best.Relation); err != nil {
		return false, err
	}
	return true, nil
}
