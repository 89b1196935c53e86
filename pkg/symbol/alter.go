package symbol

import (
	"fmt"
	"math"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// ComputePitch returns the pitch assigned to an accidental glyph and the
// measured value it was rounded from.
//
// Sharps and naturals are symmetric, the centroid gives their pitch. Flats
// carry their body low, so two estimates are averaged: the centroid pitch
// shifted by a fixed offset, and the pitch of the point located at a fixed
// ratio of the glyph height.
func ComputePitch(g sheet.Glyph, staff *sheet.Staff, c Constants) (int, float64) {
	centroid := g.MassCenter()
	massPitch := staff.PitchPositionOf(centroid)

	if !g.Shape.IsFlat() {
		return int(math.RoundToEven(massPitch)), massPitch
	}

	massPitch += c.FlatPitchOffset
	geoPitch := staff.PitchPositionOf(geom.Point{
		X: centroid.X,
		Y: g.Bounds.Y + c.FlatHeightRatio*g.Bounds.Height,
	})
	mix := 0.5 * (massPitch + geoPitch)

	return int(math.RoundToEven(mix)), mix
}

// NewAlter creates the alteration inter of an accidental glyph.
func NewAlter(g sheet.Glyph, staff *sheet.Staff, c Constants) *sig.Inter {
	pitch, measured := ComputePitch(g, staff, c)
	alter := sig.NewInter(sig.KindAlter, g.Shape, g.Grade, g.Bounds)
	alter.Staff = staff.ID
	alter.Alter = &sig.AlterInfo{Pitch: pitch, MeasuredPitch: measured}
	return alter
}

// DetectNoteRelation looks for the head the alteration applies to, on its
// right side and at the same pitch, and links them with an alter-head edge.
// It returns nil when no head qualifies.
func DetectNoteRelation(sys *sheet.System, alter *sig.Inter, heads []*sig.Inter, c Constants) (*sig.Edge, error) {
	scale := sys.Scale()
	graph := sys.Graph()
	xGapMax := scale.ToPixels(c.AlterHead.XGapMax)
	yGapMax := scale.ToPixels(c.AlterHead.YGapMax)

	box := alter.Bounds
	accidPt := geom.Point{X: box.Right(), Y: box.Y + box.Height/2}
	if alter.Shape.IsFlat() {
		accidPt.Y = box.Y + 3*box.Height/4
	}
	luBox := geom.Rect{X: accidPt.X, Y: accidPt.Y - yGapMax, Width: xGapMax, Height: 2 * yGapMax}

	notes := graph.IntersectedInters(heads, sig.ByAbscissa, luBox)
	if len(notes) == 0 {
		return nil, nil
	}
	if alter.IsVip() {
		logger.Info("[Alter] VIP accidental", "id", alter.ID(), "notes", len(notes))
	}

	best, ok := sig.Best(notes, func(note *sig.Inter) (*sig.Relation, float64) {
		notePt := note.Bounds.CenterLeft()
		xGap := notePt.X - accidPt.X
		yGap := math.Abs(notePt.Y - accidPt.Y)
		rel := sig.NewConnection(sig.RelAlterHead, scale.PixelsToFrac(xGap), scale.PixelsToFrac(yGap), c.AlterHead)
		return rel, yGap
	})
	if !ok {
		return nil, nil
	}

	edge, err := graph.AddEdge(alter, best.Inter, best.Relation)
	if err != nil {
		return nil, fmt.Errorf("link alter %s: %w", alter.ID(), err)
	}
	return edge, nil
}

// AlterVoice returns the voice of the head the alteration applies to.
func AlterVoice(graph *sig.Graph, alter *sig.Inter) *sig.Voice {
	for _, e := range graph.Relations(alter, sig.RelAlterHead) {
		if head := graph.Opposite(alter, e); head.Voice != nil {
			return head.Voice
		}
	}
	return nil
}
