package symbol

import (
	"context"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFermataAboveLinksChordBelow(t *testing.T) {
	f := newFixture(t, 20)
	chord := f.add(sig.KindChord, "", 200, 120, 12, 40)
	arc := f.add(sig.KindFermataArc, sig.ShapeFermataArc, 195, 90, 22, 10)
	dot := f.add(sig.KindFermataDot, sig.ShapeFermataDot, 204, 96, 4, 4)
	f.link(dot, arc, sig.NewRelation(sig.RelDotFermata))

	report := f.process()

	fermatas := f.sys.Graph().Inters(sig.KindFermata)
	require.Len(t, fermatas, 1)
	fermata := fermatas[0]
	assert.Equal(t, sig.ShapeFermata, fermata.Shape)
	assert.Equal(t, []*sig.Inter{chord}, f.opposites(fermata, sig.RelFermataChord))
	assert.Equal(t, []*sig.Inter{arc, dot}, f.sys.Graph().Members(fermata))
	assert.True(t, f.sys.Graph().Contains(arc))
	assert.True(t, f.sys.Graph().Contains(dot))
	assert.Equal(t, 1, report.Linked[PassFermatas])
	assert.Equal(t, 0, report.Deleted)

	_, ok := f.sh.Inters.Get(fermata.ID())
	assert.True(t, ok)
}

func TestFermataBelowLinksChordAbove(t *testing.T) {
	f := newFixture(t, 20)
	chord := f.add(sig.KindChord, "", 200, 120, 12, 40)
	f.add(sig.KindChord, "", 200, 260, 12, 40)
	arc := f.add(sig.KindFermataArc, sig.ShapeFermataArcBelow, 195, 200, 22, 10)
	dot := f.add(sig.KindFermataDot, sig.ShapeFermataDot, 204, 201, 4, 4)
	f.link(dot, arc, sig.NewRelation(sig.RelDotFermata))

	f.process()

	fermatas := f.sys.Graph().Inters(sig.KindFermata)
	require.Len(t, fermatas, 1)
	assert.Equal(t, sig.ShapeFermataBelow, fermatas[0].Shape)
	assert.Equal(t, []*sig.Inter{chord}, f.opposites(fermatas[0], sig.RelFermataChord))
}

func TestFermataPrefersBarline(t *testing.T) {
	f := newFixture(t, 20)
	bar := f.add(sig.KindBarline, sig.ShapeThinBarline, 300, 100, 2, 80)
	f.add(sig.KindChord, "", 295, 120, 12, 40)
	arc := f.add(sig.KindFermataArc, sig.ShapeFermataArc, 290, 70, 22, 10)
	dot := f.add(sig.KindFermataDot, sig.ShapeFermataDot, 299, 76, 4, 4)
	f.link(dot, arc, sig.NewRelation(sig.RelDotFermata))

	f.process()

	fermatas := f.sys.Graph().Inters(sig.KindFermata)
	require.Len(t, fermatas, 1)
	assert.Equal(t, []*sig.Inter{bar}, f.opposites(fermatas[0], sig.RelFermataBarline))
	assert.Empty(t, f.opposites(fermatas[0], sig.RelFermataChord))
}

func TestFermataDeletion(t *testing.T) {
	f := newFixture(t, 20)
	lone := f.add(sig.KindFermataArc, sig.ShapeFermataArc, 100, 90, 22, 10)
	arc := f.add(sig.KindFermataArc, sig.ShapeFermataArc, 600, 90, 22, 10)
	dot := f.add(sig.KindFermataDot, sig.ShapeFermataDot, 609, 96, 4, 4)
	f.link(dot, arc, sig.NewRelation(sig.RelDotFermata))

	report := f.process()

	g := f.sys.Graph()
	assert.False(t, g.Contains(lone))
	assert.False(t, g.Contains(arc))
	assert.False(t, g.Contains(dot))
	assert.Empty(t, g.Inters(sig.KindFermata))
	// lone arc, then composite with its arc and dot
	assert.Equal(t, 4, report.Deleted)
	assert.Equal(t, 0, f.sh.Inters.Len())
	assert.True(t, f.log.Contains("No barline or chord for fermata"))
}

func TestGraceChordTakesSlurredVoice(t *testing.T) {
	f := newFixture(t, 20)
	grace := f.add(sig.KindSmallChord, "", 100, 100, 8, 30)
	graceNote := f.add(sig.KindHead, sig.ShapeNoteheadBlackSmall, 100, 120, 8, 6)
	main := f.add(sig.KindChord, "", 140, 100, 12, 40)
	mainHead := f.add(sig.KindHead, sig.ShapeNoteheadBlack, 140, 130, 12, 10)
	slur := f.add(sig.KindSlur, sig.ShapeSlur, 104, 110, 42, 10)
	main.Voice = &sig.Voice{ID: 3}

	f.link(grace, graceNote, sig.NewRelation(sig.RelContainment))
	f.link(main, mainHead, sig.NewRelation(sig.RelContainment))
	f.link(slur, graceNote, sig.NewSideRelation(sig.RelSlurHead, sig.SideLeft))
	f.link(slur, mainHead, sig.NewSideRelation(sig.RelSlurHead, sig.SideRight))

	lonely := f.add(sig.KindSmallChord, "", 300, 100, 8, 30)
	lonelyNote := f.add(sig.KindHead, sig.ShapeNoteheadBlackSmall, 300, 120, 8, 6)
	f.link(lonely, lonelyNote, sig.NewRelation(sig.RelContainment))

	report := f.process()

	require.NotNil(t, grace.Voice)
	assert.Equal(t, 3, grace.Voice.ID)
	assert.NotSame(t, main.Voice, grace.Voice)
	assert.Nil(t, lonely.Voice)
	assert.Equal(t, 1, report.Linked[PassGraces])
}

func TestGraceChordTriesNextSlur(t *testing.T) {
	f := newFixture(t, 20)
	grace := f.add(sig.KindSmallChord, "", 100, 100, 8, 40)
	n1 := f.add(sig.KindHead, sig.ShapeNoteheadBlackSmall, 100, 110, 8, 6)
	n2 := f.add(sig.KindHead, sig.ShapeNoteheadBlackSmall, 100, 130, 8, 6)
	h1 := f.add(sig.KindHead, sig.ShapeNoteheadBlack, 140, 110, 12, 10)
	h2 := f.add(sig.KindHead, sig.ShapeNoteheadBlack, 140, 130, 12, 10)
	h2.Voice = &sig.Voice{ID: 7}
	s1 := f.add(sig.KindSlur, sig.ShapeSlur, 104, 100, 42, 10)
	s2 := f.add(sig.KindSlur, sig.ShapeSlur, 104, 140, 42, 10)

	f.link(grace, n1, sig.NewRelation(sig.RelContainment))
	f.link(grace, n2, sig.NewRelation(sig.RelContainment))
	f.link(s1, n1, sig.NewSideRelation(sig.RelSlurHead, sig.SideLeft))
	f.link(s1, h1, sig.NewSideRelation(sig.RelSlurHead, sig.SideRight))
	f.link(s2, n2, sig.NewSideRelation(sig.RelSlurHead, sig.SideLeft))
	f.link(s2, h2, sig.NewSideRelation(sig.RelSlurHead, sig.SideRight))

	report := f.process()

	require.NotNil(t, grace.Voice)
	assert.Equal(t, 7, grace.Voice.ID)
	assert.Equal(t, 1, report.Linked[PassGraces])
}

func TestPedals(t *testing.T) {
	f := newFixture(t, 20)
	chord := f.add(sig.KindChord, "", 100, 100, 12, 40)
	linked := f.add(sig.KindPedal, sig.ShapePedalMark, 98, 200, 16, 12)
	orphan := f.add(sig.KindPedal, sig.ShapePedalUpMark, 400, 200, 16, 12)

	report := f.process()

	assert.Equal(t, []*sig.Inter{chord}, f.opposites(linked, sig.RelChordPedal))
	assert.True(t, f.sys.Graph().Contains(orphan))
	assert.Empty(t, f.opposites(orphan, sig.RelChordPedal))
	assert.Equal(t, 1, report.Linked[PassPedals])
	assert.Equal(t, 1, report.Unlinked[PassPedals])
	assert.True(t, f.log.Contains("No chord above pedal"))
}

func TestWedgeSides(t *testing.T) {
	f := newFixture(t, 20)
	left := f.add(sig.KindChord, "", 95, 100, 12, 40)
	right := f.add(sig.KindChord, "", 295, 250, 12, 40)
	wedge := f.add(sig.KindWedge, sig.ShapeCrescendo, 100, 190, 200, 20)
	wedge.Line = &geom.Line{P1: geom.Point{X: 100, Y: 200}, P2: geom.Point{X: 300, Y: 190}}

	f.process()

	edges := f.sys.Graph().Relations(wedge, sig.RelChordWedge)
	require.Len(t, edges, 2)
	sides := map[sig.Side]*sig.Inter{}
	for _, e := range edges {
		sides[e.Relation.Side] = e.Source
	}
	assert.Same(t, left, sides[sig.SideLeft])
	assert.Same(t, right, sides[sig.SideRight])
}

func TestDynamics(t *testing.T) {
	f := newFixture(t, 20)
	f.add(sig.KindChord, "", 60, 100, 12, 40)
	aligned := f.add(sig.KindChord, "", 100, 100, 12, 40)
	dyn := f.add(sig.KindDynamics, sig.ShapeDynamicsP, 98, 180, 16, 14)
	far := f.add(sig.KindDynamics, sig.ShapeDynamicsF, 700, 180, 16, 14)

	report := f.process()

	assert.Equal(t, []*sig.Inter{aligned}, f.opposites(dyn, sig.RelChordDynamics))
	assert.True(t, f.sys.Graph().Contains(far))
	assert.Equal(t, 1, report.Unlinked[PassDynamics])
}

func TestTexts(t *testing.T) {
	f := newFixture(t, 20)
	f.sys.AddStaff(1, 100, 0, 800)

	c1 := f.add(sig.KindChord, "", 100, 100, 12, 80)
	c1.Staff = 1
	c2 := f.add(sig.KindChord, "", 200, 100, 12, 80)
	c2.Staff = 1

	direction := f.add(sig.KindSentence, sig.ShapeText, 190, 200, 60, 12)
	direction.Text = &sig.TextInfo{Role: sig.RoleDirection, Value: "rit."}

	chordName := f.add(sig.KindSentence, sig.ShapeText, 102, 60, 30, 12)
	chordName.Text = &sig.TextInfo{Role: sig.RoleChordName, Value: "Am7"}
	word := f.add(sig.KindWord, sig.ShapeText, 102, 60, 30, 12)
	f.link(chordName, word, sig.NewRelation(sig.RelContainment))

	lyrics := f.add(sig.KindSentence, sig.ShapeText, 90, 240, 140, 14)
	lyrics.Text = &sig.TextInfo{Role: sig.RoleLyrics}
	la := f.add(sig.KindLyricItem, sig.ShapeText, 98, 240, 16, 14)
	lo := f.add(sig.KindLyricItem, sig.ShapeText, 199, 240, 16, 14)
	f.link(lyrics, la, sig.NewRelation(sig.RelContainment))
	f.link(lyrics, lo, sig.NewRelation(sig.RelContainment))

	title := f.add(sig.KindSentence, sig.ShapeText, 300, 10, 100, 20)
	title.Text = &sig.TextInfo{Role: sig.RoleTitle}
	anonymous := f.add(sig.KindSentence, sig.ShapeText, 500, 300, 40, 12)

	report := f.process()

	assert.Equal(t, []*sig.Inter{c2}, f.opposites(direction, sig.RelChordSentence))
	assert.Equal(t, []*sig.Inter{c1}, f.opposites(word, sig.RelChordName))
	assert.Equal(t, []*sig.Inter{c1}, f.opposites(la, sig.RelChordSyllable))
	assert.Equal(t, []*sig.Inter{c2}, f.opposites(lo, sig.RelChordSyllable))
	assert.Empty(t, f.sys.Graph().Relations(title))
	assert.Empty(t, f.sys.Graph().Relations(anonymous))
	assert.Equal(t, 4, report.Linked[PassTexts])
	assert.True(t, f.log.Contains("No role for sentence"))
}

func TestSegnosReportedUnsupported(t *testing.T) {
	f := newFixture(t, 20)
	segno := f.add(sig.KindSegno, sig.ShapeSegno, 100, 50, 20, 20)

	report := f.process()

	require.Len(t, report.Unsupported, 1)
	assert.True(t, errors.Is(report.Unsupported[0], ErrSegnoUnsupported))
	assert.True(t, f.sys.Graph().Contains(segno))
	assert.True(t, f.log.Contains("Segno linking skipped"))
}

func TestProcessHonoursCancellation(t *testing.T) {
	f := newFixture(t, 20)
	f.add(sig.KindPedal, sig.ShapePedalMark, 0, 0, 10, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLinker(f.sys, DefaultConstants()).Process(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
