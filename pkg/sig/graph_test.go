package sig

import (
	"testing"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x, y, w, h float64) geom.Rect {
	return geom.Rect{X: x, Y: y, Width: w, Height: h}
}

func mustAdd(t *testing.T, g *Graph, inters ...*Inter) {
	t.Helper()
	for _, inter := range inters {
		require.NoError(t, g.AddVertex(inter))
	}
}

func TestAddVertex(t *testing.T) {
	idx := index.New[*Inter]("I")
	g := NewGraph(idx)

	head := NewInter(KindHead, ShapeNoteheadBlack, 0.8, rect(0, 0, 10, 8))
	mustAdd(t, g, head)

	assert.Equal(t, "I1", head.ID())
	assert.Same(t, g, head.Graph())
	got, ok := idx.Get("I1")
	require.True(t, ok)
	assert.Same(t, head, got)

	t.Run("duplicate", func(t *testing.T) {
		assert.ErrorIs(t, g.AddVertex(head), ErrInGraph)
	})

	t.Run("owned by another graph", func(t *testing.T) {
		other := NewGraph(idx)
		assert.ErrorIs(t, other.AddVertex(head), ErrInGraph)
	})
}

func TestAddEdge(t *testing.T) {
	g := NewGraph(nil)
	other := NewGraph(nil)

	chord := NewInter(KindChord, "", 0.9, rect(0, 0, 10, 40))
	pedal := NewInter(KindPedal, ShapePedalMark, 0.7, rect(0, 60, 10, 10))
	stranger := NewInter(KindHead, ShapeNoteheadBlack, 0.7, rect(0, 0, 10, 8))
	mustAdd(t, g, chord, pedal)
	mustAdd(t, other, stranger)

	e, err := g.AddEdge(chord, pedal, NewRelation(RelChordPedal))
	require.NoError(t, err)
	assert.Same(t, pedal, g.Opposite(chord, e))
	assert.Same(t, chord, g.Opposite(pedal, e))

	_, err = g.AddEdge(chord, stranger, NewRelation(RelChordPedal))
	assert.ErrorIs(t, err, ErrForeignInter)

	_, err = g.AddEdge(chord, pedal, nil)
	assert.ErrorIs(t, err, ErrNilRelation)
}

func TestDeleteRemovesIncidentEdges(t *testing.T) {
	idx := index.New[*Inter]("I")
	g := NewGraph(idx)

	arc := NewInter(KindFermataArc, ShapeFermataArc, 0.8, rect(0, 0, 20, 10))
	dot := NewInter(KindFermataDot, ShapeFermataDot, 0.8, rect(8, 5, 4, 4))
	chord := NewInter(KindChord, "", 0.9, rect(5, 30, 10, 40))
	mustAdd(t, g, arc, dot, chord)

	_, err := g.AddEdge(dot, arc, NewRelation(RelDotFermata))
	require.NoError(t, err)
	_, err = g.AddEdge(chord, dot, NewRelation(RelChordDynamics))
	require.NoError(t, err)

	require.True(t, g.Delete(dot))

	assert.True(t, dot.Removed())
	assert.False(t, g.Contains(dot))
	assert.Empty(t, g.Relations(arc))
	assert.Empty(t, g.Relations(chord))
	assert.Empty(t, g.Edges())
	assert.Equal(t, 2, g.Len())
	_, ok := idx.Get(dot.ID())
	assert.False(t, ok)

	t.Run("twice", func(t *testing.T) {
		assert.False(t, g.Delete(dot))
	})

	t.Run("edges to deleted inter fail", func(t *testing.T) {
		_, err := g.AddEdge(chord, dot, NewRelation(RelChordDynamics))
		assert.ErrorIs(t, err, ErrForeignInter)
	})
}

func TestQueries(t *testing.T) {
	g := NewGraph(nil)
	h1 := NewInter(KindHead, ShapeNoteheadBlack, 0.8, rect(30, 10, 10, 8))
	h2 := NewInter(KindHead, ShapeNoteheadBlack, 0.8, rect(10, 30, 10, 8))
	h3 := NewInter(KindHead, ShapeNoteheadBlack, 0.8, rect(200, 10, 10, 8))
	chord := NewInter(KindChord, "", 0.8, rect(10, 10, 30, 30))
	mustAdd(t, g, h1, h2, h3, chord)

	assert.Equal(t, []*Inter{h1, h2, h3}, g.Inters(KindHead))
	assert.Len(t, g.Inters(), 4)

	box := rect(0, 0, 100, 100)
	assert.Equal(t, []*Inter{h2, h1}, g.IntersectedInters(g.Inters(KindHead), ByAbscissa, box))
	assert.Equal(t, []*Inter{h1, h2}, g.IntersectedInters(g.Inters(KindHead), ByOrdinate, box))

	_, err := g.AddEdge(chord, h1, NewRelation(RelContainment))
	require.NoError(t, err)
	_, err = g.AddEdge(chord, h2, NewRelation(RelContainment))
	require.NoError(t, err)
	_, err = g.AddEdge(h1, h3, NewSideRelation(RelSlurHead, SideRight))
	require.NoError(t, err)

	assert.Equal(t, []*Inter{h1, h2}, g.Members(chord))
	assert.Same(t, chord, g.Ensemble(h2))
	assert.Nil(t, g.Ensemble(h3))
	assert.Len(t, g.Relations(h1), 2)
	assert.Len(t, g.Relations(h1, RelSlurHead), 1)
}

func TestVisitor(t *testing.T) {
	g := NewGraph(nil)
	mustAdd(t, g,
		NewInter(KindHead, ShapeNoteheadBlack, 0.8, rect(0, 0, 1, 1)),
		NewInter(KindHead, ShapeNoteheadBlack, 0.8, rect(0, 0, 1, 1)),
		NewInter(KindPedal, ShapePedalMark, 0.8, rect(0, 0, 1, 1)),
	)

	heads := 0
	g.Walk(Visitor{KindHead: func(*Inter) { heads++ }})
	assert.Equal(t, 2, heads)
}
