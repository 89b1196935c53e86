// Package sig implements the symbol interpretation graph of a system: the
// competing and complementary interpretations (inters) found in one system
// and the typed relations between them.
package sig

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/index"
)

var (
	// ErrInGraph is returned when adding an inter that already belongs to a graph.
	ErrInGraph = errors.New("inter already belongs to a graph")
	// ErrForeignInter is returned when an edge endpoint is not a live inter of the graph.
	ErrForeignInter = errors.New("inter is not part of this graph")
	// ErrNilRelation is returned when adding an edge without relation data.
	ErrNilRelation = errors.New("relation is nil")
)

// Edge links a source inter to a target inter.
type Edge struct {
	Source   *Inter
	Target   *Inter
	Relation *Relation

	handle int
}

// Order selects how spatial query results are sorted.
type Order int

const (
	ByAbscissa Order = iota
	ByOrdinate
)

// Graph is an arena of inters and edges. Deleted slots are tombstoned so
// handles stay stable. A graph is owned by a single worker and is not safe for
// concurrent mutation, the optional inter index is.
type Graph struct {
	index *index.Index[*Inter]

	inters   []*Inter
	edges    []*Edge
	incident [][]int
}

// NewGraph creates an empty graph. When idx is not nil, every added inter is
// registered in it and every deleted inter is removed from it.
func NewGraph(idx *index.Index[*Inter]) *Graph {
	return &Graph{index: idx}
}

// Contains reports whether inter is a live vertex of g.
func (g *Graph) Contains(inter *Inter) bool {
	return inter != nil && inter.sig == g && !inter.removed
}

// AddVertex inserts inter in the graph.
func (g *Graph) AddVertex(inter *Inter) error {
	if inter == nil {
		return fmt.Errorf("add vertex: %w", ErrForeignInter)
	}
	if inter.sig != nil {
		return fmt.Errorf("add vertex %s: %w", inter.ID(), ErrInGraph)
	}

	if g.index != nil {
		if inter.ID() == "" {
			g.index.Register(inter)
		} else if err := g.index.Insert(inter); err != nil {
			return fmt.Errorf("add vertex: %w", err)
		}
	}

	inter.sig = g
	inter.handle = len(g.inters)
	inter.removed = false
	g.inters = append(g.inters, inter)
	g.incident = append(g.incident, nil)
	return nil
}

// AddEdge links src to dst with rel.
func (g *Graph) AddEdge(src, dst *Inter, rel *Relation) (*Edge, error) {
	if rel == nil {
		return nil, ErrNilRelation
	}
	if !g.Contains(src) {
		return nil, fmt.Errorf("add %s edge source: %w", rel.Kind, ErrForeignInter)
	}
	if !g.Contains(dst) {
		return nil, fmt.Errorf("add %s edge target: %w", rel.Kind, ErrForeignInter)
	}

	e := &Edge{Source: src, Target: dst, Relation: rel, handle: len(g.edges)}
	g.edges = append(g.edges, e)
	g.incident[src.handle] = append(g.incident[src.handle], e.handle)
	if dst != src {
		g.incident[dst.handle] = append(g.incident[dst.handle], e.handle)
	}
	return e, nil
}

// Delete removes inter and all its incident edges. It returns false when the
// inter was not a live vertex of g.
func (g *Graph) Delete(inter *Inter) bool {
	if !g.Contains(inter) {
		return false
	}

	for _, eh := range g.incident[inter.handle] {
		e := g.edges[eh]
		if e == nil {
			continue
		}
		other := e.Source
		if other == inter {
			other = e.Target
		}
		if other != inter {
			g.incident[other.handle] = slices.DeleteFunc(g.incident[other.handle], func(h int) bool {
				return h == eh
			})
		}
		g.edges[eh] = nil
	}
	g.incident[inter.handle] = nil
	g.inters[inter.handle] = nil
	inter.removed = true

	if g.index != nil {
		g.index.Remove(inter)
	}
	return true
}

// Inters returns the live inters of the given kinds in insertion order, all
// live inters when no kind is given.
func (g *Graph) Inters(kinds ...Kind) []*Inter {
	var out []*Inter
	for _, inter := range g.inters {
		if inter == nil {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, inter.Kind) {
			continue
		}
		out = append(out, inter)
	}
	return out
}

// Len returns the number of live inters.
func (g *Graph) Len() int {
	n := 0
	for _, inter := range g.inters {
		if inter != nil {
			n++
		}
	}
	return n
}

// Edges returns every live edge in insertion order.
func (g *Graph) Edges() []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Relations returns the edges incident to inter whose relation has one of
// the given kinds, all incident edges when no kind is given.
func (g *Graph) Relations(inter *Inter, kinds ...RelKind) []*Edge {
	if !g.Contains(inter) {
		return nil
	}
	var out []*Edge
	for _, eh := range g.incident[inter.handle] {
		e := g.edges[eh]
		if e == nil {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, e.Relation.Kind) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Opposite returns the endpoint of e that is not inter.
func (g *Graph) Opposite(inter *Inter, e *Edge) *Inter {
	if e.Source == inter {
		return e.Target
	}
	return e.Source
}

// Members returns the inters contained by ensemble, in edge order.
func (g *Graph) Members(ensemble *Inter) []*Inter {
	var out []*Inter
	for _, e := range g.Relations(ensemble, RelContainment) {
		if e.Source == ensemble {
			out = append(out, e.Target)
		}
	}
	return out
}

// Ensemble returns the first inter containing member, nil if none.
func (g *Graph) Ensemble(member *Inter) *Inter {
	for _, e := range g.Relations(member, RelContainment) {
		if e.Target == member {
			return e.Source
		}
	}
	return nil
}

// IntersectedInters keeps the live candidates whose bounds intersect box,
// sorted by order. Candidates with equal coordinates keep their input order.
func (g *Graph) IntersectedInters(candidates []*Inter, order Order, box geom.Rect) []*Inter {
	var out []*Inter
	for _, c := range candidates {
		if !g.Contains(c) {
			continue
		}
		if c.Bounds.Intersects(box) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b *Inter) int {
		if order == ByOrdinate {
			return cmp.Compare(a.Bounds.Y, b.Bounds.Y)
		}
		return cmp.Compare(a.Bounds.X, b.Bounds.X)
	})
	return out
}

// Walk calls the visitor on every live inter.
func (g *Graph) Walk(v Visitor) {
	for _, inter := range g.Inters() {
		inter.Accept(v)
	}
}
