// Package geom holds the small amount of plane geometry needed on a sheet.
// Coordinates are pixels, with y growing downward.
package geom

import "math"

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"w" yaml:"w"`
	Height float64 `json:"h" yaml:"h"`
}

// Line is a segment, P1 being the left end for horizontal-ish shapes.
type Line struct {
	P1 Point `json:"p1" yaml:"p1"`
	P2 Point `json:"p2" yaml:"p2"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) CenterLeft() Point {
	return Point{X: r.X, Y: r.Y + r.Height/2}
}

func (r Rect) CenterRight() Point {
	return Point{X: r.Right(), Y: r.Y + r.Height/2}
}

// Intersects reports whether both rectangles share a non empty area.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// ContainsX reports whether x falls within the horizontal range of r.
func (r Rect) ContainsX(x float64) bool {
	return x >= r.X && x <= r.Right()
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// VerticalGap is the distance between the vertical ranges of a and b,
// zero when they overlap.
func VerticalGap(a, b Rect) float64 {
	return math.Max(0, math.Max(a.Y, b.Y)-math.Min(a.Bottom(), b.Bottom()))
}

// HorizontalGap is the distance between the horizontal ranges of a and b,
// zero when they overlap.
func HorizontalGap(a, b Rect) float64 {
	return math.Max(0, math.Max(a.X, b.X)-math.Min(a.Right(), b.Right()))
}
