package sheet

import (
	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// System is a horizontal band of the sheet, processed independently of the
// other systems.
type System struct {
	ID     int
	Staves []*Staff
	Stacks []*Stack

	sheet *Sheet
	graph *sig.Graph
}

func (s *System) Sheet() *Sheet {
	return s.sheet
}

// Graph returns the interpretation graph owned by the system.
func (s *System) Graph() *sig.Graph {
	return s.graph
}

// Scale returns the sheet scale.
func (s *System) Scale() Scale {
	return s.sheet.Scale
}

// AddStaff appends a staff, its interline is taken from the sheet scale.
func (s *System) AddStaff(id int, top, left, right float64) *Staff {
	staff := &Staff{ID: id, Top: top, Left: left, Right: right, Interline: s.sheet.Scale.Interline}
	s.Staves = append(s.Staves, staff)
	return staff
}

// AddStack appends a measure stack covering abscissas [left, right).
func (s *System) AddStack(left, right float64) *Stack {
	stack := &Stack{Left: left, Right: right, system: s}
	s.Stacks = append(s.Stacks, stack)
	return stack
}

// MeasureStackAt returns the stack containing the abscissa of p, nil if none.
func (s *System) MeasureStackAt(p geom.Point) MeasureStack {
	for _, stack := range s.Stacks {
		if p.X >= stack.Left && p.X < stack.Right {
			return stack
		}
	}
	return nil
}

// Staff returns the staff with the given id.
func (s *System) Staff(id int) *Staff {
	for _, staff := range s.Staves {
		if staff.ID == id {
			return staff
		}
	}
	return nil
}

// StaffAt returns the staff whose vertical range is the closest to p.
func (s *System) StaffAt(p geom.Point) *Staff {
	var best *Staff
	bestDist := 0.0
	for _, staff := range s.Staves {
		dist := 0.0
		switch {
		case p.Y < staff.Top:
			dist = staff.Top - p.Y
		case p.Y > staff.Bottom():
			dist = p.Y - staff.Bottom()
		}
		if best == nil || dist < bestDist {
			best, bestDist = staff, dist
		}
	}
	return best
}

// StaffAbove returns the nearest staff lying entirely above p, nil if none.
func (s *System) StaffAbove(p geom.Point) *Staff {
	var best *Staff
	for _, staff := range s.Staves {
		if staff.Bottom() >= p.Y {
			continue
		}
		if best == nil || staff.Bottom() > best.Bottom() {
			best = staff
		}
	}
	return best
}
