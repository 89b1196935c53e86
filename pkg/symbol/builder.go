package symbol

import (
	"fmt"
	"math"

	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// BuildParams configures BuildSheet.
type BuildParams struct {
	VipIDs    []int
	Constants Constants
}

// BuildSheet turns a decoded document into a sheet whose system graphs hold
// the document inters and relations. Accidental and flag glyphs become inters
// on the way, and each new alteration is linked to its head.
func BuildSheet(doc *sheet.Document, params BuildParams) (*sheet.Sheet, error) {
	sh := sheet.New(doc.Name, sheet.Scale{Interline: doc.Interline}, params.VipIDs...)

	for _, sd := range doc.Systems {
		if err := buildSystem(sh, sd, params.Constants); err != nil {
			return nil, fmt.Errorf("build system %d: %w", sd.ID, err)
		}
	}

	logger.Debug("[Build] Sheet built", "name", sh.Name, "systems", len(sh.Systems()), "inters", sh.Inters.Len())
	return sh, nil
}

func buildSystem(sh *sheet.Sheet, sd sheet.SystemDoc, c Constants) error {
	sys := sh.AddSystem(sd.ID)
	graph := sys.Graph()

	for _, st := range sd.Staves {
		sys.AddStaff(st.ID, st.Top, st.Left, st.Right)
	}
	for _, st := range sd.Stacks {
		sys.AddStack(st.Left, st.Right)
	}
	if len(sys.Stacks) == 0 {
		sys.AddStack(math.Inf(-1), math.Inf(1))
	}

	refs := make(map[string]*sig.Inter, len(sd.Inters)+len(sd.Glyphs))
	for _, doc := range sd.Inters {
		inter := new(sig.Inter)
		*inter = doc.Inter
		// ids come from the sheet index only, upstream ids would collide with it
		if inter.ID() != "" {
			logger.Debug("[Build] Document id dropped", "system", sd.ID, "ref", doc.Ref, "id", inter.ID())
			inter.SetID("")
		}
		if inter.Kind == sig.KindFlag && inter.Shape.IsSmallFlag() {
			inter.Kind = sig.KindSmallFlag
		}
		if err := graph.AddVertex(inter); err != nil {
			return err
		}
		refs[doc.Ref] = inter
	}

	var alters []*sig.Inter
	for _, g := range sd.Glyphs {
		inter := glyphInter(sys, g, c)
		if inter == nil {
			logger.Debug("[Build] Glyph shape not interpreted", "system", sd.ID, "ref", g.Ref, "shape", g.Shape)
			continue
		}
		if err := graph.AddVertex(inter); err != nil {
			return err
		}
		refs[g.Ref] = inter
		if inter.Kind == sig.KindAlter {
			alters = append(alters, inter)
		}
	}

	for _, rd := range sd.Relations {
		from, to := refs[rd.From], refs[rd.To]
		if from == nil || to == nil {
			return fmt.Errorf("relation %s %s->%s: %w", rd.Kind, rd.From, rd.To, sig.ErrForeignInter)
		}
		if _, err := graph.AddEdge(from, to, sig.NewSideRelation(rd.Kind, rd.Side)); err != nil {
			return err
		}
	}

	heads := graph.Inters(sig.KindHead)
	for _, alter := range alters {
		if len(graph.Relations(alter, sig.RelAlterHead)) > 0 {
			continue
		}
		if _, err := DetectNoteRelation(sys, alter, heads, c); err != nil {
			return err
		}
	}
	return nil
}

func glyphInter(sys *sheet.System, g sheet.Glyph, c Constants) *sig.Inter {
	switch {
	case g.Shape.IsAccidental():
		staff := sys.Staff(g.Staff)
		if staff == nil {
			staff = sys.StaffAt(g.MassCenter())
		}
		if staff == nil {
			return nil
		}
		return NewAlter(g, staff, c)
	case g.Shape.IsSmallFlag():
		flag := sig.NewInter(sig.KindSmallFlag, g.Shape, g.Grade, g.Bounds)
		flag.Staff = g.Staff
		return flag
	case g.Shape == sig.ShapeFlag1 || g.Shape == sig.ShapeFlag2:
		flag := sig.NewInter(sig.KindFlag, g.Shape, g.Grade, g.Bounds)
		flag.Staff = g.Staff
		return flag
	default:
		return nil
	}
}
