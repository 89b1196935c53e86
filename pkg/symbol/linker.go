// Package symbol interprets the secondary symbols of a system: it creates the
// pitch bearing inters out of classified glyphs and links marks such as
// dynamics, fermatas, pedals, wedges and texts to the chords they govern.
package symbol

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
)

// ErrSegnoUnsupported is reported when a system holds segno candidates, whose
// linking is not implemented yet.
var ErrSegnoUnsupported = errors.New("segno linking is not supported yet")

// Pass names one step of the linking sequence.
type Pass string

const (
	PassDynamics Pass = "dynamics"
	PassFermatas Pass = "fermatas"
	PassGraces   Pass = "graces"
	PassPedals   Pass = "pedals"
	PassWedges   Pass = "wedges"
	PassTexts    Pass = "texts"
	PassSegnos   Pass = "segnos"
)

// Report summarizes what linking did to a system.
type Report struct {
	System      int
	Linked      map[Pass]int
	Unlinked    map[Pass]int
	Deleted     int
	Unsupported []error
}

func newReport(system int) *Report {
	return &Report{
		System:   system,
		Linked:   make(map[Pass]int),
		Unlinked: make(map[Pass]int),
	}
}

// Linker runs the linking passes on one system. It must only be used by the
// worker owning the system.
type Linker struct {
	system *sheet.System
	graph  *sig.Graph
	c      Constants
	report *Report
}

// NewLinker creates a linker for sys.
func NewLinker(sys *sheet.System, c Constants) *Linker {
	return &Linker{
		system: sys,
		graph:  sys.Graph(),
		c:      c,
		report: newReport(sys.ID),
	}
}

// Process runs the passes in order: dynamics, fermatas, graces, pedals,
// wedges, texts, segnos. Marks that cannot be linked are either deleted
// (fermatas) or left unlinked. Structural graph errors abort processing.
func (l *Linker) Process(ctx context.Context) (*Report, error) {
	passes := []struct {
		pass Pass
		run  func() error
	}{
		{PassDynamics, l.linkDynamics},
		{PassFermatas, l.linkFermatas},
		{PassGraces, l.linkGraces},
		{PassPedals, l.linkPedals},
		{PassWedges, l.linkWedges},
		{PassTexts, l.linkTexts},
		{PassSegnos, l.checkSegnos},
	}

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return l.report, err
		}
		if err := p.run(); err != nil {
			return l.report, fmt.Errorf("system %d %s: %w", l.system.ID, p.pass, err)
		}
	}

	logger.Debug("[Links] System processed",
		"system", l.system.ID,
		"linked", total(l.report.Linked),
		"unlinked", total(l.report.Unlinked),
		"deleted", l.report.Deleted,
	)
	return l.report, nil
}

func (l *Linker) linked(p Pass) {
	l.report.Linked[p]++
}

func (l *Linker) unlinked(p Pass, inter *sig.Inter, msg string) {
	l.report.Unlinked[p]++
	logger.Info("[Links] "+msg, "system", l.system.ID, "id", inter.ID(), "shape", inter.Shape)
}

func (l *Linker) delete(inters ...*sig.Inter) {
	for _, inter := range inters {
		if l.graph.Delete(inter) {
			l.report.Deleted++
		}
	}
}

func (l *Linker) vip(p Pass, inter *sig.Inter) {
	if inter.IsVip() {
		logger.Info("[Links] VIP inter", "pass", p, "id", inter.ID(), "kind", inter.Kind)
	}
}

func total(counts map[Pass]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func (l *Linker) linkDynamics() error {
	chords := l.graph.Inters(sig.KindChord)
	for _, dyn := range l.graph.Inters(sig.KindDynamics) {
		l.vip(PassDynamics, dyn)
		ok, err := l.linkDynamicsWithChord(dyn, chords)
		if err != nil {
			return err
		}
		if ok {
			l.linked(PassDynamics)
		} else {
			l.unlinked(PassDynamics, dyn, "No chord for dynamics")
		}
	}
	return nil
}

// linkGraces gives each grace chord the voice of the head ending the slur
// that starts on one of its notes.
func (l *Linker) linkGraces() error {
chords:
	for _, chord := range l.graph.Inters(sig.KindSmallChord) {
		l.vip(PassGraces, chord)
		for _, note := range l.graph.Members(chord) {
			for _, e := range l.graph.Relations(note, sig.RelSlurHead) {
				slur := l.graph.Opposite(note, e)
				head := l.slurHead(slur, sig.SideRight)
				if head == nil {
					continue
				}
				if voice := l.headVoice(head); voice != nil {
					v := *voice
					chord.Voice = &v
					l.linked(PassGraces)
					continue chords
				}
			}
		}
	}
	return nil
}

func (l *Linker) slurHead(slur *sig.Inter, side sig.Side) *sig.Inter {
	for _, e := range l.graph.Relations(slur, sig.RelSlurHead) {
		if e.Relation.Side == side {
			return l.graph.Opposite(slur, e)
		}
	}
	return nil
}

func (l *Linker) headVoice(head *sig.Inter) *sig.Voice {
	if head.Voice != nil {
		return head.Voice
	}
	if chord := l.graph.Ensemble(head); chord != nil {
		return chord.Voice
	}
	return nil
}

func (l *Linker) linkPedals() error {
	for _, pedal := range l.graph.Inters(sig.KindPedal) {
		l.vip(PassPedals, pedal)
		center := pedal.Center()
		stack := l.system.MeasureStackAt(center)
		if stack == nil {
			l.unlinked(PassPedals, pedal, "No stack for pedal")
			continue
		}
		chord := stack.StandardChordAbove(center)
		if chord == nil {
			l.unlinked(PassPedals, pedal, "No chord above pedal")
			continue
		}
		if _, err := l.graph.AddEdge(chord, pedal, sig.NewRelation(sig.RelChordPedal)); err != nil {
			return err
		}
		l.linked(PassPedals)
	}
	return nil
}

// linkWedges anchors each end of a wedge top line to the chord above it, or
// below when there is none above.
func (l *Linker) linkWedges() error {
	for _, wedge := range l.graph.Inters(sig.KindWedge) {
		l.vip(PassWedges, wedge)
		line := wedge.TopLine()
		for _, side := range []sig.Side{sig.SideLeft, sig.SideRight} {
			location := line.P1
			if side == sig.SideRight {
				location = line.P2
			}
			var chord *sig.Inter
			if stack := l.system.MeasureStackAt(location); stack != nil {
				chord = stack.StandardChordAbove(location)
				if chord == nil {
					chord = stack.StandardChordBelow(location)
				}
			}
			if chord == nil {
				l.unlinked(PassWedges, wedge, "No chord for wedge "+string(side))
				continue
			}
			if _, err := l.graph.AddEdge(chord, wedge, sig.NewSideRelation(sig.RelChordWedge, side)); err != nil {
				return err
			}
			l.linked(PassWedges)
		}
	}
	return nil
}

func (l *Linker) linkTexts() error {
	for _, sentence := range l.graph.Inters(sig.KindSentence) {
		l.vip(PassTexts, sentence)
		var err error
		switch sentence.Role() {
		case "":
			l.unlinked(PassTexts, sentence, "No role for sentence")
		case sig.RoleLyrics:
			err = l.linkLyrics(sentence)
		case sig.RoleDirection:
			err = l.linkDirection(sentence)
		case sig.RoleChordName:
			err = l.linkChordName(sentence)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Linker) linkDirection(sentence *sig.Inter) error {
	location := sentence.Location()
	var chord *sig.Inter
	if stack := l.system.MeasureStackAt(location); stack != nil {
		chord = stack.EventChord(location)
	}
	if chord == nil {
		l.unlinked(PassTexts, sentence, "No chord for direction")
		return nil
	}
	if _, err := l.graph.AddEdge(chord, sentence, sig.NewRelation(sig.RelChordSentence)); err != nil {
		return err
	}
	l.linked(PassTexts)
	return nil
}

func (l *Linker) linkChordName(sentence *sig.Inter) error {
	words := l.graph.Members(sentence)
	if len(words) == 0 {
		l.unlinked(PassTexts, sentence, "No word in chord name")
		return nil
	}
	location := sentence.Location()
	var chord *sig.Inter
	if stack := l.system.MeasureStackAt(location); stack != nil {
		chord = stack.StandardChordBelow(location)
	}
	if chord == nil {
		l.unlinked(PassTexts, sentence, "No chord below chord name")
		return nil
	}
	if _, err := l.graph.AddEdge(chord, words[0], sig.NewRelation(sig.RelChordName)); err != nil {
		return err
	}
	l.linked(PassTexts)
	return nil
}

func (l *Linker) checkSegnos() error {
	segnos := l.graph.Inters(sig.KindSegno)
	if len(segnos) == 0 {
		return nil
	}
	err := fmt.Errorf("system %d, %d candidates: %w", l.system.ID, len(segnos), ErrSegnoUnsupported)
	l.report.Unsupported = append(l.report.Unsupported, err)
	l.report.Unlinked[PassSegnos] += len(segnos)
	logger.Warn("[Links] Segno linking skipped", "system", l.system.ID, "segnos", len(segnos))
	return nil
}
