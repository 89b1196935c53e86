package symbol

import (
	"context"
	"math"
	"testing"

	"github.com/OFFIS-RIT/scorelink/pkg/geom"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/sheet"
	"github.com/OFFIS-RIT/scorelink/pkg/sig"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t   *testing.T
	sh  *sheet.Sheet
	sys *sheet.System
	log *logger.Recorder
}

func newFixture(t *testing.T, interline float64) *fixture {
	t.Helper()
	rec := logger.NewRecorder()
	logger.Init(rec)
	t.Cleanup(func() { logger.Init() })

	sh := sheet.New("test", sheet.Scale{Interline: interline})
	sys := sh.AddSystem(1)
	sys.AddStack(math.Inf(-1), math.Inf(1))
	return &fixture{t: t, sh: sh, sys: sys, log: rec}
}

func (f *fixture) add(kind sig.Kind, shape sig.Shape, x, y, w, h float64) *sig.Inter {
	f.t.Helper()
	inter := sig.NewInter(kind, shape, 0.8, geom.Rect{X: x, Y: y, Width: w, Height: h})
	require.NoError(f.t, f.sys.Graph().AddVertex(inter))
	return inter
}

func (f *fixture) link(src, dst *sig.Inter, rel *sig.Relation) {
	f.t.Helper()
	_, err := f.sys.Graph().AddEdge(src, dst, rel)
	require.NoError(f.t, err)
}

func (f *fixture) process() *Report {
	f.t.Helper()
	report, err := NewLinker(f.sys, DefaultConstants()).Process(context.Background())
	require.NoError(f.t, err)
	return report
}

// opposites returns the inters related to inter through kind.
func (f *fixture) opposites(inter *sig.Inter, kind sig.RelKind) []*sig.Inter {
	g := f.sys.Graph()
	var out []*sig.Inter
	for _, e := range g.Relations(inter, kind) {
		out = append(out, g.Opposite(inter, e))
	}
	return out
}
