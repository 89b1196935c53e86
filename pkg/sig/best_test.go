package sig

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpactsGrade(t *testing.T) {
	tests := []struct {
		name    string
		impacts *Impacts
		want    float64
	}{
		{"nil", nil, 0},
		{"single", &Impacts{Values: []float64{0.7}, Weights: []float64{1}}, 0.7},
		{"geometric mean", &Impacts{Values: []float64{0.9, 0.4}, Weights: []float64{1, 1}}, 0.6},
		{"zero impact", &Impacts{Values: []float64{0.9, 0}, Weights: []float64{1, 1}}, 0},
		{"mismatched", &Impacts{Values: []float64{0.9}, Weights: []float64{1, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.impacts.Grade(), 1e-9)
		})
	}
}

func TestInterBestGrade(t *testing.T) {
	inter := NewInter(KindHead, ShapeNoteheadBlack, 0.3, rect(0, 0, 1, 1))
	assert.Equal(t, 0.3, inter.BestGrade())

	inter.Impacts = &Impacts{Values: []float64{0.81}, Weights: []float64{2}}
	assert.InDelta(t, 0.81, inter.BestGrade(), 1e-9)
}

func TestNewConnection(t *testing.T) {
	s := Support{XGapMax: 2, YGapMax: 1, XWeight: 1, YWeight: 1, MinGrade: 0.5}

	rel := NewConnection(RelAlterHead, 0.2, 0, s)
	assert.InDelta(t, math.Sqrt(0.9), rel.Grade, 1e-9)
	assert.True(t, rel.Acceptable())

	far := NewConnection(RelAlterHead, 0.4, 0.7, s)
	assert.InDelta(t, math.Sqrt(0.8*0.3), far.Grade, 1e-9)
	assert.False(t, far.Acceptable())

	out := NewConnection(RelAlterHead, 3, 0, s)
	assert.Equal(t, 0.0, out.Grade)
}

func TestBest(t *testing.T) {
	a := NewInter(KindChord, "", 1, rect(0, 0, 1, 1))
	b := NewInter(KindChord, "", 1, rect(0, 0, 1, 1))
	c := NewInter(KindChord, "", 1, rect(0, 0, 1, 1))
	d := NewInter(KindChord, "", 1, rect(0, 0, 1, 1))

	keys := map[*Inter]float64{a: 3, b: 1, c: 1, d: 0.5}
	grades := map[*Inter]float64{a: 0.9, b: 0.9, c: 0.9, d: 0.1}

	eval := func(i *Inter) (*Relation, float64) {
		return &Relation{Kind: RelFermataChord, Grade: grades[i], MinGrade: 0.5}, keys[i]
	}

	m, ok := Best([]*Inter{a, b, c, d}, eval)
	require.True(t, ok)
	// d has the lowest key but an unacceptable grade, b wins the tie with c
	assert.Same(t, b, m.Inter)
	assert.Equal(t, 1.0, m.Key)

	_, ok = Best([]*Inter{d}, eval)
	assert.False(t, ok)

	_, ok = Best(nil, eval)
	assert.False(t, ok)
}
