package sig

// RelKind tells which variant a Relation is.
type RelKind string

const (
	RelAlterHead      RelKind = "alter-head"
	RelDotFermata     RelKind = "dot-fermata"
	RelChordPedal     RelKind = "chord-pedal"
	RelChordWedge     RelKind = "chord-wedge"
	RelChordDynamics  RelKind = "chord-dynamics"
	RelChordSentence  RelKind = "chord-sentence"
	RelChordName      RelKind = "chord-name"
	RelChordSyllable  RelKind = "chord-syllable"
	RelFermataChord   RelKind = "fermata-chord"
	RelFermataBarline RelKind = "fermata-barline"
	RelSlurHead       RelKind = "slur-head"
	RelContainment    RelKind = "containment"
)

// Relation carries the data of an edge. Gaps are interline fractions.
type Relation struct {
	Kind     RelKind `json:"kind" yaml:"kind"`
	Side     Side    `json:"side,omitempty" yaml:"side,omitempty"`
	XGap     float64 `json:"x_gap,omitempty" yaml:"x_gap,omitempty"`
	YGap     float64 `json:"y_gap,omitempty" yaml:"y_gap,omitempty"`
	Grade    float64 `json:"grade" yaml:"grade"`
	MinGrade float64 `json:"min_grade,omitempty" yaml:"min_grade,omitempty"`
}

// NewRelation creates a relation that carries no geometric evidence.
func NewRelation(kind RelKind) *Relation {
	return &Relation{Kind: kind, Grade: 1}
}

// NewSideRelation creates a relation attached at one side of its source.
func NewSideRelation(kind RelKind, side Side) *Relation {
	return &Relation{Kind: kind, Side: side, Grade: 1}
}

// NewConnection creates a relation graded from its gaps.
func NewConnection(kind RelKind, xGap, yGap float64, s Support) *Relation {
	return &Relation{
		Kind:     kind,
		XGap:     xGap,
		YGap:     yGap,
		Grade:    s.Impacts(xGap, yGap).Grade(),
		MinGrade: s.MinGrade,
	}
}

// Acceptable reports whether the relation grade reaches its minimum.
func (r *Relation) Acceptable() bool {
	return r.Grade >= r.MinGrade
}
