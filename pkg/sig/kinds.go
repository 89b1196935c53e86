package sig

import (
	"maps"
	"slices"
)

// Kind tells which variant an Inter is. The set is closed, passes switch on it.
type Kind string

const (
	KindAlter      Kind = "alter"
	KindFlag       Kind = "flag"
	KindSmallFlag  Kind = "small-flag"
	KindHead       Kind = "head"
	KindDynamics   Kind = "dynamics"
	KindPedal      Kind = "pedal"
	KindWedge      Kind = "wedge"
	KindFermataArc Kind = "fermata-arc"
	KindFermataDot Kind = "fermata-dot"
	KindFermata    Kind = "fermata"
	KindSentence   Kind = "sentence"
	KindWord       Kind = "word"
	KindLyricItem  Kind = "lyric-item"
	KindChord      Kind = "chord"
	KindSmallChord Kind = "small-chord"
	KindSlur       Kind = "slur"
	KindBarline    Kind = "barline"
	KindSegno      Kind = "segno"
)

var kinds = map[Kind]struct{}{
	KindAlter: {}, KindFlag: {}, KindSmallFlag: {}, KindHead: {}, KindDynamics: {},
	KindPedal: {}, KindWedge: {}, KindFermataArc: {}, KindFermataDot: {}, KindFermata: {},
	KindSentence: {}, KindWord: {}, KindLyricItem: {}, KindChord: {}, KindSmallChord: {},
	KindSlur: {}, KindBarline: {}, KindSegno: {},
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Kinds returns every known kind in lexical order.
func Kinds() []Kind {
	out := slices.Collect(maps.Keys(kinds))
	slices.Sort(out)
	return out
}

// Shape is the symbol class assigned by the classifier.
type Shape string

const (
	ShapeSharp       Shape = "SHARP"
	ShapeFlat        Shape = "FLAT"
	ShapeNatural     Shape = "NATURAL"
	ShapeDoubleSharp Shape = "DOUBLE_SHARP"
	ShapeDoubleFlat  Shape = "DOUBLE_FLAT"

	ShapeFermataArc      Shape = "FERMATA_ARC"
	ShapeFermataArcBelow Shape = "FERMATA_ARC_BELOW"
	ShapeFermataDot      Shape = "FERMATA_DOT"
	ShapeFermata         Shape = "FERMATA"
	ShapeFermataBelow    Shape = "FERMATA_BELOW"

	ShapeDynamicsP  Shape = "DYNAMICS_P"
	ShapeDynamicsPP Shape = "DYNAMICS_PP"
	ShapeDynamicsMP Shape = "DYNAMICS_MP"
	ShapeDynamicsMF Shape = "DYNAMICS_MF"
	ShapeDynamicsF  Shape = "DYNAMICS_F"
	ShapeDynamicsFF Shape = "DYNAMICS_FF"
	ShapeDynamicsSF Shape = "DYNAMICS_SF"

	ShapePedalMark   Shape = "PEDAL_MARK"
	ShapePedalUpMark Shape = "PEDAL_UP_MARK"

	ShapeCrescendo  Shape = "CRESCENDO"
	ShapeDiminuendo Shape = "DIMINUENDO"

	ShapeFlag1          Shape = "FLAG_1"
	ShapeFlag2          Shape = "FLAG_2"
	ShapeSmallFlag      Shape = "SMALL_FLAG"
	ShapeSmallFlagSlash Shape = "SMALL_FLAG_SLASH"

	ShapeNoteheadBlack      Shape = "NOTEHEAD_BLACK"
	ShapeNoteheadVoid       Shape = "NOTEHEAD_VOID"
	ShapeNoteheadBlackSmall Shape = "NOTEHEAD_BLACK_SMALL"

	ShapeText        Shape = "TEXT"
	ShapeSlur        Shape = "SLUR"
	ShapeThinBarline Shape = "THIN_BARLINE"
	ShapeSegno       Shape = "SEGNO"
)

// IsAccidental reports whether s is an alteration sign.
func (s Shape) IsAccidental() bool {
	switch s {
	case ShapeSharp, ShapeFlat, ShapeNatural, ShapeDoubleSharp, ShapeDoubleFlat:
		return true
	}
	return false
}

// IsFlat reports flat-like shapes, whose body sits low in their bounds.
func (s Shape) IsFlat() bool {
	return s == ShapeFlat || s == ShapeDoubleFlat
}

// IsSmallFlag reports flags found on grace notes.
func (s Shape) IsSmallFlag() bool {
	return s == ShapeSmallFlag || s == ShapeSmallFlagSlash
}

// TextRole is the semantic role of a sentence.
type TextRole string

const (
	RoleLyrics    TextRole = "Lyrics"
	RoleDirection TextRole = "Direction"
	RoleChordName TextRole = "ChordName"
	RoleTitle     TextRole = "Title"
	RoleNumber    TextRole = "Number"
	RoleCreator   TextRole = "Creator"
	RoleRights    TextRole = "Rights"
	RoleUnknown   TextRole = "Unknown"
)

// Side tags relations that attach at one end of a node.
type Side string

const (
	SideLeft  Side = "LEFT"
	SideRight Side = "RIGHT"
)
