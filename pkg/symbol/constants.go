package symbol

import "github.com/OFFIS-RIT/scorelink/pkg/sig"

// Constants tunes the symbol interpretation. Gap maxima are interline
// fractions.
type Constants struct {
	// FlatPitchOffset is added to the mass pitch of flat signs.
	FlatPitchOffset float64 `toml:"flat_pitch_offset" json:"flat_pitch_offset"`
	// FlatHeightRatio locates the flat body within its bounds, from the top.
	FlatHeightRatio float64 `toml:"flat_height_ratio" json:"flat_height_ratio" validate:"gt=0,lt=1"`

	AlterHead      sig.Support `toml:"alter_head" json:"alter_head"`
	ChordDynamics  sig.Support `toml:"chord_dynamics" json:"chord_dynamics"`
	FermataChord   sig.Support `toml:"fermata_chord" json:"fermata_chord"`
	FermataBarline sig.Support `toml:"fermata_barline" json:"fermata_barline"`
	ChordSyllable  sig.Support `toml:"chord_syllable" json:"chord_syllable"`
}

// DefaultConstants returns the stock tuning.
func DefaultConstants() Constants {
	return Constants{
		FlatPitchOffset: 0.65,
		FlatHeightRatio: 0.65,
		AlterHead: sig.Support{
			XGapMax: 1.0, YGapMax: 0.5, XWeight: 1, YWeight: 2, MinGrade: 0.5,
		},
		ChordDynamics: sig.Support{
			XGapMax: 2.0, YGapMax: 6.0, XWeight: 2, YWeight: 1, MinGrade: 0.1,
		},
		FermataChord: sig.Support{
			XGapMax: 2.0, YGapMax: 3.0, XWeight: 1, YWeight: 1, MinGrade: 0.1,
		},
		FermataBarline: sig.Support{
			XGapMax: 1.0, YGapMax: 3.0, XWeight: 1, YWeight: 1, MinGrade: 0.1,
		},
		ChordSyllable: sig.Support{
			XGapMax: 2.0, YGapMax: 8.0, XWeight: 3, YWeight: 1, MinGrade: 0.1,
		},
	}
}
