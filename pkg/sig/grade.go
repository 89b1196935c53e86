package sig

import "math"

// Impacts records the weighted sub-grades an overall grade is derived from.
type Impacts struct {
	Names   []string  `json:"names,omitempty" yaml:"names,omitempty"`
	Values  []float64 `json:"values" yaml:"values"`
	Weights []float64 `json:"weights" yaml:"weights"`
}

// Grade is the weighted geometric mean of the impact values. A single zero
// impact yields zero.
func (im *Impacts) Grade() float64 {
	if im == nil || len(im.Values) == 0 || len(im.Values) != len(im.Weights) {
		return 0
	}
	var sum, total float64
	for i, v := range im.Values {
		w := im.Weights[i]
		if w == 0 {
			continue
		}
		if v <= 0 {
			return 0
		}
		sum += w * math.Log(v)
		total += w
	}
	if total == 0 {
		return 0
	}
	return math.Exp(sum / total)
}

// Support bounds a geometric connection between two inters. Gaps are given
// in interline fractions.
type Support struct {
	XGapMax  float64 `toml:"x_gap_max" json:"x_gap_max" validate:"gt=0"`
	YGapMax  float64 `toml:"y_gap_max" json:"y_gap_max" validate:"gt=0"`
	XWeight  float64 `toml:"x_weight" json:"x_weight" validate:"min=0"`
	YWeight  float64 `toml:"y_weight" json:"y_weight" validate:"min=0"`
	MinGrade float64 `toml:"min_grade" json:"min_grade" validate:"min=0,max=1"`
}

// Impacts turns gaps into impacts, each decreasing linearly from 1 at zero
// gap to 0 at the maximum.
func (s Support) Impacts(xGap, yGap float64) *Impacts {
	return &Impacts{
		Names:   []string{"xGap", "yGap"},
		Values:  []float64{ratio(xGap, s.XGapMax), ratio(yGap, s.YGapMax)},
		Weights: []float64{s.XWeight, s.YWeight},
	}
}

func ratio(gap, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Min(1, math.Max(0, 1-math.Abs(gap)/limit))
}
