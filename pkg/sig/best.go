package sig

// Match is a candidate retained by Best along with the relation that would
// connect it.
type Match struct {
	Inter    *Inter
	Relation *Relation
	Key      float64
}

// Evaluator builds the relation towards a candidate and the key used to rank
// it. A nil relation discards the candidate.
type Evaluator func(candidate *Inter) (rel *Relation, key float64)

// Best keeps the candidates whose relation is acceptable and returns the one
// with the lowest key. On exact ties the first candidate wins.
func Best(candidates []*Inter, eval Evaluator) (Match, bool) {
	var best Match
	found := false
	for _, c := range candidates {
		rel, key := eval(c)
		if rel == nil || !rel.Acceptable() {
			continue
		}
		if !found || key < best.Key {
			best = Match{Inter: c, Relation: rel, Key: key}
			found = true
		}
	}
	return best, found
}
