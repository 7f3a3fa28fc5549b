package assoc

const (
	alliterationBonus   = 0.08
	favoriteLetterBonus = 0.12

	longWordThreshold   = 8
	longWordPenaltyStep = 0.01
	longWordPenaltyCap  = 0.12

	usedWordFactor = 0.05

	minWeight = 0.001
	maxWeight = 10
)

// WeightContext carries everything the human-likeness adjustments depend on
// besides the candidate itself.
type WeightContext struct {
	// CueFirst is the first character of the normalized cue.
	CueFirst string
	// FavoriteLetter is the lowercased favorite letter, or "" for none.
	FavoriteLetter string
	Used           UsedSet
}

// AdjustWeight applies the alliteration, favorite-letter, short-word and
// anti-repeat biases to a candidate's base weight.
//
// All additive terms apply to the same base; the anti-repeat factor multiplies
// the sum, and the result is clamped to [0.001, 10].
func AdjustWeight(candidate string, base float64, wc WeightContext) float64 {
	token := Normalize(candidate)
	first := firstChar(token)

	w := base
	if first != "" && first == wc.CueFirst {
		w += alliterationBonus
	}
	if wc.FavoriteLetter != "" && first != "" && first == wc.FavoriteLetter {
		w += favoriteLetterBonus
	}
	if n := len(token); n > longWordThreshold {
		w -= clamp(float64(n-longWordThreshold)*longWordPenaltyStep, 0, longWordPenaltyCap)
	}
	if wc.Used.Has(token) {
		w *= usedWordFactor
	}

	return clamp(w, minWeight, maxWeight)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
