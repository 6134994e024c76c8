package match

// Component weights for the composite name score. Token-set carries
// the most weight because watchlist names are frequently reordered
// ("GARCIA, Jose Maria" vs "Jose Maria Garcia").
const (
	weightLevenshtein = 0.25
	weightJaroWinkler = 0.35
	weightTokenSet    = 0.40

	// soundexBonus is added once when the full normalized names share
	// a Soundex code.
	soundexBonus = 0.05
)

// Score is the composite similarity of two names with its components.
type Score struct {
	Score        float64
	Levenshtein  float64
	JaroWinkler  float64
	TokenSet     float64
	SoundexEqual bool
}

// CompareNames scores two names in [0, 1]. Both names are normalized
// before comparison; the components are fused with fixed weights and
// a flat phonetic bonus when the Soundex codes agree.
func CompareNames(a, b string) Score {
	na := Normalize(a)
	nb := Normalize(b)

	// A name that normalizes to nothing carries no evidence either way.
	if na == "" || nb == "" {
		return Score{}
	}

	s := Score{
		Levenshtein: LevenshteinSimilarity(na, nb),
		JaroWinkler: JaroWinkler(na, nb),
		TokenSet:    TokenSetRatio(na, nb),
	}
	s.Score = weightLevenshtein*s.Levenshtein +
		weightJaroWinkler*s.JaroWinkler +
		weightTokenSet*s.TokenSet

	if Soundex(na) == Soundex(nb) {
		s.SoundexEqual = true
		s.Score += soundexBonus
	}
	if s.Score > 1.0 {
		s.Score = 1.0
	}
	return s
}
