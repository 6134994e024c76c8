package match

// tokenPairThreshold is the Jaro-Winkler score at which two tokens
// count as the same word for token-set pairing.
const tokenPairThreshold = 0.85

// TokenSetRatio scores two names by greedily pairing their tokens.
// Each token of the shorter name claims the best unclaimed token of
// the longer name when their Jaro-Winkler score reaches the pairing
// threshold. The ratio is matched pairs over the larger token count,
// so "Jose Maria Garcia" against "Garcia, Jose" scores on word overlap
// regardless of order.
//
// Greedy pairing is not optimal assignment: a token can claim a
// counterpart that a later token would have matched better. In
// practice name token sets are small and near-duplicates are rare, so
// the approximation holds and keeps the cost at O(n*m) comparisons.
func TokenSetRatio(a, b string) float64 {
	ta := Tokenize(a)
	tb := Tokenize(b)
	// No tokens on either side means no evidence of a match.
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	// Pair from the shorter side so every token gets a chance.
	short, long := ta, tb
	if len(tb) < len(ta) {
		short, long = tb, ta
	}

	claimed := make([]bool, len(long))
	matched := 0
	for _, s := range short {
		best := -1
		bestScore := 0.0
		for j, l := range long {
			if claimed[j] {
				continue
			}
			score := JaroWinkler(s, l)
			if score > bestScore {
				bestScore = score
				best = j
			}
		}
		if best >= 0 && bestScore >= tokenPairThreshold {
			claimed[best] = true
			matched++
		}
	}

	return float64(matched) / float64(len(long))
}
