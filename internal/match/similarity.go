// Package match implements the string similarity primitives used for
// watchlist name screening: Levenshtein, Jaro-Winkler, Soundex, and a
// token-set ratio for reordered multi-word names.
package match

// LevenshteinDistance returns the minimum number of single-rune edits
// (insertions, deletions, substitutions) to turn a into b.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row rolling DP.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity maps edit distance to [0, 1]: 1 minus the
// distance over the longer length. Two empty strings are identical.
func LevenshteinSimilarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}
	max := la
	if lb > max {
		max = lb
	}
	d := LevenshteinDistance(a, b)
	return 1.0 - float64(d)/float64(max)
}

// Jaro returns the Jaro similarity of a and b in [0, 1].
// An empty string on either side yields 0.
func Jaro(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	if string(ra) == string(rb) {
		return 1.0
	}

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	window := maxLen/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, len(ra))
	bMatched := make([]bool, len(rb))

	matches := 0
	for i := range ra {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > len(rb) {
			hi = len(rb)
		}
		for j := lo; j < hi; j++ {
			if bMatched[j] || ra[i] != rb[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	// Count transpositions among matched runes in order.
	transpositions := 0
	j := 0
	for i := range ra {
		if !aMatched[i] {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2.0
	return (m/float64(len(ra)) + m/float64(len(rb)) + (m-t)/m) / 3.0
}

const (
	winklerPrefixMax = 4
	winklerScale     = 0.1
)

// JaroWinkler returns the Jaro-Winkler similarity: Jaro boosted for a
// shared prefix of up to four runes.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)

	ra := []rune(a)
	rb := []rune(b)
	prefix := 0
	for prefix < len(ra) && prefix < len(rb) && prefix < winklerPrefixMax {
		if ra[prefix] != rb[prefix] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*winklerScale*(1.0-j)
}
