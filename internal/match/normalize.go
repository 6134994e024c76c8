package match

import (
	"strings"
	"unicode"
)

// honorifics are title and suffix tokens dropped during normalization.
// They carry no identifying signal and inflate edit distances.
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true,
	"dr": true, "prof": true, "sir": true, "dame": true,
	"lord": true, "lady": true,
	"jr": true, "sr": true, "junior": true, "senior": true,
	"ii": true, "iii": true, "iv": true,
	"phd": true, "md": true, "esq": true,
}

// Normalize lowercases a name, replaces punctuation with spaces,
// collapses runs of whitespace, and strips honorific tokens.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if !honorifics[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// Tokenize normalizes a name and splits it into tokens.
func Tokenize(name string) []string {
	return strings.Fields(Normalize(name))
}
