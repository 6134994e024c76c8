package match

import (
	"strings"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
)

const dobLayout = "2006-01-02"

// MatchDOB compares two YYYY-MM-DD dates of birth. Missing or
// unparseable data on either side counts as no match without penalty.
func MatchDOB(recordDOB, entryDOB string) domain.DOBCheck {
	none := domain.DOBCheck{Matches: false, Confidence: domain.DOBNone}
	if recordDOB == "" || entryDOB == "" {
		return none
	}
	rd, err := time.Parse(dobLayout, recordDOB)
	if err != nil {
		return none
	}
	ed, err := time.Parse(dobLayout, entryDOB)
	if err != nil {
		return none
	}

	if rd.Year() != ed.Year() {
		return none
	}
	if rd.Month() != ed.Month() {
		return domain.DOBCheck{Matches: true, Confidence: domain.DOBYearOnly}
	}
	if rd.Day() != ed.Day() {
		return domain.DOBCheck{Matches: true, Confidence: domain.DOBPartial}
	}
	return domain.DOBCheck{Matches: true, Confidence: domain.DOBExact}
}

// countryAliases maps common spellings and codes to a canonical name.
// Country comparison is exact after canonicalization; there is no
// fuzzy matching on countries.
var countryAliases = map[string]string{
	"us": "united states", "usa": "united states",
	"united states of america": "united states",
	"uk": "united kingdom", "gb": "united kingdom",
	"great britain": "united kingdom",
	"uae":           "united arab emirates",
	"ae":            "united arab emirates",
	"ru":            "russian federation",
	"russia":        "russian federation",
	"ir":            "iran",
	"islamic republic of iran": "iran",
	"kp":   "north korea",
	"dprk": "north korea",
	"democratic people's republic of korea": "north korea",
	"kr":                   "south korea",
	"republic of korea":    "south korea",
	"sy":                   "syria",
	"syrian arab republic": "syria",
	"de":                   "germany",
	"fr":                   "france",
	"cn":                   "china",
	"people's republic of china": "china",
}

// CanonicalCountry folds a country string to its canonical form.
func CanonicalCountry(s string) string {
	c := strings.ToLower(strings.TrimSpace(s))
	if canon, ok := countryAliases[c]; ok {
		return canon
	}
	return c
}

// MatchCountry reports whether the record's country appears in the
// entry's country set after canonicalization. Empty data on either
// side is no match.
func MatchCountry(recordCountry string, entryCountries []string) bool {
	if recordCountry == "" || len(entryCountries) == 0 {
		return false
	}
	rc := CanonicalCountry(recordCountry)
	if rc == "" {
		return false
	}
	for _, ec := range entryCountries {
		if CanonicalCountry(ec) == rc {
			return true
		}
	}
	return false
}
