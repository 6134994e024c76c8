package match

import (
	"testing"

	"github.com/opensource-finance/shrike/internal/domain"
)

func TestMatchDOB(t *testing.T) {
	tests := []struct {
		name       string
		record     string
		entry      string
		matches    bool
		confidence domain.DOBConfidence
	}{
		{"exact", "1965-03-15", "1965-03-15", true, domain.DOBExact},
		{"partial month", "1965-03-15", "1965-03-20", true, domain.DOBPartial},
		{"year only", "1965-03-15", "1965-07-02", true, domain.DOBYearOnly},
		{"different year", "1965-03-15", "1970-03-15", false, domain.DOBNone},
		{"record missing", "", "1965-03-15", false, domain.DOBNone},
		{"entry missing", "1965-03-15", "", false, domain.DOBNone},
		{"both missing", "", "", false, domain.DOBNone},
		{"unparseable", "15/03/1965", "1965-03-15", false, domain.DOBNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchDOB(tt.record, tt.entry)
			if got.Matches != tt.matches {
				t.Errorf("Matches = %v, want %v", got.Matches, tt.matches)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("Confidence = %s, want %s", got.Confidence, tt.confidence)
			}
		})
	}
}

func TestMatchCountry(t *testing.T) {
	tests := []struct {
		name    string
		record  string
		entries []string
		want    bool
	}{
		{"alias to canonical", "USA", []string{"United States"}, true},
		{"canonical to alias", "United States", []string{"US"}, true},
		{"case and spacing", "  syria ", []string{"Syrian Arab Republic"}, true},
		{"in country set", "Lebanon", []string{"Syria", "Lebanon"}, true},
		{"no match", "Spain", []string{"Portugal"}, false},
		{"empty record", "", []string{"Syria"}, false},
		{"empty entry set", "Syria", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchCountry(tt.record, tt.entries)
			if got != tt.want {
				t.Errorf("MatchCountry(%q, %v) = %v, want %v", tt.record, tt.entries, got, tt.want)
			}
		})
	}
}
