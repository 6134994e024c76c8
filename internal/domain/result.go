package domain

import (
	"time"
)

// ScreeningStatus is the overall outcome of screening one record.
type ScreeningStatus string

const (
	// StatusClear means no entry scored at or above the threshold.
	StatusClear ScreeningStatus = "clear"

	// StatusPotentialMatch means at least one hit awaits review.
	StatusPotentialMatch ScreeningStatus = "potential_match"

	// StatusConfirmedMatch means a reviewer confirmed at least one hit.
	StatusConfirmedMatch ScreeningStatus = "confirmed_match"
)

// Disposition is the review state of an individual match.
type Disposition string

const (
	DispositionPending       Disposition = "pending_review"
	DispositionConfirmed     Disposition = "confirmed_match"
	DispositionFalsePositive Disposition = "false_positive"
)

// Valid reports whether the disposition is one of the known values.
func (d Disposition) Valid() bool {
	switch d {
	case DispositionPending, DispositionConfirmed, DispositionFalsePositive:
		return true
	}
	return false
}

// DOBConfidence grades how closely two dates of birth agree.
type DOBConfidence string

const (
	DOBExact    DOBConfidence = "exact"     // full date equal
	DOBPartial  DOBConfidence = "partial"   // year and month equal
	DOBYearOnly DOBConfidence = "year_only" // year equal
	DOBNone     DOBConfidence = "none"      // no data or no agreement
)

// DOBCheck is the result of comparing a record's date of birth
// against a list entry's.
type DOBCheck struct {
	Matches    bool          `json:"matches"`
	Confidence DOBConfidence `json:"confidence"`
}

// NameScore breaks a composite name score into its component signals.
type NameScore struct {
	Score        float64 `json:"score"`
	Levenshtein  float64 `json:"levenshtein"`
	JaroWinkler  float64 `json:"jaroWinkler"`
	TokenSet     float64 `json:"tokenSet"`
	SoundexEqual bool    `json:"soundexEqual"`
}

// MatchDetail explains why an entry matched.
type MatchDetail struct {
	NameScore    NameScore `json:"nameScore"`
	MatchedAlias string    `json:"matchedAlias,omitempty"`
	DOB          DOBCheck  `json:"dob"`
	CountryMatch bool      `json:"countryMatch"`
}

// ScreeningMatch is a single hit against a watchlist entry.
type ScreeningMatch struct {
	ID          string      `json:"id"`
	Seq         int         `json:"seq"`
	Score       float64     `json:"score"`
	Entry       ListEntry   `json:"entry"`
	Detail      MatchDetail `json:"detail"`
	Disposition Disposition `json:"disposition"`
	Tags        []string    `json:"tags,omitempty"`
}

// ScreeningResult is the screening outcome for one record.
type ScreeningResult struct {
	ID         string           `json:"id"`
	TenantID   string           `json:"tenantId"`
	RecordID   string           `json:"recordId,omitempty"`
	RecordName string           `json:"recordName"`
	Status     ScreeningStatus  `json:"status"`
	Matches    []ScreeningMatch `json:"matches"`
	IsDemoData bool             `json:"isDemoData"`
	Timestamp  time.Time        `json:"timestamp"`
}

// DeriveStatus recomputes the result status from its match dispositions.
func (r *ScreeningResult) DeriveStatus() {
	if len(r.Matches) == 0 {
		r.Status = StatusClear
		return
	}
	r.Status = StatusPotentialMatch
	for _, m := range r.Matches {
		if m.Disposition == DispositionConfirmed {
			r.Status = StatusConfirmedMatch
			return
		}
	}
}

// BatchResult is the outcome of screening a batch of records.
type BatchResult struct {
	Results    []*ScreeningResult `json:"results"`
	IsDemoData bool               `json:"isDemoData"`
	Warning    string             `json:"warning,omitempty"`
}

// SingleResult is the outcome of screening one name.
type SingleResult struct {
	Result     *ScreeningResult `json:"result"`
	IsDemoData bool             `json:"isDemoData"`
	Warning    string           `json:"warning,omitempty"`
}

// DispositionRequest is the API payload for updating a match disposition.
type DispositionRequest struct {
	Disposition Disposition `json:"disposition"`
	Note        string      `json:"note,omitempty"`
}
