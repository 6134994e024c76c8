package domain

// EntityKind distinguishes the two kinds of screenable entities.
// Matching never crosses kinds: an individual record is only compared
// against individual list entries, a company against company entries.
type EntityKind string

const (
	KindIndividual EntityKind = "individual"
	KindCompany    EntityKind = "company"
)

// Valid reports whether the kind is one of the known values.
func (k EntityKind) Valid() bool {
	return k == KindIndividual || k == KindCompany
}

// ScreeningRecord represents a single party to screen against watchlists.
type ScreeningRecord struct {
	// Core identifiers
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind EntityKind `json:"kind"`

	// Optional attributes used for secondary confirmation
	DateOfBirth string   `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Country     string   `json:"country,omitempty"`
	NationalID  string   `json:"nationalId,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// ScreenRequest is the API request payload for batch screening.
type ScreenRequest struct {
	Records []ScreeningRecord `json:"records"`
	Options *ScreeningOptions `json:"options,omitempty"`
}

// NameScreenRequest is the API request payload for single-name screening.
type NameScreenRequest struct {
	Name        string            `json:"name"`
	Kind        EntityKind        `json:"kind,omitempty"`
	DateOfBirth string            `json:"dateOfBirth,omitempty"`
	Country     string            `json:"country,omitempty"`
	Options     *ScreeningOptions `json:"options,omitempty"`
}

// ToRecord converts a single-name request to a ScreeningRecord.
func (r *NameScreenRequest) ToRecord() ScreeningRecord {
	kind := r.Kind
	if kind == "" {
		kind = KindIndividual
	}
	return ScreeningRecord{
		Name:        r.Name,
		Kind:        kind,
		DateOfBirth: r.DateOfBirth,
		Country:     r.Country,
	}
}
