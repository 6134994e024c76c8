package domain

// PolicyConfig defines a match policy: a CEL expression evaluated
// against each confirmed-over-threshold match. Policies are advisory.
// They attach tags to matches for reviewer triage and never change
// scores or match decisions.
type PolicyConfig struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// CEL expression over match fields; must evaluate to bool
	Expression string `json:"expression"`

	// Tag applied to the match when the expression is true
	Tag string `json:"tag"`

	// Whether the policy is active
	Enabled bool `json:"enabled"`
}

// PolicyInput is the variable set exposed to policy expressions.
type PolicyInput struct {
	Score        float64 `json:"score"`
	NameScore    float64 `json:"nameScore"`
	DOBMatch     bool    `json:"dobMatch"`
	CountryMatch bool    `json:"countryMatch"`
	ListCode     string  `json:"listCode"`
	Category     string  `json:"category"`
	EntityKind   string  `json:"entityKind"`
	MatchedAlias string  `json:"matchedAlias"`
}
