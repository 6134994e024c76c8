package domain

// DefaultThreshold gates matches when a request sets no threshold.
const DefaultThreshold = 0.7

// ScreeningOptions is the request-side control surface for one
// screening run. Every field is optional: fields left unset merge
// over the documented defaults in Resolve, so a partial override
// (say, only a threshold) never silently disables the other knobs.
// A nil options pointer means all defaults.
type ScreeningOptions struct {
	// Threshold is the minimum composite name score for a hit.
	// Clamped to [0, 1]. An explicit 0 matches everything.
	Threshold *float64 `json:"threshold,omitempty"`

	// Lists selects which watchlists to screen against.
	// Empty means DefaultListCodes.
	Lists []ListCode `json:"lists,omitempty"`

	// IncludeAliases extends matching to entry and record aliases.
	IncludeAliases *bool `json:"includeAliases,omitempty"`

	// CheckDOB enables the date-of-birth confirmation bonus.
	CheckDOB *bool `json:"checkDob,omitempty"`

	// CheckCountry enables the country confirmation bonus.
	CheckCountry *bool `json:"checkCountry,omitempty"`

	// AllowDemoData permits the bundled demo dataset when no real
	// list source is configured. Never allowed implicitly in
	// production, and never on by default.
	AllowDemoData bool `json:"allowDemoData,omitempty"`
}

// RunOptions is a ScreeningOptions with every default applied, as
// consumed by the screening engine.
type RunOptions struct {
	Threshold      float64
	Lists          []ListCode
	IncludeAliases bool
	CheckDOB       bool
	CheckCountry   bool
	AllowDemoData  bool
}

// DefaultRunOptions returns the documented defaults: sanctions lists
// only, threshold 0.7, all secondary checks on, no demo data.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Threshold:      DefaultThreshold,
		Lists:          DefaultListCodes(),
		IncludeAliases: true,
		CheckDOB:       true,
		CheckCountry:   true,
		AllowDemoData:  false,
	}
}

// ClampThreshold forces an arbitrary threshold into [0, 1].
func ClampThreshold(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Resolve merges the set fields over the defaults and clamps the
// threshold. Safe to call on a nil receiver.
func (o *ScreeningOptions) Resolve() RunOptions {
	out := DefaultRunOptions()
	if o == nil {
		return out
	}
	if o.Threshold != nil {
		out.Threshold = ClampThreshold(*o.Threshold)
	}
	if len(o.Lists) > 0 {
		out.Lists = append([]ListCode(nil), o.Lists...)
	}
	if o.IncludeAliases != nil {
		out.IncludeAliases = *o.IncludeAliases
	}
	if o.CheckDOB != nil {
		out.CheckDOB = *o.CheckDOB
	}
	if o.CheckCountry != nil {
		out.CheckCountry = *o.CheckCountry
	}
	out.AllowDemoData = o.AllowDemoData
	return out
}
