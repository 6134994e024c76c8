package domain

// ListCode identifies a supported watchlist. The set is closed: adding a
// list means adding a constant here plus its ListInfo metadata, so every
// consumer (resolver, API, demo data) stays in sync.
type ListCode string

const (
	ListOFAC ListCode = "ofac" // US OFAC Specially Designated Nationals
	ListEU   ListCode = "eu"   // EU consolidated financial sanctions
	ListUK   ListCode = "uk"   // UK HMT consolidated list
	ListUN   ListCode = "un"   // UN Security Council consolidated list
	ListPEP  ListCode = "pep"  // Politically exposed persons
)

// ListCategory groups lists by the kind of risk they cover.
type ListCategory string

const (
	CategorySanctions    ListCategory = "sanctions"
	CategoryPEP          ListCategory = "pep"
	CategoryAdverseMedia ListCategory = "adverse_media"
)

// ListInfo describes a watchlist for introspection endpoints.
type ListInfo struct {
	Code        ListCode     `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    ListCategory `json:"category"`
	Premium     bool         `json:"isPremium"`
}

var listInfos = map[ListCode]ListInfo{
	ListOFAC: {
		Code:        ListOFAC,
		Name:        "OFAC SDN",
		Description: "US Treasury Specially Designated Nationals and Blocked Persons",
		Category:    CategorySanctions,
	},
	ListEU: {
		Code:        ListEU,
		Name:        "EU Consolidated",
		Description: "EU consolidated list of persons subject to financial sanctions",
		Category:    CategorySanctions,
	},
	ListUK: {
		Code:        ListUK,
		Name:        "UK HMT",
		Description: "UK HM Treasury consolidated list of financial sanctions targets",
		Category:    CategorySanctions,
	},
	ListUN: {
		Code:        ListUN,
		Name:        "UN Consolidated",
		Description: "UN Security Council consolidated sanctions list",
		Category:    CategorySanctions,
	},
	ListPEP: {
		Code:        ListPEP,
		Name:        "PEP",
		Description: "Politically exposed persons and close associates",
		Category:    CategoryPEP,
		Premium:     true,
	},
}

// Valid reports whether the code names a known list.
func (c ListCode) Valid() bool {
	_, ok := listInfos[c]
	return ok
}

// Info returns the metadata for the list. The second return is false
// for unknown codes.
func (c ListCode) Info() (ListInfo, bool) {
	info, ok := listInfos[c]
	return info, ok
}

// AllListCodes returns every supported list code in stable order.
func AllListCodes() []ListCode {
	return []ListCode{ListOFAC, ListEU, ListUK, ListUN, ListPEP}
}

// DefaultListCodes returns the lists screened when the caller does not
// choose any: the four sanctions feeds.
func DefaultListCodes() []ListCode {
	return []ListCode{ListOFAC, ListEU, ListUK, ListUN}
}

// ListEntry is a single watchlist entry as produced by a list source.
type ListEntry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Kind        EntityKind `json:"kind"`
	DateOfBirth string     `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Countries   []string   `json:"countries,omitempty"`
	Aliases     []string   `json:"aliases,omitempty"`

	// Provenance
	List      ListCode     `json:"list"`
	ListName  string       `json:"listName"`
	Category  ListCategory `json:"category"`
	Reason    string       `json:"reason,omitempty"`
	AddedAt   string       `json:"addedAt,omitempty"` // YYYY-MM-DD
	SourceURL string       `json:"sourceUrl,omitempty"`
}
