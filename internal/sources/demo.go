package sources

import (
	"github.com/opensource-finance/shrike/internal/domain"
)

// DemoWarning accompanies every result produced from the bundled
// dataset so downstream consumers never present demo matches as
// compliance-grade findings.
const DemoWarning = "results are based on bundled demo data, not live watchlist feeds; do not use for compliance decisions"

// demoEntries is a small fixed dataset covering every supported list,
// both entity kinds, aliases, DOBs and country sets. It exists so the
// engine is usable out of the box before any real fetcher is wired.
var demoEntries = []domain.ListEntry{
	{
		ID:          "demo-ofac-001",
		Name:        "Ahmad Hassan Mohammed",
		Kind:        domain.KindIndividual,
		DateOfBirth: "1965-03-15",
		Countries:   []string{"Syria", "Lebanon"},
		Aliases:     []string{"Ahmed Hassan Mohamed", "Abu Hassan"},
		List:        domain.ListOFAC,
		ListName:    "OFAC SDN",
		Category:    domain.CategorySanctions,
		Reason:      "SDGT designation",
		AddedAt:     "2019-06-12",
	},
	{
		ID:          "demo-ofac-002",
		Name:        "Viktor Andreyevich Morozov",
		Kind:        domain.KindIndividual,
		DateOfBirth: "1958-11-02",
		Countries:   []string{"Russia"},
		Aliases:     []string{"Victor Morozov"},
		List:        domain.ListOFAC,
		ListName:    "OFAC SDN",
		Category:    domain.CategorySanctions,
		Reason:      "Ukraine-related designation",
		AddedAt:     "2022-03-01",
	},
	{
		ID:        "demo-ofac-003",
		Name:      "Golden Crescent Trading LLC",
		Kind:      domain.KindCompany,
		Countries: []string{"United Arab Emirates"},
		Aliases:   []string{"Golden Crescent General Trading"},
		List:      domain.ListOFAC,
		ListName:  "OFAC SDN",
		Category:  domain.CategorySanctions,
		Reason:    "Sanctions evasion network",
		AddedAt:   "2021-09-23",
	},
	{
		ID:          "demo-eu-001",
		Name:        "Jose Maria Garcia Fernandez",
		Kind:        domain.KindIndividual,
		DateOfBirth: "1971-07-30",
		Countries:   []string{"Spain"},
		Aliases:     []string{"GARCIA, Jose Maria"},
		List:        domain.ListEU,
		ListName:    "EU Consolidated",
		Category:    domain.CategorySanctions,
		Reason:      "Asset freeze",
		AddedAt:     "2020-01-17",
	},
	{
		ID:        "demo-eu-002",
		Name:      "Balkan Freight Logistics d.o.o.",
		Kind:      domain.KindCompany,
		Countries: []string{"Serbia"},
		List:      domain.ListEU,
		ListName:  "EU Consolidated",
		Category:  domain.CategorySanctions,
		Reason:    "Arms embargo violation",
		AddedAt:   "2018-04-09",
	},
	{
		ID:          "demo-uk-001",
		Name:        "Chen Wei Liang",
		Kind:        domain.KindIndividual,
		DateOfBirth: "1980-02-14",
		Countries:   []string{"China"},
		Aliases:     []string{"Wei Liang Chen"},
		List:        domain.ListUK,
		ListName:    "UK HMT",
		Category:    domain.CategorySanctions,
		Reason:      "Proliferation financing",
		AddedAt:     "2023-05-02",
	},
	{
		ID:        "demo-un-001",
		Name:      "Ibrahim Khalil Al-Rashid",
		Kind:      domain.KindIndividual,
		Countries: []string{"Iraq"},
		Aliases:   []string{"Ibrahim al Rashid", "Abu Khalil"},
		List:      domain.ListUN,
		ListName:  "UN Consolidated",
		Category:  domain.CategorySanctions,
		Reason:    "ISIL (Da'esh) and Al-Qaida sanctions list",
		AddedAt:   "2015-10-21",
	},
	{
		ID:        "demo-un-002",
		Name:      "Crescent Star Shipping Co.",
		Kind:      domain.KindCompany,
		Countries: []string{"North Korea"},
		Aliases:   []string{"Crescent Star Maritime"},
		List:      domain.ListUN,
		ListName:  "UN Consolidated",
		Category:  domain.CategorySanctions,
		Reason:    "DPRK sanctions list",
		AddedAt:   "2017-08-05",
	},
	{
		ID:          "demo-pep-001",
		Name:        "Maria Elena Vasquez Romero",
		Kind:        domain.KindIndividual,
		DateOfBirth: "1962-12-08",
		Countries:   []string{"Venezuela"},
		List:        domain.ListPEP,
		ListName:    "PEP",
		Category:    domain.CategoryPEP,
		Reason:      "Former minister of energy",
		AddedAt:     "2016-02-28",
	},
	{
		ID:          "demo-pep-002",
		Name:        "Kwame Osei Mensah",
		Kind:        domain.KindIndividual,
		DateOfBirth: "1955-06-19",
		Countries:   []string{"Ghana"},
		Aliases:     []string{"K. O. Mensah"},
		List:        domain.ListPEP,
		ListName:    "PEP",
		Category:    domain.CategoryPEP,
		Reason:      "Sitting member of parliament",
		AddedAt:     "2021-11-30",
	},
}

// DemoEntries returns the demo entries belonging to the given lists,
// in dataset order.
func DemoEntries(codes []domain.ListCode) []domain.ListEntry {
	want := make(map[domain.ListCode]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []domain.ListEntry
	for _, e := range demoEntries {
		if want[e.List] {
			out = append(out, e)
		}
	}
	return out
}
