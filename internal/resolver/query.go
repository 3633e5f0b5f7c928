package resolver

import (
	"net/url"

	"github.com/opd-ai/go-jf-stremio/internal/mediaid"
)

// querySpec is one catalog query attempt. Specs are tried in order until one
// yields locally verified matches; the server's own filtering is treated as
// a hint, never as authoritative.
type querySpec struct {
	label  string
	params url.Values
}

// providerFieldNames maps an id family onto the server-side query field used
// by the direct, field-filtered strategy.
var providerFieldNames = map[string]string{
	mediaid.FamilyIMDB:  "ImdbId",
	mediaid.FamilyTMDB:  "TmdbId",
	mediaid.FamilyTVDB:  "TvdbId",
	mediaid.FamilyAniDB: "AniDbId",
}

// itemFields is requested for queries whose results feed enrichment.
const itemFields = "ProviderIds,Path,MediaSources,MediaStreams"

// identityFields is requested when only provider verification is needed.
const identityFields = "ProviderIds"

// movieQueries builds the ordered strategy list for a movie lookup: the
// field-filtered query first, then the generic any-provider-id permutations.
func movieQueries(target *mediaid.MediaID) []querySpec {
	return buildQueries(target, "Movie", itemFields)
}

// seriesQueries builds the ordered strategy list for resolving the parent
// series of an episode. Only identity fields are fetched; media sources come
// from the episode items.
func seriesQueries(target *mediaid.MediaID) []querySpec {
	return buildQueries(target, "Series", identityFields)
}

// buildQueries assembles strategy A (server-side field filter) followed by
// the strategy B permutations of AnyProviderIdEquals.
func buildQueries(target *mediaid.MediaID, itemType, fields string) []querySpec {
	family, value := target.Provider()

	base := func() url.Values {
		return url.Values{
			"Recursive":        {"true"},
			"IncludeItemTypes": {itemType},
			"Fields":           {fields},
		}
	}

	specs := make([]querySpec, 0, 5)

	direct := base()
	direct.Set(providerFieldNames[family], value)
	specs = append(specs, querySpec{label: "field filter", params: direct})

	for _, composite := range providerPermutations(family, value) {
		params := base()
		params.Set("AnyProviderIdEquals", composite)
		specs = append(specs, querySpec{label: "any provider id " + composite, params: params})
	}
	return specs
}

// providerPermutations enumerates the casing and format permutations of the
// composite "family.value" filter. IMDb additionally gets the bare numeric
// variant for servers that drop the "tt" prefix.
func providerPermutations(family, value string) []string {
	lower := familyKeyVariants[family][1] // lowercase spelling
	canonical := familyKeyVariants[family][0]

	permutations := []string{
		lower + "." + value,
		canonical + "." + value,
	}
	if family == mediaid.FamilyIMDB {
		bare := stripIMDBPrefix(value)
		if bare != value {
			permutations = append(permutations,
				lower+"."+bare,
				canonical+"."+bare)
		}
	}
	return permutations
}
