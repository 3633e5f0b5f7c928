package resolver

import (
	"strings"

	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
	"github.com/opd-ai/go-jf-stremio/internal/mediaid"
)

// familyKeyVariants lists the provider map key spellings seen across server
// implementations for each id family.
var familyKeyVariants = map[string][]string{
	mediaid.FamilyIMDB:  {"Imdb", "imdb", "IMDB"},
	mediaid.FamilyTMDB:  {"Tmdb", "tmdb", "TMDB"},
	mediaid.FamilyTVDB:  {"Tvdb", "tvdb", "TVDB"},
	mediaid.FamilyAniDB: {"AniDb", "anidb", "AniDB", "Anidb"},
}

// MatchesProvider reports whether a remote item's provider-id map satisfies
// the target id. Key casing variance is absorbed for every family; value
// format variance (the "tt" prefix) only for IMDb, where some servers store
// the bare numeric id. A missing or empty map never matches.
func MatchesProvider(ids jellyfin.ProviderIDMap, target *mediaid.MediaID) bool {
	if len(ids) == 0 || target == nil {
		return false
	}

	family, want := target.Provider()
	if family == "" {
		return false
	}

	for _, key := range familyKeyVariants[family] {
		got, ok := ids[key]
		if !ok || got == "" {
			continue
		}
		if got == want {
			return true
		}
		if family == mediaid.FamilyIMDB && stripIMDBPrefix(got) == stripIMDBPrefix(want) {
			return true
		}
	}
	return false
}

// stripIMDBPrefix removes the canonical "tt" prefix so prefixed and bare
// numeric forms compare equal.
func stripIMDBPrefix(id string) string {
	return strings.TrimPrefix(id, "tt")
}
