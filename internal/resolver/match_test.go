package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
	"github.com/opd-ai/go-jf-stremio/internal/mediaid"
)

// TestMatchesProviderIMDB verifies key casing and tt-prefix absorption.
func TestMatchesProviderIMDB(t *testing.T) {
	target := &mediaid.MediaID{IMDB: "tt100"}

	tests := []struct {
		name string
		ids  jellyfin.ProviderIDMap
		want bool
	}{
		{name: "canonical key and value", ids: jellyfin.ProviderIDMap{"Imdb": "tt100"}, want: true},
		{name: "lowercase key", ids: jellyfin.ProviderIDMap{"imdb": "tt100"}, want: true},
		{name: "uppercase key", ids: jellyfin.ProviderIDMap{"IMDB": "tt100"}, want: true},
		{name: "stored without prefix", ids: jellyfin.ProviderIDMap{"Imdb": "100"}, want: true},
		{name: "different id", ids: jellyfin.ProviderIDMap{"Imdb": "tt200"}, want: false},
		{name: "wrong family", ids: jellyfin.ProviderIDMap{"Tmdb": "100"}, want: false},
		{name: "empty value", ids: jellyfin.ProviderIDMap{"Imdb": ""}, want: false},
		{name: "nil map", ids: nil, want: false},
		{name: "empty map", ids: jellyfin.ProviderIDMap{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesProvider(tt.ids, target))
		})
	}
}

// TestMatchesProviderBareTargetAgainstPrefixedStore covers the reverse
// direction: a bare numeric target against a stored "tt" value.
func TestMatchesProviderBareTargetAgainstPrefixedStore(t *testing.T) {
	target := &mediaid.MediaID{IMDB: "100"}
	assert.True(t, MatchesProvider(jellyfin.ProviderIDMap{"Imdb": "tt100"}, target))
}

// TestMatchesProviderExactFamilies verifies tmdb/tvdb/anidb need exact
// string equality, with key casing still absorbed.
func TestMatchesProviderExactFamilies(t *testing.T) {
	tests := []struct {
		name   string
		target mediaid.MediaID
		ids    jellyfin.ProviderIDMap
		want   bool
	}{
		{name: "tmdb exact", target: mediaid.MediaID{TMDB: "550"}, ids: jellyfin.ProviderIDMap{"Tmdb": "550"}, want: true},
		{name: "tmdb lowercase key", target: mediaid.MediaID{TMDB: "550"}, ids: jellyfin.ProviderIDMap{"tmdb": "550"}, want: true},
		{name: "tmdb no prefix absorption", target: mediaid.MediaID{TMDB: "550"}, ids: jellyfin.ProviderIDMap{"Tmdb": "tt550"}, want: false},
		{name: "tvdb exact", target: mediaid.MediaID{TVDB: "81189"}, ids: jellyfin.ProviderIDMap{"TVDB": "81189"}, want: true},
		{name: "tvdb mismatch", target: mediaid.MediaID{TVDB: "81189"}, ids: jellyfin.ProviderIDMap{"Tvdb": "81190"}, want: false},
		{name: "anidb exact", target: mediaid.MediaID{AniDB: "9541"}, ids: jellyfin.ProviderIDMap{"AniDb": "9541"}, want: true},
		{name: "anidb alternate casing", target: mediaid.MediaID{AniDB: "9541"}, ids: jellyfin.ProviderIDMap{"anidb": "9541"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			assert.Equal(t, tt.want, MatchesProvider(tt.ids, &target))
		})
	}
}

// TestQueryStrategyOrder verifies the field-filtered query comes first and
// the permutations include the bare imdb variant.
func TestQueryStrategyOrder(t *testing.T) {
	target := &mediaid.MediaID{IMDB: "tt123"}
	specs := movieQueries(target)

	assert.GreaterOrEqual(t, len(specs), 5)
	assert.Equal(t, "tt123", specs[0].params.Get("ImdbId"))
	assert.Equal(t, "Movie", specs[0].params.Get("IncludeItemTypes"))
	assert.Equal(t, "true", specs[0].params.Get("Recursive"))

	var permutations []string
	for _, spec := range specs[1:] {
		permutations = append(permutations, spec.params.Get("AnyProviderIdEquals"))
	}
	assert.Contains(t, permutations, "imdb.tt123")
	assert.Contains(t, permutations, "Imdb.tt123")
	assert.Contains(t, permutations, "imdb.123")
	assert.Contains(t, permutations, "Imdb.123")
}

// TestSeriesQueriesFetchIdentityOnly verifies series lookups skip the heavy
// media source fields.
func TestSeriesQueriesFetchIdentityOnly(t *testing.T) {
	target := &mediaid.MediaID{TMDB: "1396", Kind: mediaid.KindEpisode, Season: 1, Episode: 1}
	specs := seriesQueries(target)

	for _, spec := range specs {
		assert.Equal(t, "Series", spec.params.Get("IncludeItemTypes"))
		assert.Equal(t, identityFields, spec.params.Get("Fields"))
	}
	// No bare-number permutation outside imdb.
	assert.Len(t, specs, 3)
}
