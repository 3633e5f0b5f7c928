// Package mediaid parses the composite catalog identifiers that Stremio
// clients pass to the addon (e.g. "tt1234567", "tmdb:550" or
// "tt0903747:1:2") into a normalized provider id record.
package mediaid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when a composite id does not match any of the
// supported grammars. Resolution is aborted for the whole request; there is
// no partial parse result.
var ErrInvalidID = errors.New("invalid media id")

// Kind distinguishes the two content kinds the addon can resolve.
type Kind int

const (
	// KindMovie is a standalone item resolved directly.
	KindMovie Kind = iota
	// KindEpisode is a series child addressed by season and episode number.
	KindEpisode
)

// String returns the Stremio content-type name for the kind.
func (k Kind) String() string {
	if k == KindEpisode {
		return "series"
	}
	return "movie"
}

// Provider-id family names as they commonly appear in server provider maps.
const (
	FamilyIMDB  = "Imdb"
	FamilyTMDB  = "Tmdb"
	FamilyTVDB  = "Tvdb"
	FamilyAniDB = "AniDb"
)

// MediaID is the normalized form of a composite catalog id. Exactly one of
// the four provider id fields is populated. Season and Episode are only
// meaningful when Kind is KindEpisode.
type MediaID struct {
	Kind    Kind
	Season  int
	Episode int

	IMDB  string
	TMDB  string
	TVDB  string
	AniDB string
}

// Provider returns the populated provider family and its value.
func (m *MediaID) Provider() (family, value string) {
	switch {
	case m.IMDB != "":
		return FamilyIMDB, m.IMDB
	case m.TMDB != "":
		return FamilyTMDB, m.TMDB
	case m.TVDB != "":
		return FamilyTVDB, m.TVDB
	case m.AniDB != "":
		return FamilyAniDB, m.AniDB
	}
	return "", ""
}

// String renders the id for logging.
func (m *MediaID) String() string {
	family, value := m.Provider()
	if m.Kind == KindEpisode {
		return fmt.Sprintf("%s:%s S%02dE%02d", family, value, m.Season, m.Episode)
	}
	return fmt.Sprintf("%s:%s", family, value)
}

// Parse normalizes a colon-delimited composite id. Supported grammars:
//
//	1 segment:  a bare id ("tt1234567", "tmdb550", "tvdb81189", "anidb1")
//	2 segments: "prefix:value" with prefix imdb, tmdb, tvdb or anidb
//	3 segments: "baseId:season:episode" for episodes
//
// Any other shape, an empty value, or a non-numeric season/episode is a hard
// parse failure.
func Parse(raw string) (*MediaID, error) {
	segments := strings.Split(raw, ":")

	switch len(segments) {
	case 1:
		return parseBare(segments[0])

	case 2:
		return parsePrefixed(segments[0], segments[1])

	case 3:
		base, err := parseBare(segments[0])
		if err != nil {
			return nil, err
		}
		season, err := strconv.Atoi(segments[1])
		if err != nil || season < 0 {
			return nil, fmt.Errorf("%w: bad season %q in %q", ErrInvalidID, segments[1], raw)
		}
		episode, err := strconv.Atoi(segments[2])
		if err != nil || episode < 0 {
			return nil, fmt.Errorf("%w: bad episode %q in %q", ErrInvalidID, segments[2], raw)
		}
		base.Kind = KindEpisode
		base.Season = season
		base.Episode = episode
		return base, nil
	}

	return nil, fmt.Errorf("%w: %q has %d segments", ErrInvalidID, raw, len(segments))
}

// parseBare handles the single-segment form. The prefix identifies the
// provider family and the remaining tail must be a non-empty alphanumeric
// value.
func parseBare(segment string) (*MediaID, error) {
	switch {
	case strings.HasPrefix(segment, "tt"):
		if !validTail(segment[len("tt"):]) {
			return nil, fmt.Errorf("%w: malformed imdb id %q", ErrInvalidID, segment)
		}
		return &MediaID{IMDB: segment}, nil

	case strings.HasPrefix(segment, "tmdb"):
		tail := segment[len("tmdb"):]
		if !validTail(tail) {
			return nil, fmt.Errorf("%w: malformed tmdb id %q", ErrInvalidID, segment)
		}
		return &MediaID{TMDB: tail}, nil

	case strings.HasPrefix(segment, "tvdb"):
		tail := segment[len("tvdb"):]
		if !validTail(tail) {
			return nil, fmt.Errorf("%w: malformed tvdb id %q", ErrInvalidID, segment)
		}
		return &MediaID{TVDB: tail}, nil

	case strings.HasPrefix(segment, "anidb"):
		tail := segment[len("anidb"):]
		if !validTail(tail) {
			return nil, fmt.Errorf("%w: malformed anidb id %q", ErrInvalidID, segment)
		}
		return &MediaID{AniDB: tail}, nil
	}

	return nil, fmt.Errorf("%w: unrecognized id %q", ErrInvalidID, segment)
}

// parsePrefixed handles the two-segment "prefix:value" form. An imdb value
// is normalized to carry the canonical "tt" prefix.
func parsePrefixed(prefix, value string) (*MediaID, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty value for prefix %q", ErrInvalidID, prefix)
	}

	switch prefix {
	case "imdb":
		if !strings.HasPrefix(value, "tt") {
			value = "tt" + value
		}
		return &MediaID{IMDB: value}, nil
	case "tmdb":
		return &MediaID{TMDB: value}, nil
	case "tvdb":
		return &MediaID{TVDB: value}, nil
	case "anidb":
		return &MediaID{AniDB: value}, nil
	}

	return nil, fmt.Errorf("%w: unknown prefix %q", ErrInvalidID, prefix)
}

// validTail reports whether an id tail is non-empty and alphanumeric.
func validTail(tail string) bool {
	if tail == "" {
		return false
	}
	for _, r := range tail {
		if (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
