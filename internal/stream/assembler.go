package stream

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/opd-ai/go-jf-stremio/internal/enrich"
	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
)

// subtitleExtensions maps subtitle codecs onto delivery file extensions.
// Unknown codecs fall back to srt.
var subtitleExtensions = map[string]string{
	"subrip": "srt",
	"srt":    "srt",
	"webvtt": "vtt",
	"vtt":    "vtt",
	"ass":    "ass",
	"ssa":    "ssa",
}

// undeterminedLanguage is the ISO 639-2 code used when a subtitle stream
// reports no language. The raw 3-letter server code is passed through
// otherwise; no 2-letter downgrade, no guessing.
const undeterminedLanguage = "und"

// Assemble builds the playable descriptor for one media source of a
// resolved item.
func Assemble(creds jellyfin.Credentials, item *jellyfin.Item, src *jellyfin.MediaSource, profile enrich.Profile) Descriptor {
	desc := Descriptor{
		URL:           directPlayURL(creds, item.ID, src),
		ItemID:        item.ID,
		MediaSourceID: src.ID,
		ItemName:      item.Name,
		Subtitles:     subtitles(creds, item.ID, src),
		Profile:       profile,
		Description:   profile.Description(),
	}

	if item.Type == jellyfin.ItemTypeEpisode {
		desc.SeriesName = item.SeriesName
		desc.Season = item.ParentIndexNumber
		desc.Episode = item.IndexNumber
	}
	return desc
}

// directPlayURL builds the static stream URL serving the original file
// bytes.
func directPlayURL(creds jellyfin.Credentials, itemID string, src *jellyfin.MediaSource) string {
	base := strings.TrimRight(creds.ServerURL, "/")
	path := fmt.Sprintf("/Videos/%s/stream", url.PathEscape(itemID))
	if src.Container != "" {
		path += "." + src.Container
	}

	query := url.Values{
		"Static":        {"true"},
		"MediaSourceId": {src.ID},
		"api_key":       {creds.AccessToken},
	}
	return base + path + "?" + query.Encode()
}

// subtitles builds one descriptor per subtitle track of the source.
func subtitles(creds jellyfin.Credentials, itemID string, src *jellyfin.MediaSource) []Subtitle {
	base := strings.TrimRight(creds.ServerURL, "/")
	out := []Subtitle{}

	for _, track := range src.MediaStreams {
		if track.Type != jellyfin.StreamTypeSubtitle {
			continue
		}

		ext, ok := subtitleExtensions[strings.ToLower(track.Codec)]
		if !ok {
			ext = "srt"
		}

		language := track.Language
		if language == "" {
			language = undeterminedLanguage
		}

		subtitleURL := fmt.Sprintf("%s/Videos/%s/%s/Subtitles/%d/Stream.%s?api_key=%s",
			base, url.PathEscape(itemID), url.PathEscape(src.ID), track.Index, ext,
			url.QueryEscape(creds.AccessToken))

		out = append(out, Subtitle{
			ID:       src.ID + "-" + strconv.Itoa(track.Index),
			Language: language,
			URL:      subtitleURL,
		})
	}
	return out
}
