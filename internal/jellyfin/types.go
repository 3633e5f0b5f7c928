package jellyfin

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProviderIDMap holds a catalog item's external provider ids keyed by family
// name ("Imdb", "Tmdb", ...). Servers are inconsistent about both key casing
// and value types (some emit tmdb ids as JSON numbers), so values are
// normalized to strings while decoding.
type ProviderIDMap map[string]string

// UnmarshalJSON decodes the provider map, coercing numeric values to their
// string form.
func (p *ProviderIDMap) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(ProviderIDMap, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			out[key] = v
		case json.Number:
			out[key] = v.String()
		case nil:
			// Some servers emit explicit nulls for unknown providers.
		default:
			out[key] = fmt.Sprintf("%v", v)
		}
	}
	*p = out
	return nil
}

// Item is a catalog entry as reported by the server. Only the fields the
// resolution pipeline reads are decoded.
type Item struct {
	ID                string        `json:"Id"`
	Name              string        `json:"Name"`
	Type              string        `json:"Type"`
	Path              string        `json:"Path,omitempty"`
	ProviderIDs       ProviderIDMap `json:"ProviderIds,omitempty"`
	IndexNumber       *int          `json:"IndexNumber,omitempty"`
	ParentIndexNumber *int          `json:"ParentIndexNumber,omitempty"`
	SeriesID          string        `json:"SeriesId,omitempty"`
	SeriesName        string        `json:"SeriesName,omitempty"`
	MediaSources      []MediaSource `json:"MediaSources,omitempty"`
}

// Item type names used by the server.
const (
	ItemTypeMovie   = "Movie"
	ItemTypeSeries  = "Series"
	ItemTypeSeason  = "Season"
	ItemTypeEpisode = "Episode"
)

// ItemsPage is the envelope the Items and Shows endpoints return.
type ItemsPage struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
}

// MediaSource is one playable rendition of an item.
type MediaSource struct {
	ID                   string        `json:"Id"`
	Name                 string        `json:"Name,omitempty"`
	Path                 string        `json:"Path,omitempty"`
	Container            string        `json:"Container,omitempty"`
	Size                 int64         `json:"Size,omitempty"`
	Bitrate              int64         `json:"Bitrate,omitempty"`
	SupportsDirectPlay   bool          `json:"SupportsDirectPlay"`
	SupportsDirectStream bool          `json:"SupportsDirectStream"`
	MediaStreams         []MediaStream `json:"MediaStreams,omitempty"`
}

// Media stream type names used by the server.
const (
	StreamTypeVideo    = "Video"
	StreamTypeAudio    = "Audio"
	StreamTypeSubtitle = "Subtitle"
)

// MediaStream is one video, audio or subtitle track within a MediaSource.
type MediaStream struct {
	Type           string `json:"Type"`
	Index          int    `json:"Index"`
	Codec          string `json:"Codec,omitempty"`
	Language       string `json:"Language,omitempty"`
	Profile        string `json:"Profile,omitempty"`
	DisplayTitle   string `json:"DisplayTitle,omitempty"`
	IsDefault      bool   `json:"IsDefault"`
	IsExternal     bool   `json:"IsExternal"`
	Width          int    `json:"Width,omitempty"`
	Height         int    `json:"Height,omitempty"`
	Channels       int    `json:"Channels,omitempty"`
	ColorTransfer  string `json:"ColorTransfer,omitempty"`
	VideoRange     string `json:"VideoRange,omitempty"`
	VideoRangeType string `json:"VideoRangeType,omitempty"`
}

// PlaybackInfo is the response of the PlaybackInfo endpoint: every playable
// MediaSource for an item.
type PlaybackInfo struct {
	MediaSources []MediaSource `json:"MediaSources"`
	ErrorCode    string        `json:"ErrorCode,omitempty"`
}
