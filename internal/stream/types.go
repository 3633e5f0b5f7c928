// Package stream builds, deduplicates and ranks the playable stream
// descriptors the addon returns. Descriptors are assembled from a resolved
// catalog item, one of its media sources and the derived technical profile.
package stream

import "github.com/opd-ai/go-jf-stremio/internal/enrich"

// Subtitle is one external subtitle track of a stream.
type Subtitle struct {
	ID       string `json:"id"`
	Language string `json:"lang"`
	URL      string `json:"url"`
}

// Descriptor is one playable stream offered to the caller. Its identity for
// deduplication is MediaSourceID: the same underlying source reached through
// different resolution paths collapses to one descriptor.
type Descriptor struct {
	URL           string         `json:"url"`
	ItemID        string         `json:"itemId"`
	MediaSourceID string         `json:"mediaSourceId"`
	ItemName      string         `json:"itemName"`
	SeriesName    string         `json:"seriesName,omitempty"`
	Season        *int           `json:"season,omitempty"`
	Episode       *int           `json:"episode,omitempty"`
	Subtitles     []Subtitle     `json:"subtitles"`
	Profile       enrich.Profile `json:"profile"`
	Description   string         `json:"description"`
}
