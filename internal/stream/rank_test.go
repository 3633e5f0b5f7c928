package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-jf-stremio/internal/enrich"
)

func descriptorWith(msid string, profile enrich.Profile) Descriptor {
	return Descriptor{MediaSourceID: msid, Profile: profile}
}

// TestDedupeCollapsesSharedSources verifies mediaSourceId identity with
// last-write-wins.
func TestDedupeCollapsesSharedSources(t *testing.T) {
	first := descriptorWith("ms1", enrich.Profile{Quality: "1080p"})
	duplicate := descriptorWith("ms1", enrich.Profile{Quality: "1080p"})
	duplicate.ItemName = "same source, other series match"
	other := descriptorWith("ms2", enrich.Profile{Quality: "720p"})

	got := Dedupe([]Descriptor{first, other, duplicate})

	require.Len(t, got, 2)
	assert.Equal(t, "ms1", got[0].MediaSourceID)
	assert.Equal(t, "same source, other series match", got[0].ItemName, "last write wins")
	assert.Equal(t, "ms2", got[1].MediaSourceID)
}

// TestDedupeIdempotent verifies running Dedupe on its own output changes
// nothing.
func TestDedupeIdempotent(t *testing.T) {
	input := []Descriptor{
		descriptorWith("ms1", enrich.Profile{}),
		descriptorWith("ms2", enrich.Profile{}),
		descriptorWith("ms1", enrich.Profile{}),
	}

	once := Dedupe(input)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

// TestSortQualityHierarchy verifies each comparator stage in order.
func TestSortQualityHierarchy(t *testing.T) {
	tests := []struct {
		name      string
		worse     enrich.Profile
		better    enrich.Profile
	}{
		{
			name:   "direct play beats higher resolution",
			worse:  enrich.Profile{Quality: "4K", SupportsDirectPlay: false},
			better: enrich.Profile{Quality: "720p", SupportsDirectPlay: true},
		},
		{
			name:   "4K beats 1080p",
			worse:  enrich.Profile{Quality: "1080p", SupportsDirectPlay: true},
			better: enrich.Profile{Quality: "4K", SupportsDirectPlay: true},
		},
		{
			name:   "4K DCI beats 4K",
			worse:  enrich.Profile{Quality: "4K", SupportsDirectPlay: true},
			better: enrich.Profile{Quality: "4K DCI", SupportsDirectPlay: true},
		},
		{
			name:   "known resolution beats unknown",
			worse:  enrich.Profile{Quality: "Unknown", SupportsDirectPlay: true},
			better: enrich.Profile{Quality: "SD", SupportsDirectPlay: true},
		},
		{
			name:   "hdr breaks resolution tie",
			worse:  enrich.Profile{Quality: "4K", SupportsDirectPlay: true},
			better: enrich.Profile{Quality: "4K", HDR: "DV", SupportsDirectPlay: true},
		},
		{
			name:   "remux breaks hdr tie",
			worse:  enrich.Profile{Quality: "1080p", HDR: "HDR10", SupportsDirectPlay: true},
			better: enrich.Profile{Quality: "1080p", HDR: "HDR10", IsRemux: true, SupportsDirectPlay: true},
		},
		{
			name:   "bitrate breaks remux tie",
			worse:  enrich.Profile{Quality: "1080p", RawBitrate: 8_000_000, SupportsDirectPlay: true},
			better: enrich.Profile{Quality: "1080p", RawBitrate: 20_000_000, SupportsDirectPlay: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Both input orders must converge on the same ranking.
			forward := []Descriptor{descriptorWith("better", tt.better), descriptorWith("worse", tt.worse)}
			backward := []Descriptor{descriptorWith("worse", tt.worse), descriptorWith("better", tt.better)}

			Sort(forward)
			Sort(backward)

			assert.Equal(t, "better", forward[0].MediaSourceID)
			assert.Equal(t, "better", backward[0].MediaSourceID)
		})
	}
}

// TestSortIsStableOnTies verifies full ties keep input order.
func TestSortIsStableOnTies(t *testing.T) {
	tie := enrich.Profile{Quality: "1080p", RawBitrate: 10_000_000, SupportsDirectPlay: true}
	input := []Descriptor{descriptorWith("a", tie), descriptorWith("b", tie), descriptorWith("c", tie)}

	Sort(input)

	assert.Equal(t, "a", input[0].MediaSourceID)
	assert.Equal(t, "b", input[1].MediaSourceID)
	assert.Equal(t, "c", input[2].MediaSourceID)
}
