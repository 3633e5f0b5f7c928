package stream

import "sort"

// resolutionRank orders quality tags from best to worst. Lower rank sorts
// first. Tags outside the ladder rank with Unknown.
var resolutionRank = map[string]int{
	"4K DCI":  0,
	"4K":      1,
	"2160p":   2,
	"1440p":   3,
	"1080p":   4,
	"720p":    5,
	"576p":    6,
	"480p":    7,
	"360p":    8,
	"SD":      9,
	"Unknown": 10,
}

// rankOf returns the ladder position of a quality tag.
func rankOf(quality string) int {
	if rank, ok := resolutionRank[quality]; ok {
		return rank
	}
	return resolutionRank["Unknown"]
}

// Dedupe collapses descriptors that share a MediaSourceID. Duplicates are
// the same underlying source discovered via different resolution paths and
// are content-identical, so the last one wins in place of the first.
func Dedupe(descriptors []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	position := make(map[string]int, len(descriptors))

	for _, d := range descriptors {
		if at, seen := position[d.MediaSourceID]; seen {
			out[at] = d
			continue
		}
		position[d.MediaSourceID] = len(out)
		out = append(out, d)
	}
	return out
}

// Sort orders descriptors by the fixed quality hierarchy: direct play
// first, then resolution, HDR presence, remux flag and raw bitrate. The
// sort is stable so bitrate ties keep their input order.
func Sort(descriptors []Descriptor) {
	sort.SliceStable(descriptors, func(i, j int) bool {
		a, b := descriptors[i], descriptors[j]

		if a.Profile.SupportsDirectPlay != b.Profile.SupportsDirectPlay {
			return a.Profile.SupportsDirectPlay
		}
		if ra, rb := rankOf(a.Profile.Quality), rankOf(b.Profile.Quality); ra != rb {
			return ra < rb
		}
		if hdrA, hdrB := a.Profile.HDR != "", b.Profile.HDR != ""; hdrA != hdrB {
			return hdrA
		}
		if a.Profile.IsRemux != b.Profile.IsRemux {
			return a.Profile.IsRemux
		}
		return a.Profile.RawBitrate > b.Profile.RawBitrate
	})
}
