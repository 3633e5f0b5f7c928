package enrich

import "regexp"

// Static lookup tables for codec and HDR labeling. Kept as immutable maps so
// the enrichment logic stays auditable and testable away from network code.

// videoCodecNames maps server codec identifiers onto display abbreviations.
var videoCodecNames = map[string]string{
	"h264":       "H.264",
	"h265":       "HEVC",
	"hevc":       "HEVC",
	"av1":        "AV1",
	"vp8":        "VP8",
	"vp9":        "VP9",
	"vc1":        "VC-1",
	"mpeg2video": "MPEG-2",
	"mpeg4":      "MPEG-4",
	"msmpeg4v3":  "DivX",
	"theora":     "Theora",
}

// audioCodecNames maps server audio codec identifiers onto display
// abbreviations.
var audioCodecNames = map[string]string{
	"aac":    "AAC",
	"ac3":    "DD",
	"eac3":   "DD+",
	"dts":    "DTS",
	"dca":    "DTS",
	"truehd": "TrueHD",
	"flac":   "FLAC",
	"mp2":    "MP2",
	"mp3":    "MP3",
	"opus":   "Opus",
	"vorbis": "Vorbis",
	"pcm":    "PCM",
	"wmav2":  "WMA",
}

// channelLayouts maps audio channel counts onto the usual layout labels.
// Unlisted counts render as "{n}ch".
var channelLayouts = map[int]string{
	1: "Mono",
	2: "2.0",
	6: "5.1",
	8: "7.1",
}

// hdrRangeTypes maps the server's extended video range enum onto HDR labels.
// This is the primary HDR signal.
var hdrRangeTypes = map[string]string{
	"Hdr10":         "HDR10",
	"Hdr10Plus":     "HDR10+",
	"HyperLogGamma": "HLG",
	"DolbyVision":   "DV",
}

// colorTransferHDR maps color transfer characteristics onto HDR labels. Used
// when the range enum is absent.
var colorTransferHDR = map[string]string{
	"smpte2084":    "HDR10",
	"arib-std-b67": "HLG",
}

// resolutionToken matches an explicit resolution marker inside a stream's
// display title. Preferred over width/height because display titles reflect
// the release naming.
var resolutionToken = regexp.MustCompile(`(?i)\b(4k|2160p|1440p|1080p|720p|576p|480p|sd)\b`)

// tenBitMarkers are profile substrings that indicate 10-bit video.
var tenBitMarkers = []string{"main10", "high10", "main 10"}
