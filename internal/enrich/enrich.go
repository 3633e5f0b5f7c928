// Package enrich derives a normalized technical profile from a raw
// MediaSource: resolution class, codec labels, HDR classification, audio
// layout and human-readable bitrate/size. Derivation is best-effort by
// contract; whatever the server reports, the result is a fully populated
// profile with individual fields degraded to their defaults, never a
// failure that aborts the pipeline.
package enrich

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
)

// QualityUnknown is the resolution class used when a source reports neither
// dimensions nor a resolution token.
const QualityUnknown = "Unknown"

// descriptionPlaceholder is shown when no technical detail could be derived
// at all.
const descriptionPlaceholder = "No media information available"

// Profile is the derived technical description of one MediaSource.
type Profile struct {
	Quality              string `json:"quality"`
	Dimensions           string `json:"dimensions,omitempty"`
	VideoCodec           string `json:"videoCodec,omitempty"`
	HDR                  string `json:"hdr,omitempty"`
	Audio                string `json:"audio,omitempty"`
	Container            string `json:"container,omitempty"`
	IsRemux              bool   `json:"isRemux"`
	Bitrate              string `json:"bitrate,omitempty"`
	Size                 string `json:"size,omitempty"`
	Filename             string `json:"filename,omitempty"`
	SupportsDirectPlay   bool   `json:"supportsDirectPlay"`
	SupportsDirectStream bool   `json:"supportsDirectStream"`

	// RawBitrate keeps the server-reported bitrate for ranking.
	RawBitrate int64 `json:"-"`
}

// Derive computes the technical profile for a MediaSource. It never fails:
// a panic during extraction degrades to the minimal default profile for the
// source.
func Derive(src *jellyfin.MediaSource) (profile Profile) {
	defer func() {
		if r := recover(); r != nil {
			profile = defaultProfile(src)
		}
	}()

	if src == nil {
		return Profile{Quality: QualityUnknown}
	}

	video := selectVideoStream(src.MediaStreams)
	audio := selectAudioStream(src.MediaStreams)

	profile = Profile{
		Quality:              qualityTag(video),
		Dimensions:           dimensions(video),
		VideoCodec:           videoTag(video),
		HDR:                  hdrTag(video),
		Audio:                audioTag(audio),
		Container:            src.Container,
		IsRemux:              isRemux(src),
		Bitrate:              FormatBitrate(src.Bitrate),
		Size:                 FormatSize(src.Size),
		Filename:             filename(src),
		SupportsDirectPlay:   src.SupportsDirectPlay,
		SupportsDirectStream: src.SupportsDirectStream,
		RawBitrate:           src.Bitrate,
	}
	return profile
}

// defaultProfile is the safe fallback when derivation fails: everything
// degraded except what the source itself carries.
func defaultProfile(src *jellyfin.MediaSource) Profile {
	p := Profile{Quality: QualityUnknown}
	if src != nil {
		p.Container = src.Container
		p.SupportsDirectPlay = src.SupportsDirectPlay
		p.SupportsDirectStream = src.SupportsDirectStream
		p.RawBitrate = src.Bitrate
	}
	return p
}

// selectVideoStream picks the first video stream, if any.
func selectVideoStream(streams []jellyfin.MediaStream) *jellyfin.MediaStream {
	for i := range streams {
		if streams[i].Type == jellyfin.StreamTypeVideo {
			return &streams[i]
		}
	}
	return nil
}

// selectAudioStream prefers the default audio stream, falling back to the
// first one.
func selectAudioStream(streams []jellyfin.MediaStream) *jellyfin.MediaStream {
	var first *jellyfin.MediaStream
	for i := range streams {
		if streams[i].Type != jellyfin.StreamTypeAudio {
			continue
		}
		if streams[i].IsDefault {
			return &streams[i]
		}
		if first == nil {
			first = &streams[i]
		}
	}
	return first
}

// qualityTag classifies the video resolution. The leftmost explicit token
// in the display title wins; otherwise the class is computed from the
// reported dimensions. Token spellings emitted here must stay in sync with
// the ranking ladder keys; a tag outside the ladder ranks as Unknown.
func qualityTag(video *jellyfin.MediaStream) string {
	if video == nil {
		return QualityUnknown
	}

	if match := resolutionToken.FindString(video.DisplayTitle); match != "" {
		switch lower := strings.ToLower(match); lower {
		case "4k":
			return "4K"
		case "sd":
			return "SD"
		default:
			return lower
		}
	}

	width, height := video.Width, video.Height
	if width <= 0 && height <= 0 {
		return QualityUnknown
	}

	switch {
	case width >= 4096:
		return "4K DCI"
	case width >= 3840 || height >= 2160:
		return "4K"
	case height >= 1440:
		return "1440p"
	case height >= 1080:
		return "1080p"
	case height >= 720:
		return "720p"
	case height >= 576:
		return "576p"
	case height >= 480:
		return "480p"
	default:
		return "SD"
	}
}

// dimensions renders "WxH" when both are known.
func dimensions(video *jellyfin.MediaStream) string {
	if video == nil || video.Width <= 0 || video.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", video.Width, video.Height)
}

// videoTag labels the video codec, appending a 10-bit marker when the
// profile indicates one.
func videoTag(video *jellyfin.MediaStream) string {
	if video == nil || video.Codec == "" {
		return ""
	}

	name, ok := videoCodecNames[strings.ToLower(video.Codec)]
	if !ok {
		name = strings.ToUpper(video.Codec)
	}

	profile := strings.ToLower(video.Profile)
	for _, marker := range tenBitMarkers {
		if strings.Contains(profile, marker) {
			return name + " 10bit"
		}
	}
	return name
}

// hdrTag classifies HDR. The extended range enum is the primary signal, the
// color transfer characteristic the fallback, and the legacy video range
// flag the last resort. SDR sources return "".
func hdrTag(video *jellyfin.MediaStream) string {
	if video == nil {
		return ""
	}
	if tag, ok := hdrRangeTypes[video.VideoRangeType]; ok {
		return tag
	}
	if tag, ok := colorTransferHDR[strings.ToLower(video.ColorTransfer)]; ok {
		return tag
	}
	if strings.EqualFold(video.VideoRange, "HDR") {
		return "HDR"
	}
	return ""
}

// audioTag labels the audio codec and channel layout.
func audioTag(audio *jellyfin.MediaStream) string {
	if audio == nil {
		return ""
	}

	var parts []string
	if audio.Codec != "" {
		name, ok := audioCodecNames[strings.ToLower(audio.Codec)]
		if !ok {
			name = strings.ToUpper(audio.Codec)
		}
		parts = append(parts, name)
	}
	if audio.Channels > 0 {
		layout, ok := channelLayouts[audio.Channels]
		if !ok {
			layout = fmt.Sprintf("%dch", audio.Channels)
		}
		parts = append(parts, layout)
	}
	return strings.Join(parts, " ")
}

// isRemux reports whether the source's path or name marks it as a remux.
// Deliberately a name-based check only; bitrate and container say nothing
// definitive about remuxing.
func isRemux(src *jellyfin.MediaSource) bool {
	return strings.Contains(strings.ToLower(src.Path), "remux") ||
		strings.Contains(strings.ToLower(src.Name), "remux")
}

// filename returns the base name of the source file.
func filename(src *jellyfin.MediaSource) string {
	if src.Path != "" {
		return filepath.Base(src.Path)
	}
	return src.Name
}

// Description assembles the multi-line human-readable summary in its fixed
// line order, omitting empty lines.
func (p Profile) Description() string {
	var lines []string

	if p.Quality != "" && p.Quality != QualityUnknown {
		line := p.Quality
		if p.Dimensions != "" {
			line += " (" + p.Dimensions + ")"
		}
		lines = append(lines, line)
	} else if p.Dimensions != "" {
		lines = append(lines, p.Dimensions)
	}

	if video := joinNonEmpty(" ", p.HDR, p.VideoCodec); video != "" {
		lines = append(lines, video)
	}
	if p.IsRemux {
		lines = append(lines, "REMUX")
	}
	if p.Audio != "" {
		lines = append(lines, p.Audio)
	}
	if file := joinNonEmpty(" • ", p.Container, p.Bitrate, p.Size); file != "" {
		lines = append(lines, file)
	}

	if len(lines) == 0 {
		return descriptionPlaceholder
	}
	return strings.Join(lines, "\n")
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
