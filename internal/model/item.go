package model

import (
	"fmt"
	"strings"
)

// MediaItem is a single acquisition request. It is created when a user
// submits a URL or a playlist entry is parsed, and is consumed exactly
// once by the acquisition engine.
type MediaItem struct {
	URL          string
	Title        string
	Quality      string // "1920x1080", "720p" or "128kbps"
	Format       string // container/codec family: "mp4" or "mp3"
	SubtitleLang string // subtitle language code, or SubtitleNone
}

// SubtitleNone disables subtitle fetching for an item.
const SubtitleNone = "none"

// WantsSubtitles reports whether a subtitle download was requested.
func (m MediaItem) WantsSubtitles() bool {
	return m.SubtitleLang != "" && m.SubtitleLang != SubtitleNone
}

// StreamKind classifies a stream descriptor.
type StreamKind int

const (
	StreamMuxed StreamKind = iota
	StreamVideoOnly
	StreamAudioOnly
)

// String returns the string representation of StreamKind.
func (k StreamKind) String() string {
	switch k {
	case StreamMuxed:
		return "muxed"
	case StreamVideoOnly:
		return "video-only"
	case StreamAudioOnly:
		return "audio-only"
	default:
		return "unknown"
	}
}

// StreamDescriptor describes one downloadable encoding of a video or
// audio track. It is produced by a resolver backend and lives only for
// the duration of one acquisition. URL is an opaque fetch handle.
//
// Backends differ in how they report resolution: some fill Width/Height,
// others only a quality label such as "720p". Consumers must handle both.
type StreamDescriptor struct {
	Kind        StreamKind
	Width       int
	Height      int
	Label       string // e.g. "720p", empty when Width/Height are set
	BitrateKbps int    // audio bitrate, 0 when unknown
	Container   string // file extension family: "mp4", "webm", "m4a", ...
	URL         string
}

// Resolution returns the descriptor's resolution in the shape the
// backend reported it: "WIDTHxHEIGHT" when dimensions are known,
// otherwise the quality label.
func (s StreamDescriptor) Resolution() string {
	if s.Width > 0 && s.Height > 0 {
		return fmt.Sprintf("%dx%d", s.Width, s.Height)
	}
	return s.Label
}

// PixelCount ranks video descriptors by area. Audio-only descriptors
// rank lowest so resolution fallback never picks them.
func (s StreamDescriptor) PixelCount() int {
	if s.Kind == StreamAudioOnly {
		return -1
	}
	if s.Width > 0 && s.Height > 0 {
		return s.Width * s.Height
	}
	// Label-only catalogs: "720p" ranks by height alone.
	h := labelHeight(s.Label)
	return h * h
}

func labelHeight(label string) int {
	digits := strings.TrimSuffix(strings.TrimSpace(label), "p")
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// SubtitleTrack identifies one downloadable caption track.
type SubtitleTrack struct {
	Lang string
	Name string
	URL  string
	Ext  string // "srt", "vtt", ...
}

// BatchResult records the outcome of one item in a batch run, keyed by
// the item's original submission index.
type BatchResult struct {
	Index      int
	OutputPath string
	Err        error
}
