// Package selector picks which catalog streams to fetch for a
// requested quality and container, with a defined fallback order.
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ytget/mediagrab/internal/model"
)

// Canonical 16:9 widths vary slightly by source; a 720p request
// accepts widths this close to 1280.
const widthTolerance = 20

// NoMatchingStreamError reports an exhausted fallback chain. Fatal for
// the item; never retried.
type NoMatchingStreamError struct {
	Quality string
	Kind    model.StreamKind
}

func (e *NoMatchingStreamError) Error() string {
	return fmt.Sprintf("no matching %s stream for quality %q", e.Kind, e.Quality)
}

// Plan is the outcome of video selection: either a single muxed stream
// or a video-only stream paired with the best audio-only stream.
type Plan struct {
	Muxed *model.StreamDescriptor
	Video *model.StreamDescriptor
	Audio *model.StreamDescriptor
}

// TwoStream reports whether the plan needs a separate audio fetch and
// a mux step.
func (p Plan) TwoStream() bool {
	return p.Muxed == nil && p.Audio != nil
}

// SelectVideo picks streams for a video acquisition. quality is either
// "WIDTHxHEIGHT" or a height label like "720p"; format is the preferred
// container family. Exact resolution matches are searched per container
// in preference order, then the search widens to the highest available
// resolution in the same container order.
func SelectVideo(catalog []model.StreamDescriptor, quality, format string) (Plan, error) {
	width, height, hasTarget := parseResolution(quality)

	for _, container := range containerOrder(format) {
		if hasTarget {
			if plan, ok := pickAt(catalog, container, width, height); ok {
				return pairAudio(plan, catalog), nil
			}
		}
	}
	for _, container := range containerOrder(format) {
		if plan, ok := pickBest(catalog, container); ok {
			return pairAudio(plan, catalog), nil
		}
	}
	return Plan{}, &NoMatchingStreamError{Quality: quality, Kind: model.StreamVideoOnly}
}

// SelectAudio picks the source stream for an audio-only acquisition.
// quality is a bitrate token like "128kbps"; an unparseable token means
// no preference and selects the highest bitrate available.
func SelectAudio(catalog []model.StreamDescriptor, quality string) (*model.StreamDescriptor, error) {
	candidates := audioCandidates(catalog)
	if len(candidates) == 0 {
		return nil, &NoMatchingStreamError{Quality: quality, Kind: model.StreamAudioOnly}
	}

	if target := parseBitrate(quality); target > 0 {
		for _, d := range candidates {
			if d.BitrateKbps == target {
				return d, nil
			}
		}
	}

	best := candidates[0]
	for _, d := range candidates[1:] {
		if d.BitrateKbps > best.BitrateKbps {
			best = d
		}
	}
	return best, nil
}

// pickAt finds an exact resolution match within one container,
// preferring a muxed stream over a video-only one.
func pickAt(catalog []model.StreamDescriptor, container string, width, height int) (*model.StreamDescriptor, bool) {
	var videoOnly *model.StreamDescriptor
	for i := range catalog {
		d := &catalog[i]
		if d.Kind == model.StreamAudioOnly || !inContainer(d, container) {
			continue
		}
		if !resolutionMatches(d, width, height) {
			continue
		}
		if d.Kind == model.StreamMuxed {
			return d, true
		}
		if videoOnly == nil {
			videoOnly = d
		}
	}
	return videoOnly, videoOnly != nil
}

// pickBest finds the highest-resolution video-capable stream within one
// container, preferring muxed at equal pixel count.
func pickBest(catalog []model.StreamDescriptor, container string) (*model.StreamDescriptor, bool) {
	var best *model.StreamDescriptor
	for i := range catalog {
		d := &catalog[i]
		if d.Kind == model.StreamAudioOnly || !inContainer(d, container) {
			continue
		}
		if best == nil || d.PixelCount() > best.PixelCount() ||
			(d.PixelCount() == best.PixelCount() && d.Kind == model.StreamMuxed && best.Kind != model.StreamMuxed) {
			best = d
		}
	}
	return best, best != nil
}

func pairAudio(video *model.StreamDescriptor, catalog []model.StreamDescriptor) Plan {
	if video.Kind == model.StreamMuxed {
		return Plan{Muxed: video}
	}
	var audio *model.StreamDescriptor
	for i := range catalog {
		d := &catalog[i]
		if d.Kind != model.StreamAudioOnly {
			continue
		}
		if audio == nil || d.BitrateKbps > audio.BitrateKbps {
			audio = d
		}
	}
	return Plan{Video: video, Audio: audio}
}

func audioCandidates(catalog []model.StreamDescriptor) []*model.StreamDescriptor {
	var out []*model.StreamDescriptor
	for i := range catalog {
		if catalog[i].Kind == model.StreamAudioOnly {
			out = append(out, &catalog[i])
		}
	}
	if len(out) > 0 {
		return out
	}
	// No discrete audio track; a muxed stream still carries audio.
	for i := range catalog {
		if catalog[i].Kind == model.StreamMuxed {
			out = append(out, &catalog[i])
		}
	}
	return out
}

// resolutionMatches compares a descriptor against the requested size.
// Label-only catalogs compare by height; width-by-width catalogs get
// the near-1280 tolerance for 720p requests.
func resolutionMatches(d *model.StreamDescriptor, width, height int) bool {
	if d.Width == 0 && d.Height == 0 {
		h := labelHeight(d.Label)
		return h > 0 && h == height
	}
	if d.Height != height {
		return false
	}
	if d.Width == width {
		return true
	}
	if height == 720 && abs(d.Width-1280) <= widthTolerance && abs(width-1280) <= widthTolerance {
		return true
	}
	return false
}

func inContainer(d *model.StreamDescriptor, container string) bool {
	return container == "" || strings.EqualFold(d.Container, container)
}

// containerOrder is the fallback chain: the requested family first,
// then the alternate family, then anything.
func containerOrder(format string) []string {
	switch strings.ToLower(format) {
	case "webm":
		return []string{"webm", "mp4", ""}
	case "":
		return []string{""}
	default:
		return []string{strings.ToLower(format), "webm", ""}
	}
}

// parseResolution understands "WIDTHxHEIGHT" and height labels such as
// "720p". A height label yields width 0, matched by height alone
// against width-reporting catalogs via the canonical 16:9 width.
func parseResolution(quality string) (width, height int, ok bool) {
	quality = strings.TrimSpace(strings.ToLower(quality))
	if w, h, found := strings.Cut(quality, "x"); found {
		wi, err1 := strconv.Atoi(w)
		hi, err2 := strconv.Atoi(h)
		if err1 == nil && err2 == nil {
			return wi, hi, true
		}
		return 0, 0, false
	}
	if h := labelHeight(quality); h > 0 {
		return canonicalWidth(h), h, true
	}
	return 0, 0, false
}

func labelHeight(label string) int {
	label = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(label)), "p")
	h, err := strconv.Atoi(label)
	if err != nil || h <= 0 {
		return 0
	}
	return h
}

func canonicalWidth(height int) int {
	return height * 16 / 9
}

func parseBitrate(quality string) int {
	quality = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(quality)), "kbps")
	kbps, err := strconv.Atoi(quality)
	if err != nil || kbps <= 0 {
		return 0
	}
	return kbps
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
