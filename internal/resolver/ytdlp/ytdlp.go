// Package ytdlp resolves media through the yt-dlp executable. The
// binary does the site-specific extraction; this package maps its JSON
// dump into the catalog shape and fetches stream bytes directly over
// HTTP.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/model"
	"github.com/ytget/mediagrab/internal/resolver"
)

const defaultBinary = "yt-dlp"

// Resolver shells out to yt-dlp for info lookup. It implements both
// resolver.Resolver and resolver.SubtitleFetcher.
type Resolver struct {
	binary  string
	fetcher *resolver.HTTPFetcher
	log     zerolog.Logger
}

// New creates a resolver using the yt-dlp binary from PATH.
func New(log zerolog.Logger) *Resolver {
	return &Resolver{
		binary:  defaultBinary,
		fetcher: resolver.NewHTTPFetcher(log),
		log:     log,
	}
}

// dump is the subset of yt-dlp's -J output the pipeline needs.
type dump struct {
	Title     string                `json:"title"`
	Thumbnail string                `json:"thumbnail"`
	Duration  float64               `json:"duration"`
	Formats   []format              `json:"formats"`
	Subtitles map[string][]subtitle `json:"subtitles"`
}

type format struct {
	FormatID string  `json:"format_id"`
	URL      string  `json:"url"`
	Ext      string  `json:"ext"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	VCodec   string  `json:"vcodec"`
	ACodec   string  `json:"acodec"`
	ABR      float64 `json:"abr"`
}

type subtitle struct {
	URL  string `json:"url"`
	Ext  string `json:"ext"`
	Name string `json:"name"`
}

// ResolveInfo runs `yt-dlp -J --no-playlist` and maps the dump into
// the stream catalog. Formats without a direct URL are skipped.
func (r *Resolver) ResolveInfo(ctx context.Context, url string) (*resolver.Info, error) {
	cmd := exec.CommandContext(ctx, r.binary, "-J", "--no-playlist", url)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%s: %s", r.binary, msg)
	}

	var d dump
	if err := json.Unmarshal(stdout.Bytes(), &d); err != nil {
		return nil, fmt.Errorf("parse %s output: %w", r.binary, err)
	}
	return mapDump(&d), nil
}

// Fetch downloads the stream's bytes over HTTP.
func (r *Resolver) Fetch(ctx context.Context, stream *model.StreamDescriptor, dest string, onProgress func(float64)) error {
	return r.fetcher.Download(ctx, stream.URL, dest, onProgress)
}

// FetchSubtitle downloads one caption track.
func (r *Resolver) FetchSubtitle(ctx context.Context, track model.SubtitleTrack, dest string) error {
	return r.fetcher.Download(ctx, track.URL, dest, nil)
}

func mapDump(d *dump) *resolver.Info {
	info := &resolver.Info{
		Title:        d.Title,
		ThumbnailURL: d.Thumbnail,
		Duration:     d.Duration,
	}

	for _, f := range d.Formats {
		if f.URL == "" {
			continue
		}
		hasVideo := f.VCodec != "" && f.VCodec != "none"
		hasAudio := f.ACodec != "" && f.ACodec != "none"

		var kind model.StreamKind
		switch {
		case hasVideo && hasAudio:
			kind = model.StreamMuxed
		case hasVideo:
			kind = model.StreamVideoOnly
		case hasAudio:
			kind = model.StreamAudioOnly
		default:
			continue // storyboards and the like
		}

		info.Streams = append(info.Streams, model.StreamDescriptor{
			Kind:        kind,
			Width:       f.Width,
			Height:      f.Height,
			BitrateKbps: int(f.ABR),
			Container:   f.Ext,
			URL:         f.URL,
		})
	}

	for lang, tracks := range d.Subtitles {
		if len(tracks) == 0 {
			continue
		}
		t := preferredTrack(tracks)
		info.Subtitles = append(info.Subtitles, model.SubtitleTrack{
			Lang: lang,
			Name: t.Name,
			URL:  t.URL,
			Ext:  t.Ext,
		})
	}
	sort.Slice(info.Subtitles, func(i, j int) bool {
		return info.Subtitles[i].Lang < info.Subtitles[j].Lang
	})

	return info
}

// preferredTrack picks the most widely playable caption encoding.
func preferredTrack(tracks []subtitle) subtitle {
	for _, want := range []string{"srt", "vtt"} {
		for _, t := range tracks {
			if t.Ext == want {
				return t
			}
		}
	}
	return tracks[0]
}
