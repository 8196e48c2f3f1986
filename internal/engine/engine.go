// Package engine orchestrates one item's full acquisition pipeline:
// resolve info, select streams, fetch, optional mux or audio extract,
// finalize into a collision-free output path.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/ffmpeg"
	"github.com/ytget/mediagrab/internal/model"
	"github.com/ytget/mediagrab/internal/naming"
	"github.com/ytget/mediagrab/internal/progress"
	"github.com/ytget/mediagrab/internal/resolver"
	"github.com/ytget/mediagrab/internal/selector"
)

// FormatMP3 requests an audio-only acquisition with mp3 extraction.
const FormatMP3 = "mp3"

// Encoder runs external encoder invocations. Satisfied by
// *ffmpeg.Runner; a test double stands in for it in unit tests.
type Encoder interface {
	Run(ctx context.Context, args []string, parser *ffmpeg.Parser) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Engine acquires one media item at a time. A single Engine is safe
// for concurrent Acquire calls; all per-item state is local.
type Engine struct {
	res     resolver.Resolver
	enc     Encoder
	destDir string
	log     zerolog.Logger
}

// New creates an engine writing outputs (and temporaries) to destDir.
func New(res resolver.Resolver, enc Encoder, destDir string, log zerolog.Logger) *Engine {
	return &Engine{res: res, enc: enc, destDir: destDir, log: log}
}

// Acquire runs the full pipeline for one item and returns the final
// output path. onProgress (may be nil) receives fractional events and
// exactly one terminal event on success; on failure no terminal event
// is emitted and temporaries are removed best-effort.
func (e *Engine) Acquire(ctx context.Context, item model.MediaItem, onProgress progress.Func) (string, error) {
	info, err := e.res.ResolveInfo(ctx, item.URL)
	if err != nil {
		return "", &ResolutionError{URL: item.URL, Err: err}
	}

	title := info.Title
	if title == "" {
		title = item.Title
	}
	if title == "" {
		title = "media"
	}

	var path string
	if strings.EqualFold(item.Format, FormatMP3) {
		path, err = e.acquireAudio(ctx, item, info, title, onProgress)
	} else {
		path, err = e.acquireVideo(ctx, item, info, title, onProgress)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func (e *Engine) acquireVideo(ctx context.Context, item model.MediaItem, info *resolver.Info, title string, onProgress progress.Func) (string, error) {
	plan, err := selector.SelectVideo(info.Streams, item.Quality, item.Format)
	if err != nil {
		return "", err
	}

	token := uuid.New().String()
	var final string
	if plan.Muxed != nil {
		final, err = e.fetchMuxed(ctx, plan.Muxed, title, token, onProgress)
	} else {
		final, err = e.fetchAndMux(ctx, plan, info, title, token, onProgress)
	}
	if err != nil {
		return "", err
	}

	if item.WantsSubtitles() {
		if subErr := e.fetchSubtitle(ctx, item, info, title); subErr != nil {
			// The primary artifact is already finalized; a caption
			// failure must not fail the item.
			e.log.Warn().Err(subErr).Str("title", title).Msg("subtitle fetch failed")
		}
	}
	return final, nil
}

// fetchMuxed handles the single-stream case: one fetch, no encoder.
func (e *Engine) fetchMuxed(ctx context.Context, stream *model.StreamDescriptor, title, token string, onProgress progress.Func) (string, error) {
	agg := progress.NewAggregator(progress.SingleFetchWeights(), onProgress)

	ext := containerExt(stream.Container, "mp4")
	temp := filepath.Join(e.destDir, "video_"+token+"."+ext)
	if err := e.res.Fetch(ctx, stream, temp, agg.StageFunc(progress.StageFetch)); err != nil {
		e.removeTemps(temp)
		return "", &FetchError{Stream: stream.Resolution(), Err: err}
	}

	final, err := e.finalize(temp, title+"."+ext)
	if err != nil {
		return "", err
	}
	agg.Finish()
	return final, nil
}

// fetchAndMux handles the two-stream case: separate video and audio
// fetches followed by a container remux.
func (e *Engine) fetchAndMux(ctx context.Context, plan selector.Plan, info *resolver.Info, title, token string, onProgress progress.Func) (string, error) {
	agg := progress.NewAggregator(progress.TwoStreamWeights(), onProgress)

	videoTemp := filepath.Join(e.destDir, "video_"+token+"."+containerExt(plan.Video.Container, "mp4"))
	if err := e.res.Fetch(ctx, plan.Video, videoTemp, agg.StageFunc(progress.StageFetchVideo)); err != nil {
		e.removeTemps(videoTemp)
		return "", &FetchError{Stream: plan.Video.Resolution(), Err: err}
	}

	if plan.Audio == nil {
		// Video-only catalogs happen; ship the lone stream as-is.
		final, err := e.finalize(videoTemp, title+"."+containerExt(plan.Video.Container, "mp4"))
		if err != nil {
			return "", err
		}
		agg.Finish()
		return final, nil
	}

	audioTemp := filepath.Join(e.destDir, "audio_"+token+"."+containerExt(plan.Audio.Container, "m4a"))
	if err := e.res.Fetch(ctx, plan.Audio, audioTemp, agg.StageFunc(progress.StageFetchAudio)); err != nil {
		e.removeTemps(videoTemp, audioTemp)
		return "", &FetchError{Stream: fmt.Sprintf("%dkbps audio", plan.Audio.BitrateKbps), Err: err}
	}

	merged := filepath.Join(e.destDir, "merged_"+token+".mp4")
	parser := ffmpeg.NewParser(ffmpeg.ModeMediaTime, info.Duration,
		agg.StageFunc(progress.StageMux), nil)
	if err := e.enc.Run(ctx, ffmpeg.MergeArgs(videoTemp, audioTemp, merged), parser); err != nil {
		e.removeTemps(videoTemp, audioTemp, merged)
		return "", &EncodeError{Op: "mux", Err: err}
	}
	e.removeTemps(videoTemp, audioTemp)

	final, err := e.finalize(merged, title+".mp4")
	if err != nil {
		return "", err
	}
	agg.Finish()
	return final, nil
}

func (e *Engine) acquireAudio(ctx context.Context, item model.MediaItem, info *resolver.Info, title string, onProgress progress.Func) (string, error) {
	stream, err := selector.SelectAudio(info.Streams, item.Quality)
	if err != nil {
		return "", err
	}

	agg := progress.NewAggregator(progress.FetchEncodeWeights(), onProgress)
	token := uuid.New().String()

	sourceTemp := filepath.Join(e.destDir, "audio_"+token+"."+containerExt(stream.Container, "m4a"))
	if err := e.res.Fetch(ctx, stream, sourceTemp, agg.StageFunc(progress.StageFetch)); err != nil {
		e.removeTemps(sourceTemp)
		return "", &FetchError{Stream: fmt.Sprintf("%dkbps audio", stream.BitrateKbps), Err: err}
	}

	mp3Temp := filepath.Join(e.destDir, "audio_"+token+".mp3")
	parser := ffmpeg.NewParser(ffmpeg.ModeMediaTime, info.Duration,
		agg.StageFunc(progress.StageEncode), nil)
	if err := e.enc.Run(ctx, ffmpeg.ExtractAudioArgs(sourceTemp, mp3Temp), parser); err != nil {
		e.removeTemps(sourceTemp, mp3Temp)
		return "", &EncodeError{Op: "extract-audio", Err: err}
	}
	e.removeTemps(sourceTemp)

	final, err := e.finalize(mp3Temp, title+".mp3")
	if err != nil {
		return "", err
	}
	agg.Finish()
	return final, nil
}

// fetchSubtitle downloads the requested caption track next to the
// finalized media, named "<title>_<lang>.<ext>".
func (e *Engine) fetchSubtitle(ctx context.Context, item model.MediaItem, info *resolver.Info, title string) error {
	sf, ok := e.res.(resolver.SubtitleFetcher)
	if !ok {
		return &SubtitleError{Lang: item.SubtitleLang, Err: fmt.Errorf("backend does not support subtitles")}
	}

	var track *model.SubtitleTrack
	for i := range info.Subtitles {
		if info.Subtitles[i].Lang == item.SubtitleLang {
			track = &info.Subtitles[i]
			break
		}
	}
	if track == nil {
		return &SubtitleError{Lang: item.SubtitleLang, Err: fmt.Errorf("no such track")}
	}

	ext := track.Ext
	if ext == "" {
		ext = "srt"
	}
	dest := naming.Resolve(e.destDir, fmt.Sprintf("%s_%s.%s", title, track.Lang, ext))
	if err := sf.FetchSubtitle(ctx, *track, dest); err != nil {
		return &SubtitleError{Lang: item.SubtitleLang, Err: err}
	}
	return nil
}

// finalize resolves the collision-free output name and moves the temp
// into place. Temp and output share a directory, so a rename suffices.
func (e *Engine) finalize(temp, name string) (string, error) {
	final := naming.Resolve(e.destDir, name)
	if err := os.Rename(temp, final); err != nil {
		e.removeTemps(temp)
		return "", fmt.Errorf("finalize %s: %w", final, err)
	}
	e.log.Info().Str("path", final).Msg("output finalized")
	return final, nil
}

// removeTemps deletes temporaries best-effort; failures are logged,
// never fatal.
func (e *Engine) removeTemps(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			e.log.Warn().Err(err).Str("path", p).Msg("temp cleanup failed")
		}
	}
}

func containerExt(container, fallback string) string {
	if container == "" {
		return fallback
	}
	return strings.ToLower(container)
}
