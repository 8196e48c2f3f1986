// Package transcode re-encodes an already-local file: trim windows,
// container changes, scaling, audio extraction with format-dependent
// quality parameters.
package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/engine"
	"github.com/ytget/mediagrab/internal/ffmpeg"
	"github.com/ytget/mediagrab/internal/naming"
	"github.com/ytget/mediagrab/internal/progress"
)

// Request describes one conversion.
type Request struct {
	InputPath string
	Format    string  // target container: "mp4", "webm", "mp3", "wav", "flac", ...
	Quality   string  // "1280x720" for video; "192kbps" or "44.1 kHz" for audio
	Start     string  // trim start "HH:MM:SS", empty for none
	Duration  float64 // trim length in seconds, 0 for the rest of the file

	// Optional codec overrides for video targets.
	VideoCodec string
	AudioCodec string
}

var audioFormats = map[string]bool{
	"mp3": true, "wav": true, "flac": true, "m4a": true, "ogg": true, "aac": true,
}

// Engine drives single-file conversions through the external encoder.
type Engine struct {
	enc engine.Encoder
	log zerolog.Logger
}

// New creates a transcode engine.
func New(enc engine.Encoder, log zerolog.Logger) *Engine {
	return &Engine{enc: enc, log: log}
}

// Convert runs one encoder invocation and returns the output path,
// "<base>_converted.<format>" next to the input, made collision-free.
// Progress flows through onProgress with one terminal event on
// success. Unparseable quality tokens fall back to encoder defaults.
func (e *Engine) Convert(ctx context.Context, req Request, onProgress progress.Func) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(req.Format, "."))
	if format == "" {
		return "", fmt.Errorf("no target format")
	}

	duration := req.Duration
	if duration <= 0 {
		probed, err := e.enc.ProbeDuration(ctx, req.InputPath)
		if err != nil {
			return "", &engine.EncodeError{Op: "convert", Err: err}
		}
		duration = probed - ffmpeg.ClockToSeconds(req.Start)
		if duration < 0 {
			duration = 0
		}
	}

	opts := ffmpeg.ConvertOptions{
		Start:    req.Start,
		Duration: req.Duration,
	}
	mode := ffmpeg.ModeWallClock
	if audioFormats[format] {
		applyAudioQuality(&opts, format, req.Quality)
		// Audio re-encodes run at near-constant speed, so the plain
		// media-time fraction is accurate.
		mode = ffmpeg.ModeMediaTime
	} else {
		opts.VideoCodec = req.VideoCodec
		opts.AudioCodec = req.AudioCodec
		opts.Scale = parseScale(req.Quality)
	}

	base := strings.TrimSuffix(filepath.Base(req.InputPath), filepath.Ext(req.InputPath))
	output := naming.Resolve(filepath.Dir(req.InputPath), base+"_converted."+format)

	agg := progress.NewAggregator(
		progress.StageWeights{{Name: progress.StageEncode, Weight: 1.0}}, onProgress)
	parser := ffmpeg.NewParser(mode, duration, agg.StageFunc(progress.StageEncode), nil)

	args := ffmpeg.ConvertArgs(req.InputPath, output, opts)
	if err := e.enc.Run(ctx, args, parser); err != nil {
		if rmErr := os.Remove(output); rmErr != nil && !os.IsNotExist(rmErr) {
			e.log.Warn().Err(rmErr).Str("path", output).Msg("partial output cleanup failed")
		}
		return "", &engine.EncodeError{Op: "convert", Err: err}
	}

	agg.Finish()
	e.log.Info().Str("path", output).Msg("conversion complete")
	return output, nil
}

// applyAudioQuality maps a quality token onto encoder arguments.
// Lossless formats ignore bitrate; wav converts "NN kHz" to a sample
// rate; everything else converts "NNNkbps" to a bitrate.
func applyAudioQuality(opts *ffmpeg.ConvertOptions, format, quality string) {
	opts.AudioOnly = true
	switch format {
	case "flac":
		// Lossless; quality tokens carry no meaning here.
	case "wav":
		if rate := parseSampleRate(quality); rate > 0 {
			opts.SampleRate = rate
		}
	default:
		if kbps := parseBitrateToken(quality); kbps > 0 {
			opts.AudioBitrate = fmt.Sprintf("%dk", kbps)
		}
	}
}

// parseScale turns "1280x720" into the filter syntax "1280:720".
func parseScale(quality string) string {
	w, h, found := strings.Cut(strings.ToLower(strings.TrimSpace(quality)), "x")
	if !found {
		return ""
	}
	if _, err := strconv.Atoi(w); err != nil {
		return ""
	}
	if _, err := strconv.Atoi(h); err != nil {
		return ""
	}
	return w + ":" + h
}

// parseSampleRate turns "44.1 kHz" into 44100.
func parseSampleRate(quality string) int {
	token := strings.ToLower(strings.TrimSpace(quality))
	token = strings.TrimSpace(strings.TrimSuffix(token, "khz"))
	khz, err := strconv.ParseFloat(token, 64)
	if err != nil || khz <= 0 {
		return 0
	}
	return int(khz * 1000)
}

func parseBitrateToken(quality string) int {
	token := strings.ToLower(strings.TrimSpace(quality))
	token = strings.TrimSuffix(token, "kbps")
	kbps, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || kbps <= 0 {
		return 0
	}
	return kbps
}
