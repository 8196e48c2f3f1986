// Command mediagrab acquires remote media (single URLs or playlists)
// and converts local files through the external encoder.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/batch"
	"github.com/ytget/mediagrab/internal/config"
	"github.com/ytget/mediagrab/internal/engine"
	"github.com/ytget/mediagrab/internal/ffmpeg"
	"github.com/ytget/mediagrab/internal/model"
	"github.com/ytget/mediagrab/internal/platform"
	"github.com/ytget/mediagrab/internal/progress"
	"github.com/ytget/mediagrab/internal/resolver"
	"github.com/ytget/mediagrab/internal/resolver/tube"
	"github.com/ytget/mediagrab/internal/resolver/ytdlp"
	"github.com/ytget/mediagrab/internal/transcode"
)

func main() {
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(cfg, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "mediagrab:", err)
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	runner := ffmpeg.NewRunner(log)

	if cfg.ConvertInput != "" {
		return runConvert(ctx, cfg, runner, log)
	}

	if err := platform.CreateDirectoryIfNotExists(cfg.OutputDir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	res := newBackend(cfg.Backend, log)
	eng := engine.New(res, runner, cfg.OutputDir, log)

	if cfg.Playlist {
		return runPlaylist(ctx, cfg, eng, log)
	}
	return runSingle(ctx, cfg, eng)
}

func newBackend(backend config.Backend, log zerolog.Logger) resolver.Resolver {
	if backend == config.BackendYTDLP {
		return ytdlp.New(log)
	}
	return tube.New(log)
}

func runSingle(ctx context.Context, cfg *config.Config, eng *engine.Engine) error {
	item := model.MediaItem{
		URL:          cfg.URL,
		Quality:      cfg.Quality,
		Format:       cfg.Format,
		SubtitleLang: cfg.SubtitleLang,
	}
	path, err := eng.Acquire(ctx, item, printProgress)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runPlaylist(ctx context.Context, cfg *config.Config, eng *engine.Engine, log zerolog.Logger) error {
	playlist, err := platform.NewPlaylistParser().ParsePlaylist(
		ctx, cfg.URL, cfg.Quality, cfg.Format, cfg.SubtitleLang)
	if err != nil {
		return err
	}
	log.Info().Str("title", playlist.Title).Int("items", playlist.Total).Msg("playlist parsed")

	results := batch.New(eng, cfg.Concurrency, log).Run(ctx, playlist.Items(), printProgress)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "item %d failed: %v\n", res.Index, res.Err)
			continue
		}
		fmt.Println(res.OutputPath)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(results))
	}
	return nil
}

func runConvert(ctx context.Context, cfg *config.Config, runner *ffmpeg.Runner, log zerolog.Logger) error {
	output, err := transcode.New(runner, log).Convert(ctx, transcode.Request{
		InputPath: cfg.ConvertInput,
		Format:    cfg.Format,
		Quality:   cfg.Quality,
		Start:     cfg.TrimStart,
		Duration:  cfg.TrimDuration,
	}, printProgress)
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

// printProgress renders a single updating percentage line on stderr.
func printProgress(e progress.Event) {
	if e.Terminal {
		fmt.Fprintf(os.Stderr, "\r100.0%%\n")
		return
	}
	fmt.Fprintf(os.Stderr, "\r%5.1f%%", e.Fraction*100)
}
