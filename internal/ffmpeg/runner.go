package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

const (
	ffmpegCommand  = "ffmpeg"
	ffprobeCommand = "ffprobe"

	// How many trailing output lines to keep for error reporting.
	errorTailLines = 8
)

// Runner executes encoder commands and streams their output through a
// Parser. Both binaries are resolved from PATH.
type Runner struct {
	ffmpegPath  string
	ffprobePath string
	log         zerolog.Logger
}

// NewRunner creates a runner that logs through the given logger.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{
		ffmpegPath:  ffmpegCommand,
		ffprobePath: ffprobeCommand,
		log:         log,
	}
}

// Run executes the encoder with args, feeding every output line to the
// parser. Stdout and stderr are merged into one stream so the duration
// banner and the progress counters arrive at the same state machine.
// A non-zero exit returns an error carrying the last output lines.
func (r *Runner) Run(ctx context.Context, args []string, parser *Parser) error {
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	r.log.Debug().Strs("args", args).Msg("starting encoder")
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("start %s: %w", r.ffmpegPath, err)
	}
	pw.Close()

	var tail []string
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if parser != nil {
			parser.ConsumeLine(line)
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			tail = append(tail, trimmed)
			if len(tail) > errorTailLines {
				tail = tail[1:]
			}
		}
	}
	pr.Close()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.log.Error().Err(err).Str("output", strings.Join(tail, "\n")).Msg("encoder failed")
		return fmt.Errorf("%s: %w: %s", r.ffmpegPath, err, strings.Join(tail, "; "))
	}
	return nil
}
