package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/engine"
	"github.com/ytget/mediagrab/internal/ffmpeg"
	"github.com/ytget/mediagrab/internal/progress"
)

type fakeEncoder struct {
	err        error
	probeCalls int
	calls      [][]string
}

func (f *fakeEncoder) Run(ctx context.Context, args []string, parser *ffmpeg.Parser) error {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return f.err
	}
	if parser != nil {
		parser.ConsumeLine("out_time_ms=5000000")
		parser.ConsumeLine("progress=end")
	}
	return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
}

func (f *fakeEncoder) ProbeDuration(ctx context.Context, path string) (float64, error) {
	f.probeCalls++
	return 60, nil
}

func writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("input"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func lastArgs(t *testing.T, enc *fakeEncoder) string {
	t.Helper()
	if len(enc.calls) == 0 {
		t.Fatal("Expected an encoder call")
	}
	return strings.Join(enc.calls[len(enc.calls)-1], " ")
}

func TestConvertVideoScaleAndNaming(t *testing.T) {
	enc := &fakeEncoder{}
	eng := New(enc, zerolog.Nop())
	input := writeInput(t, "clip.mp4")

	var events []progress.Event
	output, err := eng.Convert(context.Background(), Request{
		InputPath: input,
		Format:    "webm",
		Quality:   "1280x720",
	}, func(e progress.Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(output) != "clip_converted.webm" {
		t.Errorf("Expected clip_converted.webm, got %s", filepath.Base(output))
	}
	args := lastArgs(t, enc)
	if !strings.Contains(args, "-vf scale=1280:720") {
		t.Errorf("Expected scale filter, got %s", args)
	}
	if enc.probeCalls != 1 {
		t.Errorf("Expected a duration probe without a trim window, got %d calls", enc.probeCalls)
	}

	terminals := 0
	for _, e := range events {
		if e.Terminal {
			terminals++
		}
	}
	if terminals != 1 {
		t.Errorf("Expected exactly 1 terminal event, got %d", terminals)
	}
}

func TestConvertOutputCollision(t *testing.T) {
	enc := &fakeEncoder{}
	eng := New(enc, zerolog.Nop())
	input := writeInput(t, "clip.mp4")

	taken := filepath.Join(filepath.Dir(input), "clip_converted.webm")
	if err := os.WriteFile(taken, []byte("old"), 0o644); err != nil {
		t.Fatalf("write collision file: %v", err)
	}

	output, err := eng.Convert(context.Background(), Request{InputPath: input, Format: "webm"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(output) != "clip_converted (1).webm" {
		t.Errorf("Expected counter suffix, got %s", filepath.Base(output))
	}
}

func TestConvertTrimSkipsProbe(t *testing.T) {
	enc := &fakeEncoder{}
	eng := New(enc, zerolog.Nop())
	input := writeInput(t, "clip.mp4")

	_, err := eng.Convert(context.Background(), Request{
		InputPath: input,
		Format:    "mp4",
		Start:     "00:00:10",
		Duration:  5,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.probeCalls != 0 {
		t.Errorf("Expected no probe with an explicit trim duration, got %d calls", enc.probeCalls)
	}
	args := lastArgs(t, enc)
	if !strings.Contains(args, "-ss 00:00:10") || !strings.Contains(args, "-t 5.000") {
		t.Errorf("Expected trim args, got %s", args)
	}
}

func TestConvertAudioQualityTokens(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		quality    string
		wantArg    string
		rejectArgs []string
	}{
		{"mp3 bitrate", "mp3", "192kbps", "-b:a 192k", nil},
		{"wav sample rate", "wav", "44.1 kHz", "-ar 44100", []string{"-b:a"}},
		{"flac ignores quality", "flac", "192kbps", "-vn", []string{"-b:a", "-ar"}},
		{"unparseable falls back", "mp3", "extreme", "-vn", []string{"-b:a", "-ar"}},
	}

	for _, test := range tests {
		enc := &fakeEncoder{}
		eng := New(enc, zerolog.Nop())
		input := writeInput(t, "clip.mp4")

		output, err := eng.Convert(context.Background(), Request{
			InputPath: input,
			Format:    test.format,
			Quality:   test.quality,
		}, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", test.name, err)
		}
		if !strings.HasSuffix(output, "_converted."+test.format) {
			t.Errorf("%s: expected _converted.%s suffix, got %s", test.name, test.format, output)
		}
		args := lastArgs(t, enc)
		if !strings.Contains(args, test.wantArg) {
			t.Errorf("%s: expected %q in args, got %s", test.name, test.wantArg, args)
		}
		for _, reject := range test.rejectArgs {
			if strings.Contains(args, reject) {
				t.Errorf("%s: unexpected %q in args: %s", test.name, reject, args)
			}
		}
	}
}

func TestConvertEncodeErrorCleansUp(t *testing.T) {
	enc := &fakeEncoder{err: errors.New("exit status 1")}
	eng := New(enc, zerolog.Nop())
	input := writeInput(t, "clip.mp4")

	_, err := eng.Convert(context.Background(), Request{InputPath: input, Format: "webm"}, nil)
	var encErr *engine.EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("Expected EncodeError, got %v", err)
	}

	entries, readErr := os.ReadDir(filepath.Dir(input))
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the input file to remain, got %d entries", len(entries))
	}
}

func TestParseHelpers(t *testing.T) {
	if got := parseScale("1920X1080"); got != "1920:1080" {
		t.Errorf("Expected 1920:1080, got %q", got)
	}
	if got := parseScale("big"); got != "" {
		t.Errorf("Expected empty scale for bad token, got %q", got)
	}
	if got := parseSampleRate("48 kHz"); got != 48000 {
		t.Errorf("Expected 48000, got %d", got)
	}
	if got := parseBitrateToken("128kbps"); got != 128 {
		t.Errorf("Expected 128, got %d", got)
	}
}
