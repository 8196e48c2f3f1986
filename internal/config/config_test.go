package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendTube {
		t.Errorf("Expected default backend tube, got %s", cfg.Backend)
	}
	if cfg.Quality != DefaultQuality {
		t.Errorf("Expected default quality %s, got %s", DefaultQuality, cfg.Quality)
	}
	if cfg.Format != DefaultFormat {
		t.Errorf("Expected default format %s, got %s", DefaultFormat, cfg.Format)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Expected default concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.OutputDir == "" {
		t.Error("Expected a non-empty default output directory")
	}
}

func TestParseFlags(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(cfg, []string{
		"-b", "ytdlp",
		"-q", "1920x1080",
		"-f", "webm",
		"--subs", "en",
		"--playlist",
		"-j", "2",
		"https://example.com/watch?list=PL1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend != BackendYTDLP {
		t.Errorf("Expected backend ytdlp, got %s", cfg.Backend)
	}
	if cfg.Quality != "1920x1080" || cfg.Format != "webm" {
		t.Errorf("Expected quality/format overrides, got %s/%s", cfg.Quality, cfg.Format)
	}
	if cfg.SubtitleLang != "en" {
		t.Errorf("Expected subs en, got %s", cfg.SubtitleLang)
	}
	if !cfg.Playlist || cfg.Concurrency != 2 {
		t.Errorf("Expected playlist mode with 2 jobs, got %v/%d", cfg.Playlist, cfg.Concurrency)
	}
	if cfg.URL != "https://example.com/watch?list=PL1" {
		t.Errorf("Expected positional URL, got %q", cfg.URL)
	}
}

func TestParseFlagsConvertMode(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(cfg, []string{
		"--convert", "clip.mp4",
		"-f", "mp3",
		"--start", "00:00:10",
		"--duration", "5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConvertInput != "clip.mp4" || cfg.TrimStart != "00:00:10" || cfg.TrimDuration != 5 {
		t.Errorf("Expected conversion options, got %+v", cfg)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no url", nil, "need a URL"},
		{"bad backend", []string{"-b", "nope", "url"}, "invalid backend"},
		{"too many args", []string{"url1", "url2"}, "at most one URL"},
		{"convert with playlist", []string{"--convert", "f.mp4", "--playlist", "url"}, "mutually exclusive"},
	}

	for _, test := range tests {
		cfg := DefaultConfig()
		err := ParseFlags(cfg, test.args)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: expected error containing %q, got %v", test.name, test.want, err)
		}
	}
}

func TestValidateConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "url"
	cfg.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero concurrency")
	}
}
