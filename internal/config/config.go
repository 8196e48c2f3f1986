// Package config holds the CLI configuration and flag parsing.
package config

import (
	"fmt"

	"github.com/ytget/mediagrab/internal/platform"
)

// Backend selects which resolver implementation serves lookups.
type Backend string

const (
	// BackendYTDLP shells out to the yt-dlp executable.
	BackendYTDLP Backend = "ytdlp"
	// BackendTube performs the player lookup in-process.
	BackendTube Backend = "tube"
)

// Defaults
const (
	DefaultQuality      = "1280x720"
	DefaultFormat       = "mp4"
	DefaultConcurrency  = 4
	DefaultSubtitleLang = "none"
)

// Config is the fully resolved CLI configuration.
type Config struct {
	Backend      Backend
	OutputDir    string
	Quality      string
	Format       string
	SubtitleLang string
	Concurrency  int
	Playlist     bool
	Verbose      bool

	// Conversion mode: set ConvertInput to transcode a local file
	// instead of acquiring a URL.
	ConvertInput string
	TrimStart    string  // "HH:MM:SS"
	TrimDuration float64 // seconds

	// URL is the positional argument: a media or playlist URL.
	URL string
}

// DefaultConfig returns the configuration used when no flags are set.
// The output directory falls back to the working directory when the
// user's Downloads directory cannot be determined.
func DefaultConfig() *Config {
	outputDir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		outputDir = "."
	}
	return &Config{
		Backend:      BackendTube,
		OutputDir:    outputDir,
		Quality:      DefaultQuality,
		Format:       DefaultFormat,
		SubtitleLang: DefaultSubtitleLang,
		Concurrency:  DefaultConcurrency,
	}
}

// Validate checks cross-field consistency after flag parsing.
func (c *Config) Validate() error {
	if c.Backend != BackendYTDLP && c.Backend != BackendTube {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.ConvertInput == "" && c.URL == "" {
		return fmt.Errorf("need a URL to acquire or --convert with a local file")
	}
	if c.ConvertInput != "" && c.Playlist {
		return fmt.Errorf("--convert and --playlist are mutually exclusive")
	}
	return nil
}
