package config

// CLI flag parsing and help text. Flags are grouped into acquisition,
// conversion, and utility; enum flags use flag.Value adapters.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// version is shown in --version and help; override at build time with
// -ldflags "-X .../internal/config.version=...".
var version = "0.1.0-dev"

// ParseFlags parses args (os.Args[1:] in production) into cfg. On
// --help or --version it prints and exits. The one positional argument
// is the media or playlist URL.
func ParseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("mediagrab", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var showHelp, showVersion bool

	defineAcquisitionFlags(fs, cfg)
	defineConversionFlags(fs, cfg)
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showVersion, "V", false, "Same as --version")
	fs.BoolVar(&showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&showHelp, "h", false, "Same as --help")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, "mediagrab v"+version)
		os.Exit(0)
	}

	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one URL, got %d arguments", fs.NArg())
	}
	if fs.NArg() == 1 {
		cfg.URL = fs.Arg(0)
	}
	return cfg.Validate()
}

// defineAcquisitionFlags registers backend, output, quality, format,
// subtitle and batch flags.
func defineAcquisitionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&backendValue{&cfg.Backend}, "backend", "Resolver backend: tube | ytdlp")
	fs.Var(&backendValue{&cfg.Backend}, "b", "Same as --backend")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Output directory")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "Same as --out")
	fs.StringVar(&cfg.Quality, "quality", cfg.Quality, "Target quality: WIDTHxHEIGHT, 720p or NNNkbps")
	fs.StringVar(&cfg.Quality, "q", cfg.Quality, "Same as --quality")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Target container: mp4, webm or mp3")
	fs.StringVar(&cfg.Format, "f", cfg.Format, "Same as --format")
	fs.StringVar(&cfg.SubtitleLang, "subs", cfg.SubtitleLang, "Subtitle language code, or 'none'")
	fs.BoolVar(&cfg.Playlist, "playlist", false, "Treat the URL as a playlist")
	fs.IntVar(&cfg.Concurrency, "jobs", cfg.Concurrency, "Concurrent acquisitions for playlists")
	fs.IntVar(&cfg.Concurrency, "j", cfg.Concurrency, "Same as --jobs")
}

// defineConversionFlags registers local-file conversion flags.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConvertInput, "convert", "", "Convert a local file instead of acquiring")
	fs.StringVar(&cfg.TrimStart, "start", "", "Trim start (HH:MM:SS)")
	fs.Float64Var(&cfg.TrimDuration, "duration", 0, "Trim length in seconds")
}

// printUsage writes the help text to stderr, column-aligned.
func printUsage(fs *flag.FlagSet) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "mediagrab v" + version + " -- media acquisition and transcoding"},
		{"", ""},
		{"  mediagrab [OPTIONS] <url>", ""},
		{"  mediagrab --convert <file> [OPTIONS]", ""},
		{"", ""},
		{"Acquisition", ""},
		{"  -b, --backend <tube|ytdlp>", "Resolver backend (default: tube)"},
		{"  -o, --out <dir>", "Output directory (default: ~/Downloads)"},
		{"  -q, --quality <token>", "WIDTHxHEIGHT, 720p or bitrate: 320/256/192/128/64 kbps (default: 1280x720)"},
		{"  -f, --format <name>", "mp4, webm or mp3 (default: mp4)"},
		{"  --subs <lang>", "Subtitle language code (default: none)"},
		{"  --playlist", "Treat the URL as a playlist"},
		{"  -j, --jobs <n>", "Concurrent playlist acquisitions (default: 4)"},
		{"", ""},
		{"Conversion", ""},
		{"  --convert <file>", "Convert a local file; --format/--quality set the target"},
		{"  --start <HH:MM:SS>", "Trim start offset"},
		{"  --duration <seconds>", "Trim length"},
		{"", ""},
		{"Utility", ""},
		{"  -v, --verbose", "Verbose output"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// backendValue adapts the Backend enum to flag.Var.
type backendValue struct{ p *Backend }

func (b *backendValue) String() string {
	if b.p == nil {
		return ""
	}
	return string(*b.p)
}

func (b *backendValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "tube":
		*b.p = BackendTube
	case "ytdlp":
		*b.p = BackendYTDLP
	default:
		return fmt.Errorf("invalid backend %q (use 'tube' or 'ytdlp')", s)
	}
	return nil
}
