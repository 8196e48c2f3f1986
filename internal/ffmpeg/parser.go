package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Progress-stream line markers
const (
	outTimeMicrosPrefix = "out_time_ms=" // microseconds despite the name
	outTimePrefix       = "out_time="
	progressPrefix      = "progress="
	progressEndValue    = "end"
)

var (
	durationPattern = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2}(?:\.\d+)?)`)
	timePattern     = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2}(?:\.\d+)?)`)
)

// Mode selects how the parser converts processed media time into a
// reported fraction.
type Mode int

const (
	// ModeMediaTime reports lastMediaTime / requestedDuration. Used when
	// the caller knows the exact output duration (remux, trim).
	ModeMediaTime Mode = iota

	// ModeWallClock extrapolates total wall-clock time from the observed
	// encode speed and reports elapsed / estimated-total. Used when
	// encode speed is not constant and a plain media-time fraction would
	// mislead (e.g. copy+transcode muxing).
	ModeWallClock
)

// Parser is a streaming state machine over the encoder's status output.
// It recognizes the container duration banner, both encodings of the
// processed-media-time counter, and the explicit completion marker;
// every other line is ignored. It is not safe for concurrent use.
type Parser struct {
	mode              Mode
	requestedDuration float64
	onSample          func(fraction float64)
	onDone            func()

	now   func() time.Time
	start time.Time

	totalDuration float64 // first duration banner wins; 0 = unknown
	lastMediaTime float64
	done          bool
}

// NewParser creates a parser. requestedDuration is the expected output
// duration in seconds; pass 0 to fall back to the duration the stream
// itself reports. Either callback may be nil.
func NewParser(mode Mode, requestedDuration float64, onSample func(float64), onDone func()) *Parser {
	p := &Parser{
		mode:              mode,
		requestedDuration: requestedDuration,
		onSample:          onSample,
		onDone:            onDone,
		now:               time.Now,
	}
	p.start = p.now()
	return p
}

// Done reports whether the completion marker has been seen.
func (p *Parser) Done() bool {
	return p.done
}

// ConsumeLine feeds one status line to the state machine.
func (p *Parser) ConsumeLine(line string) {
	if p.done {
		return
	}
	line = strings.TrimSpace(line)

	if p.totalDuration == 0 {
		if m := durationPattern.FindStringSubmatch(line); m != nil {
			p.totalDuration = clockParts(m[1], m[2], m[3])
			return
		}
	}

	switch {
	case strings.HasPrefix(line, outTimeMicrosPrefix):
		us, err := strconv.ParseInt(strings.TrimPrefix(line, outTimeMicrosPrefix), 10, 64)
		if err != nil {
			return
		}
		p.sample(float64(us) / 1e6)

	case strings.HasPrefix(line, outTimePrefix):
		p.sample(ClockToSeconds(strings.TrimPrefix(line, outTimePrefix)))

	case strings.HasPrefix(line, progressPrefix):
		if strings.TrimPrefix(line, progressPrefix) == progressEndValue {
			p.done = true
			if p.onSample != nil {
				p.onSample(1.0)
			}
			if p.onDone != nil {
				p.onDone()
			}
		}

	default:
		if m := timePattern.FindStringSubmatch(line); m != nil {
			p.sample(clockParts(m[1], m[2], m[3]))
		}
	}
}

func (p *Parser) sample(mediaTime float64) {
	if mediaTime < p.lastMediaTime {
		mediaTime = p.lastMediaTime
	}
	p.lastMediaTime = mediaTime
	if p.onSample == nil {
		return
	}

	target := p.requestedDuration
	if target <= 0 {
		target = p.totalDuration
	}
	if target <= 0 {
		return
	}

	var fraction float64
	switch p.mode {
	case ModeWallClock:
		// No estimate is possible before the first real media-time
		// sample; suppress events until then rather than guess.
		if mediaTime <= 0 {
			return
		}
		elapsed := p.now().Sub(p.start).Seconds()
		if elapsed <= 0 {
			return
		}
		speed := mediaTime / elapsed
		estimatedTotal := elapsed + (target-mediaTime)/speed
		if estimatedTotal <= 0 {
			return
		}
		fraction = elapsed / estimatedTotal
	default:
		fraction = mediaTime / target
	}

	if fraction > 1.0 {
		fraction = 1.0
	}
	p.onSample(fraction)
}

func clockParts(hours, minutes, seconds string) float64 {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.ParseFloat(seconds, 64)
	return float64(h)*3600 + float64(m)*60 + s
}
