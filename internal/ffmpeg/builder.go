package ffmpeg

import "fmt"

// ConvertOptions shapes a transcode invocation. Zero values mean
// "leave it to the encoder defaults".
type ConvertOptions struct {
	Start        string  // trim start, "HH:MM:SS"
	Duration     float64 // trim length in seconds, 0 = full
	VideoCodec   string
	AudioCodec   string
	Scale        string // "WIDTH:HEIGHT"
	AudioOnly    bool   // drop the video stream
	SampleRate   int    // output sample rate in Hz
	AudioBitrate string // e.g. "192k"
}

// MergeArgs builds the remux command that combines a video-only and an
// audio-only file into one container. Video is stream-copied; audio is
// re-encoded to AAC so the result plays in stock mp4 players.
func MergeArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-strict", "experimental",
		"-progress", "pipe:1",
		"-nostats",
		outputPath,
	}
}

// ExtractAudioArgs builds the command that strips the video stream and
// encodes the audio track as VBR mp3.
func ExtractAudioArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-progress", "pipe:1",
		"-nostats",
		outputPath,
	}
}

// ConvertArgs builds a general transcode command. Trim options go
// before the input so seeking happens on the demuxer side.
func ConvertArgs(inputPath, outputPath string, opts ConvertOptions) []string {
	args := []string{"-y"}
	if opts.Start != "" {
		args = append(args, "-ss", opts.Start)
	}
	args = append(args, "-i", inputPath)
	if opts.Duration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", opts.Duration))
	}
	if opts.AudioOnly {
		args = append(args, "-vn")
	}
	if opts.VideoCodec != "" {
		args = append(args, "-c:v", opts.VideoCodec)
	}
	if opts.AudioCodec != "" {
		args = append(args, "-c:a", opts.AudioCodec)
	}
	if opts.Scale != "" {
		args = append(args, "-vf", "scale="+opts.Scale)
	}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", opts.SampleRate))
	}
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	args = append(args, "-progress", "pipe:1", "-nostats", outputPath)
	return args
}
