// Package ffmpeg invokes the external encoder and turns its
// line-oriented status output into normalized progress samples.
package ffmpeg
