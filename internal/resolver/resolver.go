// Package resolver defines the backend contract for remote media
// lookup and byte retrieval. Two interchangeable implementations live
// in the subpackages; the pipeline is written against the interfaces
// here and selects a backend from configuration.
package resolver

import (
	"context"

	"github.com/ytget/mediagrab/internal/model"
)

// Info is the result of a remote info lookup: display metadata plus
// the catalog of fetchable streams.
type Info struct {
	Title        string
	ThumbnailURL string
	Duration     float64 // seconds, 0 = unknown
	Subtitles    []model.SubtitleTrack
	Streams      []model.StreamDescriptor
}

// Resolver is a media source backend. Implementations must be safe for
// concurrent use by multiple batch workers.
type Resolver interface {
	// ResolveInfo queries the source for the stream catalog of one URL.
	ResolveInfo(ctx context.Context, url string) (*Info, error)

	// Fetch downloads a stream's bytes to dest, reporting fractional
	// progress through onProgress (may be nil).
	Fetch(ctx context.Context, stream *model.StreamDescriptor, dest string, onProgress func(float64)) error
}

// SubtitleFetcher is implemented by backends that can retrieve
// subtitle tracks alongside the media.
type SubtitleFetcher interface {
	FetchSubtitle(ctx context.Context, track model.SubtitleTrack, dest string) error
}
