package engine

import "fmt"

// ResolutionError means the remote info lookup failed. Fatal for the
// item; never retried.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError means a stream download failed mid-transfer. Fatal for
// the item only.
type FetchError struct {
	Stream string // resolution or bitrate description
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s stream: %v", e.Stream, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EncodeError means the external encoder exited non-zero or produced
// no usable output.
type EncodeError struct {
	Op  string // "mux", "extract-audio", "convert"
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode (%s): %v", e.Op, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// SubtitleError is non-fatal. The primary artifact is already in place
// when it can occur; callers should surface it as a warning.
type SubtitleError struct {
	Lang string
	Err  error
}

func (e *SubtitleError) Error() string {
	return fmt.Sprintf("subtitle %s: %v", e.Lang, e.Err)
}

func (e *SubtitleError) Unwrap() error { return e.Err }
