// Package tube resolves media with a direct innertube player lookup,
// no external binary. The android client shape is used because it
// returns directly fetchable stream URLs. Catalogs from this backend
// carry quality labels and itag bitrates rather than exact dimensions.
package tube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/model"
	"github.com/ytget/mediagrab/internal/resolver"
)

const (
	playerEndpoint = "https://www.youtube.com/youtubei/v1/player"
	clientName     = "ANDROID"
	clientVersion  = "19.09.37"
	androidUA      = "com.google.android.youtube/" + clientVersion + " (Linux; U; Android 11) gzip"
)

// Resolver performs the player lookup over plain HTTP.
type Resolver struct {
	client  *http.Client
	fetcher *resolver.HTTPFetcher
	log     zerolog.Logger
}

// New creates a resolver with a shared HTTP client.
func New(log zerolog.Logger) *Resolver {
	return &Resolver{
		client:  &http.Client{Timeout: 30 * time.Second},
		fetcher: resolver.NewHTTPFetcher(log),
		log:     log,
	}
}

type playerRequest struct {
	VideoID string        `json:"videoId"`
	Context playerContext `json:"context"`
}

type playerContext struct {
	Client clientInfo `json:"client"`
}

type clientInfo struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	AndroidSDK    int    `json:"androidSdkVersion"`
	HL            string `json:"hl"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	StreamingData struct {
		Formats         []streamFormat `json:"formats"`
		AdaptiveFormats []streamFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
	VideoDetails struct {
		Title         string `json:"title"`
		LengthSeconds string `json:"lengthSeconds"`
		Thumbnail     struct {
			Thumbnails []struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
}

type streamFormat struct {
	Itag         int    `json:"itag"`
	URL          string `json:"url"`
	MimeType     string `json:"mimeType"`
	Bitrate      int    `json:"bitrate"`
	QualityLabel string `json:"qualityLabel"`
}

// ResolveInfo posts a player request and maps the response into the
// catalog shape.
func (r *Resolver) ResolveInfo(ctx context.Context, rawURL string) (*resolver.Info, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: playerContext{Client: clientInfo{
			ClientName:    clientName,
			ClientVersion: clientVersion,
			AndroidSDK:    30,
			HL:            "en",
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build player request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUA)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player request: unexpected status %s", resp.Status)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if status := pr.PlayabilityStatus.Status; status != "" && status != "OK" {
		reason := pr.PlayabilityStatus.Reason
		if reason == "" {
			reason = status
		}
		return nil, fmt.Errorf("video unavailable: %s", reason)
	}
	return mapPlayerResponse(&pr), nil
}

// Fetch downloads the stream's bytes over HTTP.
func (r *Resolver) Fetch(ctx context.Context, stream *model.StreamDescriptor, dest string, onProgress func(float64)) error {
	return r.fetcher.Download(ctx, stream.URL, dest, onProgress)
}

func mapPlayerResponse(pr *playerResponse) *resolver.Info {
	info := &resolver.Info{Title: pr.VideoDetails.Title}
	if secs, err := strconv.ParseFloat(pr.VideoDetails.LengthSeconds, 64); err == nil {
		info.Duration = secs
	}
	if thumbs := pr.VideoDetails.Thumbnail.Thumbnails; len(thumbs) > 0 {
		info.ThumbnailURL = thumbs[len(thumbs)-1].URL
	}

	// Progressive formats are muxed; adaptive ones are single-track.
	for _, f := range pr.StreamingData.Formats {
		if d, ok := mapFormat(f, true); ok {
			info.Streams = append(info.Streams, d)
		}
	}
	for _, f := range pr.StreamingData.AdaptiveFormats {
		if d, ok := mapFormat(f, false); ok {
			info.Streams = append(info.Streams, d)
		}
	}
	return info
}

func mapFormat(f streamFormat, progressive bool) (model.StreamDescriptor, bool) {
	if f.URL == "" {
		return model.StreamDescriptor{}, false
	}
	container, isVideo := parseMimeType(f.MimeType)
	if container == "" {
		return model.StreamDescriptor{}, false
	}

	kind := model.StreamAudioOnly
	switch {
	case progressive:
		kind = model.StreamMuxed
	case isVideo:
		kind = model.StreamVideoOnly
	}

	return model.StreamDescriptor{
		Kind:        kind,
		Label:       f.QualityLabel,
		BitrateKbps: f.Bitrate / 1000,
		Container:   container,
		URL:         f.URL,
	}, true
}

// parseMimeType extracts the container from strings like
// `video/mp4; codecs="avc1.64001F"` or `audio/webm; codecs="opus"`.
func parseMimeType(mimeType string) (container string, isVideo bool) {
	base, _, _ := strings.Cut(mimeType, ";")
	kind, subtype, found := strings.Cut(strings.TrimSpace(base), "/")
	if !found {
		return "", false
	}
	return subtype, kind == "video"
}

// ExtractVideoID pulls the 11-character video ID out of the usual URL
// shapes: watch, short link, shorts, embed, or a bare ID.
func ExtractVideoID(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "/") && !strings.Contains(rawURL, ".") {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}

	path := strings.Trim(u.Path, "/")
	for _, prefix := range []string{"shorts/", "embed/", "live/", "v/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			id, _, _ := strings.Cut(rest, "/")
			if id != "" {
				return id, nil
			}
		}
	}
	if strings.HasSuffix(u.Host, "youtu.be") && path != "" {
		id, _, _ := strings.Cut(path, "/")
		return id, nil
	}
	return "", fmt.Errorf("no video id in %q", rawURL)
}
