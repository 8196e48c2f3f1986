package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/mediagrab/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 60 * time.Second
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
)

// Playlist title constants
const (
	DefaultPlaylistTitle = "Unknown Playlist"
	MinPrefixLength      = 10
	PlaylistSuffix       = " Playlist"
)

// URL templates
const (
	VideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// PlaylistParser expands a collection URL into an ordered playlist of
// media items, each carrying the quality and format the user selected
// for the whole batch.
type PlaylistParser struct {
	timeout time.Duration
}

// NewPlaylistParser creates a parser with the default timeout.
func NewPlaylistParser() *PlaylistParser {
	return &PlaylistParser{timeout: DefaultPlaylistParseTimeout}
}

// SetTimeout sets the timeout for parsing operations.
func (p *PlaylistParser) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// ParsePlaylist fetches the playlist items and returns them as a
// model.Playlist. quality, format and subtitleLang are applied to every
// entry; the result's Items() is the batch runner's input.
func (p *PlaylistParser) ParsePlaylist(ctx context.Context, url, quality, format, subtitleLang string) (*model.Playlist, error) {
	if !p.isValidPlaylistURL(url) {
		return nil, fmt.Errorf("invalid playlist URL: %s", url)
	}

	playlistID := p.extractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %v", err)
	}

	playlist := model.NewPlaylist(url)
	playlist.ID = playlistID
	now := time.Now()
	for _, it := range items {
		playlist.AddEntry(&model.PlaylistEntry{
			ID: it.VideoID,
			Item: model.MediaItem{
				URL:          fmt.Sprintf(VideoURLTemplate, it.VideoID),
				Title:        it.Title,
				Quality:      quality,
				Format:       format,
				SubtitleLang: subtitleLang,
			},
			Status:    model.ItemStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	playlist.Title = p.extractPlaylistTitle(playlist)

	return playlist, nil
}

// isValidPlaylistURL checks if the URL carries a playlist parameter.
func (p *PlaylistParser) isValidPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistURLParam)
}

// extractPlaylistID extracts the playlist ID from various URL formats:
// watch URLs with a list parameter and bare playlist URLs.
func (p *PlaylistParser) extractPlaylistID(url string) string {
	if !strings.Contains(url, PlaylistURLParam) {
		return ""
	}
	parts := strings.Split(url, PlaylistURLParam)
	if len(parts) < 2 {
		return ""
	}
	playlistID := parts[1]
	if strings.Contains(playlistID, PlaylistParamSeparator) {
		playlistID = strings.Split(playlistID, PlaylistParamSeparator)[0]
	}
	return playlistID
}

// extractPlaylistTitle generates a title for the playlist based on its
// entries: a shared title prefix when one exists, else the first title.
func (p *PlaylistParser) extractPlaylistTitle(playlist *model.Playlist) string {
	if len(playlist.Entries) == 0 {
		return DefaultPlaylistTitle
	}
	first := playlist.Entries[0].Item.Title
	if len(playlist.Entries) > 1 {
		commonPrefix := findCommonPrefix(first, playlist.Entries[1].Item.Title)
		if len(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	return first + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings.
func findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
