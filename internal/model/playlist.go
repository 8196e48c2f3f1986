package model

import (
	"time"
)

// PlaylistEntry is one video of a parsed playlist. The requested quality
// and format are fixed at parse time, mirroring what the user selected
// when the playlist was submitted.
type PlaylistEntry struct {
	ID         string     `json:"id"`
	Item       MediaItem  `json:"item"`
	Status     ItemStatus `json:"status"`
	Progress   float64    `json:"progress"`
	Error      string     `json:"error,omitempty"`
	OutputPath string     `json:"output_path,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Playlist represents a parsed collection URL and its entries.
type Playlist struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Entries   []*PlaylistEntry `json:"entries"`
	Total     int              `json:"total"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewPlaylist creates an empty playlist for a collection URL.
func NewPlaylist(url string) *Playlist {
	now := time.Now()
	return &Playlist{
		URL:       url,
		Entries:   make([]*PlaylistEntry, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddEntry appends an entry and keeps the total in sync.
func (p *Playlist) AddEntry(e *PlaylistEntry) {
	p.Entries = append(p.Entries, e)
	p.Total = len(p.Entries)
	p.UpdatedAt = time.Now()
}

// Items returns the entries' media items in submission order. This is
// the batch runner's input shape.
func (p *Playlist) Items() []MediaItem {
	items := make([]MediaItem, 0, len(p.Entries))
	for _, e := range p.Entries {
		items = append(items, e.Item)
	}
	return items
}

// CompletedCount returns the number of entries in a completed state.
func (p *Playlist) CompletedCount() int {
	n := 0
	for _, e := range p.Entries {
		if e.Status == ItemStatusCompleted {
			n++
		}
	}
	return n
}

// HasErrors reports whether any entry failed.
func (p *Playlist) HasErrors() bool {
	for _, e := range p.Entries {
		if e.Status == ItemStatusError {
			return true
		}
	}
	return false
}
