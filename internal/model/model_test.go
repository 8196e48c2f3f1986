package model

import "testing"

func TestWantsSubtitles(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"", false},
		{SubtitleNone, false},
		{"en", true},
	}
	for _, test := range tests {
		item := MediaItem{SubtitleLang: test.lang}
		if got := item.WantsSubtitles(); got != test.want {
			t.Errorf("SubtitleLang %q: expected %v, got %v", test.lang, test.want, got)
		}
	}
}

func TestStreamDescriptorResolution(t *testing.T) {
	d := StreamDescriptor{Width: 1280, Height: 720}
	if got := d.Resolution(); got != "1280x720" {
		t.Errorf("Expected 1280x720, got %s", got)
	}

	d = StreamDescriptor{Label: "720p"}
	if got := d.Resolution(); got != "720p" {
		t.Errorf("Expected 720p, got %s", got)
	}
}

func TestStreamDescriptorPixelCount(t *testing.T) {
	audio := StreamDescriptor{Kind: StreamAudioOnly, BitrateKbps: 160}
	if audio.PixelCount() != -1 {
		t.Errorf("Expected audio-only to rank lowest, got %d", audio.PixelCount())
	}

	video := StreamDescriptor{Kind: StreamVideoOnly, Width: 1280, Height: 720}
	label := StreamDescriptor{Kind: StreamMuxed, Label: "360p"}
	if video.PixelCount() <= label.PixelCount() {
		t.Errorf("Expected 1280x720 to outrank 360p, got %d vs %d",
			video.PixelCount(), label.PixelCount())
	}
}

func TestPlaylistCounts(t *testing.T) {
	p := NewPlaylist("url")
	p.AddEntry(&PlaylistEntry{ID: "a", Status: ItemStatusCompleted})
	p.AddEntry(&PlaylistEntry{ID: "b", Status: ItemStatusError})
	p.AddEntry(&PlaylistEntry{ID: "c", Status: ItemStatusPending})

	if p.Total != 3 {
		t.Errorf("Expected total 3, got %d", p.Total)
	}
	if p.CompletedCount() != 1 {
		t.Errorf("Expected 1 completed, got %d", p.CompletedCount())
	}
	if !p.HasErrors() {
		t.Error("Expected HasErrors to be true")
	}
	if len(p.Items()) != 3 {
		t.Errorf("Expected 3 items, got %d", len(p.Items()))
	}
}

func TestItemStatusPredicates(t *testing.T) {
	if !ItemStatusFetching.IsActive() || ItemStatusPending.IsActive() {
		t.Error("IsActive misclassified a status")
	}
	if !ItemStatusError.IsFinished() || ItemStatusEncoding.IsFinished() {
		t.Error("IsFinished misclassified a status")
	}
}
