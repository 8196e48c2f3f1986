package tube

import (
	"encoding/json"
	"testing"

	"github.com/ytget/mediagrab/internal/model"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/shorts/abc123def45", "abc123def45", false},
		{"https://www.youtube.com/embed/abc123def45?rel=0", "abc123def45", false},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/feed/library", "", true},
	}

	for _, test := range tests {
		got, err := ExtractVideoID(test.url)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", test.url, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("%s: expected %q, got %q", test.url, test.want, got)
		}
	}
}

const samplePlayerResponse = `{
	"playabilityStatus": {"status": "OK"},
	"streamingData": {
		"formats": [
			{"itag": 18, "url": "https://example.com/muxed", "mimeType": "video/mp4; codecs=\"avc1, mp4a\"", "bitrate": 500000, "qualityLabel": "360p"}
		],
		"adaptiveFormats": [
			{"itag": 136, "url": "https://example.com/video", "mimeType": "video/mp4; codecs=\"avc1.64001f\"", "bitrate": 1200000, "qualityLabel": "720p"},
			{"itag": 251, "url": "https://example.com/audio", "mimeType": "audio/webm; codecs=\"opus\"", "bitrate": 160000},
			{"itag": 9999, "url": "", "mimeType": "video/mp4", "qualityLabel": "1080p"}
		]
	},
	"videoDetails": {
		"title": "Sample",
		"lengthSeconds": "213",
		"thumbnail": {"thumbnails": [
			{"url": "https://example.com/small.jpg"},
			{"url": "https://example.com/large.jpg"}
		]}
	}
}`

func TestMapPlayerResponse(t *testing.T) {
	var pr playerResponse
	if err := json.Unmarshal([]byte(samplePlayerResponse), &pr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info := mapPlayerResponse(&pr)

	if info.Title != "Sample" {
		t.Errorf("Expected title Sample, got %q", info.Title)
	}
	if info.Duration != 213 {
		t.Errorf("Expected duration 213, got %v", info.Duration)
	}
	if info.ThumbnailURL != "https://example.com/large.jpg" {
		t.Errorf("Expected the largest thumbnail, got %q", info.ThumbnailURL)
	}

	if len(info.Streams) != 3 {
		t.Fatalf("Expected 3 streams (URL-less format skipped), got %d", len(info.Streams))
	}

	muxed := info.Streams[0]
	if muxed.Kind != model.StreamMuxed || muxed.Label != "360p" || muxed.Container != "mp4" {
		t.Errorf("Expected muxed 360p mp4, got %+v", muxed)
	}
	video := info.Streams[1]
	if video.Kind != model.StreamVideoOnly || video.Label != "720p" {
		t.Errorf("Expected video-only 720p, got %+v", video)
	}
	audio := info.Streams[2]
	if audio.Kind != model.StreamAudioOnly || audio.Container != "webm" || audio.BitrateKbps != 160 {
		t.Errorf("Expected audio-only webm 160kbps, got %+v", audio)
	}
}

func TestParseMimeType(t *testing.T) {
	tests := []struct {
		in        string
		container string
		isVideo   bool
	}{
		{`video/mp4; codecs="avc1.64001F"`, "mp4", true},
		{`audio/webm; codecs="opus"`, "webm", false},
		{`audio/mp4`, "mp4", false},
		{`garbage`, "", false},
	}
	for _, test := range tests {
		container, isVideo := parseMimeType(test.in)
		if container != test.container || isVideo != test.isVideo {
			t.Errorf("%q: expected (%q, %v), got (%q, %v)",
				test.in, test.container, test.isVideo, container, isVideo)
		}
	}
}
