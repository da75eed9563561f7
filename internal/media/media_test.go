package media

import (
	"errors"
	"testing"
)

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantAudio bool
		wantVideo bool
	}{
		{
			name:      "muxed",
			raw:       `{"streams":[{"codec_type":"video"},{"codec_type":"audio"}],"format":{"duration":"12.5"}}`,
			wantAudio: true,
			wantVideo: true,
		},
		{
			name:      "video only",
			raw:       `{"streams":[{"codec_type":"video"}]}`,
			wantVideo: true,
		},
		{
			name:      "audio with cover art",
			raw:       `{"streams":[{"codec_type":"audio"},{"codec_type":"video","disposition":{"attached_pic":1}}]}`,
			wantAudio: true,
		},
		{
			name: "no streams",
			raw:  `{"streams":[]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProbe(tt.raw)
			if err != nil {
				t.Fatalf("ParseProbe() error = %v", err)
			}
			if got.HasAudio != tt.wantAudio || got.HasVideo != tt.wantVideo {
				t.Errorf("ParseProbe() = %+v, want audio=%t video=%t", got, tt.wantAudio, tt.wantVideo)
			}
		})
	}
}

func TestParseProbeMalformed(t *testing.T) {
	if _, err := ParseProbe("not json"); err == nil {
		t.Fatal("expected error")
	}
}

func TestInspectWith(t *testing.T) {
	probe := func(path string) (string, error) {
		if path != "clip.mp4" {
			t.Errorf("unexpected path %q", path)
		}
		return `{"streams":[{"codec_type":"video"},{"codec_type":"audio"}],"format":{"duration":"3.0"}}`, nil
	}
	got, err := InspectWith(probe, "clip.mp4")
	if err != nil {
		t.Fatalf("InspectWith() error = %v", err)
	}
	if !got.HasAudio || !got.HasVideo || got.Duration != "3.0" {
		t.Errorf("InspectWith() = %+v", got)
	}

	failing := func(string) (string, error) { return "", errors.New("exit status 1") }
	if _, err := InspectWith(failing, "missing.mp4"); err == nil {
		t.Fatal("expected error from failing probe")
	}
}
