package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

func writeFakeYtdlp(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp relies on a POSIX shell")
	}
	fakeBin := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(fakeBin, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return fakeBin
}

func TestDecodeInfosSkipsNonJSONLines(t *testing.T) {
	stdout := "[youtube] abc: Downloading webpage\n" +
		`{"id":"abc","title":"Example","resolution":"1920x1080","format_id":"137+140","vcodec":"avc1","acodec":"mp4a"}` + "\n" +
		"[Merger] Merging formats\n"
	infos, err := DecodeInfos(stdout)
	if err != nil {
		t.Fatalf("DecodeInfos() error = %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 info, got %d", len(infos))
	}
	if infos[0].Title != "Example" || infos[0].FormatLabel() != "137+140" {
		t.Errorf("unexpected info %+v", infos[0])
	}
	if !infos[0].HasAudio() || !infos[0].HasVideo() {
		t.Errorf("expected audio and video streams")
	}
}

func TestDecodeInfosFlattensPlaylist(t *testing.T) {
	stdout := `{"_type":"playlist","title":"List","entries":[{"id":"a","title":"First"},{"id":"b","title":"Second"}]}`
	infos, err := DecodeInfos(stdout)
	if err != nil {
		t.Fatalf("DecodeInfos() error = %v", err)
	}
	var titles []string
	for _, info := range infos {
		titles = append(titles, info.Title)
	}
	if !slices.Equal(titles, []string{"First", "Second"}) {
		t.Errorf("titles = %v", titles)
	}
}

func TestDecodeInfosMalformed(t *testing.T) {
	if _, err := DecodeInfos("{not json\n"); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestInfoLabels(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"resolution", Info{Resolution: "1280x720", Height: 720}, "1280x720"},
		{"height fallback", Info{Height: 480}, "480p"},
		{"audio only", Info{Resolution: "audio only"}, "audio only"},
		{"unknown", Info{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.ResolutionLabel(); got != tt.want {
				t.Errorf("ResolutionLabel() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := (Info{}).FormatLabel(); got != "Unknown" {
		t.Errorf("FormatLabel() = %q", got)
	}
}

func TestInfoOutputPath(t *testing.T) {
	info := Info{
		Filename:           "Videos/clip.webm",
		RequestedDownloads: []RequestedDownload{{Filepath: "Videos/clip.mp4"}},
	}
	if got := info.OutputPath(); got != "Videos/clip.mp4" {
		t.Errorf("OutputPath() = %q", got)
	}
	if got := (Info{LegacyFilename: "x.mp4"}).OutputPath(); got != "x.mp4" {
		t.Errorf("OutputPath() legacy = %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	if got := (Format{Filesize: 10, FilesizeApprox: 20}).Size(); got != 10 {
		t.Errorf("Size() = %d, want 10", got)
	}
	if got := (Format{FilesizeApprox: 20}).Size(); got != 20 {
		t.Errorf("Size() = %d, want 20", got)
	}
}

func TestClientProbe(t *testing.T) {
	fakeBin := writeFakeYtdlp(t, `echo '{"id":"abc","title":"Example","formats":[{"format_id":"137","ext":"mp4","vcodec":"avc1","acodec":"none","height":1080},{"format_id":"140","ext":"m4a","vcodec":"none","acodec":"mp4a","abr":129.5}]}'
`)
	info, err := NewClient(fakeBin, "").Probe(context.Background(), "https://example.com/watch?v=abc")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Title != "Example" {
		t.Errorf("title = %q", info.Title)
	}
	if len(info.Formats) != 2 || info.Formats[1].ABR != 129.5 {
		t.Errorf("unexpected formats %+v", info.Formats)
	}
}

func TestClientProbeFailure(t *testing.T) {
	fakeBin := writeFakeYtdlp(t, `echo "ERROR: Unsupported URL" >&2
exit 1
`)
	_, err := NewClient(fakeBin, "").Probe(context.Background(), "not-a-url")
	if !errors.Is(err, ErrProbeFailed) {
		t.Fatalf("expected ErrProbeFailed, got %v", err)
	}
}

func TestClientProbeEmptyOutput(t *testing.T) {
	fakeBin := writeFakeYtdlp(t, "exit 0\n")
	_, err := NewClient(fakeBin, "").Probe(context.Background(), "https://example.com/empty")
	if !errors.Is(err, ErrProbeFailed) {
		t.Fatalf("expected ErrProbeFailed, got %v", err)
	}
}

func TestClientDownloadPassesOptions(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	fakeBin := writeFakeYtdlp(t, `printf '%s\n' "$@" > '`+argsFile+`'
echo '{"id":"abc","title":"Example","height":720,"format_id":"22","vcodec":"avc1","acodec":"mp4a"}'
`)
	opts := Options{
		Format:                 "best[height<=720]",
		OutputTemplate:         "Videos/%(title)s.%(ext)s",
		MergeFormat:            "mp4",
		Retries:                10,
		ExternalDownloader:     "aria2c",
		ExternalDownloaderArgs: "-x 16 -k 1M",
	}
	infos, err := NewClient(fakeBin, "http://proxy.local:3128").Download(context.Background(), "https://example.com/watch?v=abc", opts)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if len(infos) != 1 || infos[0].ResolutionLabel() != "720p" {
		t.Fatalf("unexpected infos %+v", infos)
	}

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	for _, want := range []string{"best[height<=720]", "Videos/%(title)s.%(ext)s", "--no-playlist", "--downloader", "aria2c", "aria2c:-x 16 -k 1M", "--proxy", "http://proxy.local:3128", "https://example.com/watch?v=abc"} {
		if !slices.Contains(args, want) {
			t.Errorf("args %v missing %q", args, want)
		}
	}
}

func TestClientDownloadWithoutExternalDownloader(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	fakeBin := writeFakeYtdlp(t, `printf '%s\n' "$@" > '`+argsFile+`'
`)
	_, err := NewClient(fakeBin, "").Download(context.Background(), "https://example.com/list", Options{Format: "best", Playlist: true})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if slices.Contains(args, "--downloader") {
		t.Errorf("unexpected --downloader in %v", args)
	}
	if slices.Contains(args, "--proxy") {
		t.Errorf("unexpected --proxy in %v", args)
	}
	if !slices.Contains(args, "--yes-playlist") {
		t.Errorf("expected --yes-playlist in %v", args)
	}
}

func TestClientDownloadFailure(t *testing.T) {
	fakeBin := writeFakeYtdlp(t, `echo "ERROR: Video unavailable" >&2
exit 1
`)
	_, err := NewClient(fakeBin, "").Download(context.Background(), "https://example.com/gone", Options{Format: "best"})
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}
