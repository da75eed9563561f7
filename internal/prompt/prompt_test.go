package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ahmadoasif/YT-Downloader/internal/format"
)

var cands = []format.Candidate{
	{ID: "137", Kind: format.KindVideo, Quality: 1080, Container: "mp4", SizeBytes: 3_400_000, Note: "1080p"},
	{ID: "22", Kind: format.KindVideo, Quality: 720, Container: "mp4", HasAudio: true},
	{ID: "18", Kind: format.KindVideo, Quality: 360, Container: "mp4", HasAudio: true},
}

func TestAskReadsLinesInOrder(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("first\n  second \r\n"), &out, 0)
	for _, want := range []string{"first", "second"} {
		got, err := p.Ask(context.Background(), "? ")
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		if got != want {
			t.Errorf("Ask() = %q, want %q", got, want)
		}
	}
	if _, err := p.Ask(context.Background(), "? "); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer after input closed, got %v", err)
	}
}

func TestAskLastLineWithoutNewline(t *testing.T) {
	p := New(strings.NewReader("2"), io.Discard, 0)
	got, err := p.Ask(context.Background(), "? ")
	if err != nil || got != "2" {
		t.Fatalf("Ask() = %q, %v", got, err)
	}
}

func TestAskTimeout(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	p := New(reader, io.Discard, 20*time.Millisecond)
	_, err := p.Ask(context.Background(), "? ")
	if !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected ErrNoAnswer on timeout, got %v", err)
	}
}

func TestAskCancelled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(reader, io.Discard, 0)
	if _, err := p.Ask(ctx, "? "); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAskKind(t *testing.T) {
	p := New(strings.NewReader("audio\nx\n"), io.Discard, 0)
	kind, err := p.AskKind(context.Background())
	if err != nil || kind != format.KindAudio {
		t.Fatalf("AskKind() = %q, %v", kind, err)
	}
	if _, err := p.AskKind(context.Background()); !errors.Is(err, format.ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestChooseFormat(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("2\n"), &out, 0)
	id, err := p.ChooseFormat(context.Background(), cands)
	if err != nil {
		t.Fatalf("ChooseFormat() error = %v", err)
	}
	if id != "22" {
		t.Errorf("ChooseFormat() = %q, want 22", id)
	}
	table := out.String()
	for _, want := range []string{"137", "1080p", "video only", "1-3"} {
		if !strings.Contains(table, want) {
			t.Errorf("output missing %q:\n%s", want, table)
		}
	}
}

func TestChooseFormatInvalid(t *testing.T) {
	for _, input := range []string{"0\n", "4\n", "abc\n", "\n"} {
		p := New(strings.NewReader(input), io.Discard, 0)
		if _, err := p.ChooseFormat(context.Background(), cands); !errors.Is(err, format.ErrInvalidChoice) {
			t.Errorf("input %q: expected ErrInvalidChoice, got %v", input, err)
		}
	}
}

func TestChooseFormatNoCandidates(t *testing.T) {
	p := New(strings.NewReader("1\n"), io.Discard, 0)
	if _, err := p.ChooseFormat(context.Background(), nil); !errors.Is(err, format.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestAskDestination(t *testing.T) {
	p := New(strings.NewReader("\n/tmp/media\n"), io.Discard, 0)
	got, err := p.AskDestination(context.Background(), "downloads")
	if err != nil || got != "downloads" {
		t.Fatalf("AskDestination() = %q, %v", got, err)
	}
	got, err = p.AskDestination(context.Background(), "downloads")
	if err != nil || got != "/tmp/media" {
		t.Fatalf("AskDestination() = %q, %v", got, err)
	}
}
