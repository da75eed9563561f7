package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ahmadoasif/YT-Downloader/internal/extractor"
)

var (
	ErrInvalidChoice = errors.New("invalid choice")
	ErrNoCandidates  = errors.New("no downloadable formats of the requested kind")
)

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Candidate is one probed format offered to the operator. Zero Quality or
// SizeBytes means the probe did not report it.
type Candidate struct {
	ID        string
	Kind      Kind
	Quality   float64 // height for video, bitrate in kbps for audio
	Container string
	SizeBytes int64
	Note      string
	HasAudio  bool
}

// QualityLabel renders Quality for display.
func (c Candidate) QualityLabel() string {
	if c.Quality <= 0 {
		return "?"
	}
	if c.Kind == KindVideo {
		return fmt.Sprintf("%dp", int(c.Quality))
	}
	return fmt.Sprintf("%.0fk", c.Quality)
}

// ListCandidates keeps the probed formats of the requested kind, in probe order.
func ListCandidates(formats []extractor.Format, kind Kind) []Candidate {
	candidates := []Candidate{}
	for _, f := range formats {
		video := isVideo(f)
		switch {
		case kind == KindVideo && video:
			candidates = append(candidates, Candidate{
				ID:        f.FormatID,
				Kind:      KindVideo,
				Quality:   f.Height,
				Container: f.Ext,
				SizeBytes: f.Size(),
				Note:      f.FormatNote,
				HasAudio:  hasCodec(f.ACodec),
			})
		case kind == KindAudio && !video && f.ACodec != "none":
			candidates = append(candidates, Candidate{
				ID:        f.FormatID,
				Kind:      KindAudio,
				Quality:   firstPositive(f.ABR, f.TBR),
				Container: f.Ext,
				SizeBytes: f.Size(),
				Note:      f.FormatNote,
				HasAudio:  true,
			})
		}
	}
	return candidates
}

// isVideo trusts an explicit "none" video_ext over a reported height, which
// keeps storyboard image formats out of the video list.
func isVideo(f extractor.Format) bool {
	if hasCodec(f.VCodec) {
		return true
	}
	if f.VideoExt == "none" || f.Ext == "mhtml" {
		return false
	}
	if f.Height > 0 {
		return true
	}
	return f.VideoExt != "" && f.VideoExt != "none"
}

func hasCodec(codec string) bool {
	return codec != "" && codec != "none"
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// ResolveChoice maps a 1-based operator answer onto a candidate's format id.
func ResolveChoice(candidates []Candidate, raw string) (string, error) {
	selection, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidChoice, raw)
	}
	if selection < 1 || selection > len(candidates) {
		return "", fmt.Errorf("%w: %d is out of range 1-%d", ErrInvalidChoice, selection, len(candidates))
	}
	return candidates[selection-1].ID, nil
}

// ResolveKind maps the operator's media kind answer.
func ResolveKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "v", "video":
		return KindVideo, nil
	case "2", "a", "audio":
		return KindAudio, nil
	}
	return "", fmt.Errorf("%w: %q is not a media kind", ErrInvalidChoice, raw)
}

// SpecForCandidate builds the format argument for an operator-picked id.
// Video-only streams get the best audio merged in.
func SpecForCandidate(c Candidate, container string) string {
	if c.Kind == KindAudio || c.HasAudio {
		return c.ID
	}
	container = strings.ToLower(strings.TrimSpace(container))
	parts := []string{}
	if src, ok := sourceFor[container]; ok {
		parts = append(parts, fmt.Sprintf("%s+bestaudio[ext=%s]", c.ID, src.audio))
	}
	parts = append(parts, c.ID+"+bestaudio", c.ID)
	return strings.Join(parts, Separator)
}
