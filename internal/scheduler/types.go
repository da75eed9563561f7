package scheduler

import (
	"context"
	"errors"

	"github.com/ahmadoasif/YT-Downloader/internal/extractor"
	"github.com/ahmadoasif/YT-Downloader/internal/format"
	"github.com/ahmadoasif/YT-Downloader/internal/prompt"
)

// Failure classifies why a URL did not download.
type Failure int

const (
	FailureNone Failure = iota
	FailureProbe
	FailureInvalidChoice
	FailureNoCandidates
	FailureExternalTool
	FailureDestination
	FailureCancelled
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureProbe:
		return "probe failed"
	case FailureInvalidChoice:
		return "invalid choice"
	case FailureNoCandidates:
		return "no candidates of kind"
	case FailureExternalTool:
		return "external tool failure"
	case FailureDestination:
		return "destination unavailable"
	case FailureCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Media describes one downloaded item.
type Media struct {
	Title      string
	Resolution string
	FormatID   string
	HasAudio   bool
	HasVideo   bool
	Filename   string
}

// Result is the outcome for one input URL. Playlists yield several Entries;
// Media is the first of them.
type Result struct {
	Index     int
	URL       string
	Media     Media
	Entries   []Media
	Succeeded bool
	Failure   Failure
	Err       error
}

// Prompter is the operator dialogue used in interactive mode.
type Prompter interface {
	AskKind(ctx context.Context) (format.Kind, error)
	ChooseFormat(ctx context.Context, cands []format.Candidate) (string, error)
	AskDestination(ctx context.Context, def string) (string, error)
}

func classify(ctx context.Context, err error) Failure {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCancelled
	case errors.Is(err, extractor.ErrProbeFailed):
		return FailureProbe
	case errors.Is(err, format.ErrInvalidChoice), errors.Is(err, prompt.ErrNoAnswer):
		return FailureInvalidChoice
	case errors.Is(err, format.ErrNoCandidates):
		return FailureNoCandidates
	case errors.Is(err, errDestination):
		return FailureDestination
	}
	return FailureExternalTool
}
