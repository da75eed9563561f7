package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ahmadoasif/YT-Downloader/internal/format"
	"github.com/ahmadoasif/YT-Downloader/internal/output"
	"github.com/ahmadoasif/YT-Downloader/internal/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

// ErrNoAnswer means the operator gave no answer: input closed or the prompt timed out.
var ErrNoAnswer = errors.New("no answer from operator")

type line struct {
	text string
	err  error
}

// Prompter gathers raw answers from the operator. Decisions on those answers
// are made by the format package.
type Prompter struct {
	in      io.Reader
	out     io.Writer
	timeout time.Duration

	once  sync.Once
	lines chan line
}

// New returns a Prompter reading from in and writing questions to out.
// A zero timeout waits forever.
func New(in io.Reader, out io.Writer, timeout time.Duration) *Prompter {
	return &Prompter{in: in, out: out, timeout: timeout}
}

func (p *Prompter) pump() {
	p.lines = make(chan line)
	go func() {
		defer close(p.lines)
		reader := bufio.NewReader(p.in)
		for {
			text, err := reader.ReadString('\n')
			if text != "" || err == nil {
				p.lines <- line{text: strings.TrimRight(text, "\r\n")}
			}
			if err != nil {
				p.lines <- line{err: err}
				return
			}
		}
	}()
}

// Ask prints question and waits for one line of input.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	p.once.Do(p.pump)
	fmt.Fprint(p.out, output.FInfo(question))

	var timeout <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case l, ok := <-p.lines:
		if !ok {
			return "", fmt.Errorf("%w: input closed", ErrNoAnswer)
		}
		if l.err != nil {
			fmt.Fprintln(p.out)
			return "", fmt.Errorf("%w: %v", ErrNoAnswer, l.err)
		}
		return strings.TrimSpace(l.text), nil
	case <-timeout:
		fmt.Fprintln(p.out)
		return "", fmt.Errorf("%w: timed out after %s", ErrNoAnswer, p.timeout)
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	}
}

func (p *Prompter) AskKind(ctx context.Context) (format.Kind, error) {
	raw, err := p.Ask(ctx, "Download as (1) video or (2) audio? ")
	if err != nil {
		return "", err
	}
	return format.ResolveKind(raw)
}

// ChooseFormat shows the candidates as a numbered table and returns the
// chosen format id.
func (p *Prompter) ChooseFormat(ctx context.Context, cands []format.Candidate) (string, error) {
	if len(cands) == 0 {
		return "", format.ErrNoCandidates
	}
	RenderCandidates(p.out, cands)
	raw, err := p.Ask(ctx, fmt.Sprintf("Enter the number of the format to download (1-%d): ", len(cands)))
	if err != nil {
		return "", err
	}
	id, err := format.ResolveChoice(cands, raw)
	if err != nil {
		return "", err
	}
	log.Debug().Str("op", "prompt/choose").Msgf("Operator picked format %s", id)
	return id, nil
}

// AskDestination asks for the save directory; an empty answer keeps def.
func (p *Prompter) AskDestination(ctx context.Context, def string) (string, error) {
	raw, err := p.Ask(ctx, fmt.Sprintf("Save to directory [%s]: ", def))
	if err != nil {
		return "", err
	}
	return utils.FirstNonEmpty(raw, def), nil
}

// RenderCandidates writes the numbered candidate table.
func RenderCandidates(w io.Writer, cands []format.Candidate) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "ID", "Ext", "Quality", "Size", "Note"})
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	for i, c := range cands {
		size := "?"
		if c.SizeBytes > 0 {
			size = utils.FormatBytes(uint64(c.SizeBytes))
		}
		note := c.Note
		if c.Kind == format.KindVideo && !c.HasAudio {
			note = strings.TrimSpace(note + " (video only)")
		}
		table.Append([]string{fmt.Sprint(i + 1), c.ID, c.Container, c.QualityLabel(), size, note})
	}
	table.Render()
}
