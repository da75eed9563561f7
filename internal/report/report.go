package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ahmadoasif/YT-Downloader/internal/output"
	"github.com/ahmadoasif/YT-Downloader/internal/scheduler"
	"github.com/ahmadoasif/YT-Downloader/internal/utils"
	"github.com/rs/zerolog/log"
)

const timestampLayout = "2006-01-02 15:04:05"

// Summarize renders the operator-facing text for one result.
func Summarize(r scheduler.Result) string {
	var b strings.Builder
	if !r.Succeeded {
		fmt.Fprintf(&b, "Download failed: %s\n", r.URL)
		fmt.Fprintf(&b, "Reason: %s\n", r.Failure)
		if r.Err != nil {
			fmt.Fprintf(&b, "Error: %v\n", r.Err)
		}
		writeMedia(&b, r.Media)
		return b.String()
	}
	entries := r.Entries
	if len(entries) == 0 {
		entries = []scheduler.Media{r.Media}
	}
	b.WriteString("Download Summary:\n")
	for i, m := range entries {
		if i > 0 {
			b.WriteString(strings.Repeat("-", 40) + "\n")
		}
		writeMedia(&b, m)
	}
	return b.String()
}

func writeMedia(b *strings.Builder, m scheduler.Media) {
	fmt.Fprintf(b, "Title: %s\n", orUnknown(m.Title))
	fmt.Fprintf(b, "Format: %s\n", orUnknown(m.FormatID))
	fmt.Fprintf(b, "Resolution: %s\n", orUnknown(m.Resolution))
	fmt.Fprintf(b, "Audio: %s\n", yesNo(m.HasAudio))
	fmt.Fprintf(b, "Video: %s\n", yesNo(m.HasVideo))
}

// LogLine is the persistent log record for a downloaded item.
func LogLine(m scheduler.Media, at time.Time) string {
	return fmt.Sprintf("[%s] Title: %s | Resolution: %s | Format: %s",
		at.Format(timestampLayout), orUnknown(m.Title), orUnknown(m.Resolution), orUnknown(m.FormatID))
}

func FailureLine(url string, err error, at time.Time) string {
	msg := "unknown error"
	if err != nil {
		msg = strings.ReplaceAll(err.Error(), "\n", " ")
	}
	return fmt.Sprintf("[%s] FAILED: %s | Error: %s", at.Format(timestampLayout), url, msg)
}

// Reporter prints per-item summaries and appends to the log file.
type Reporter struct {
	path        string
	logFailures bool
	out         io.Writer
	now         func() time.Time

	mu     sync.Mutex
	total  int
	errors []output.ErrorReport
}

// NewReporter logs successes to path, and failures too when logFailures is set.
func NewReporter(path string, logFailures bool, out io.Writer) *Reporter {
	return &Reporter{path: path, logFailures: logFailures, out: out, now: time.Now}
}

// AppendLog opens the log, appends one line for m and closes it again.
func (rp *Reporter) AppendLog(m scheduler.Media, at time.Time) error {
	return rp.appendLine(LogLine(m, at))
}

func (rp *Reporter) AppendFailure(url string, err error, at time.Time) error {
	return rp.appendLine(FailureLine(url, err, at))
}

func (rp *Reporter) appendLine(line string) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	f, err := os.OpenFile(rp.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		f.Close()
		return fmt.Errorf("error writing log file: %w", err)
	}
	return f.Close()
}

// Handle prints the summary for r and records it in the log. Results must
// arrive in input order.
func (rp *Reporter) Handle(r scheduler.Result) {
	at := rp.now()
	rp.mu.Lock()
	rp.total++
	if !r.Succeeded {
		rp.errors = append(rp.errors, output.ErrorReport{Item: r.URL, Error: r.Err, Time: at})
	}
	rp.mu.Unlock()

	if r.Succeeded {
		fmt.Fprint(rp.out, output.FSuccess(Summarize(r)))
	} else {
		fmt.Fprint(rp.out, output.FError(Summarize(r)))
	}
	fmt.Fprintln(rp.out, output.Rule(40))

	switch {
	case r.Succeeded:
		entries := r.Entries
		if len(entries) == 0 {
			entries = []scheduler.Media{r.Media}
		}
		for _, m := range entries {
			if err := rp.AppendLog(m, at); err != nil {
				log.Warn().Str("op", "report/handle").Msgf("Could not write log entry: %v", err)
			}
		}
	case rp.logFailures:
		if err := rp.AppendFailure(r.URL, r.Err, at); err != nil {
			log.Warn().Str("op", "report/handle").Msgf("Could not write log entry: %v", err)
		}
	}
}

// Finish prints the batch totals.
func (rp *Reporter) Finish() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	output.PrintBatchSummary(rp.out, rp.total, rp.errors)
	log.Debug().Str("op", "report/finish").Msgf("Log written to %s", utils.FirstNonEmpty(rp.path, "(none)"))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
