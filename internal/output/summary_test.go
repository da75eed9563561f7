package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPrintBatchSummaryAllSucceeded(t *testing.T) {
	var buf bytes.Buffer
	PrintBatchSummary(&buf, 3, nil)

	got := buf.String()
	if !strings.Contains(got, "Completed 3 of 3") {
		t.Errorf("expected completion count, got %q", got)
	}
	if strings.Contains(got, "Failed") || strings.Contains(got, "Errors:") {
		t.Errorf("expected no failure section, got %q", got)
	}
}

func TestPrintBatchSummaryWithFailures(t *testing.T) {
	var buf bytes.Buffer
	errs := []ErrorReport{
		{Item: "https://example.com/watch?v=2", Error: errors.New("yt-dlp exited with code 1"), Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}
	PrintBatchSummary(&buf, 3, errs)

	got := buf.String()
	for _, want := range []string{"Completed 2 of 3", "Failed 1 of 3", "Errors:", "Item: https://example.com/watch?v=2", "Error: yt-dlp exited with code 1", "[10:30:00]"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q in %q", want, got)
		}
	}
}
