package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type ErrorReport struct {
	Item  string
	Error error
	Time  time.Time
}

// PrintBatchSummary writes the end-of-run totals followed by a numbered list
// of failed items.
func PrintBatchSummary(w io.Writer, total int, errs []ErrorReport) {
	success := total - len(errs)
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat(" ", 2)+success2Style.Render(fmt.Sprintf("Completed %d of %d", success, total)))
	if len(errs) > 0 {
		fmt.Fprintln(w, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed %d of %d", len(errs), total)))
	}
	displayErrors(w, errs)
	fmt.Fprintln(w)
}

func displayErrors(w io.Writer, errs []ErrorReport) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, err := range errs {
		fmt.Fprintf(w, "%s%s %s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", err.Time.Format("15:04:05"))),
			errorStyle.Render(fmt.Sprintf("Item: %s", err.Item)))
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", err.Error)))
	}
}
