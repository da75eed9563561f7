package output

import (
	"os"
	"strings"

	"golang.org/x/term"
)

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}

// Rule returns a horizontal separator no wider than the terminal.
func Rule(width int) string {
	if tw := getTerminalWidth(); width > tw {
		width = tw
	}
	return strings.Repeat("-", width)
}

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
