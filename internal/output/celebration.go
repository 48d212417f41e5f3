package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// printCelebration shows a short sparkle animation for a clean run.
// Only used on terminals; the frames rewrite the current line.
func printCelebration(w io.Writer, msg string) {
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bold := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)

	frames := []struct {
		text  string
		delay time.Duration
	}{
		{green.Render(msg), 150 * time.Millisecond},
		{yellow.Render("✨ " + msg + " ✨"), 200 * time.Millisecond},
		{bold.Render(msg), 0},
	}

	for i, frame := range frames {
		if i > 0 {
			fmt.Fprint(w, "\r\033[K")
		}
		fmt.Fprint(w, frame.text)
		if frame.delay > 0 {
			time.Sleep(frame.delay)
		}
	}
	fmt.Fprintln(w)
}
