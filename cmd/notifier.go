package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/glsllint/internal/output"
)

// consoleNotifier shows the validator-path warning on a terminal stream.
// Repeated Show calls with the same message print once.
type consoleNotifier struct {
	w     io.Writer
	style lipgloss.Style

	mu    sync.Mutex
	shown string
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	style := lipgloss.NewStyle()
	if output.IsTerminal(w) {
		style = style.Foreground(lipgloss.Color("3")).Bold(true)
	}
	return &consoleNotifier{w: w, style: style}
}

func (n *consoleNotifier) Show(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.shown == msg {
		return
	}
	n.shown = msg
	fmt.Fprintln(n.w, n.style.Render("⚠ "+msg))
}

func (n *consoleNotifier) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = ""
}
