package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WriteMarkdown renders markdown with glamour when w is a terminal and
// writes it verbatim otherwise.
func WriteMarkdown(w io.Writer, markdown string) error {
	if IsTerminal(w) {
		rendered, err := NewRenderer()(markdown)
		if err == nil {
			markdown = rendered
		}
	}
	_, err := io.WriteString(w, markdown)
	return err
}
