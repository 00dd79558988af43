package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer formats an answer for display.
type Renderer func(string) (string, error)

// Plain returns text unchanged.
func Plain(s string) (string, error) {
	return s, nil
}

// NewRenderer returns a glamour markdown renderer, or Plain when the
// renderer cannot be created.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return Plain
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RendererFor picks the markdown renderer for terminals and Plain otherwise,
// so piped output stays free of escape sequences.
func RendererFor(f *os.File) Renderer {
	if IsInteractive(f) {
		return NewRenderer()
	}
	return Plain
}
