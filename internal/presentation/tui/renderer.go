package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders a document body as styled
// terminal markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return glamour.Render(markdown, "dark")
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
