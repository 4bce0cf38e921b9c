package cliui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultWrapWidth = 80
	maxWrapWidth     = 100
)

// WrapWidth is the column markdown replies are wrapped at for w: the
// terminal width capped at 100, or 80 when w is not a terminal.
func WrapWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWrapWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWrapWidth
	}
	return min(width, maxWrapWidth)
}

// RenderMarkdown renders a reply for the terminal, wrapped at width.
// On failure the raw content is returned alongside the error.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = defaultWrapWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}
