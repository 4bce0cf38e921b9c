// Package cliui holds the terminal styling shared by the lokallens commands:
// the palette, status marks, the spinner step and markdown replies.
package cliui

import (
	"fmt"
	"io"
	"os"
	"time"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
)

// Palette. Keys and names are warm, values and previews neutral.
var (
	green  = lipgloss.Color("82")
	red    = lipgloss.Color("196")
	grey   = lipgloss.Color("245")
	amber  = lipgloss.Color("214")
	white  = lipgloss.Color("255")
	sky    = lipgloss.Color("39")
	violet = lipgloss.Color("141")
	silver = lipgloss.Color("252")
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(green).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(red).Render("✗")

	DimStyle     = lipgloss.NewStyle().Foreground(grey)
	KeyStyle     = lipgloss.NewStyle().Foreground(amber).Bold(true)
	ValueStyle   = lipgloss.NewStyle().Foreground(white)
	NameStyle    = lipgloss.NewStyle().Foreground(sky).Bold(true)
	RoleStyle    = lipgloss.NewStyle().Foreground(violet)
	PreviewStyle = lipgloss.NewStyle().Foreground(silver)
)

// Mark is SuccessMark for a nil error and FailMark otherwise.
func Mark(err error) string {
	if err == nil {
		return SuccessMark
	}
	return FailMark
}

// FormatDuration prints milliseconds under a second and tenths of a second
// above, e.g. "12ms" and "3.2s".
func FormatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
