package cliui

import (
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
)

const spinnerInterval = 80 * time.Millisecond

var (
	spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	spinnerStyle  = lipgloss.NewStyle().Foreground(green)
)

// Step runs fn and finishes with one line holding its mark, msg and the
// elapsed time. On a terminal a spinner is drawn on that line meanwhile.
func Step(w io.Writer, msg string, fn func() error) error {
	stop := func() {}
	if IsTerminal(w) {
		stop = spin(w, msg)
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	stop()
	fmt.Fprintf(w, "\r  %s %s %s\n", Mark(err), msg, DimStyle.Render("("+FormatDuration(elapsed)+")"))

	return err
}

// spin redraws the spinner until the returned func is called. The func
// returns once the last frame has been written.
func spin(w io.Writer, msg string) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			fmt.Fprintf(w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), msg)
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
