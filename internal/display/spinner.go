package display

import (
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress while the model is thinking.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a stopped spinner with the given label.
func NewSpinner(label string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + label
	return &Spinner{s: s}
}

// Start begins the animation.
func (sp *Spinner) Start() { sp.s.Start() }

// Stop ends the animation and clears the line.
func (sp *Spinner) Stop() { sp.s.Stop() }
