package display

import (
	"github.com/charmbracelet/glamour"
)

// Markdown renders the model's final answer. When the terminal renderer
// cannot be built or rendering fails, the raw text comes back unchanged so
// an answer is never lost to a styling problem.
func Markdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
