// Package render turns portfolio views into markdown and styles it for the terminal.
package render

import (
	"sort"

	"github.com/charmbracelet/glamour"
)

const AutoStyle = "auto"

// Terminal styles markdown with glamour. "auto" follows the terminal background,
// any other value is a glamour standard style name such as dark, light or notty.
func Terminal(markdown, style string) (string, error) {
	opt := glamour.WithStandardStyle(style)
	if style == "" || style == AutoStyle {
		opt = glamour.WithAutoStyle()
	}

	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(120))
	if err != nil {
		return "", err
	}

	return r.Render(markdown)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
