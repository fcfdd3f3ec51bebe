// Package export renders the list as a Markdown checklist.
package export

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

// Options tune the Markdown output.
type Options struct {
	Title       string
	PendingOnly bool
}

// Markdown writes one section per category, sorted by name, with a task-list
// line per item.
func Markdown(snap store.Snapshot, opt Options) string {
	var b strings.Builder
	title := opt.Title
	if title == "" {
		title = "Shopping list"
	}
	fmt.Fprintf(&b, "# %s\n", title)

	cats := make([]string, 0, len(snap))
	for c := range snap {
		cats = append(cats, c)
	}
	slices.Sort(cats)

	written := 0
	for _, c := range cats {
		var lines []string
		for _, it := range snap[c] {
			if opt.PendingOnly && it.Purchased {
				continue
			}
			box := " "
			if it.Purchased {
				box = "x"
			}
			line := fmt.Sprintf("- [%s] %s × %s", box, model.FormatQuantity(it.Quantity), escape(it.Name))
			if it.Translation != "" && it.Translation != it.Name {
				line += fmt.Sprintf(" _(%s)_", escape(it.Translation))
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s (%d)\n\n%s\n", escape(c), len(lines), strings.Join(lines, "\n"))
		written++
	}
	if written == 0 {
		b.WriteString("\n_Nothing to buy._\n")
	}
	return b.String()
}

// Render formats Markdown for the terminal.
func Render(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

var mdEscaper = strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`)

func escape(s string) string { return mdEscaper.Replace(s) }
