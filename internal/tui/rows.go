package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/store"
)

// headerRow starts a category block.
type headerRow struct {
	name   string
	icon   string
	count  int
	bought int
}

func (h headerRow) FilterValue() string { return h.name }

// itemRow is one item; pos is its index inside the category.
type itemRow struct {
	category string
	pos      int
	item     model.Item
}

func (r itemRow) FilterValue() string { return r.item.Name }

func (r itemRow) ref() shoplist.Ref {
	return shoplist.Ref{Category: r.category, ID: r.item.ID}
}

// rowKey identifies a row across rebuilds.
func rowKey(li list.Item) string {
	switch r := li.(type) {
	case headerRow:
		return headerKey(r.name)
	case itemRow:
		return r.item.ID
	}
	return ""
}

func headerKey(category string) string { return "#" + category }

func sortedCategories(snap store.Snapshot) []string {
	cats := make([]string, 0, len(snap))
	for c := range snap {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// buildRows lays the snapshot out as headers followed by their items.
func buildRows(snap store.Snapshot) []list.Item {
	var rows []list.Item
	for _, c := range sortedCategories(snap) {
		items := snap[c]
		h := headerRow{name: c, count: len(items)}
		for _, it := range items {
			if h.icon == "" {
				h.icon = it.Icon
			}
			if it.Purchased {
				h.bought++
			}
		}
		rows = append(rows, h)
		for i, it := range items {
			rows = append(rows, itemRow{category: c, pos: i, item: it})
		}
	}
	return rows
}

// Custom delegate to control how rows render (single line)
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	var line string
	switch r := li.(type) {
	case headerRow:
		name := r.name
		if r.icon != "" {
			name = r.icon + " " + name
		}
		line = accentStyle.Render(name) + mutedStyle.Render(fmt.Sprintf(" (%d/%d)", r.bought, r.count))
	case itemRow:
		line = "  " + itemLine(r.item)
	}
	fmt.Fprint(w, prefix+line)
}

func itemLine(it model.Item) string {
	box := mutedStyle.Render(boxUnchecked)
	text := fmt.Sprintf("%s × %s", model.FormatQuantity(it.Quantity), it.Name)
	if it.Purchased {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	line := box + " " + text
	if it.Translation != "" && it.Translation != it.Name {
		line += " " + mutedStyle.Render("("+it.Translation+")")
	}
	if it.IsNew {
		line += " " + newStyle.Render("new")
	}
	return line
}

// title is the list header with live counts.
func title(snap store.Snapshot, lang string) string {
	var done, pending int
	for _, items := range snap {
		for _, it := range items {
			if it.Purchased {
				done++
			} else {
				pending++
			}
		}
	}
	t := "Shopping list"
	if lang != "" {
		t += " (" + strings.ToLower(lang) + ")"
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render(t),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), done+pending,
	)
}
