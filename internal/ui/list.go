package ui

import (
	"fmt"
	"slices"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

// ListOptions tune the `ls` panel.
type ListOptions struct {
	PendingOnly bool
	Lang        string
	NameWidth   int // names longer than this are cut; 0 means 60
}

// Stats counts purchased and pending items.
func Stats(snap store.Snapshot) (purchased, pending int) {
	for _, items := range snap {
		for _, it := range items {
			if it.Purchased {
				purchased++
			} else {
				pending++
			}
		}
	}
	return
}

// ListLines renders the list for Panel. Item numbers follow rendering order
// over the whole list, also when purchased items are hidden, so they can be
// passed to `done` and `rm` as shown.
func ListLines(snap store.Snapshot, opt ListOptions) []string {
	t := Current()
	d, p := Stats(snap)
	title := "Shopping list"
	if opt.Lang != "" {
		title += " (" + opt.Lang + ")"
	}
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, title),
		C(t.Success, t.SymDone), d,
		C(t.Pending, t.SymPending), p,
		C(t.Accent, "Total"), d+p,
	)
	lines := []string{
		header,
		C(t.Muted, ProgressBar(d, d+p, 28)),
		"",
	}

	cats := make([]string, 0, len(snap))
	for c := range snap {
		cats = append(cats, c)
	}
	slices.Sort(cats)

	n, shown := 0, 0
	for _, c := range cats {
		var body []string
		for _, it := range snap[c] {
			n++
			if opt.PendingOnly && it.Purchased {
				continue
			}
			body = append(body, itemLine(n, it, opt.NameWidth))
		}
		if len(body) == 0 {
			continue
		}
		if shown > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, categoryLine(c, snap[c], len(body)))
		lines = append(lines, body...)
		shown++
	}
	if shown == 0 {
		msg := "no items"
		if opt.PendingOnly && n > 0 {
			msg = "everything bought"
		}
		lines = append(lines, C(t.Muted, msg))
	}
	lines = append(lines, "", C(t.Muted, "Tip: add with `shoplist add \"2kg rice\"`"))
	return lines
}

func categoryLine(name string, items []model.Item, count int) string {
	icon := ""
	for _, it := range items {
		if it.Icon != "" {
			icon = it.Icon + " "
			break
		}
	}
	return fmt.Sprintf("%s%s %s", icon, C(Current().Accent, name), C(Current().Muted, fmt.Sprintf("(%d)", count)))
}

func itemLine(n int, it model.Item, width int) string {
	t := Current()
	if width <= 0 {
		width = 60
	}
	box, color := t.BoxUnchecked, ""
	if it.Purchased {
		box, color = t.BoxChecked, t.Success
	}
	name := truncate(it.Name, width)
	text := fmt.Sprintf("%s %s %s", model.FormatQuantity(it.Quantity), t.SymTimes, name)
	if it.Translation != "" && it.Translation != it.Name {
		text += " " + C(t.Muted, "("+truncate(it.Translation, width)+")")
	}
	if it.IsNew {
		text += " " + C(t.New, "new")
	}
	return fmt.Sprintf("%s %s %s", C(dim, fmt.Sprintf("%2d.", n)), C(color, box), text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
