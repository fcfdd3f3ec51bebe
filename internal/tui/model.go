// Package tui is the interactive shopping list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/shoplist"
)

const (
	// newHighlight is how long a freshly added item stays marked.
	newHighlight = 300 * time.Millisecond
	// ignoreWindow hides our own saves from the file watcher.
	ignoreWindow = 500 * time.Millisecond
)

// changeSource reports changes to the data file made by other processes.
type changeSource interface {
	Events() <-chan struct{}
	Ignore(d time.Duration)
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEditItem
	modeRenameCategory
)

// deleted is the single-level undo buffer.
type deleted struct {
	category string
	pos      int
	item     model.Item
}

// doneMsg reports a finished service call.
type doneMsg struct {
	focus  string
	status string
	err    error
	added  []string
	undo   *deleted
}

type changedOnDiskMsg struct{}

type seenMsg struct{ ids []string }

type modelTUI struct {
	ctx     context.Context
	svc     *shoplist.Service
	log     *zap.Logger
	watcher changeSource

	list list.Model

	// Inline add / edit share one text input
	mode     mode
	ti       textinput.Model
	inputErr string
	editRef  shoplist.Ref
	editCat  string

	undo *deleted

	status    string
	statusErr bool

	width, height int
}

func newModel(ctx context.Context, svc *shoplist.Service, log *zap.Logger, w changeSource) modelTUI {
	if log == nil {
		log = zap.NewNop()
	}
	l := list.New(nil, rowDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	// d and u belong to delete and undo
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")
	l.KeyMap.PrevPage.SetKeys("left", "h", "pgup", "b")
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Cursor.SetMode(cursor.CursorStatic)

	m := modelTUI{
		ctx:     ctx,
		svc:     svc,
		log:     log,
		watcher: w,
		list:    l,
		ti:      ti,
		width:   80,
		height:  24,
	}
	m.refresh("")
	m.resize()
	return m
}

func (m modelTUI) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.expireNew())
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case doneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			if msg.status != "" {
				m.setStatus(msg.status)
			}
			if msg.undo != nil {
				m.undo = msg.undo
			}
		}
		m.refresh(msg.focus)
		if len(msg.added) > 0 {
			ids := msg.added
			return m, tea.Tick(newHighlight, func(time.Time) tea.Msg { return seenMsg{ids: ids} })
		}
		return m, nil

	case seenMsg:
		m.svc.MarkSeen(msg.ids...)
		m.refresh("")
		return m, nil

	case changedOnDiskMsg:
		return m, tea.Batch(m.reload(), m.waitForChange())
	}

	if m.mode != modeBrowse {
		return m.updateInput(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.handleKey(k); handled {
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKey runs the list actions; unhandled keys go to the list for
// navigation.
func (m *modelTUI) handleKey(k tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(k, keys.Quit):
		return tea.Quit, true

	case key.Matches(k, keys.Toggle):
		r, ok := m.selectedItem()
		if !ok {
			return nil, true
		}
		ref := r.ref()
		return m.call(r.item.ID, "", func(ctx context.Context) error {
			_, err := m.svc.Toggle(ctx, ref)
			return err
		}), true

	case key.Matches(k, keys.Delete):
		r, ok := m.selectedItem()
		if !ok {
			return nil, true
		}
		ref, d := r.ref(), &deleted{category: r.category, pos: r.pos, item: r.item}
		svc := m.svc
		return m.send(func(ctx context.Context) doneMsg {
			if err := svc.Delete(ctx, ref); err != nil {
				return doneMsg{err: err}
			}
			return doneMsg{status: "deleted " + d.item.Name + " (u to undo)", undo: d}
		}), true

	case key.Matches(k, keys.Undo):
		if m.undo == nil {
			m.setStatus("nothing to undo")
			return nil, true
		}
		d := m.undo
		m.undo = nil
		return m.call(d.item.ID, "restored "+d.item.Name, func(ctx context.Context) error {
			return m.svc.Restore(ctx, d.category, d.pos, d.item)
		}), true

	case key.Matches(k, keys.Add):
		m.startInput(modeAdd, "", "e.g. 2kg rice, three apples, milk")
		return nil, true

	case key.Matches(k, keys.Edit):
		switch r := m.list.SelectedItem().(type) {
		case itemRow:
			m.editRef = r.ref()
			m.startInput(modeEditItem, r.item.Name, "Item name...")
		case headerRow:
			m.editCat = r.name
			m.startInput(modeRenameCategory, r.name, "Category name...")
		}
		return nil, true

	case key.Matches(k, keys.More), key.Matches(k, keys.Less):
		r, ok := m.selectedItem()
		if !ok {
			return nil, true
		}
		q := r.item.Quantity + 1
		if key.Matches(k, keys.Less) {
			q = r.item.Quantity - 1
		}
		ref := r.ref()
		return m.call(r.item.ID, "", func(ctx context.Context) error {
			_, err := m.svc.SetQuantity(ctx, ref, q)
			return err
		}), true

	case key.Matches(k, keys.MoveUp), key.Matches(k, keys.MoveDown):
		r, ok := m.selectedItem()
		if !ok {
			return nil, true
		}
		target, index, ok := m.moveTarget(r, key.Matches(k, keys.MoveUp))
		if !ok {
			return nil, true
		}
		ref := r.ref()
		return m.call(r.item.ID, "", func(ctx context.Context) error {
			return m.svc.Move(ctx, ref, target, index)
		}), true

	case key.Matches(k, keys.Translate):
		lang := m.svc.TargetLang()
		m.setStatus("translating into " + lang + "...")
		return m.call("", "translations updated", func(ctx context.Context) error {
			return m.svc.UpdateTranslations(ctx, lang)
		}), true
	}
	return nil, false
}

// moveTarget is one step up or down. At the edge of a category the item
// crosses into the neighbouring one: to its end going up, its start going
// down.
func (m *modelTUI) moveTarget(r itemRow, up bool) (string, int, bool) {
	snap := m.svc.Snapshot()
	n := len(snap[r.category])
	switch {
	case up && r.pos > 0:
		return r.category, r.pos - 1, true
	case !up && r.pos < n-1:
		return r.category, r.pos + 1, true
	}
	cats := sortedCategories(snap)
	i := slices.Index(cats, r.category)
	switch {
	case up && i > 0:
		return cats[i-1], math.MaxInt, true
	case !up && i >= 0 && i < len(cats)-1:
		return cats[i+1], 0, true
	}
	return "", 0, false
}

func (m modelTUI) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if x, ok := msg.(tea.KeyMsg); ok {
		switch x.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.stopInput()
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.ti.Value())
			switch m.mode {
			case modeAdd:
				if text == "" {
					m.inputErr = "Type an item first"
					return m, nil
				}
				m.stopInput()
				return m, m.add(text)
			case modeEditItem:
				ref := m.editRef
				m.stopInput()
				if text == "" {
					return m, nil
				}
				return m, m.send(func(ctx context.Context) doneMsg {
					cat, err := m.svc.RenameItem(ctx, ref, text)
					if err != nil {
						return doneMsg{err: err}
					}
					return doneMsg{focus: ref.ID, status: "renamed → " + cat}
				})
			case modeRenameCategory:
				old := m.editCat
				m.stopInput()
				if text == "" || text == old {
					return m, nil
				}
				return m, m.call(headerKey(text), "category renamed", func(ctx context.Context) error {
					return m.svc.RenameCategory(ctx, old, text)
				})
			}
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *modelTUI) add(text string) tea.Cmd {
	svc := m.svc
	return m.send(func(ctx context.Context) doneMsg {
		res, err := svc.Add(ctx, text)
		if errors.Is(err, shoplist.ErrEmptyName) {
			return doneMsg{err: fmt.Errorf("no item name in %q", text)}
		}
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{
			focus:  res.Item.ID,
			status: fmt.Sprintf("added %s × %s → %s", model.FormatQuantity(res.Item.Quantity), res.Item.Name, res.Category),
			added:  []string{res.Item.ID},
		}
	})
}

// call runs fn as a command and reports a plain outcome.
func (m *modelTUI) call(focus, status string, fn func(context.Context) error) tea.Cmd {
	return m.send(func(ctx context.Context) doneMsg {
		if err := fn(ctx); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{focus: focus, status: status}
	})
}

// send runs fn off the update loop, hiding the resulting save from the
// file watcher.
func (m *modelTUI) send(fn func(context.Context) doneMsg) tea.Cmd {
	ctx, w := m.ctx, m.watcher
	return func() tea.Msg {
		if w != nil {
			w.Ignore(ignoreWindow)
			defer w.Ignore(ignoreWindow)
		}
		return fn(ctx)
	}
}

func (m modelTUI) reload() tea.Cmd {
	svc, ctx, log := m.svc, m.ctx, m.log
	return func() tea.Msg {
		if err := svc.Reload(ctx); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return doneMsg{err: err}
		}
		return doneMsg{status: "reloaded from disk"}
	}
}

func (m modelTUI) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Events()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedOnDiskMsg{}
	}
}

// expireNew schedules MarkSeen for items still flagged as new.
func (m modelTUI) expireNew() tea.Cmd {
	var ids []string
	for _, li := range m.list.Items() {
		if r, ok := li.(itemRow); ok && r.item.IsNew {
			ids = append(ids, r.item.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return tea.Tick(newHighlight, func(time.Time) tea.Msg { return seenMsg{ids: ids} })
}

// refresh rebuilds the rows from the service and keeps the cursor on focus,
// or on the current row when focus is empty.
func (m *modelTUI) refresh(focus string) {
	prev := m.list.Index()
	if focus == "" && m.list.SelectedItem() != nil {
		focus = rowKey(m.list.SelectedItem())
	}
	snap := m.svc.Snapshot()
	rows := buildRows(snap)
	m.list.SetItems(rows)
	m.list.Title = title(snap, m.svc.TargetLang())

	idx := slices.IndexFunc(rows, func(li list.Item) bool { return rowKey(li) == focus })
	if idx < 0 {
		idx = min(prev, len(rows)-1)
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

func (m *modelTUI) selectedItem() (itemRow, bool) {
	r, ok := m.list.SelectedItem().(itemRow)
	return r, ok
}

func (m *modelTUI) startInput(md mode, value, placeholder string) {
	m.mode = md
	m.inputErr = ""
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	m.ti.Placeholder = placeholder
	m.ti.Focus()
	m.resize()
}

func (m *modelTUI) stopInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *modelTUI) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *modelTUI) setError(err error) {
	m.status, m.statusErr = err.Error(), true
	m.log.Debug("action failed", zap.Error(err))
}

func (m *modelTUI) resize() {
	// border, padding and status line
	h := m.height - 3
	if m.mode != modeBrowse {
		h -= 4
	}
	m.list.SetSize(max(m.width-4, 20), max(h, 5))
}

func (m modelTUI) View() string {
	content := m.list.View()
	if m.mode != modeBrowse {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor).Padding(0, 1)
		heading := map[mode]string{
			modeAdd:            "Add item",
			modeEditItem:       "Edit item",
			modeRenameCategory: "Rename category",
		}[m.mode]
		if m.inputErr != "" {
			heading += "  " + errorStyle.Render(m.inputErr)
		}
		content += "\n" + bar.Render(heading+"\n"+m.ti.View())
	}
	status := mutedStyle.Render(m.status)
	if m.statusErr {
		status = errorStyle.Render("✖ " + m.status)
	}
	return panelString(content + "\n" + status)
}
