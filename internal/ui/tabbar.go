package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/petsurf/internal/theme"
)

// Tab is one browser tab. Each tab has its own session history in the app,
// so a new tab is a new session as far as the petition script is concerned.
type Tab struct {
	ID    int
	Title string
	URL   string
}

// TabBar keeps the tab list and renders the top line.
type TabBar struct {
	tabs   []Tab
	active int
	lastID int
	width  int
}

// NewTabBar creates a tab bar with one initial tab.
func NewTabBar() TabBar {
	tb := TabBar{}
	tb.NewTab()
	return tb
}

// SetWidth sets the tab bar width.
func (tb *TabBar) SetWidth(w int) { tb.width = w }

// NewTab opens a tab after the active one, switches to it and returns its ID.
func (tb *TabBar) NewTab() int {
	tb.lastID++
	at := 0
	if len(tb.tabs) > 0 {
		at = tb.active + 1
	}
	tb.tabs = slices.Insert(tb.tabs, at, Tab{ID: tb.lastID, Title: "New Tab"})
	tb.active = at
	return tb.lastID
}

// CloseCurrentTab closes the active tab. The last tab is never closed.
func (tb *TabBar) CloseCurrentTab() bool {
	if len(tb.tabs) <= 1 {
		return false
	}
	tb.tabs = slices.Delete(tb.tabs, tb.active, tb.active+1)
	tb.active = min(tb.active, len(tb.tabs)-1)
	return true
}

// NextTab switches to the next tab, wrapping around.
func (tb *TabBar) NextTab() { tb.move(1) }

// PrevTab switches to the previous tab, wrapping around.
func (tb *TabBar) PrevTab() { tb.move(-1) }

func (tb *TabBar) move(delta int) {
	if n := len(tb.tabs); n > 1 {
		tb.active = ((tb.active+delta)%n + n) % n
	}
}

// ActiveTab returns the active Tab.
func (tb *TabBar) ActiveTab() *Tab {
	if tb.active < 0 || tb.active >= len(tb.tabs) {
		return nil
	}
	return &tb.tabs[tb.active]
}

// SetTitle sets the title of the tab with the given ID. Loads finish
// asynchronously, so tabs are addressed by ID rather than position.
func (tb *TabBar) SetTitle(id int, title string) {
	if t := tb.byID(id); t != nil {
		t.Title = truncate(title, 30)
	}
}

// SetURL sets the URL of the tab with the given ID.
func (tb *TabBar) SetURL(id int, url string) {
	if t := tb.byID(id); t != nil {
		t.URL = url
	}
}

// SetActiveTitle sets the title of the active tab.
func (tb *TabBar) SetActiveTitle(title string) {
	if t := tb.ActiveTab(); t != nil {
		tb.SetTitle(t.ID, title)
	}
}

func (tb *TabBar) byID(id int) *Tab {
	i := slices.IndexFunc(tb.tabs, func(t Tab) bool { return t.ID == id })
	if i < 0 {
		return nil
	}
	return &tb.tabs[i]
}

// Count returns the number of tabs.
func (tb *TabBar) Count() int {
	return len(tb.tabs)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// window returns the range of tabs that fit, keeping the active one centered.
func (tb *TabBar) window() (start, end int) {
	fit := min(max(tb.width/20, 2), 10)
	if len(tb.tabs) <= fit {
		return 0, len(tb.tabs)
	}
	start = max(0, tb.active-fit/2)
	end = min(len(tb.tabs), start+fit)
	return max(0, end-fit), end
}

// label is what a tab shows: the petition number for petition pages, else
// the page title.
func (tb *TabBar) label(t Tab, room int) string {
	title := t.Title
	if badge := petitionBadge(t.URL); badge != "" {
		title = badge + " " + title
	}
	return truncate(title, max(room, 8))
}

// View renders the tab bar.
func (tb *TabBar) View() string {
	t := theme.Current
	start, end := tb.window()
	room := tb.width/max(end-start, 1) - 4

	active := lipgloss.NewStyle().
		Foreground(t.TextBright).
		Background(t.TabActive).
		Bold(true).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.TabInactive).
		Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	var parts []string
	if start > 0 {
		parts = append(parts, dim.Render(fmt.Sprintf(" +%d ", start)))
	}
	for i := start; i < end; i++ {
		if i == tb.active {
			parts = append(parts, active.Render(tb.label(tb.tabs[i], room)))
		} else {
			parts = append(parts, inactive.Render(tb.label(tb.tabs[i], room)))
		}
	}
	if end < len(tb.tabs) {
		parts = append(parts, dim.Render(fmt.Sprintf(" +%d ", len(tb.tabs)-end)))
	}

	sep := lipgloss.NewStyle().Foreground(t.Border).Render("│")
	return lipgloss.NewStyle().
		Background(t.Surface).
		Width(tb.width).
		Render(strings.Join(parts, sep))
}
