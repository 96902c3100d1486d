package ui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/petsurf/internal/lastvisit"
	"github.com/vidyasagar/petsurf/internal/storage"
	"github.com/vidyasagar/petsurf/internal/theme"
)

// visitFilters is the order CycleFilter steps through; "" shows every visit.
var visitFilters = []string{
	"",
	lastvisit.OutcomeRecorded.String(),
	lastvisit.OutcomeRedirected.String(),
	lastvisit.OutcomeCleared.String(),
	lastvisit.OutcomeSkipped.String(),
}

// VisitsPanel lists recorded page loads grouped by tab. Each row shows the
// history entry the petition script ran at, the petition number and what
// the script did. The list can be narrowed to one outcome.
type VisitsPanel struct {
	visits  []storage.Visit // newest first
	rows    []int           // visits passing the filter, grouped by tab
	filter  string
	cursor  int // index into rows
	top     int // first list line on screen
	width   int
	height  int
	visible bool
}

// panelLine is one list line: a tab header when row is -1.
type panelLine struct {
	tab int
	row int
}

// NewVisitsPanel creates a hidden visits panel.
func NewVisitsPanel() VisitsPanel {
	return VisitsPanel{}
}

// SetEntries replaces the visits, newest first.
func (vp *VisitsPanel) SetEntries(visits []storage.Visit) {
	vp.visits = visits
	vp.cursor, vp.top = 0, 0
	vp.rebuild()
}

func (vp *VisitsPanel) rebuild() {
	vp.rows = vp.rows[:0]
	for i, v := range vp.visits {
		if vp.filter == "" || v.Outcome == vp.filter {
			vp.rows = append(vp.rows, i)
		}
	}
	slices.SortStableFunc(vp.rows, func(a, b int) int {
		return cmp.Compare(vp.visits[a].TabID, vp.visits[b].TabID)
	})
	vp.cursor = min(vp.cursor, max(len(vp.rows)-1, 0))
	vp.scrollToCursor()
}

// SetSize updates the panel dimensions.
func (vp *VisitsPanel) SetSize(w, h int) {
	vp.width, vp.height = w, h
	vp.scrollToCursor()
}

// Show makes the panel visible with the cursor on the first row.
func (vp *VisitsPanel) Show() {
	vp.visible = true
	vp.cursor, vp.top = 0, 0
}

// Hide closes the panel.
func (vp *VisitsPanel) Hide() { vp.visible = false }

// IsVisible reports whether the panel is shown.
func (vp *VisitsPanel) IsVisible() bool { return vp.visible }

// Move moves the cursor by delta rows, stopping at either end.
func (vp *VisitsPanel) Move(delta int) {
	if len(vp.rows) == 0 {
		return
	}
	vp.cursor = min(max(vp.cursor+delta, 0), len(vp.rows)-1)
	vp.scrollToCursor()
}

// GotoTop moves to the first row.
func (vp *VisitsPanel) GotoTop() { vp.Move(-len(vp.rows)) }

// GotoBottom moves to the last row.
func (vp *VisitsPanel) GotoBottom() { vp.Move(len(vp.rows)) }

// CycleFilter switches to the next outcome filter and returns it; "" means
// every visit is shown.
func (vp *VisitsPanel) CycleFilter() string {
	i := slices.Index(visitFilters, vp.filter)
	vp.filter = visitFilters[(i+1)%len(visitFilters)]
	vp.cursor, vp.top = 0, 0
	vp.rebuild()
	return vp.filter
}

// SelectedEntry returns the visit under the cursor, or nil.
func (vp *VisitsPanel) SelectedEntry() *storage.Visit {
	if vp.cursor >= len(vp.rows) {
		return nil
	}
	return &vp.visits[vp.rows[vp.cursor]]
}

// RemoveSelected drops the visit under the cursor from the list.
func (vp *VisitsPanel) RemoveSelected() {
	if vp.cursor >= len(vp.rows) {
		return
	}
	vp.visits = slices.Delete(vp.visits, vp.rows[vp.cursor], vp.rows[vp.cursor]+1)
	vp.rebuild()
}

// lines lays the rows out under one header per tab.
func (vp *VisitsPanel) lines() []panelLine {
	var out []panelLine
	for r, i := range vp.rows {
		tab := vp.visits[i].TabID
		if r == 0 || vp.visits[vp.rows[r-1]].TabID != tab {
			out = append(out, panelLine{tab: tab, row: -1})
		}
		out = append(out, panelLine{tab: tab, row: r})
	}
	return out
}

// listHeight is the room left under the title and above the key hint.
func (vp *VisitsPanel) listHeight() int {
	return max(vp.height-3, 1)
}

func (vp *VisitsPanel) scrollToCursor() {
	at := slices.IndexFunc(vp.lines(), func(l panelLine) bool { return l.row == vp.cursor })
	if at < 0 {
		vp.top = 0
		return
	}
	// keep the tab header of the first row on screen
	if at-1 < vp.top {
		vp.top = max(at-1, 0)
	}
	if h := vp.listHeight(); at >= vp.top+h {
		vp.top = at - h + 1
	}
}

// View renders the panel.
func (vp *VisitsPanel) View() string {
	if !vp.visible {
		return ""
	}
	t := theme.Current
	row := lipgloss.NewStyle().Width(vp.width).Padding(0, 1)

	title := fmt.Sprintf("Visits (%d)", len(vp.rows))
	if vp.filter != "" {
		title = fmt.Sprintf("Visits: %s (%d of %d)", vp.filter, len(vp.rows), len(vp.visits))
	}

	out := []string{
		row.Bold(true).Foreground(t.Primary).Background(t.Surface).Render(title),
		lipgloss.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", max(vp.width-2, 1))),
	}

	lines := vp.lines()
	if len(lines) == 0 {
		out = append(out, row.Foreground(t.TextDim).Render("No visits yet."))
	}
	for _, l := range lines[min(vp.top, len(lines)):min(vp.top+vp.listHeight(), len(lines))] {
		if l.row < 0 {
			out = append(out, row.Foreground(t.Secondary).Bold(true).Render(fmt.Sprintf("Tab %d", l.tab)))
			continue
		}
		text := vp.describe(vp.visits[vp.rows[l.row]])
		if l.row == vp.cursor {
			out = append(out, row.Foreground(t.TextBright).Background(t.TabActive).Render("▸ "+text))
		} else {
			out = append(out, row.Foreground(t.Text).Render("  "+text))
		}
	}

	for len(out) < vp.height-1 {
		out = append(out, "")
	}
	out = append(out, row.Foreground(t.TextDim).Italic(true).
		Render("j/k move  o outcome  Enter open  d del  Esc close"))

	return lipgloss.NewStyle().
		Width(vp.width).
		Height(vp.height).
		Background(t.Background).
		Render(strings.Join(out, "\n"))
}

// describe is one visit row: entry index, outcome, petition and title.
func (vp *VisitsPanel) describe(v storage.Visit) string {
	label := v.Title
	if badge := petitionBadge(v.URL); badge != "" {
		label = badge + " " + label
	}
	if strings.TrimSpace(label) == "" {
		label = v.URL
	}
	badge := cmp.Or(outcomeBadge(v.Outcome), " ")
	text := fmt.Sprintf("#%d %s %s", v.HistoryIndex, badge, label)
	ago := timeAgo(v.VisitedAt)
	return truncate(text, max(vp.width-len(ago)-6, 8)) + "  " + ago
}

// outcomeBadge is the short marker shown for a script outcome.
func outcomeBadge(outcome string) string {
	switch outcome {
	case "redirected":
		return "↩"
	case "recorded":
		return "★"
	case "cleared":
		return "✓"
	case "skipped":
		return "·"
	default:
		return ""
	}
}

// timeAgo returns how long ago t was, coarsely.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
