package ui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyasagar/petsurf/internal/storage"
)

func TestTabBarAddressesTabsByID(t *testing.T) {
	tb := NewTabBar()
	first := tb.ActiveTab().ID
	tb.NewTab()
	second := tb.ActiveTab().ID
	require.NotEqual(t, first, second)

	// A load finishing in a background tab must not rename the active one.
	tb.SetTitle(first, "Петиція №22/184567-еп")
	tb.SetURL(first, "https://petition.president.gov.ua/petition/184567")
	assert.Equal(t, "New Tab", tb.ActiveTab().Title)

	tb.PrevTab()
	assert.Equal(t, first, tb.ActiveTab().ID)
	assert.Equal(t, "Петиція №22/184567-еп", tb.ActiveTab().Title)
	assert.Equal(t, "https://petition.president.gov.ua/petition/184567", tb.ActiveTab().URL)

	tb.SetTitle(999, "ignored")
	assert.Equal(t, 2, tb.Count())
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "коротко", truncate("коротко", 10))
	assert.Equal(t, "Петиці...", truncate("Петиція про парки", 9))
}

func TestCommandBarComplete(t *testing.T) {
	cb := NewCommandBar()
	cb.SetCompletions([]string{"tabnew", "tabclose", "theme", "last"})

	tests := []struct {
		prefix, want string
	}{
		{"la", "last"},
		{"tab", "tab"},
		{"tabn", "tabnew"},
		{"t", "t"},
		{"zz", "zz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cb.Complete(tt.prefix), tt.prefix)
	}
}

func TestCommandBarRecall(t *testing.T) {
	cb := NewCommandBar()
	for _, line := range []string{"last", "forget"} {
		cb.Open(CommandEx)
		cb.SetValue(line)
		assert.Equal(t, CommandResult{Type: CommandEx, Value: line}, cb.Submit())
	}
	assert.False(t, cb.IsActive())

	cb.Open(CommandEx)
	cb.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "forget", cb.Value())
	cb.Update(tea.KeyMsg{Type: tea.KeyUp})
	cb.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "last", cb.Value())
	cb.Update(tea.KeyMsg{Type: tea.KeyDown})
	cb.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, cb.Value())

	cb.Open(CommandSearch)
	cb.SetValue("  парки ")
	assert.Equal(t, CommandResult{Type: CommandSearch, Value: "парки"}, cb.Submit())
}

func TestVisitsPanelRemoveSelected(t *testing.T) {
	vp := NewVisitsPanel()
	vp.SetSize(40, 20)
	vp.SetEntries([]storage.Visit{
		{ID: "a", URL: "https://petition.president.gov.ua/petition/1", Outcome: "recorded"},
		{ID: "b", URL: "https://petition.president.gov.ua/petition/2?lvp=true", Outcome: "cleared"},
	})
	vp.Show()

	vp.Move(1)
	require.NotNil(t, vp.SelectedEntry())
	assert.Equal(t, "b", vp.SelectedEntry().ID)

	vp.RemoveSelected()
	require.NotNil(t, vp.SelectedEntry())
	assert.Equal(t, "a", vp.SelectedEntry().ID)

	vp.RemoveSelected()
	assert.Nil(t, vp.SelectedEntry())
	assert.NotEmpty(t, vp.View())
}

func TestVisitsPanelGroupsByTabAndFilters(t *testing.T) {
	now := time.Now()
	vp := NewVisitsPanel()
	vp.SetSize(60, 20)
	vp.SetEntries([]storage.Visit{
		{ID: "c", TabID: 2, URL: "https://petition.president.gov.ua/", Outcome: "redirected", VisitedAt: now},
		{ID: "b", TabID: 1, URL: "https://petition.president.gov.ua/petition/42", Title: "Parks", HistoryIndex: 1, Outcome: "recorded", VisitedAt: now},
		{ID: "a", TabID: 2, URL: "https://petition.president.gov.ua/petition/42?lvp=true", Outcome: "cleared", VisitedAt: now},
	})
	vp.Show()

	var order []string
	for range 3 {
		order = append(order, vp.SelectedEntry().ID)
		vp.Move(1)
	}
	assert.Equal(t, []string{"b", "c", "a"}, order)
	assert.Equal(t, "a", vp.SelectedEntry().ID)

	view := vp.View()
	assert.Contains(t, view, "Tab 1")
	assert.Contains(t, view, "Tab 2")
	assert.Contains(t, view, "#1 ★ №42 Parks")

	assert.Equal(t, "recorded", vp.CycleFilter())
	assert.Equal(t, "b", vp.SelectedEntry().ID)
	vp.Move(1)
	assert.Equal(t, "b", vp.SelectedEntry().ID)
	assert.NotContains(t, vp.View(), "Tab 2")

	assert.Equal(t, "redirected", vp.CycleFilter())
	assert.Equal(t, "c", vp.SelectedEntry().ID)
	vp.RemoveSelected()
	assert.Nil(t, vp.SelectedEntry())

	for vp.CycleFilter() != "" {
	}
	vp.GotoBottom()
	assert.Equal(t, "a", vp.SelectedEntry().ID)
	vp.GotoTop()
	assert.Equal(t, "b", vp.SelectedEntry().ID)
}

func TestVisitsPanelScrollsWithCursor(t *testing.T) {
	var visits []storage.Visit
	for i := range 30 {
		visits = append(visits, storage.Visit{ID: fmt.Sprint(i), TabID: 1, URL: "https://example.com/"})
	}
	vp := NewVisitsPanel()
	vp.SetSize(40, 10)
	vp.SetEntries(visits)
	vp.Show()

	vp.GotoBottom()
	assert.Contains(t, vp.View(), "▸")
	vp.GotoTop()
	assert.Contains(t, vp.View(), "Tab 1")
}

func TestOutcomeBadge(t *testing.T) {
	assert.Equal(t, "↩", outcomeBadge("redirected"))
	assert.Equal(t, "★", outcomeBadge("recorded"))
	assert.Empty(t, outcomeBadge("none"))
}

func TestTimeAgo(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", timeAgo(now))
	assert.Equal(t, "5m ago", timeAgo(now.Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "3h ago", timeAgo(now.Add(-3*time.Hour-time.Second)))
	assert.Equal(t, "2d ago", timeAgo(now.Add(-49*time.Hour)))
}
