package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/petsurf/internal/theme"
)

// modeLooks maps an input mode to its icon and badge color.
var modeLooks = map[string]struct {
	icon  string
	color func(theme.Theme) lipgloss.Color
}{
	"NORMAL":  {"👁 ", func(t theme.Theme) lipgloss.Color { return t.Primary }},
	"INSERT":  {"✏ ", func(t theme.Theme) lipgloss.Color { return t.Success }},
	"COMMAND": {"⌘ ", func(t theme.Theme) lipgloss.Color { return t.Accent }},
	"FOLLOW":  {"🔗 ", func(t theme.Theme) lipgloss.Color { return t.Link }},
	"SEARCH":  {"🔍 ", func(t theme.Theme) lipgloss.Color { return t.Warning }},
	"VISITS":  {"📜 ", func(t theme.Theme) lipgloss.Color { return t.Secondary }},
}

// StatusBar is the bottom line: mode, page or message, what the petition
// script did, link count and scroll position.
type StatusBar struct {
	url           string
	title         string
	loading       bool
	scrollInfo    string
	mode          string
	linkCount     int
	width         int
	message       string // replaces the title until the next load
	scriptOutcome string
	scriptNote    string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() StatusBar {
	return StatusBar{mode: "NORMAL"}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(w int) { s.width = w }

// SetURL sets the URL of the page shown.
func (s *StatusBar) SetURL(url string) { s.url = url }

// SetTitle sets the page title.
func (s *StatusBar) SetTitle(title string) { s.title = title }

// SetLoading toggles the loading indicator.
func (s *StatusBar) SetLoading(loading bool) { s.loading = loading }

// SetScrollInfo sets the scroll position text.
func (s *StatusBar) SetScrollInfo(info string) { s.scrollInfo = info }

// SetMode sets the mode badge, e.g. "NORMAL".
func (s *StatusBar) SetMode(mode string) { s.mode = mode }

// SetLinkCount sets the number of followable links.
func (s *StatusBar) SetLinkCount(n int) { s.linkCount = n }

// SetMessage sets a temporary status message.
func (s *StatusBar) SetMessage(msg string) { s.message = msg }

// SetScript records what the petition script did on the current page.
// An empty note hides the indicator.
func (s *StatusBar) SetScript(outcome, note string) {
	s.scriptOutcome = outcome
	s.scriptNote = note
}

func (s *StatusBar) modeBadge() string {
	t := theme.Current
	look, ok := modeLooks[s.mode]
	color := t.Secondary
	if ok {
		color = look.color(t)
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(t.Background).
		Background(color).
		Render(look.icon + s.mode)
}

func (s *StatusBar) left() string {
	t := theme.Current
	switch {
	case s.loading:
		return onSurface(t.Warning).Bold(true).Render("⏳ Loading...")
	case s.message != "":
		return onSurface(t.Info).Render(s.message)
	}

	var parts []string
	if badge := petitionBadge(s.url); badge != "" {
		parts = append(parts, onSurface(t.Accent).Bold(true).Render(badge))
	}
	if s.title != "" {
		parts = append(parts, onSurface(t.Text).Render(s.title))
	}
	return strings.Join(parts, "")
}

func (s *StatusBar) right() string {
	t := theme.Current
	var sb strings.Builder

	if s.scriptNote != "" {
		color := t.Accent
		switch s.scriptOutcome {
		case "recorded":
			color = t.Success
		case "cleared":
			color = t.Info
		}
		sb.WriteString(onSurface(color).Bold(true).Render("↩ " + s.scriptNote))
	}
	if s.linkCount > 0 {
		sb.WriteString(onSurface(t.TextDim).Render(fmt.Sprintf("🔗 %d", s.linkCount)))
	}
	sb.WriteString(onSurface(t.Secondary).Bold(true).Render(s.scrollInfo))
	return sb.String()
}

// View renders the status bar.
func (s *StatusBar) View() string {
	mode, left, right := s.modeBadge(), s.left(), s.right()

	gap := max(0, s.width-lipgloss.Width(mode)-lipgloss.Width(left)-lipgloss.Width(right))
	spacer := lipgloss.NewStyle().
		Background(theme.Current.Surface).
		Render(strings.Repeat(" ", gap))

	return mode + left + spacer + right
}
