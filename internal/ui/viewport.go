package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/petsurf/internal/theme"
)

// PageViewport is the scrollable page area. Until something is loaded it
// shows the welcome screen.
type PageViewport struct {
	viewport.Model
	sized   bool
	pending *string // content set before the first size
	loaded  bool
}

// NewPageViewport creates a viewport; it is sized on the first layout.
func NewPageViewport() PageViewport {
	return PageViewport{}
}

// SetSize updates the viewport dimensions.
func (pv *PageViewport) SetSize(width, height int) {
	if pv.sized {
		pv.Model.Width, pv.Model.Height = width, height
		return
	}
	pv.Model = viewport.New(width, height)
	pv.MouseWheelEnabled = true
	pv.MouseWheelDelta = 3
	pv.sized = true
	if pv.pending != nil {
		content := *pv.pending
		pv.pending = nil
		pv.SetContent(content)
	}
}

// SetContent replaces the page and scrolls to the top.
func (pv *PageViewport) SetContent(content string) {
	if !pv.sized {
		pv.pending = &content
		return
	}
	pv.Model.SetContent(content)
	pv.Model.GotoTop()
	pv.loaded = true
}

// Update forwards messages (mouse wheel, arrows) to the viewport.
func (pv *PageViewport) Update(msg tea.Msg) (*PageViewport, tea.Cmd) {
	if !pv.sized {
		return pv, nil
	}
	var cmd tea.Cmd
	pv.Model, cmd = pv.Model.Update(msg)
	return pv, cmd
}

// View renders the page, or the welcome screen before the first load.
func (pv *PageViewport) View() string {
	switch {
	case !pv.sized:
		return "\n  Initializing..."
	case !pv.loaded:
		return welcome()
	default:
		return pv.Model.View()
	}
}

// ScrollInfo returns "TOP", "BOT" or a percentage.
func (pv *PageViewport) ScrollInfo() string {
	if !pv.loaded {
		return "TOP"
	}
	switch pct := pv.ScrollPercent(); {
	case pct <= 0:
		return "TOP"
	case pct >= 1:
		return "BOT"
	default:
		return fmt.Sprintf("%d%%", int(pct*100))
	}
}

const logo = `
                 _                   __
   _ __  ___| |_ ___ _   _ _ __ / _|
  | '_ \/ _ \ __/ __| | | | '__| |_
  | |_) |  __/ |_\__ \ |_| | |  |  _|
  | .__/ \___|\__|___/\__,_|_|  |_|
  |_|
`

// welcomeKeys are the shortcuts listed on the welcome screen.
var welcomeKeys = [][2]string{
	{"o", "Open petition number, URL or search"},
	{"f", "Follow link by number"},
	{"H / L", "Go back / forward"},
	{"h", "Home page (returns to the last petition)"},
	{"Ctrl+t", "New tab on the home page"},
	{"/", "Search petitions"},
	{":last", "Show the remembered petition"},
	{":forget", "Forget it"},
	{"V", "Visits panel"},
	{"?", "All keybindings"},
}

func welcome() string {
	t := theme.Current
	dim := lipgloss.NewStyle().Foreground(t.TextDim)
	keyStyle := lipgloss.NewStyle().Foreground(t.Secondary).Width(12).MarginLeft(4)

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render(logo))
	sb.WriteString("\n")
	sb.WriteString(dim.Render("  A terminal browser for petition.president.gov.ua.\n"))
	sb.WriteString(dim.Render("  A fresh tab on the home page takes you back to the last petition you read."))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("  ⌨ Quick Start"))
	sb.WriteString("\n\n")
	for _, k := range welcomeKeys {
		sb.WriteString(keyStyle.Render(k[0]))
		sb.WriteString(lipgloss.NewStyle().Foreground(t.Text).Render(k[1]))
		sb.WriteString("\n")
	}
	return sb.String()
}
