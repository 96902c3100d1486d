package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/petsurf/internal/theme"
)

// URLBar is the address line at the top. Besides URLs it takes a bare
// petition number or search words, which the loader expands.
type URLBar struct {
	textinput.Model
	width int
}

// NewURLBar creates a new URL bar.
func NewURLBar() URLBar {
	ti := textinput.New()
	ti.Placeholder = "Petition number, URL or search..."
	ti.CharLimit = 2048
	ti.Prompt = ""
	return URLBar{Model: ti}
}

// SetWidth updates the URL bar width.
func (u *URLBar) SetWidth(w int) {
	u.width = w
	// border, padding and the prompt badge
	u.Model.Width = max(10, w-14)
}

// IsActive reports whether the URL bar has focus.
func (u *URLBar) IsActive() bool {
	return u.Focused()
}

// Update handles key messages while focused.
func (u *URLBar) Update(msg tea.Msg) (*URLBar, tea.Cmd) {
	if !u.Focused() {
		return u, nil
	}
	var cmd tea.Cmd
	u.Model, cmd = u.Model.Update(msg)
	return u, cmd
}

// View renders the URL bar, with the petition number in front when the
// address is a petition page.
func (u *URLBar) View() string {
	t := theme.Current

	border := t.Border
	fg := t.TextDim
	if u.Focused() {
		border = t.BorderFocus
		fg = t.Text
	}

	prompt := "🗳"
	if badge := petitionBadge(u.Value()); badge != "" && !u.Focused() {
		prompt = badge
	}
	promptStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)

	return lipgloss.NewStyle().
		Foreground(fg).
		Background(t.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(0, u.width-2)).
		Render(promptStyle.Render(prompt) + " " + u.Model.View())
}
