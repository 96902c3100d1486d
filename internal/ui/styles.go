package ui

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/petsurf/internal/lastvisit"
	"github.com/vidyasagar/petsurf/internal/theme"
)

// onSurface is a padded style on the bar background.
func onSurface(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(fg).
		Background(theme.Current.Surface).
		Padding(0, 1)
}

// petitionBadge returns "№184567" when rawURL is a petition page on the
// petition site.
func petitionBadge(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Hostname(), lastvisit.SiteHost) {
		return ""
	}
	if id, ok := lastvisit.PetitionID(u.EscapedPath()); ok {
		return "№" + id
	}
	return ""
}
