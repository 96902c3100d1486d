package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name string

	// Core colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Text colors
	Text       lipgloss.Color
	TextDim    lipgloss.Color
	TextBright lipgloss.Color

	// UI element colors
	Background  lipgloss.Color
	Surface     lipgloss.Color
	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	// Semantic colors
	Link    lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color

	// Tab bar
	TabActive   lipgloss.Color
	TabInactive lipgloss.Color
}

var themes = map[string]Theme{}

func init() {
	for _, t := range []Theme{Default, Light, Gruvbox, Nord, Dracula} {
		themes[t.Name] = t
	}
}

// palette is the small set of colors a Theme is derived from.
type palette struct {
	brand   string // primary, active tab
	link    string // secondary, links, info
	accent  string // highlights, focused border
	fg      string
	bright  string
	dim     string
	bg      string
	surface string
	border  string // also inactive tabs
	bad     string
	good    string
	warn    string
}

func build(name string, p palette) Theme {
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }
	return Theme{
		Name:        name,
		Primary:     c(p.brand),
		Secondary:   c(p.link),
		Accent:      c(p.accent),
		Text:        c(p.fg),
		TextDim:     c(p.dim),
		TextBright:  c(p.bright),
		Background:  c(p.bg),
		Surface:     c(p.surface),
		Border:      c(p.border),
		BorderFocus: c(p.accent),
		Link:        c(p.link),
		Error:       c(p.bad),
		Success:     c(p.good),
		Warning:     c(p.warn),
		Info:        c(p.link),
		TabActive:   c(p.brand),
		TabInactive: c(p.border),
	}
}

// Default follows the blue and yellow of the petition site.
var Default = build("default", palette{
	brand: "#0057B7", link: "#4C9AFF", accent: "#FFD700",
	fg: "#E2E8F0", bright: "#F8FAFC", dim: "#64748B",
	bg: "#0B1526", surface: "#14233B", border: "#2A3B57",
	bad: "#EF4444", good: "#22C55E", warn: "#F59E0B",
})

// Light is for bright terminals.
var Light = build("light", palette{
	brand: "#0057B7", link: "#0369A1", accent: "#B45309",
	fg: "#1E293B", bright: "#0F172A", dim: "#64748B",
	bg: "#FFFFFF", surface: "#F1F5F9", border: "#CBD5E1",
	bad: "#B91C1C", good: "#15803D", warn: "#B45309",
})

var Gruvbox = build("gruvbox", palette{
	brand: "#D65D0E", link: "#83A598", accent: "#D79921",
	fg: "#EBDBB2", bright: "#FBF1C7", dim: "#928374",
	bg: "#282828", surface: "#3C3836", border: "#504945",
	bad: "#FB4934", good: "#B8BB26", warn: "#FABD2F",
})

var Nord = build("nord", palette{
	brand: "#5E81AC", link: "#88C0D0", accent: "#EBCB8B",
	fg: "#ECEFF4", bright: "#ECEFF4", dim: "#4C566A",
	bg: "#2E3440", surface: "#3B4252", border: "#434C5E",
	bad: "#BF616A", good: "#A3BE8C", warn: "#D08770",
})

var Dracula = build("dracula", palette{
	brand: "#BD93F9", link: "#8BE9FD", accent: "#F1FA8C",
	fg: "#F8F8F2", bright: "#FFFFFF", dim: "#6272A4",
	bg: "#282A36", surface: "#44475A", border: "#6272A4",
	bad: "#FF5555", good: "#50FA7B", warn: "#FFB86C",
})

// Current is the active theme.
var Current = Default

// Set changes the active theme by name.
func Set(name string) bool {
	if t, ok := themes[name]; ok {
		Current = t
		return true
	}
	return false
}

// List returns all available theme names, sorted.
func List() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
