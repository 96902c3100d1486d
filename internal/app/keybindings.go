package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the normal-mode keybindings.
type KeyMap struct {
	// Scrolling
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	GotoTop      key.Binding
	GotoBottom   key.Binding

	// Browsing
	OpenURL    key.Binding
	FollowLink key.Binding
	Back       key.Binding
	Forward    key.Binding
	Home       key.Binding
	Reload     key.Binding
	Visits     key.Binding

	// Tabs
	NewTab   key.Binding
	CloseTab key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding

	// Modes
	CommandMode key.Binding
	SearchMode  key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default vim-style keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ScrollDown:   bind("j / Down", "Scroll down", "j", "down"),
		ScrollUp:     bind("k / Up", "Scroll up", "k", "up"),
		HalfPageDown: bind("Ctrl+d", "Half page down", "ctrl+d"),
		HalfPageUp:   bind("Ctrl+u", "Half page up", "ctrl+u"),
		GotoTop:      bind("gg", "Go to top", "g"),
		GotoBottom:   bind("G", "Go to bottom", "G"),

		OpenURL:    bind("o", "Open petition number, URL or search", "o"),
		FollowLink: bind("f", "Follow link by number", "f"),
		Back:       bind("H", "Back in this tab", "H"),
		Forward:    bind("L", "Forward in this tab", "L"),
		Home:       bind("h", "Open the home page", "h"),
		Reload:     bind("r", "Reload, skipping the cache", "r"),
		Visits:     bind("V / Ctrl+h", "Toggle visits panel", "V", "ctrl+h"),

		NewTab:   bind("Ctrl+t", "New tab on the home page", "ctrl+t"),
		CloseTab: bind("Ctrl+w", "Close tab", "ctrl+w"),
		NextTab:  bind("gt / Tab", "Next tab", "tab"),
		PrevTab:  bind("gT / S-Tab", "Previous tab", "shift+tab"),

		CommandMode: bind(":", "Command mode (Tab completes)", ":"),
		SearchMode:  bind("/", "Search petitions", "/"),
		Help:        bind("?", "Show this help", "?"),
		Quit:        bind("q", "Quit", "q", "ctrl+c"),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.OpenURL, k.FollowLink, k.Home, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap; groups follow helpSections.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollDown, k.ScrollUp, k.HalfPageDown, k.HalfPageUp, k.GotoTop, k.GotoBottom},
		{k.OpenURL, k.FollowLink, k.Back, k.Forward, k.Home, k.Reload, k.Visits},
		{k.NewTab, k.CloseTab, k.NextTab, k.PrevTab},
		{k.CommandMode, k.SearchMode, k.Help, k.Quit},
	}
}

// helpSections names the FullHelp groups.
var helpSections = []string{"Navigation", "Browsing", "Tabs", "Modes"}
