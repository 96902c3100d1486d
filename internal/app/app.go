package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/browser"
	"github.com/vidyasagar/petsurf/internal/lastvisit"
	"github.com/vidyasagar/petsurf/internal/storage"
	"github.com/vidyasagar/petsurf/internal/theme"
	"github.com/vidyasagar/petsurf/internal/ui"
	"github.com/vidyasagar/petsurf/internal/userscript"
)

// Mode represents the current input mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeInsert       // URL bar focused
	ModeCommand      // command bar active
	ModeFollow       // link follow mode
	ModeSearch       // petition search
	ModeVisits       // visits panel active
)

// commands lists the ex commands offered for completion.
var commands = []string{
	"open", "tabnew", "tabclose", "home", "last", "forget",
	"visits", "clearvisits", "theme", "help", "quit",
}

// tabState holds per-tab state.
type tabState struct {
	viewport   ui.PageViewport
	history    *browser.History
	page       *browser.Page
	loading    bool
	cancelFunc context.CancelFunc
	loadSeq    uint64 // bumped by every load; older results are dropped

	// what the petition script did on the last load
	scriptOutcome string
	scriptNote    string
}

// Options wires a Model to the rest of petsurf.
type Options struct {
	StartURL string
	Homepage string
	Loader   *browser.Loader
	Stores   userscript.Stores   // origin-scoped stores the petition script uses
	Visits   *storage.VisitStore // nil when visits are not kept
	Logger   *zap.Logger
}

// Model is the top-level bubbletea model for petsurf.
type Model struct {
	// UI components
	tabBar      ui.TabBar
	urlBar      ui.URLBar
	statusBar   ui.StatusBar
	commandBar  ui.CommandBar
	visitsPanel ui.VisitsPanel

	// Per-tab state
	tabStates map[int]*tabState

	// Shared state
	loader   *browser.Loader
	stores   userscript.Stores
	visits   *storage.VisitStore
	logger   *zap.Logger
	homepage string
	keys     KeyMap
	mode     Mode
	width    int
	height   int
	lastGKey bool // for "gg" detection
	ready    bool
	startURL string
}

// pageLoadedMsg is sent when a page finishes loading.
type pageLoadedMsg struct {
	tabID        int
	seq          uint64
	page         *browser.Page
	url          string
	historyIndex int
	err          error
}

// New creates a new petsurf Model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Homepage == "" {
		opts.Homepage = "https://" + lastvisit.SiteHost + "/"
	}

	tb := ui.NewTabBar()
	initialTab := tb.ActiveTab()

	cb := ui.NewCommandBar()
	cb.SetCompletions(commands)

	m := Model{
		tabBar:      tb,
		urlBar:      ui.NewURLBar(),
		statusBar:   ui.NewStatusBar(),
		commandBar:  cb,
		visitsPanel: ui.NewVisitsPanel(),
		tabStates:   make(map[int]*tabState),
		loader:      opts.Loader,
		stores:      opts.Stores,
		visits:      opts.Visits,
		logger:      opts.Logger,
		homepage:    opts.Homepage,
		keys:        DefaultKeyMap(),
		mode:        ModeNormal,
		startURL:    opts.StartURL,
	}

	m.tabStates[initialTab.ID] = newTabState()
	return m
}

func newTabState() *tabState {
	return &tabState{
		viewport: ui.NewPageViewport(),
		history:  browser.NewHistory(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.startURL != "" {
		return m.navigateTo(m.startURL)
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Forward to the active viewport (mouse wheel etc).
	if ts := m.activeTabState(); ts != nil {
		_, cmd := ts.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading petsurf..."
	}

	var sections []string
	sections = append(sections, m.tabBar.View())
	sections = append(sections, m.urlBar.View())

	ts := m.activeTabState()
	switch {
	case ts == nil:
		sections = append(sections, "")
	case m.visitsPanel.IsVisible():
		dividerStyle := lipgloss.NewStyle().
			Foreground(theme.Current.Border).
			Background(theme.Current.Background)

		lines := make([]string, m.viewportHeight())
		for i := range lines {
			lines[i] = "│"
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			m.visitsPanel.View(),
			dividerStyle.Render(strings.Join(lines, "\n")),
			ts.viewport.View(),
		))
	default:
		sections = append(sections, ts.viewport.View())
	}

	sections = append(sections, m.statusBar.View())
	if m.commandBar.IsActive() {
		sections = append(sections, m.commandBar.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewportHeight is what is left after the bars.
func (m *Model) viewportHeight() int {
	tabBarHeight := 1
	urlBarHeight := 3 // border adds height
	statusBarHeight := 1
	commandBarHeight := 0
	if m.commandBar.IsActive() {
		commandBarHeight = 1
	}
	return max(1, m.height-tabBarHeight-urlBarHeight-statusBarHeight-commandBarHeight)
}

// layout recalculates dimensions for all components.
func (m *Model) layout() {
	m.tabBar.SetWidth(m.width)
	m.urlBar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.commandBar.SetWidth(m.width)

	viewportHeight := m.viewportHeight()
	viewportWidth := m.width
	if m.visitsPanel.IsVisible() {
		panelWidth := max(24, m.width*35/100)
		m.visitsPanel.SetSize(panelWidth, viewportHeight)
		viewportWidth = m.width - panelWidth - 1 // divider
	}

	for _, ts := range m.tabStates {
		ts.viewport.SetSize(viewportWidth, viewportHeight)
	}
}

// executeCommand handles :commands.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return m, nil
	}
	arg := strings.Join(parts[1:], " ")

	switch parts[0] {
	case "q", "quit":
		return m, tea.Quit
	case "o", "open":
		if arg == "" {
			m.statusBar.SetMessage("Usage: :open <petition number | url | query>")
			return m, nil
		}
		return m, m.navigateTo(arg)
	case "home":
		return m, m.navigateTo(m.homepage)
	case "tab", "tabnew":
		target := arg
		if target == "" {
			target = m.homepage
		}
		return m, m.newTab(target)
	case "tabclose", "tc":
		if !m.closeTab() {
			return m, tea.Quit
		}
	case "last":
		m.showLast()
	case "forget":
		m.forgetLast()
	case "visits":
		m.toggleVisits()
	case "clearvisits":
		if m.visits == nil {
			m.statusBar.SetMessage("Visits are not kept in this session")
		} else if err := m.visits.Clear(); err != nil {
			m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
		} else {
			m.visitsPanel.SetEntries(nil)
			m.statusBar.SetMessage("Visits cleared")
		}
	case "theme":
		if arg == "" {
			return m.cycleTheme()
		}
		if theme.Set(arg) {
			m.statusBar.SetMessage(fmt.Sprintf("Theme: %s", arg))
		} else {
			m.statusBar.SetMessage(fmt.Sprintf("Unknown theme: %s (available: %s)", arg, strings.Join(theme.List(), ", ")))
		}
	case "help":
		m.showHelp()
	default:
		m.statusBar.SetMessage(fmt.Sprintf("Unknown command: %s", parts[0]))
	}

	return m, nil
}

// siteStore returns the store of the homepage origin.
func (m *Model) siteStore() (lastvisit.Store, error) {
	if m.stores == nil {
		return nil, errors.New("no store configured")
	}
	u, err := url.Parse(m.homepage)
	if err != nil {
		return nil, fmt.Errorf("parsing homepage: %w", err)
	}
	return m.stores.Origin(userscript.Origin(u)), nil
}

// showLast reports the remembered petition.
func (m *Model) showLast() {
	store, err := m.siteStore()
	if err != nil {
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
		return
	}
	id, ok, err := store.GetItem(lastvisit.StorageKey)
	switch {
	case err != nil:
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
	case !ok:
		m.statusBar.SetMessage("No petition remembered")
	default:
		m.statusBar.SetMessage(fmt.Sprintf("Last visited petition: %s (:open %s)", id, id))
	}
}

// forgetLast clears the remembered petition.
func (m *Model) forgetLast() {
	store, err := m.siteStore()
	if err != nil {
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
		return
	}
	if err := store.RemoveItem(lastvisit.StorageKey); err != nil {
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
		return
	}
	m.statusBar.SetMessage("Forgot the last visited petition")
}

// cycleTheme switches to the next available theme.
func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	themes := theme.List()
	next := themes[0]
	for i, name := range themes {
		if name == theme.Current.Name {
			next = themes[(i+1)%len(themes)]
			break
		}
	}
	theme.Set(next)
	m.statusBar.SetMessage(fmt.Sprintf("Theme: %s", next))
	return m, nil
}

// followLink navigates to a link by its index number.
func (m Model) followLink(input string) (tea.Model, tea.Cmd) {
	ts := m.activeTabState()
	if ts == nil || ts.page == nil {
		m.statusBar.SetMessage("No page loaded")
		return m, nil
	}

	num, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		m.statusBar.SetMessage(fmt.Sprintf("Invalid link number: %s", input))
		return m, nil
	}

	for _, link := range ts.page.Links {
		if link.Index == num {
			return m, m.navigateTo(link.URL)
		}
	}

	m.statusBar.SetMessage(fmt.Sprintf("Link [%d] not found", num))
	return m, nil
}

// newTab opens target in a fresh tab with its own history.
func (m *Model) newTab(target string) tea.Cmd {
	m.tabBar.NewTab()
	tab := m.tabBar.ActiveTab()
	m.tabStates[tab.ID] = newTabState()
	m.layout()
	m.syncTabUI()
	return m.navigateTo(target)
}

// closeTab closes the active tab. It reports false for the last tab.
func (m *Model) closeTab() bool {
	tab := m.tabBar.ActiveTab()
	if !m.tabBar.CloseCurrentTab() {
		return false
	}
	if ts, ok := m.tabStates[tab.ID]; ok {
		if ts.cancelFunc != nil {
			ts.cancelFunc()
		}
		delete(m.tabStates, tab.ID)
	}
	m.syncTabUI()
	return true
}

// navigateTo loads a URL in the active tab as a new history entry.
func (m *Model) navigateTo(rawURL string) tea.Cmd {
	return m.loadPage(rawURL, browser.PushEntry)
}

// loadPage resolves rawURL against the active tab's history, running the
// petition script, then fetches it in the background.
func (m *Model) loadPage(rawURL string, mode browser.LoadMode) tea.Cmd {
	ts := m.activeTabState()
	if ts == nil || m.loader == nil {
		return nil
	}
	tabID := m.tabBar.ActiveTab().ID

	if ts.cancelFunc != nil {
		ts.cancelFunc()
		ts.cancelFunc = nil
	}
	ts.loadSeq++
	seq := ts.loadSeq

	nav, err := m.loader.Resolve(ts.history, rawURL, mode)
	if err != nil {
		m.logger.Warn("resolving page", zap.String("url", rawURL), zap.Error(err))
		return func() tea.Msg {
			return pageLoadedMsg{tabID: tabID, seq: seq, url: rawURL, err: err}
		}
	}

	ts.scriptOutcome = nav.Outcome
	ts.scriptNote = nav.Status
	ts.loading = true
	m.statusBar.SetLoading(true)
	m.statusBar.SetMessage("")
	m.statusBar.SetScript(ts.scriptOutcome, ts.scriptNote)
	m.urlBar.SetValue(nav.URL)
	m.tabBar.SetTitle(tabID, "Loading...")
	m.tabBar.SetURL(tabID, nav.URL)

	var historyIndex int
	if entry, ok := ts.history.CurrentEntry(); ok {
		historyIndex = entry.Index
	}

	ctx, cancel := context.WithCancel(context.Background())
	ts.cancelFunc = cancel

	loader := m.loader
	renderWidth := ts.viewport.Width
	if renderWidth <= 0 {
		renderWidth = m.width
	}

	return func() tea.Msg {
		page, err := loader.Fetch(ctx, nav, renderWidth)
		return pageLoadedMsg{tabID: tabID, seq: seq, page: page, url: nav.URL, historyIndex: historyIndex, err: err}
	}
}

// handlePageLoaded processes a completed page load.
func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	ts, ok := m.tabStates[msg.tabID]
	if !ok || msg.seq != ts.loadSeq {
		// Tab closed, or superseded by a newer load in the same tab.
		return m, nil
	}
	if errors.Is(msg.err, context.Canceled) {
		return m, nil
	}

	ts.loading = false
	ts.cancelFunc = nil
	active := m.isActive(msg.tabID)
	if active {
		m.statusBar.SetLoading(false)
	}

	if msg.err != nil {
		m.logger.Info("page load failed", zap.String("url", msg.url), zap.Error(msg.err))

		errStyle := lipgloss.NewStyle().
			Foreground(theme.Current.Error).
			Bold(true).
			Padding(2, 4)
		detailStyle := lipgloss.NewStyle().
			Foreground(theme.Current.TextDim).
			Padding(0, 4)

		ts.page = nil
		ts.viewport.SetContent(errStyle.Render("Failed to load page") + "\n\n" +
			detailStyle.Render(fmt.Sprintf("URL: %s\nError: %s", msg.url, msg.err)))
		m.tabBar.SetTitle(msg.tabID, "Error")
		if active {
			m.statusBar.SetMessage(fmt.Sprintf("Error: %s", msg.err))
		}
		return m, nil
	}

	ts.page = msg.page
	ts.viewport.SetContent(msg.page.Content)
	m.tabBar.SetTitle(msg.tabID, msg.page.Title)
	m.tabBar.SetURL(msg.tabID, msg.page.URL)
	if active {
		m.urlBar.SetValue(msg.page.URL)
		m.syncStatusBar()
	}

	if m.visits != nil && !msg.page.Cached {
		err := m.visits.Add(storage.Visit{
			TabID:        msg.tabID,
			URL:          msg.page.URL,
			Title:        msg.page.Title,
			HistoryIndex: msg.historyIndex,
			Outcome:      msg.page.Navigation.Outcome,
		})
		if err != nil {
			m.logger.Warn("recording visit", zap.Error(err))
		}
	}

	return m, nil
}

func (m *Model) isActive(tabID int) bool {
	tab := m.tabBar.ActiveTab()
	return tab != nil && tab.ID == tabID
}

// activeTabState returns the state for the currently active tab.
func (m *Model) activeTabState() *tabState {
	tab := m.tabBar.ActiveTab()
	if tab == nil {
		return nil
	}
	return m.tabStates[tab.ID]
}

// syncTabUI updates the URL bar and status bar to reflect the active tab.
func (m *Model) syncTabUI() {
	if tab := m.tabBar.ActiveTab(); tab != nil {
		m.urlBar.SetValue(tab.URL)
	}
	if ts := m.activeTabState(); ts != nil {
		m.statusBar.SetLoading(ts.loading)
	}
	m.syncStatusBar()
}

// syncStatusBar updates the status bar with current state.
func (m *Model) syncStatusBar() {
	ts := m.activeTabState()
	if ts == nil {
		return
	}
	m.statusBar.SetScrollInfo(ts.viewport.ScrollInfo())
	m.statusBar.SetScript(ts.scriptOutcome, ts.scriptNote)

	if tab := m.tabBar.ActiveTab(); tab != nil {
		m.statusBar.SetURL(tab.URL)
		m.statusBar.SetTitle(tab.Title)
	}

	if ts.page != nil {
		m.statusBar.SetLinkCount(len(ts.page.Links))
	} else {
		m.statusBar.SetLinkCount(0)
	}
}

func (m *Model) toggleVisits() {
	if m.visitsPanel.IsVisible() {
		m.hideVisits()
		return
	}
	if m.visits == nil {
		m.statusBar.SetMessage("Visits are not kept in this session")
		return
	}
	visits, err := m.visits.Recent(0)
	if err != nil {
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
		return
	}
	m.visitsPanel.SetEntries(visits)
	m.visitsPanel.Show()
	m.setMode(ModeVisits)
	m.layout()
}

func (m *Model) hideVisits() {
	m.visitsPanel.Hide()
	m.setMode(ModeNormal)
	m.layout()
}

// helpCommands lists the ex commands shown by showHelp.
var helpCommands = [][2]string{
	{":open <x>", "Open petition number, URL or search"},
	{":tabnew [x]", "New tab, on the home page by default"},
	{":tabclose", "Close tab"},
	{":home", "Open the home page"},
	{":last", "Show the remembered petition"},
	{":forget", "Forget the remembered petition"},
	{":visits", "Toggle visits panel"},
	{":clearvisits", "Delete all recorded visits"},
	{":theme [name]", "Change or cycle theme"},
	{":quit", "Quit petsurf"},
}

// showHelp displays the keybinding reference in the viewport.
func (m *Model) showHelp() {
	ts := m.activeTabState()
	if ts == nil {
		return
	}

	t := theme.Current
	section := lipgloss.NewStyle().Bold(true).Foreground(t.Accent).MarginTop(1)
	keyStyle := lipgloss.NewStyle().Foreground(t.Secondary).Width(16)
	desc := lipgloss.NewStyle().Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render("petsurf Keybindings"))
	sb.WriteString("\n\n")

	row := func(k, d string) {
		sb.WriteString(keyStyle.Render(k))
		sb.WriteString(desc.Render(d))
		sb.WriteString("\n")
	}

	for i, group := range m.keys.FullHelp() {
		sb.WriteString(section.Render(helpSections[i]))
		sb.WriteString("\n\n")
		for _, b := range group {
			h := b.Help()
			row(h.Key, h.Desc)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(section.Render("Commands"))
	sb.WriteString("\n\n")
	for _, c := range helpCommands {
		row(c[0], c[1])
	}

	ts.page = nil
	ts.viewport.SetContent(sb.String())
	m.tabBar.SetActiveTitle("Help - Keybindings")
	m.statusBar.SetTitle("Help - Keybindings")
	m.statusBar.SetLinkCount(0)
}
