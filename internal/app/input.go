package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/browser"
	"github.com/vidyasagar/petsurf/internal/ui"
)

// modeLabels are the status bar names of each mode.
var modeLabels = map[Mode]string{
	ModeNormal:  "NORMAL",
	ModeInsert:  "INSERT",
	ModeCommand: "COMMAND",
	ModeFollow:  "FOLLOW",
	ModeSearch:  "SEARCH",
	ModeVisits:  "VISITS",
}

func (m *Model) setMode(mode Mode) {
	m.mode = mode
	m.statusBar.SetMode(modeLabels[mode])
}

// openCommandBar switches to a command bar mode.
func (m *Model) openCommandBar(mode Mode, ct ui.CommandType) tea.Cmd {
	m.setMode(mode)
	return m.commandBar.Open(ct)
}

// handleKeyMsg dispatches a key to the handler of the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeInsert:
		return m.handleInsertMode(msg)
	case ModeCommand, ModeSearch, ModeFollow:
		return m.handleCommandMode(msg)
	case ModeVisits:
		return m.handleVisitsMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// scroll applies a scrolling binding to the active page. It reports false
// when msg is not a scrolling key.
func (m *Model) scroll(msg tea.KeyMsg) bool {
	ts := m.activeTabState()
	if ts == nil {
		return false
	}
	vp := &ts.viewport
	moves := []struct {
		binding key.Binding
		move    func()
	}{
		{m.keys.ScrollDown, func() { vp.LineDown(1) }},
		{m.keys.ScrollUp, func() { vp.LineUp(1) }},
		{m.keys.HalfPageDown, func() { vp.HalfViewDown() }},
		{m.keys.HalfPageUp, func() { vp.HalfViewUp() }},
		{m.keys.GotoBottom, func() { vp.GotoBottom() }},
	}
	for _, mv := range moves {
		if key.Matches(msg, mv.binding) {
			mv.move()
			return true
		}
	}
	return false
}

// handleGPrefix completes "gg", "gt" and "gT".
func (m *Model) handleGPrefix(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "g":
		if ts := m.activeTabState(); ts != nil {
			ts.viewport.GotoTop()
		}
	case "t":
		m.tabBar.NextTab()
		m.syncTabUI()
	case "T":
		m.tabBar.PrevTab()
		m.syncTabUI()
	default:
		return false
	}
	m.syncStatusBar()
	return true
}

// historyMove loads the entry step moved to, without adding a new one.
func (m *Model) historyMove(step func(*browser.History) (string, bool)) tea.Cmd {
	ts := m.activeTabState()
	if ts == nil {
		return nil
	}
	if target, ok := step(ts.history); ok {
		return m.loadPage(target, browser.KeepEntry)
	}
	return nil
}

// handleNormalMode processes keys while browsing.
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.lastGKey {
		m.lastGKey = false
		if m.handleGPrefix(msg) {
			return m, nil
		}
	}
	if m.scroll(msg) {
		m.syncStatusBar()
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.GotoTop):
		m.lastGKey = true
		return m, nil

	case key.Matches(msg, m.keys.OpenURL):
		m.setMode(ModeInsert)
		m.urlBar.Reset()
		cmd = m.urlBar.Focus()
	case key.Matches(msg, m.keys.FollowLink):
		cmd = m.openCommandBar(ModeFollow, ui.CommandFollow)
	case key.Matches(msg, m.keys.CommandMode):
		cmd = m.openCommandBar(ModeCommand, ui.CommandEx)
	case key.Matches(msg, m.keys.SearchMode):
		cmd = m.openCommandBar(ModeSearch, ui.CommandSearch)

	case key.Matches(msg, m.keys.Back):
		cmd = m.historyMove((*browser.History).Back)
	case key.Matches(msg, m.keys.Forward):
		cmd = m.historyMove((*browser.History).Forward)
	case key.Matches(msg, m.keys.Reload):
		if ts := m.activeTabState(); ts != nil && ts.history.Current() != "" {
			m.loader.Evict(ts.history.Current())
			cmd = m.loadPage(ts.history.Current(), browser.KeepEntry)
		}
	case key.Matches(msg, m.keys.Home):
		cmd = m.navigateTo(m.homepage)

	case key.Matches(msg, m.keys.NewTab):
		cmd = m.newTab(m.homepage)
	case key.Matches(msg, m.keys.CloseTab):
		if !m.closeTab() {
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.NextTab):
		m.tabBar.NextTab()
		m.syncTabUI()
	case key.Matches(msg, m.keys.PrevTab):
		m.tabBar.PrevTab()
		m.syncTabUI()

	case key.Matches(msg, m.keys.Visits):
		m.toggleVisits()
	case key.Matches(msg, m.keys.Help):
		m.showHelp()

	default:
		if ts := m.activeTabState(); ts != nil {
			_, cmd = ts.viewport.Update(msg)
		}
	}

	m.syncStatusBar()
	return m, cmd
}

// handleVisitsMode processes keys while the visits panel has focus.
func (m Model) handleVisitsMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &m.visitsPanel
	switch msg.String() {
	case "j", "down":
		vp.Move(1)
	case "k", "up":
		vp.Move(-1)
	case "g", "home":
		vp.GotoTop()
	case "G", "end":
		vp.GotoBottom()
	case "o":
		if f := vp.CycleFilter(); f != "" {
			m.statusBar.SetMessage("Showing " + f + " visits")
		} else {
			m.statusBar.SetMessage("Showing all visits")
		}
	case "d":
		m.removeSelectedVisit()
	case "enter":
		if v := vp.SelectedEntry(); v != nil {
			target := v.URL
			m.hideVisits()
			return m, m.newTab(target)
		}
	case "esc", "q", "V", "ctrl+h":
		m.hideVisits()
	}
	return m, nil
}

func (m *Model) removeSelectedVisit() {
	v := m.visitsPanel.SelectedEntry()
	if v == nil || m.visits == nil {
		return
	}
	if err := m.visits.Remove(v.ID); err != nil {
		m.logger.Warn("removing visit", zap.String("id", v.ID), zap.Error(err))
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
		return
	}
	m.visitsPanel.RemoveSelected()
}

// handleInsertMode processes keys while the URL bar has focus.
func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		input := strings.TrimSpace(m.urlBar.Value())
		m.urlBar.Blur()
		m.setMode(ModeNormal)
		if msg.Type == tea.KeyEnter && input != "" {
			return m, m.navigateTo(input)
		}
		m.syncTabUI()
		return m, nil
	}

	_, cmd := m.urlBar.Update(msg)
	return m, cmd
}

// handleCommandMode processes keys for :commands, / search and f follow.
func (m Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commandBar.Close()
		m.setMode(ModeNormal)
		return m, nil
	case tea.KeyEnter:
		result := m.commandBar.Submit()
		m.setMode(ModeNormal)
		return m.handleCommandResult(result)
	}

	_, cmd := m.commandBar.Update(msg)
	return m, cmd
}

// handleCommandResult runs a submitted command bar line.
func (m Model) handleCommandResult(result ui.CommandResult) (tea.Model, tea.Cmd) {
	switch result.Type {
	case ui.CommandEx:
		return m.executeCommand(result.Value)
	case ui.CommandSearch:
		if strings.TrimSpace(result.Value) == "" {
			return m, nil
		}
		return m, m.navigateTo(browser.SearchURL(result.Value))
	case ui.CommandFollow:
		return m.followLink(result.Value)
	}
	return m, nil
}
