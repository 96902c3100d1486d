package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/petsurf/internal/theme"
)

// CommandType identifies what the command bar was opened for.
type CommandType int

const (
	CommandNone   CommandType = iota
	CommandEx                 // :
	CommandSearch             // /
	CommandFollow             // f
)

// prompts holds the prompt and placeholder of each CommandType.
var prompts = map[CommandType][2]string{
	CommandEx:     {":", "command..."},
	CommandSearch: {"/", "search petitions..."},
	CommandFollow: {"f", "link #..."},
}

// CommandResult is a submitted command bar line.
type CommandResult struct {
	Type  CommandType
	Value string
}

// CommandBar is the bottom input line. Ex commands get Tab completion and
// Up/Down recall of earlier lines.
type CommandBar struct {
	textinput.Model
	kind        CommandType
	width       int
	past        []string // submitted ex commands, oldest first
	recallAt    int      // how far back Up has gone; 0 is the live line
	completions []string
}

// NewCommandBar creates a closed command bar.
func NewCommandBar() CommandBar {
	ti := textinput.New()
	ti.CharLimit = 256
	return CommandBar{Model: ti}
}

// SetCompletions sets the ex command names offered on Tab.
func (c *CommandBar) SetCompletions(names []string) {
	c.completions = slices.Clone(names)
}

// Complete extends prefix to the one matching command name, or to the
// longest prefix shared by every match.
func (c *CommandBar) Complete(prefix string) string {
	var common string
	found := false
	for _, name := range c.completions {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if !found {
			common, found = name, true
			continue
		}
		for !strings.HasPrefix(name, common) {
			common = common[:len(common)-1]
		}
	}
	if !found {
		return prefix
	}
	return common
}

// SetWidth sets the command bar width.
func (c *CommandBar) SetWidth(w int) {
	c.width = w
	c.Model.Width = max(1, w-4)
}

// Open shows the bar for ct and focuses it.
func (c *CommandBar) Open(ct CommandType) tea.Cmd {
	c.kind = ct
	c.recallAt = 0
	c.Reset()
	p := prompts[ct]
	c.Prompt, c.Placeholder = p[0], p[1]
	return c.Focus()
}

// Close hides the bar and drops its text.
func (c *CommandBar) Close() {
	c.kind = CommandNone
	c.Blur()
	c.Reset()
}

// IsActive reports whether the bar is open.
func (c *CommandBar) IsActive() bool { return c.kind != CommandNone }

// SetValue replaces the text and moves the cursor to its end.
func (c *CommandBar) SetValue(val string) {
	c.Model.SetValue(val)
	c.CursorEnd()
}

// Submit closes the bar and returns what was typed.
func (c *CommandBar) Submit() CommandResult {
	res := CommandResult{Type: c.kind, Value: strings.TrimSpace(c.Value())}
	if res.Type == CommandEx && res.Value != "" {
		c.past = append(c.past, res.Value)
	}
	c.Close()
	return res
}

// recall shows the ex command delta steps further back in the past.
func (c *CommandBar) recall(delta int) {
	at := min(max(c.recallAt+delta, 0), len(c.past))
	if at == c.recallAt {
		return
	}
	c.recallAt = at
	if at == 0 {
		c.Reset()
		return
	}
	c.SetValue(c.past[len(c.past)-at])
}

// Update handles keys while the bar is open. Enter is left to the caller.
func (c *CommandBar) Update(msg tea.Msg) (*CommandBar, tea.Cmd) {
	if !c.IsActive() {
		return c, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			c.Close()
			return c, nil
		case tea.KeyEnter:
			return c, nil
		}
		if c.kind == CommandEx {
			switch km.Type {
			case tea.KeyTab:
				if v := c.Value(); !strings.Contains(v, " ") {
					c.SetValue(c.Complete(v))
				}
				return c, nil
			case tea.KeyUp:
				c.recall(1)
				return c, nil
			case tea.KeyDown:
				c.recall(-1)
				return c, nil
			}
		}
	}

	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

// View renders the bar, or nothing when closed.
func (c *CommandBar) View() string {
	if !c.IsActive() {
		return ""
	}
	t := theme.Current
	return lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		Width(c.width).
		Render(c.Model.View())
}
