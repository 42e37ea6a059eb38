package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/popover/internal/geometry"
	"github.com/ensigniasec/popover/internal/placement"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.relayout(x.Width, x.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(x)

	case tea.MouseMsg:
		if x.Action == tea.MouseActionPress && x.Button == tea.MouseButtonLeft {
			m.handlePress(x.X, x.Y)
		}
		return m, nil

	case taskMsg:
		if x.run != nil {
			x.run()
		}
		return m, m.listenForTasks()
	}
	return m, nil
}

// relayout moves the triggers for the new size before announcing it, so open
// panels measure the new trigger positions.
func (m *Model) relayout(width, height int) {
	m.screen.set(width, height)
	for _, t := range m.triggers {
		t.layout(width, height)
	}
	m.help.Width = width
	m.resize.Publish(geometry.Size{Width: float64(width), Height: float64(height)})
}

// handleKey processes key bindings and returns updated model and command.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) { // nolint:ireturn
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible

	case key.Matches(msg, m.keys.Next):
		m.focused = (m.focused + 1) % len(m.popovers)

	case key.Matches(msg, m.keys.Prev):
		m.focused = (m.focused + len(m.popovers) - 1) % len(m.popovers)

	case key.Matches(msg, m.keys.Activate):
		m.closeAllExcept(m.focused)
		m.focusedPopover().ctrl.Activate()

	case key.Matches(msg, m.keys.Close):
		m.closeAllExcept(-1)

	case key.Matches(msg, m.keys.Grow):
		m.focusedPopover().grow()

	case key.Matches(msg, m.keys.Shrink):
		m.focusedPopover().shrink()

	case key.Matches(msg, m.keys.Prefer):
		m.cyclePreferred()
	}
	return m, nil
}

// handlePress routes a left click to panels first, then to triggers.
func (m *Model) handlePress(x, y int) {
	fx, fy := float64(x), float64(y)
	onPanel := false
	for _, p := range m.popovers {
		if p.press(fx, fy) {
			onPanel = true
		}
	}
	if onPanel {
		return
	}
	for i, t := range m.triggers {
		if r, ok := t.box.Bounds(); ok && r.Contains(fx, fy) {
			m.focused = i
			m.popovers[i].ctrl.Activate()
			return
		}
	}
}

func (m *Model) closeAllExcept(keep int) {
	for i, p := range m.popovers {
		if i != keep {
			p.ctrl.Close()
		}
	}
}

// cyclePreferred steps the preferred position unset -> top -> bottom -> unset
// and re-resolves every open panel.
func (m *Model) cyclePreferred() {
	switch m.cfg.PreferredPosition {
	case placement.PositionUnset:
		m.cfg.PreferredPosition = placement.Top
	case placement.Top:
		m.cfg.PreferredPosition = placement.Bottom
	default:
		m.cfg.PreferredPosition = placement.PositionUnset
	}
	prefs := m.cfg.Preferences()
	for _, p := range m.popovers {
		p.ctrl.SetPreferences(prefs)
	}
}
