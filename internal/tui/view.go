package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/popover/internal/config"
	"github.com/ensigniasec/popover/internal/lifecycle"
	"github.com/ensigniasec/popover/internal/placement"
	"github.com/ensigniasec/popover/internal/portal"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
)

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	width, height := m.screen.dims()
	if width == 0 || height == 0 {
		return "Starting...\n"
	}
	return m.host.Render(m.baseView(width, height), width, height)
}

// baseView draws the triggers, the title and the footer on a blank canvas.
func (m Model) baseView(width, height int) string {
	blank := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = blank
	}
	out := strings.Join(rows, "\n")

	out = portal.Overlay(out, titleStyle.Render("popover demo"), screenMargin, 0)
	for i, t := range m.triggers {
		r, ok := t.box.Bounds()
		if !ok {
			continue
		}
		view := t.render(i == m.focused, m.popovers[i].ctrl.IsOpen())
		out = portal.Overlay(out, view, int(r.Left), int(r.Top))
	}

	footer := lipgloss.JoinVertical(lipgloss.Left, m.renderStatus(), m.help.View(m.keys))
	return portal.Overlay(out, footer, 0, height-lipgloss.Height(footer))
}

// renderStatus describes the focused popover.
func (m Model) renderStatus() string {
	p := m.focusedPopover()
	if p == nil {
		return ""
	}
	st := p.ctrl.Status()
	line := fmt.Sprintf("%s: %s", p.trigger.label, st.State)
	switch {
	case st.State != lifecycle.Open:
	case st.Measuring:
		line += " (measuring)"
	default:
		width, _ := m.screen.dims()
		layout := "floating"
		switch {
		case m.cfg.Mode == config.ModeAbsolute:
			layout = "absolute"
		case p.sheet(width, st.Decision):
			layout = "sheet"
		}
		line += fmt.Sprintf(" position=%s anchor=%s layout=%s", st.Decision.Position, st.Decision.Anchor, layout)
	}
	if pref := m.cfg.PreferredPosition; pref != placement.PositionUnset {
		line += " preferred=" + pref.String()
	}
	return statusStyle.Render(line)
}
