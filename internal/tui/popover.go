package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/popover/internal/clickoutside"
	"github.com/ensigniasec/popover/internal/config"
	"github.com/ensigniasec/popover/internal/geometry"
	"github.com/ensigniasec/popover/internal/lifecycle"
	"github.com/ensigniasec/popover/internal/placement"
	"github.com/ensigniasec/popover/internal/portal"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(0, 1)
	sheetStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(0, 1)
	closeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarn)).
			Bold(true)
)

// popover is one trigger's floating panel: content, controller, outside-click
// detector and the rectangle it was last painted at.
type popover struct {
	cfg     *config.Config
	trigger *trigger
	screen  *screen
	ctrl    *lifecycle.Controller
	outside *clickoutside.Detector
	lines   []string

	// painted is where the panel was drawn in the last frame.
	painted *geometry.Box
	// closeBox is the close button row inside a bottom sheet.
	closeBox *geometry.Box
}

// host adapts the portal host so the panel sits above the base view.
type host struct {
	*portal.Host
}

// Mount implements lifecycle.Portal.
func (h host) Mount(node portal.Node) portal.Handle {
	return h.MountAt(node, portal.ZPopover)
}

func newPopover(cfg *config.Config, t *trigger, scr *screen, h *portal.Host, opts ...lifecycle.Option) *popover {
	p := &popover{
		cfg:      cfg,
		trigger:  t,
		screen:   scr,
		painted:  &geometry.Box{},
		closeBox: &geometry.Box{},
	}
	for i := 0; i < initialContentLines; i++ {
		p.lines = append(p.lines, defaultLine(t.label, i))
	}

	measurer := geometry.Provider{
		Viewport: scr.size,
		Trigger:  t.box,
		Panel:    geometry.Block{Render: p.renderFloating},
		Content:  geometry.Block{Render: p.renderBody},
	}
	all := append([]lifecycle.Option{
		lifecycle.WithPreferences(cfg.Preferences()),
		lifecycle.WithMeasureDelay(cfg.MeasureDelay),
		lifecycle.WithCloseDebounce(cfg.OutsideClickDebounce),
		lifecycle.WithID(t.label),
		lifecycle.WithOnChange(p.changed),
	}, opts...)
	p.ctrl = lifecycle.New(measurer, host{h}, portal.NodeFunc(p.layer), all...)
	p.outside = clickoutside.New(p.ctrl.RequestClose,
		clickoutside.FromElement(t.box),
		clickoutside.FromElement(p.painted),
	)
	p.ctrl.Start()
	return p
}

func defaultLine(label string, i int) string {
	switch i {
	case 0:
		return "Popover for " + label
	case 1:
		return "+/- changes this content"
	case 2:
		return "esc or a click outside closes"
	default:
		return fmt.Sprintf("Line %d", i+1)
	}
}

// grow adds a content line and re-measures.
func (p *popover) grow() {
	if len(p.lines) >= maxContentLines {
		return
	}
	p.lines = append(p.lines, defaultLine(p.trigger.label, len(p.lines)))
	p.ctrl.OnContentChanged()
}

// shrink removes a content line and re-measures.
func (p *popover) shrink() {
	if len(p.lines) <= 1 {
		return
	}
	p.lines = p.lines[:len(p.lines)-1]
	p.ctrl.OnContentChanged()
}

func (p *popover) changed(st lifecycle.Status) {
	if st.State == lifecycle.Closed {
		p.painted.Clear()
		p.closeBox.Clear()
	}
}

func (p *popover) renderBody() string {
	return strings.Join(p.lines, "\n")
}

// renderFloating is the panel as drawn next to its trigger.
func (p *popover) renderFloating() string {
	return panelStyle.Render(p.renderBody())
}

// renderSheet is the full-width panel with a close button.
func (p *popover) renderSheet(width int) string {
	w := width - sheetStyle.GetHorizontalFrameSize()
	if w < 1 {
		w = 1
	}
	closeBtn := lipgloss.PlaceHorizontal(w, lipgloss.Right, closeStyle.Render("[ "+p.cfg.CloseText+" ]"))
	return sheetStyle.Width(width).Render(p.renderBody() + "\n\n" + closeBtn)
}

// sheet reports whether the panel should render as a bottom sheet.
func (p *popover) sheet(width int, d placement.Decision) bool {
	if p.cfg.Mode == config.ModeAbsolute {
		return false
	}
	return width < p.cfg.BottomSheetBelow || !d.Placed()
}

// layer implements portal.Node.
func (p *popover) layer(width, height int) (string, int, int) {
	st := p.ctrl.Status()
	if st.State != lifecycle.Open || st.Measuring {
		p.painted.Clear()
		p.closeBox.Clear()
		return "", 0, 0
	}

	var (
		view string
		x, y int
	)
	switch {
	case p.cfg.Mode == config.ModeAbsolute:
		off := placement.AbsoluteOffsets(st.Snapshot)
		view, x, y = p.renderFloating(), off.Left, off.Top
		p.closeBox.Clear()
	case p.sheet(width, st.Decision):
		view = p.renderSheet(width)
		x, y = 0, height-lipgloss.Height(view)
		if y < 0 {
			y = 0
		}
		p.closeBox.Set(geometry.Rect{
			Top:    float64(y + lipgloss.Height(view) - 1),
			Left:   0,
			Width:  float64(width),
			Height: 1,
		})
	default:
		off := placement.Origin(st.Decision, st.Snapshot)
		view, x, y = p.renderFloating(), off.Left, off.Top
		p.closeBox.Clear()
	}

	w, h := lipgloss.Size(view)
	p.painted.Set(geometry.Rect{Top: float64(y), Left: float64(x), Width: float64(w), Height: float64(h)})
	return view, x, y
}

// press routes a left click at (x, y). It reports whether the click landed on
// this popover's panel.
func (p *popover) press(x, y float64) bool {
	if !p.ctrl.IsOpen() {
		return false
	}
	if r, ok := p.closeBox.Bounds(); ok && r.Contains(x, y) {
		p.ctrl.Close()
		return true
	}
	if r, ok := p.painted.Bounds(); ok && r.Contains(x, y) {
		p.ctrl.CancelPendingClose()
		return true
	}
	p.outside.HandlePointer(x, y)
	return false
}
