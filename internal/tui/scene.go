package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/popover/internal/geometry"
)

var (
	triggerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorMuted)).
			Padding(0, 1)
	focusedTriggerStyle = triggerStyle.
				BorderForeground(lipgloss.Color(colorAccent)).
				Bold(true)
	openTriggerStyle = triggerStyle.
				BorderForeground(lipgloss.Color(colorOpen))
)

// corner says where a trigger sits on the screen.
type corner int

const (
	topLeft corner = iota
	topRight
	center
	bottomLeft
	bottomRight
)

// trigger is a clickable button that owns one popover.
type trigger struct {
	label  string
	corner corner
	box    *geometry.Box
}

func newTriggers() []*trigger {
	return []*trigger{
		{label: "Top left", corner: topLeft, box: &geometry.Box{}},
		{label: "Top right", corner: topRight, box: &geometry.Box{}},
		{label: "Center", corner: center, box: &geometry.Box{}},
		{label: "Bottom left", corner: bottomLeft, box: &geometry.Box{}},
		{label: "Bottom right", corner: bottomRight, box: &geometry.Box{}},
	}
}

func (t *trigger) render(focused, open bool) string {
	switch {
	case focused:
		return focusedTriggerStyle.Render(t.label)
	case open:
		return openTriggerStyle.Render(t.label)
	default:
		return triggerStyle.Render(t.label)
	}
}

// layout positions the trigger for a width x height screen.
func (t *trigger) layout(width, height int) {
	w, h := lipgloss.Size(triggerStyle.Render(t.label))
	left, right := screenMargin, width-w-screenMargin
	top, bottom := headerLines, height-h-footerLines

	var x, y int
	switch t.corner {
	case topLeft:
		x, y = left, top
	case topRight:
		x, y = right, top
	case center:
		x, y = (width-w)/2, (height-h)/2
	case bottomLeft:
		x, y = left, bottom
	case bottomRight:
		x, y = right, bottom
	}
	t.box.Set(geometry.Rect{
		Top:    float64(max(y, 0)),
		Left:   float64(max(x, 0)),
		Width:  float64(w),
		Height: float64(h),
	})
}

// screen is the terminal size shared by every measurer.
type screen struct {
	mu            sync.RWMutex
	width, height int
}

func (s *screen) set(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

func (s *screen) dims() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

func (s *screen) size() geometry.Size {
	w, h := s.dims()
	return geometry.Size{Width: float64(w), Height: float64(h)}
}
