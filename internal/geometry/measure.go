package geometry

import (
	"errors"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// ErrInvalidGeometry is returned when externally supplied geometry is out of range.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Element is anything that can report its rendered bounds.
// ok is false while the element is absent or has not been laid out yet.
type Element interface {
	Bounds() (r Rect, ok bool)
}

// Box is an Element whose bounds are assigned by a layout pass.
// The zero value is an element that has not been laid out.
type Box struct {
	mu   sync.RWMutex
	rect Rect
	set  bool
}

// NewBox returns a Box already laid out at r.
func NewBox(r Rect) *Box {
	return &Box{rect: r, set: true}
}

// Set records the bounds produced by the latest layout.
func (b *Box) Set(r Rect) {
	b.mu.Lock()
	b.rect, b.set = r, true
	b.mu.Unlock()
}

// Clear marks the box as no longer rendered.
func (b *Box) Clear() {
	b.mu.Lock()
	b.rect, b.set = Rect{}, false
	b.mu.Unlock()
}

// Bounds implements Element.
func (b *Box) Bounds() (Rect, bool) {
	if b == nil {
		return Rect{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rect, b.set
}

// Block measures a rendered string. Only its size is meaningful; the origin is
// always zero because the block is measured before it is placed.
type Block struct {
	Render func() string
}

// Bounds implements Element. An empty rendering counts as not rendered.
func (b Block) Bounds() (Rect, bool) {
	if b.Render == nil {
		return Rect{}, false
	}
	s := b.Render()
	if s == "" {
		return Rect{}, false
	}
	w, h := lipgloss.Size(s)
	return Rect{Width: float64(w), Height: float64(h)}, true
}

// Measure captures a Snapshot. Absent elements leave their fields at zero,
// negative values are clamped to zero.
func Measure(viewport Size, trigger, panel, content Element) Snapshot {
	var s Snapshot
	if r, ok := bounds(trigger); ok {
		s.TriggerTop = nonNegative(r.Top)
		s.TriggerLeft = nonNegative(r.Left)
		s.TriggerHeight = nonNegative(r.Height)
		s.TriggerWidth = nonNegative(r.Width)
	}
	if r, ok := bounds(panel); ok {
		s.PanelHeight = nonNegative(r.Height)
		s.PanelWidth = nonNegative(r.Width)
	}
	if r, ok := bounds(content); ok {
		s.PanelContentHeight = nonNegative(r.Height)
	}
	s.ViewportWidth = nonNegative(viewport.Width)
	s.ViewportHeight = nonNegative(viewport.Height)
	return s
}

// Provider binds a viewport source and the three measured elements together.
type Provider struct {
	Viewport func() Size
	Trigger  Element
	Panel    Element
	Content  Element
}

// Measure reads the current geometry of the bound elements.
func (p Provider) Measure() Snapshot {
	var vp Size
	if p.Viewport != nil {
		vp = p.Viewport()
	}
	return Measure(vp, p.Trigger, p.Panel, p.Content)
}

func bounds(e Element) (Rect, bool) {
	if e == nil {
		return Rect{}, false
	}
	return e.Bounds()
}

func nonNegative(v float64) float64 {
	if v < 0 {
		logrus.Debugf("clamping negative geometry value %v to 0", v)
		return 0
	}
	return v
}
