// Package clickoutside reports pointer presses that land outside a set of
// protected regions.
package clickoutside

import (
	"sync"

	"github.com/ensigniasec/popover/internal/geometry"
)

// Region returns the current bounds of a protected area; ok is false while the
// area is not rendered.
type Region func() (r geometry.Rect, ok bool)

// FromElement adapts a geometry.Element to a Region.
func FromElement(e geometry.Element) Region {
	return func() (geometry.Rect, bool) {
		if e == nil {
			return geometry.Rect{}, false
		}
		return e.Bounds()
	}
}

// Detector invokes its callback for presses outside every protected region.
type Detector struct {
	mu        sync.Mutex
	regions   []Region
	onOutside func()
	disabled  bool
}

// New creates a detector protecting regions.
func New(onOutside func(), regions ...Region) *Detector {
	return &Detector{onOutside: onOutside, regions: regions}
}

// Protect adds another region.
func (d *Detector) Protect(r Region) {
	d.mu.Lock()
	d.regions = append(d.regions, r)
	d.mu.Unlock()
}

// SetEnabled turns reporting on or off.
func (d *Detector) SetEnabled(enabled bool) {
	d.mu.Lock()
	d.disabled = !enabled
	d.mu.Unlock()
}

// HandlePointer checks a press at (x, y). It reports whether the callback fired.
func (d *Detector) HandlePointer(x, y float64) bool {
	d.mu.Lock()
	if d.disabled || d.onOutside == nil {
		d.mu.Unlock()
		return false
	}
	regions := append([]Region(nil), d.regions...)
	cb := d.onOutside
	d.mu.Unlock()

	for _, region := range regions {
		if r, ok := region(); ok && r.Contains(x, y) {
			return false
		}
	}
	cb()
	return true
}
