// Package geometry captures the live layout of a trigger, its floating panel
// and the viewport as an immutable Snapshot.
package geometry

import (
	"fmt"

	"github.com/ensigniasec/popover/internal/validate"
)

// Size is a width/height pair in terminal cells.
type Size struct {
	Width  float64
	Height float64
}

// Rect is a box positioned relative to the top-left corner of the viewport.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside the rect. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Snapshot is the geometry captured by one measurement pass.
// It is recomputed as a whole and never patched in place.
type Snapshot struct {
	TriggerTop         float64 `json:"trigger_top" validate:"gte=0"`
	TriggerLeft        float64 `json:"trigger_left" validate:"gte=0"`
	TriggerHeight      float64 `json:"trigger_height" validate:"gte=0"`
	TriggerWidth       float64 `json:"trigger_width" validate:"gte=0"`
	PanelHeight        float64 `json:"panel_height" validate:"gte=0"`
	PanelWidth         float64 `json:"panel_width" validate:"gte=0"`
	ViewportWidth      float64 `json:"viewport_width" validate:"gte=0"`
	ViewportHeight     float64 `json:"viewport_height" validate:"gte=0"`
	PanelContentHeight float64 `json:"panel_content_height" validate:"gte=0"`
}

// Trigger returns the trigger box of the snapshot.
func (s Snapshot) Trigger() Rect {
	return Rect{Top: s.TriggerTop, Left: s.TriggerLeft, Width: s.TriggerWidth, Height: s.TriggerHeight}
}

// Viewport returns the viewport size of the snapshot.
func (s Snapshot) Viewport() Size {
	return Size{Width: s.ViewportWidth, Height: s.ViewportHeight}
}

// Validate checks that every field is non-negative.
func (s Snapshot) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGeometry, err)
	}
	return nil
}
