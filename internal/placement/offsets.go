package placement

import (
	"math"

	"github.com/ensigniasec/popover/internal/geometry"
)

// Offsets are whole-cell coordinates for direct absolute placement.
type Offsets struct {
	Left int `json:"left"`
	Top  int `json:"top"`
}

// AbsoluteOffsets places the panel directly under the trigger, left aligned,
// without consulting any fit predicate.
func AbsoluteOffsets(s geometry.Snapshot) Offsets {
	return Offsets{
		Left: int(math.Floor(s.TriggerLeft)),
		Top:  int(math.Floor(s.TriggerTop + s.TriggerHeight)),
	}
}

// Origin returns the top-left corner of the panel for d. An unset position is
// treated as Bottom; the left edge never goes below zero.
func Origin(d Decision, s geometry.Snapshot) Offsets {
	top := s.TriggerTop + s.TriggerHeight
	if d.Position == Top {
		top = s.TriggerTop - s.PanelHeight
	}
	left := s.TriggerLeft
	if d.Anchor == End {
		left = s.TriggerLeft + s.TriggerWidth - s.PanelWidth
	}
	return Offsets{
		Left: int(math.Floor(math.Max(left, 0))),
		Top:  int(math.Floor(math.Max(top, 0))),
	}
}
