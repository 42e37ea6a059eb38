// Package placement decides on which side of a trigger a floating panel is
// rendered and how it is aligned, given a geometry snapshot and the caller's
// ranked preferences.
//
// There is no scoring: the caller's order is the tie-break, and the first
// entry whose fit predicate holds wins.
package placement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ensigniasec/popover/internal/geometry"
)

// Sentinel errors for parsing preference values.
var (
	ErrUnknownPosition = errors.New("unknown position")
	ErrUnknownAnchor   = errors.New("unknown anchor")
)

// Position is the side of the trigger the panel renders on.
type Position int

const (
	PositionUnset Position = iota
	Top
	Bottom
)

func (p Position) String() string {
	switch p {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case PositionUnset:
		return ""
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// IsValid reports whether p is one of the declared positions, unset included.
func (p Position) IsValid() bool {
	return p >= PositionUnset && p <= Bottom
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPosition, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePosition parses "top", "bottom" or the empty string.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "":
		return PositionUnset, nil
	default:
		return PositionUnset, fmt.Errorf("%w: %q", ErrUnknownPosition, s)
	}
}

// Anchor is the horizontal alignment of the panel relative to the trigger.
// The zero value is Start, which is also the fallback when nothing fits.
type Anchor int

const (
	Start Anchor = iota
	End
)

func (a Anchor) String() string {
	switch a {
	case Start:
		return "start"
	case End:
		return "end"
	default:
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
}

// IsValid reports whether a is one of the declared anchors.
func (a Anchor) IsValid() bool {
	return a == Start || a == End
}

// MarshalText implements encoding.TextMarshaler.
func (a Anchor) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAnchor, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Anchor) UnmarshalText(b []byte) error {
	v, err := ParseAnchor(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAnchor parses "start" or "end".
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return Start, nil
	case "end":
		return End, nil
	default:
		return Start, fmt.Errorf("%w: %q", ErrUnknownAnchor, s)
	}
}

// DefaultPositions is the fallback order used when the caller has no opinion.
func DefaultPositions() []Position { return []Position{Bottom, Top} }

// DefaultAnchors is the fallback anchor order used when the caller has no opinion.
func DefaultAnchors() []Anchor { return []Anchor{Start, End} }

// Decision is the outcome of one resolve pass.
type Decision struct {
	Position Position `json:"position"`
	Anchor   Anchor   `json:"anchor"`
	// AnchorFeasible is false when no desired anchor fit and Anchor holds the Start fallback.
	AnchorFeasible bool `json:"anchor_feasible"`
}

// Placed reports whether a position was found.
func (d Decision) Placed() bool { return d.Position != PositionUnset }

// FitsTop reports whether the panel fits above the trigger.
func FitsTop(s geometry.Snapshot) bool {
	return s.TriggerTop-s.PanelHeight > 0
}

// FitsBottom reports whether the panel fits below the trigger.
func FitsBottom(s geometry.Snapshot) bool {
	return s.TriggerTop+s.TriggerHeight+s.PanelHeight < s.ViewportHeight
}

// FitsStart reports whether the panel fits when aligned to the trigger's left edge.
func FitsStart(s geometry.Snapshot) bool {
	return s.TriggerLeft+s.PanelWidth < s.ViewportWidth
}

// FitsEnd reports whether the panel fits when aligned to the trigger's right edge.
func FitsEnd(s geometry.Snapshot) bool {
	return s.TriggerLeft+s.TriggerWidth >= s.PanelWidth
}

// PositionFits applies the fit predicate for p. Unset and unknown values never fit.
func PositionFits(s geometry.Snapshot, p Position) bool {
	switch p {
	case Top:
		return FitsTop(s)
	case Bottom:
		return FitsBottom(s)
	default:
		return false
	}
}

// AnchorFits applies the fit predicate for a.
func AnchorFits(s geometry.Snapshot, a Anchor) bool {
	switch a {
	case Start:
		return FitsStart(s)
	case End:
		return FitsEnd(s)
	default:
		return false
	}
}

// FeasiblePositions filters desired down to the positions that fit, keeping order.
func FeasiblePositions(s geometry.Snapshot, desired []Position) []Position {
	out := make([]Position, 0, len(desired))
	for _, p := range desired {
		if PositionFits(s, p) {
			out = append(out, p)
		}
	}
	return out
}

// FeasibleAnchors filters desired down to the anchors that fit, keeping order.
func FeasibleAnchors(s geometry.Snapshot, desired []Anchor) []Anchor {
	out := make([]Anchor, 0, len(desired))
	for _, a := range desired {
		if AnchorFits(s, a) {
			out = append(out, a)
		}
	}
	return out
}

// Resolve picks the first feasible position and the first feasible anchor.
// Position stays unset when nothing fits; the anchor then falls back to Start.
func Resolve(s geometry.Snapshot, positions []Position, anchors []Anchor) Decision {
	d := Decision{Anchor: Start}
	if fit := FeasiblePositions(s, positions); len(fit) > 0 {
		d.Position = fit[0]
	}
	if fit := FeasibleAnchors(s, anchors); len(fit) > 0 {
		d.Anchor = fit[0]
		d.AnchorFeasible = true
	}
	return d
}

// Prefer moves preferred to the front of positions. The remaining entries keep
// their relative order and stay available as fallbacks. An unset preference
// returns a copy of positions unchanged.
func Prefer(preferred Position, positions []Position) []Position {
	out := make([]Position, 0, len(positions)+1)
	if preferred == PositionUnset {
		return append(out, positions...)
	}
	out = append(out, preferred)
	for _, p := range positions {
		if p != preferred {
			out = append(out, p)
		}
	}
	return out
}

// Preferences is the caller's ranked wish list.
type Preferences struct {
	Positions []Position `yaml:"positions" validate:"dive,position"`
	Anchors   []Anchor   `yaml:"anchors" validate:"dive,anchor"`
	Preferred Position   `yaml:"preferred_position" validate:"position"`
}

// DefaultPreferences returns the default orders with no preferred position.
func DefaultPreferences() Preferences {
	return Preferences{Positions: DefaultPositions(), Anchors: DefaultAnchors()}
}

// Ranked returns the position order after applying the preferred position.
// Empty lists fall back to the defaults.
func (p Preferences) Ranked() ([]Position, []Anchor) {
	positions := p.Positions
	if len(positions) == 0 {
		positions = DefaultPositions()
	}
	anchors := p.Anchors
	if len(anchors) == 0 {
		anchors = DefaultAnchors()
	}
	return Prefer(p.Preferred, positions), anchors
}

// ResolveWith resolves s against the ranked preferences.
func (p Preferences) ResolveWith(s geometry.Snapshot) Decision {
	positions, anchors := p.Ranked()
	return Resolve(s, positions, anchors)
}
