//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package placement

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/popover/internal/geometry"
)

// snapshot builds the 800x600 viewport used throughout these tests.
func snapshot(top, left, h, w, panelH, panelW float64) geometry.Snapshot {
	return geometry.Snapshot{
		TriggerTop:     top,
		TriggerLeft:    left,
		TriggerHeight:  h,
		TriggerWidth:   w,
		PanelHeight:    panelH,
		PanelWidth:     panelW,
		ViewportWidth:  800,
		ViewportHeight: 600,
	}
}

func TestResolve_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		snap     geometry.Snapshot
		want     Position
		wantAnch Anchor
	}{
		{
			name:     "trigger near bottom flips to top",
			snap:     snapshot(500, 100, 40, 100, 250, 200),
			want:     Top,
			wantAnch: Start,
		},
		{
			name:     "trigger near top stays bottom",
			snap:     snapshot(50, 100, 40, 100, 250, 200),
			want:     Bottom,
			wantAnch: Start,
		},
		{
			name:     "panel taller than both sides",
			snap:     snapshot(200, 100, 40, 100, 500, 200),
			want:     PositionUnset,
			wantAnch: Start,
		},
		{
			name:     "right edge forces end anchor",
			snap:     snapshot(50, 700, 40, 100, 100, 200),
			want:     Bottom,
			wantAnch: End,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.snap, DefaultPositions(), DefaultAnchors())
			assert.Equal(t, tt.want, d.Position)
			assert.Equal(t, tt.wantAnch, d.Anchor)
		})
	}
}

func TestFeasibility_Properties(t *testing.T) {
	for top := 0.0; top <= 600; top += 25 {
		for panelH := 0.0; panelH <= 600; panelH += 25 {
			s := snapshot(top, 10, 40, 50, panelH, 100)
			fit := FeasiblePositions(s, []Position{Top, Bottom})

			if s.TriggerTop-s.PanelHeight > 0 {
				assert.Contains(t, fit, Top, "top=%v panel=%v", top, panelH)
			} else {
				assert.NotContains(t, fit, Top, "top=%v panel=%v", top, panelH)
			}
			if s.TriggerTop+s.TriggerHeight+s.PanelHeight >= s.ViewportHeight {
				assert.NotContains(t, fit, Bottom, "top=%v panel=%v", top, panelH)
			} else {
				assert.Contains(t, fit, Bottom, "top=%v panel=%v", top, panelH)
			}
		}
	}
}

func TestResolve_FirstListedWins(t *testing.T) {
	s := snapshot(300, 100, 40, 100, 100, 200)
	require.True(t, FitsTop(s))
	require.True(t, FitsBottom(s))

	assert.Equal(t, Bottom, Resolve(s, []Position{Bottom, Top}, nil).Position)
	assert.Equal(t, Top, Resolve(s, []Position{Top, Bottom}, nil).Position)
}

func TestResolve_PreferredMovesToFront(t *testing.T) {
	s := snapshot(300, 100, 40, 100, 100, 200)

	prefs := Preferences{Positions: []Position{Bottom, Top}, Preferred: Top}
	assert.Equal(t, Top, prefs.ResolveWith(s).Position)

	// Preferred but infeasible: falls back to the remaining entries.
	s = snapshot(50, 100, 40, 100, 250, 200)
	assert.Equal(t, Bottom, prefs.ResolveWith(s).Position)
}

func TestResolve_NoFeasiblePositionLeavesUnset(t *testing.T) {
	s := snapshot(0, 0, 0, 0, 0, 0)
	s.ViewportHeight = 0
	s.ViewportWidth = 0

	d := Resolve(s, DefaultPositions(), DefaultAnchors())
	assert.Equal(t, PositionUnset, d.Position)
	assert.False(t, d.Placed())
	// END fits trivially when every width is zero.
	assert.Equal(t, End, d.Anchor)
	assert.True(t, d.AnchorFeasible)

	d = Resolve(s, DefaultPositions(), []Anchor{Start})
	assert.False(t, d.AnchorFeasible)
	assert.Equal(t, Start, d.Anchor)
}

func TestResolve_EmptyDesiredLists(t *testing.T) {
	d := Resolve(snapshot(300, 100, 40, 100, 10, 10), nil, nil)
	assert.Equal(t, Decision{Anchor: Start}, d)
}

func TestPrefer(t *testing.T) {
	tests := []struct {
		name      string
		preferred Position
		in        []Position
		want      []Position
	}{
		{name: "unset keeps order", preferred: PositionUnset, in: []Position{Bottom, Top}, want: []Position{Bottom, Top}},
		{name: "moves to front", preferred: Top, in: []Position{Bottom, Top}, want: []Position{Top, Bottom}},
		{name: "already first", preferred: Bottom, in: []Position{Bottom, Top}, want: []Position{Bottom, Top}},
		{name: "absent is added", preferred: Top, in: []Position{Bottom}, want: []Position{Top, Bottom}},
		{name: "empty input", preferred: Top, in: nil, want: []Position{Top}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]Position(nil), tt.in...)
			assert.Equal(t, tt.want, Prefer(tt.preferred, in))
			assert.Equal(t, tt.in, in, "input must not be mutated")
		})
	}
}

func TestPreferences_RankedDefaults(t *testing.T) {
	positions, anchors := Preferences{}.Ranked()
	assert.Equal(t, DefaultPositions(), positions)
	assert.Equal(t, DefaultAnchors(), anchors)
}

func TestAnchorFeasibility(t *testing.T) {
	// START: left + panelWidth < viewportWidth.
	assert.True(t, FitsStart(snapshot(0, 599, 0, 0, 0, 200)))
	assert.False(t, FitsStart(snapshot(0, 600, 0, 0, 0, 200)))
	// END: left + triggerWidth >= panelWidth.
	assert.True(t, FitsEnd(snapshot(0, 100, 0, 100, 0, 200)))
	assert.False(t, FitsEnd(snapshot(0, 99, 0, 100, 0, 200)))
}

func TestParseAndText(t *testing.T) {
	p, err := ParsePosition(" Top ")
	require.NoError(t, err)
	assert.Equal(t, Top, p)

	_, err = ParsePosition("left")
	assert.True(t, errors.Is(err, ErrUnknownPosition))

	a, err := ParseAnchor("END")
	require.NoError(t, err)
	assert.Equal(t, End, a)

	_, err = ParseAnchor("middle")
	assert.True(t, errors.Is(err, ErrUnknownAnchor))

	b, err := json.Marshal(Decision{Position: Bottom, Anchor: End, AnchorFeasible: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":"bottom","anchor":"end","anchor_feasible":true}`, string(b))

	assert.False(t, Position(7).IsValid())
	assert.False(t, Anchor(-1).IsValid())
}

func TestOffsets(t *testing.T) {
	s := snapshot(10.7, 4.9, 3.6, 12, 5, 20)

	assert.Equal(t, Offsets{Left: 4, Top: 14}, AbsoluteOffsets(s))

	assert.Equal(t, Offsets{Left: 4, Top: 14}, Origin(Decision{Position: Bottom, Anchor: Start}, s))
	assert.Equal(t, Offsets{Left: 4, Top: 5}, Origin(Decision{Position: Top, Anchor: Start}, s))
	// End alignment would cross the left edge and is clamped.
	assert.Equal(t, Offsets{Left: 0, Top: 14}, Origin(Decision{Position: Bottom, Anchor: End}, s))

	wide := snapshot(10, 30, 2, 12, 5, 20)
	assert.Equal(t, Offsets{Left: 22, Top: 12}, Origin(Decision{Position: PositionUnset, Anchor: End}, wide))
}
