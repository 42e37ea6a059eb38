//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package geometry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasure_AllElementsPresent(t *testing.T) {
	trigger := NewBox(Rect{Top: 500, Left: 100, Width: 100, Height: 40})
	panel := Block{Render: func() string { return strings.Repeat("x", 20) + "\n" + "y\nz" }}
	content := Block{Render: func() string { return "a\nb" }}

	s := Measure(Size{Width: 800, Height: 600}, trigger, panel, content)

	assert.Equal(t, Snapshot{
		TriggerTop:         500,
		TriggerLeft:        100,
		TriggerHeight:      40,
		TriggerWidth:       100,
		PanelHeight:        3,
		PanelWidth:         20,
		ViewportWidth:      800,
		ViewportHeight:     600,
		PanelContentHeight: 2,
	}, s)
}

func TestMeasure_MissingElementsYieldZero(t *testing.T) {
	var notLaidOut Box
	var nilBox *Box

	tests := []struct {
		name    string
		trigger Element
		panel   Element
		content Element
	}{
		{name: "all nil"},
		{name: "box not laid out", trigger: &notLaidOut},
		{name: "typed nil box", trigger: nilBox},
		{name: "empty render", panel: Block{Render: func() string { return "" }}, content: Block{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Measure(Size{Width: 80, Height: 24}, tt.trigger, tt.panel, tt.content)
			assert.Equal(t, Snapshot{ViewportWidth: 80, ViewportHeight: 24}, s)
		})
	}
}

func TestMeasure_ClampsNegativeValues(t *testing.T) {
	trigger := NewBox(Rect{Top: -3, Left: -1, Width: 10, Height: 1})
	s := Measure(Size{Width: -5, Height: 24}, trigger, nil, nil)

	assert.Zero(t, s.TriggerTop)
	assert.Zero(t, s.TriggerLeft)
	assert.Zero(t, s.ViewportWidth)
	assert.InDelta(t, 10, s.TriggerWidth, 0)
	require.NoError(t, s.Validate())
}

func TestBox_SetAndClear(t *testing.T) {
	var b Box
	_, ok := b.Bounds()
	require.False(t, ok)

	b.Set(Rect{Top: 1, Left: 2, Width: 3, Height: 4})
	r, ok := b.Bounds()
	require.True(t, ok)
	assert.Equal(t, Rect{Top: 1, Left: 2, Width: 3, Height: 4}, r)

	b.Clear()
	_, ok = b.Bounds()
	assert.False(t, ok)
}

func TestProvider_ReadsLiveViewport(t *testing.T) {
	vp := Size{Width: 80, Height: 24}
	p := Provider{
		Viewport: func() Size { return vp },
		Trigger:  NewBox(Rect{Top: 2, Left: 2, Width: 8, Height: 3}),
	}

	assert.InDelta(t, 24, p.Measure().ViewportHeight, 0)
	vp.Height = 10
	assert.InDelta(t, 10, p.Measure().ViewportHeight, 0)
}

func TestSnapshot_Validate(t *testing.T) {
	require.NoError(t, Snapshot{ViewportWidth: 1}.Validate())

	err := Snapshot{PanelHeight: -1}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}

func TestRect_Contains(t *testing.T) {
	r := Rect{Top: 2, Left: 4, Width: 3, Height: 2}

	assert.True(t, r.Contains(4, 2))
	assert.True(t, r.Contains(6, 3))
	assert.False(t, r.Contains(7, 3))
	assert.False(t, r.Contains(5, 4))
	assert.False(t, r.Contains(3, 2))
	assert.True(t, Rect{}.Empty())
}
