package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlay(t *testing.T) {
	tests := []struct {
		name string
		bg   string
		fg   string
		x, y int
		want string
	}{
		{name: "inside", bg: "abcdef\nghijkl", fg: "XY", x: 2, y: 1, want: "abcdef\nghXYkl"},
		{name: "pads short line", bg: "ab", fg: "Z", x: 4, y: 0, want: "ab  Z"},
		{name: "extends rows", bg: "ab", fg: "1\n2", x: 0, y: 1, want: "ab\n1\n2"},
		{name: "negative origin clamps", bg: "abc", fg: "Z", x: -3, y: -1, want: "Zbc"},
		{name: "empty fg", bg: "abc", fg: "", x: 1, y: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlay(tt.bg, tt.fg, tt.x, tt.y))
		})
	}
}

func TestHost_MountRenderUnmount(t *testing.T) {
	h := NewHost()
	base := "......\n......"

	low := h.MountAt(NodeFunc(func(int, int) (string, int, int) { return "AA", 0, 0 }), ZBase)
	high := h.Mount(NodeFunc(func(int, int) (string, int, int) { return "B", 1, 0 }))
	require.Equal(t, 2, h.Len())
	require.NotEqual(t, low, high)

	assert.Equal(t, "AB....\n......", h.Render(base, 6, 2))

	h.Unmount(high)
	assert.False(t, h.Mounted(high))
	assert.True(t, h.Mounted(low))
	assert.Equal(t, "AA....\n......", h.Render(base, 6, 2))

	h.Unmount(high)
	h.Unmount(low)
	assert.Equal(t, base, h.Render(base, 6, 2))
}

func TestHost_NodeSeesViewportSize(t *testing.T) {
	h := NewHost()
	var gotW, gotH int
	h.Mount(NodeFunc(func(w, hh int) (string, int, int) {
		gotW, gotH = w, hh
		return "", 0, 0
	}))

	h.Render("", 80, 24)
	assert.Equal(t, 80, gotW)
	assert.Equal(t, 24, gotH)
}
