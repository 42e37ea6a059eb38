// Package portal renders floating nodes on a top-level layer above the base
// view, outside of whatever layout produced their trigger.
package portal

import (
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Z-index values for mounted nodes. Higher values render on top.
const (
	ZBase    = 0
	ZPopover = 100
	ZSheet   = 200
)

// Node is something the host can paint on the overlay layer.
type Node interface {
	// Layer returns the rendered block and its top-left corner in cells.
	Layer(width, height int) (view string, x, y int)
}

// NodeFunc adapts a function to Node.
type NodeFunc func(width, height int) (string, int, int)

// Layer implements Node.
func (f NodeFunc) Layer(width, height int) (string, int, int) { return f(width, height) }

// Handle identifies a mounted node.
type Handle string

type mounted struct {
	handle Handle
	node   Node
	z      int
	seq    int
}

// Host keeps track of mounted nodes and composites them over a base view.
type Host struct {
	mu    sync.Mutex
	seq   int
	nodes map[Handle]*mounted
}

// NewHost returns an empty host.
func NewHost() *Host {
	return &Host{nodes: make(map[Handle]*mounted)}
}

// Mount adds node at ZPopover.
func (h *Host) Mount(node Node) Handle {
	return h.MountAt(node, ZPopover)
}

// MountAt adds node at the given z-index.
func (h *Host) MountAt(node Node, z int) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	handle := Handle(uuid.NewString())
	h.nodes[handle] = &mounted{handle: handle, node: node, z: z, seq: h.seq}
	logrus.Debugf("portal: mounted %s", handle)
	return handle
}

// Unmount removes a node. Unknown handles are ignored.
func (h *Host) Unmount(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.nodes[handle]; !ok {
		return
	}
	delete(h.nodes, handle)
	logrus.Debugf("portal: unmounted %s", handle)
}

// Mounted reports whether handle is currently mounted.
func (h *Host) Mounted(handle Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.nodes[handle]
	return ok
}

// Len returns the number of mounted nodes.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.nodes)
}

// Render paints every mounted node over base, lowest z-index first.
func (h *Host) Render(base string, width, height int) string {
	h.mu.Lock()
	layers := make([]*mounted, 0, len(h.nodes))
	for _, m := range h.nodes {
		layers = append(layers, m)
	}
	h.mu.Unlock()
	if len(layers) == 0 {
		return base
	}
	sort.Slice(layers, func(i, j int) bool {
		if layers[i].z != layers[j].z {
			return layers[i].z < layers[j].z
		}
		return layers[i].seq < layers[j].seq
	})

	out := base
	for _, m := range layers {
		view, x, y := m.node.Layer(width, height)
		out = Overlay(out, view, x, y)
	}
	return out
}

// Overlay places fg over bg with its top-left corner at (x, y). Both strings
// may contain ANSI styling; bg is padded with spaces where it is too short.
func Overlay(bg, fg string, x, y int) string {
	if fg == "" {
		return bg
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	for len(bgLines) < y+len(fgLines) {
		bgLines = append(bgLines, "")
	}

	for i, line := range fgLines {
		row := y + i
		base := bgLines[row]
		w := ansi.StringWidth(line)
		left := ansi.Truncate(base, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ""
		if ansi.StringWidth(base) > x+w {
			right = ansi.TruncateLeft(base, x+w, "")
		}
		bgLines[row] = left + line + right
	}
	return strings.Join(bgLines, "\n")
}
