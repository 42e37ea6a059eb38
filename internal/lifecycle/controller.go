// Package lifecycle owns the open/closed state of a floating panel and keeps
// its placement current while it is open.
//
// A Controller mounts the panel through a Portal when it opens, measures after
// a short delay so the panel has been painted at its real size, and measures
// again on viewport resize and on content change. Outside clicks are treated as
// close requests and debounced so that a simultaneous click on the trigger can
// cancel them.
package lifecycle

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/popover/internal/events"
	"github.com/ensigniasec/popover/internal/geometry"
	"github.com/ensigniasec/popover/internal/placement"
	"github.com/ensigniasec/popover/internal/portal"
	"github.com/ensigniasec/popover/internal/schedule"
)

const (
	// DefaultMeasureDelay lets the panel paint once before it is measured.
	DefaultMeasureDelay = 15 * time.Millisecond
	// DefaultCloseDebounce is the window in which a trigger click cancels an outside close.
	DefaultCloseDebounce = 10 * time.Millisecond
)

// State is the open/closed state of a panel.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Measurer captures the current geometry.
type Measurer interface {
	Measure() geometry.Snapshot
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func() geometry.Snapshot

// Measure implements Measurer.
func (f MeasureFunc) Measure() geometry.Snapshot { return f() }

// Portal mounts the panel on a top-level layer.
type Portal interface {
	Mount(node portal.Node) portal.Handle
	Unmount(handle portal.Handle)
}

// Status is a consistent copy of the controller's observable state.
type Status struct {
	State     State
	Measuring bool
	Decision  placement.Decision
	Snapshot  geometry.Snapshot
}

// Controller is the panel state machine. The zero value is not usable; call New.
type Controller struct {
	id       string
	measurer Measurer
	portal   Portal
	node     portal.Node
	sched    schedule.Scheduler
	resize   *events.Registry[geometry.Size]
	prefs    placement.Preferences
	log      *logrus.Entry
	onChange func(Status)

	measureDelay  time.Duration
	closeDebounce time.Duration

	mu       sync.Mutex
	started  bool
	stopped  bool
	state    State
	snapshot geometry.Snapshot
	decision placement.Decision
	handle   portal.Handle
	mounted  bool
	resizeID string

	// gen invalidates deferred tasks scheduled before the last close or stop.
	gen         uint64
	measureTask schedule.Task
	closeTask   schedule.Task
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler sets the scheduler for deferred work. Defaults to schedule.Timer.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithResizeRegistry sets the registry that delivers viewport resizes.
// Defaults to events.Resize.
func WithResizeRegistry(r *events.Registry[geometry.Size]) Option {
	return func(c *Controller) { c.resize = r }
}

// WithPreferences sets the ranked placement preferences.
func WithPreferences(p placement.Preferences) Option {
	return func(c *Controller) { c.prefs = p }
}

// WithMeasureDelay sets the delay between opening and the first measurement.
func WithMeasureDelay(d time.Duration) Option {
	return func(c *Controller) { c.measureDelay = d }
}

// WithCloseDebounce sets the outside-click debounce window.
func WithCloseDebounce(d time.Duration) Option {
	return func(c *Controller) { c.closeDebounce = d }
}

// WithOnChange registers a hook called after every observable change.
// It runs without the controller lock held.
func WithOnChange(fn func(Status)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithID overrides the generated controller ID used in logs.
func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// New creates a closed controller for the panel node.
func New(m Measurer, p Portal, node portal.Node, opts ...Option) *Controller {
	c := &Controller{
		id:            uuid.NewString(),
		measurer:      m,
		portal:        p,
		node:          node,
		sched:         schedule.Timer{},
		resize:        events.Resize,
		prefs:         placement.DefaultPreferences(),
		measureDelay:  DefaultMeasureDelay,
		closeDebounce: DefaultCloseDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logrus.WithField("popover", c.id)
	return c
}

// ID returns the controller ID.
func (c *Controller) ID() string { return c.id }

// Start marks the component as mounted. Operations before Start are ignored.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.started = true
}

// Stop tears the component down for good: pending tasks are cancelled, the
// resize subscription is removed and the panel is unmounted.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	changed := c.state == Open
	c.closeLocked()
	if c.resizeID != "" {
		c.resize.Unsubscribe(c.resizeID)
		c.resizeID = ""
	}
	c.log.Debug("stopped")
	st := c.statusLocked()
	c.mu.Unlock()
	if changed {
		c.notify(st)
	}
}

// Open shows the panel. Opening an open panel does nothing.
func (c *Controller) Open() {
	c.mu.Lock()
	if !c.activeLocked() || c.state == Open {
		c.mu.Unlock()
		return
	}
	c.openLocked()
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Close hides the panel. Closing a closed panel does nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.activeLocked() || c.state == Closed {
		c.mu.Unlock()
		return
	}
	c.closeLocked()
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Toggle flips between open and closed.
func (c *Controller) Toggle() {
	c.mu.Lock()
	if !c.activeLocked() {
		c.mu.Unlock()
		return
	}
	c.toggleLocked()
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Activate handles a click on the trigger: a pending outside close is
// cancelled first so the same click is not counted twice, then the panel toggles.
func (c *Controller) Activate() {
	c.mu.Lock()
	if !c.activeLocked() {
		c.mu.Unlock()
		return
	}
	c.cancelCloseLocked()
	c.toggleLocked()
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

// RequestClose is the outside-click callback. The close happens after the
// debounce window unless CancelPendingClose or Activate intervenes; repeated
// requests inside the window collapse into one.
func (c *Controller) RequestClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.activeLocked() || c.state != Open || c.closeTask != nil {
		return
	}
	gen := c.gen
	c.closeTask = c.sched.Schedule(c.closeDebounce, func() { c.runDeferredClose(gen) })
}

// CancelPendingClose drops a pending outside close, e.g. when the press
// landed on the panel content.
func (c *Controller) CancelPendingClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCloseLocked()
}

// OnContentChanged re-measures an open panel immediately. Callers invoke it
// whenever the panel content may have changed size.
func (c *Controller) OnContentChanged() {
	c.mu.Lock()
	if !c.activeLocked() || c.state != Open {
		c.mu.Unlock()
		return
	}
	c.measureLocked("content")
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

// State returns the open/closed state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsOpen reports whether the panel is open.
func (c *Controller) IsOpen() bool { return c.State() == Open }

// Measuring reports whether the deferred measurement is still pending.
func (c *Controller) Measuring() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.measureTask != nil
}

// Decision returns the latest placement decision.
func (c *Controller) Decision() placement.Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decision
}

// Snapshot returns the geometry the latest decision was computed from.
func (c *Controller) Snapshot() geometry.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Status returns state, measuring flag, decision and snapshot together.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// SetPreferences replaces the ranked preferences and re-resolves an open panel.
func (c *Controller) SetPreferences(p placement.Preferences) {
	c.mu.Lock()
	c.prefs = p
	if !c.activeLocked() || c.state != Open {
		c.mu.Unlock()
		return
	}
	c.measureLocked("preferences")
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

func (c *Controller) activeLocked() bool {
	if c.stopped || !c.started {
		c.log.Debug("ignoring call on inactive popover")
		return false
	}
	return true
}

func (c *Controller) toggleLocked() {
	if c.state == Open {
		c.closeLocked()
		return
	}
	c.openLocked()
}

func (c *Controller) openLocked() {
	c.state = Open
	c.decision = placement.Decision{}
	c.snapshot = geometry.Snapshot{}
	if c.resizeID == "" {
		c.resizeID = c.resize.Subscribe(c.handleResize)
	}
	if c.portal != nil && !c.mounted {
		c.handle = c.portal.Mount(c.node)
		c.mounted = true
	}
	gen := c.gen
	c.measureTask = c.sched.Schedule(c.measureDelay, func() { c.runDeferredMeasure(gen) })
	c.log.Debug("opened")
}

func (c *Controller) closeLocked() {
	c.gen++
	c.cancelMeasureLocked()
	c.cancelCloseLocked()
	if c.mounted {
		c.portal.Unmount(c.handle)
		c.mounted = false
		c.handle = ""
	}
	if c.state == Open {
		c.log.Debug("closed")
	}
	c.state = Closed
	c.decision = placement.Decision{}
	c.snapshot = geometry.Snapshot{}
}

func (c *Controller) cancelMeasureLocked() {
	if c.measureTask != nil {
		c.measureTask.Stop()
		c.measureTask = nil
	}
}

func (c *Controller) cancelCloseLocked() {
	if c.closeTask != nil {
		c.closeTask.Stop()
		c.closeTask = nil
	}
}

// measureLocked captures a fresh snapshot and resolves it.
func (c *Controller) measureLocked(reason string) {
	c.snapshot = c.measurer.Measure()
	c.decision = c.prefs.ResolveWith(c.snapshot)
	c.log.WithFields(logrus.Fields{
		"reason":   reason,
		"position": c.decision.Position.String(),
		"anchor":   c.decision.Anchor.String(),
	}).Debug("placement resolved")
}

func (c *Controller) runDeferredMeasure(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.stopped || c.state != Open || c.measureTask == nil {
		c.mu.Unlock()
		return
	}
	c.measureTask = nil
	c.measureLocked("open")
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

func (c *Controller) runDeferredClose(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.stopped || c.state != Open || c.closeTask == nil {
		c.mu.Unlock()
		return
	}
	c.closeTask = nil
	c.closeLocked()
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

func (c *Controller) handleResize(vp geometry.Size) {
	c.mu.Lock()
	if c.stopped || c.state != Open {
		c.mu.Unlock()
		return
	}
	c.log.Debugf("resize to %vx%v", vp.Width, vp.Height)
	c.measureLocked("resize")
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

func (c *Controller) statusLocked() Status {
	return Status{
		State:     c.state,
		Measuring: c.measureTask != nil,
		Decision:  c.decision,
		Snapshot:  c.snapshot,
	}
}

func (c *Controller) notify(st Status) {
	if c.onChange != nil {
		c.onChange(st)
	}
}
