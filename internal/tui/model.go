package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/popover/internal/config"
	"github.com/ensigniasec/popover/internal/events"
	"github.com/ensigniasec/popover/internal/geometry"
	"github.com/ensigniasec/popover/internal/lifecycle"
	"github.com/ensigniasec/popover/internal/portal"
	"github.com/ensigniasec/popover/internal/schedule"
)

// Model is the root Bubble Tea model of the popover demo.
type Model struct {
	cfg      *config.Config
	screen   *screen
	host     *portal.Host
	resize   *events.Registry[geometry.Size]
	triggers []*trigger
	popovers []*popover
	focused  int
	quitting bool

	// tasks delivers fired deferred work onto the update loop.
	tasks <-chan func()

	// ui state
	helpVisible bool
	help        help.Model
	keys        keyMap
}

// Option configures a Model.
type Option func(*modelOptions)

type modelOptions struct {
	sched  schedule.Scheduler
	tasks  <-chan func()
	resize *events.Registry[geometry.Size]
}

// WithQueue runs deferred popover work through q, delivered on the update loop.
func WithQueue(q *schedule.Queue) Option {
	return func(o *modelOptions) {
		o.sched = q
		o.tasks = q.C()
	}
}

// WithScheduler runs deferred popover work through s.
func WithScheduler(s schedule.Scheduler) Option {
	return func(o *modelOptions) { o.sched = s }
}

// WithResizeRegistry sets where window sizes are published.
func WithResizeRegistry(r *events.Registry[geometry.Size]) Option {
	return func(o *modelOptions) { o.resize = r }
}

// NewModel constructs a Model with one closed popover per trigger.
func NewModel(cfg config.Config, opts ...Option) Model {
	o := modelOptions{sched: schedule.Timer{}, resize: events.Resize}
	for _, opt := range opts {
		opt(&o)
	}

	if len(cfg.Positions) == 0 {
		cfg = config.Default()
	}
	m := Model{
		cfg:      &cfg,
		screen:   &screen{},
		host:     portal.NewHost(),
		resize:   o.resize,
		triggers: newTriggers(),
		tasks:    o.tasks,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	for _, t := range m.triggers {
		m.popovers = append(m.popovers, newPopover(m.cfg, t, m.screen, m.host,
			lifecycle.WithScheduler(o.sched),
			lifecycle.WithResizeRegistry(o.resize),
		))
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listenForTasks()
}

// listenForTasks returns a Tea command that waits for the next fired task.
func (m Model) listenForTasks() tea.Cmd {
	if m.tasks == nil {
		return nil
	}
	return func() tea.Msg {
		fn, ok := <-m.tasks
		if !ok {
			return nil
		}
		return taskMsg{run: fn}
	}
}

// Stop tears down every popover.
func (m Model) Stop() {
	for _, p := range m.popovers {
		p.ctrl.Stop()
	}
}

func (m Model) focusedPopover() *popover {
	if len(m.popovers) == 0 {
		return nil
	}
	return m.popovers[m.focused]
}
