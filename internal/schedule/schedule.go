// Package schedule provides cancellable one-shot tasks.
//
// Three schedulers are available:
//   - Timer runs tasks on timer goroutines via time.AfterFunc.
//   - Queue fires timers in the background but hands the task itself back to
//     an event loop through a channel, so it runs on the loop's goroutine.
//   - Manual is driven explicitly by tests.
package schedule

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is a handle to a scheduled function.
type Task interface {
	// Stop prevents the task from running. It reports whether the call
	// stopped the task, false if it already ran or was stopped.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

// Timer schedules directly on time.AfterFunc.
type Timer struct{}

// Schedule implements Scheduler.
func (Timer) Schedule(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Queue delivers due tasks to an event loop.
type Queue struct {
	ch   chan func()
	done chan struct{}
	once sync.Once
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan func(), size), done: make(chan struct{})}
}

// C is the channel the event loop drains. Each received function must be
// called on the loop goroutine.
func (q *Queue) C() <-chan func() { return q.ch }

// Close stops delivery. Tasks that fire afterwards are dropped.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}

type queueTask struct {
	timer   *time.Timer
	stopped atomic.Bool
	ran     atomic.Bool
}

func (t *queueTask) Stop() bool {
	if t.ran.Load() {
		return false
	}
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	t.timer.Stop()
	return true
}

// Schedule implements Scheduler.
func (q *Queue) Schedule(d time.Duration, fn func()) Task {
	t := &queueTask{}
	t.timer = time.AfterFunc(d, func() {
		if t.stopped.Load() {
			return
		}
		run := func() {
			if t.stopped.Load() {
				return
			}
			t.ran.Store(true)
			fn()
		}
		select {
		case q.ch <- run:
		case <-q.done:
			logrus.Debug("schedule queue closed: dropping task")
		}
	})
	return t
}

// Manual is a fake clock for tests. Tasks run from Advance on the caller's goroutine.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m       *Manual
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
	ran     bool
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.ran {
		return false
	}
	t.stopped = true
	return true
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, due: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs every task that became due,
// earliest first. Tasks scheduled while advancing run if they fall due too.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Pending returns the number of tasks that have neither run nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.ran {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	var next *manualTask
	for _, t := range m.tasks {
		if t.stopped || t.ran || t.due > target {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	if next != nil {
		next.ran = true
		if next.due > m.now {
			m.now = next.due
		}
	}
	return next
}
