// Package events is a small process-wide subscription registry for host
// environment events such as viewport resizes.
package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/popover/internal/geometry"
)

// Registry fans out published values to its subscribers in subscription order.
type Registry[T any] struct {
	name string

	mu    sync.RWMutex
	order []string
	subs  map[string]func(T)
}

// NewRegistry creates an empty registry. name is used for logging only.
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{name: name, subs: make(map[string]func(T))}
}

// Resize is the process-wide viewport resize registry.
//
//nolint:gochecknoglobals // Process-wide registry mirrors the host's single resize event source.
var Resize = NewRegistry[geometry.Size]("resize")

// Subscribe registers fn and returns the subscription ID used to remove it.
func (r *Registry[T]) Subscribe(fn func(T)) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.subs[id] = fn
	r.order = append(r.order, id)
	n := len(r.order)
	r.mu.Unlock()
	logrus.Debugf("%s registry: subscribed %s (%d active)", r.name, id, n)
	return id
}

// Unsubscribe removes a subscription. It reports whether the ID was known.
func (r *Registry[T]) Unsubscribe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[id]; !ok {
		return false
	}
	delete(r.subs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	logrus.Debugf("%s registry: unsubscribed %s (%d active)", r.name, id, len(r.order))
	return true
}

// Publish calls every subscriber with v. Handlers run outside the registry lock,
// so they may subscribe or unsubscribe.
func (r *Registry[T]) Publish(v T) {
	r.mu.RLock()
	handlers := make([]func(T), 0, len(r.order))
	for _, id := range r.order {
		handlers = append(handlers, r.subs[id])
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(v)
	}
}

// Len returns the number of active subscriptions.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
