// Package dedup provides the at-most-once gate for processed mailbox
// messages.
package dedup

import (
	"sync"
	"time"
)

// Registry tracks mailbox message identifiers that have already been
// handled in this process. Memory is bounded by evicting entries once
// they are old enough that the message itself would be skipped as stale
// anyway, so the set grows with recent mailbox volume, not process
// uptime. Nothing is persisted across restarts.
type Registry struct {
	retention time.Duration
	now       func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewRegistry creates a registry that evicts entries older than
// retention. A non-positive retention disables eviction.
func NewRegistry(retention time.Duration) *Registry {
	return &Registry{
		retention: retention,
		now:       time.Now,
		seen:      make(map[string]time.Time),
	}
}

// MarkIfNew records id and reports whether it was absent. The check and
// insert happen under one lock, so concurrent pollers keep the
// at-most-once-processing invariant.
func (r *Registry) MarkIfNew(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evict()

	if _, ok := r.seen[id]; ok {
		return false
	}
	r.seen[id] = r.now()
	return true
}

// Seen reports whether id is currently recorded.
func (r *Registry) Seen(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.seen[id]
	return ok
}

// Len returns the number of tracked identifiers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.seen)
}

// evict drops entries older than the retention window. An evicted
// identifier that reappears belongs to a message older than the
// staleness window by construction, so it is re-skipped as stale rather
// than reprocessed. Callers must hold r.mu.
func (r *Registry) evict() {
	if r.retention <= 0 {
		return
	}

	cutoff := r.now().Add(-r.retention)
	for id, at := range r.seen {
		if at.Before(cutoff) {
			delete(r.seen, id)
		}
	}
}
