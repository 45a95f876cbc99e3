package board

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between two surfaced notices.
const DefaultCooldown = 5 * time.Second

// Notifier rate-limits user-visible error notices. A burst of failures
// inside one cooldown window surfaces exactly one notice; the rest are
// suppressed silently.
type Notifier struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     time.Time
	notify   func(error)

	// now is swappable for tests.
	now func() time.Time
}

// NewNotifier creates a notifier calling fn for each surfaced error.
// A nil fn still rate-limits; callers just check the return of Notify.
func NewNotifier(cooldown time.Duration, fn func(error)) *Notifier {
	return &Notifier{cooldown: cooldown, notify: fn, now: time.Now}
}

// Notify surfaces err unless a notice already fired within the cooldown
// window. Returns whether the notice was surfaced.
func (n *Notifier) Notify(err error) bool {
	n.mu.Lock()
	now := n.now()
	if !n.last.IsZero() && now.Sub(n.last) < n.cooldown {
		n.mu.Unlock()
		return false
	}
	n.last = now
	fn := n.notify
	n.mu.Unlock()

	if fn != nil {
		fn(err)
	}
	return true
}
