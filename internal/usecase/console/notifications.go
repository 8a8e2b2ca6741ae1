package console

import (
	"sync"
	"time"
)

// maxNotices caps the feed so a burst of failures cannot grow it unbounded.
const maxNotices = 20

// Notifier receives outcome messages from the Store.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NoticeKind classifies a notice for presentation.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is one transient notification.
type Notice struct {
	ID        uint64
	Kind      NoticeKind
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notifications is an in-memory Notifier whose notices dismiss themselves
// after a fixed TTL.
type Notifications struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	seq     uint64
	notices []Notice
}

// NewNotifications creates a feed whose notices live for ttl.
func NewNotifications(ttl time.Duration) *Notifications {
	return NewNotificationsWithClock(ttl, time.Now)
}

// NewNotificationsWithClock is NewNotifications with an injectable clock.
func NewNotificationsWithClock(ttl time.Duration, now func() time.Time) *Notifications {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Notifications{ttl: ttl, now: now}
}

// Success implements Notifier.
func (n *Notifications) Success(message string) {
	n.push(NoticeSuccess, message)
}

// Error implements Notifier.
func (n *Notifications) Error(message string) {
	n.push(NoticeError, message)
}

func (n *Notifications) push(kind NoticeKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	n.seq++
	n.notices = append(n.notices, Notice{
		ID:        n.seq,
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(n.ttl),
	})
	if len(n.notices) > maxNotices {
		n.notices = n.notices[len(n.notices)-maxNotices:]
	}
}

// Active prunes expired notices and returns the rest, oldest first.
func (n *Notifications) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	kept := n.notices[:0]
	for _, notice := range n.notices {
		if now.Before(notice.ExpiresAt) {
			kept = append(kept, notice)
		}
	}
	n.notices = kept

	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a notice before it expires.
func (n *Notifications) Dismiss(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, notice := range n.notices {
		if notice.ID == id {
			n.notices = append(n.notices[:i], n.notices[i+1:]...)
			return
		}
	}
}

// TTL returns how long a notice stays visible.
func (n *Notifications) TTL() time.Duration {
	return n.ttl
}
