package notify

import (
	"sync"
	"time"
)

// Severity classifies a notification.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Danger
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	}
	return "unknown"
}

// TTL returns how long a notification of this severity stays visible.
func (s Severity) TTL() time.Duration {
	if s == Success {
		return 3 * time.Second
	}
	return 5 * time.Second
}

// Notification is one transient message.
type Notification struct {
	ID        uint64
	Severity  Severity
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Center holds pending notifications. It is safe for concurrent use.
type Center struct {
	mu     sync.Mutex
	nextID uint64
	items  []Notification
	max    int
}

// NewCenter returns a center that keeps at most limit notifications; older
// ones are evicted first.
func NewCenter(limit int) *Center {
	if limit <= 0 {
		limit = 5
	}
	return &Center{max: limit}
}

// Push adds a notification and returns it.
func (c *Center) Push(sev Severity, msg string, now time.Time) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	n := Notification{
		ID:        c.nextID,
		Severity:  sev,
		Message:   msg,
		CreatedAt: now,
		ExpiresAt: now.Add(sev.TTL()),
	}
	c.items = append(c.items, n)
	if over := len(c.items) - c.max; over > 0 {
		c.items = append(c.items[:0:0], c.items[over:]...)
	}
	return n
}

// Active drops expired notifications and returns the rest, oldest first.
func (c *Center) Active(now time.Time) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.items = kept
	return append([]Notification(nil), kept...)
}

// Dismiss removes a notification by id.
func (c *Center) Dismiss(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes all notifications.
func (c *Center) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}
