// Package notify keeps the in-memory notification list and the transient
// active toast. The queue is ephemeral: it is not persisted across restarts.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mzarzor/imagestudio/internal/server/models"
)

// DefaultToastTTL is how long a toast stays active without a newer push.
const DefaultToastTTL = 5 * time.Second

// Queue is a newest-first notification list with a single active toast.
// Safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	list     []models.Notification
	activeID string
	toastTTL time.Duration
	timer    *time.Timer
}

// NewQueue constructs a Queue. A non-positive ttl selects DefaultToastTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Queue{toastTTL: ttl}
}

// Push creates a record, prepends it to the list, and makes it the active
// toast. Each push restarts the auto-dismiss window: the clock is measured
// from the newest push, not from the first.
func (q *Queue) Push(title, description, typ string) models.Notification {
	n := models.Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Time:        time.Now(),
		Type:        typ,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.list = append([]models.Notification{n}, q.list...)
	q.activeID = n.ID

	if q.timer != nil {
		q.timer.Stop()
	}
	id := n.ID
	q.timer = time.AfterFunc(q.toastTTL, func() {
		q.expireToast(id)
	})

	return n
}

// expireToast clears the active toast if it is still the one the timer was
// armed for. A toast superseded by a newer push is left to the newer timer.
func (q *Queue) expireToast(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.activeID == id {
		q.activeID = ""
	}
}

// ActiveToast returns a copy of the active toast, or nil when none is shown.
func (q *Queue) ActiveToast() *models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.activeID == "" {
		return nil
	}
	for _, n := range q.list {
		if n.ID == q.activeID {
			cp := n
			return &cp
		}
	}
	return nil
}

// DismissToast clears the active toast ahead of its auto-dismiss window.
func (q *Queue) DismissToast() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.activeID = ""
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// All returns a snapshot of the list, newest first.
func (q *Queue) All() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.Notification, len(q.list))
	copy(out, q.list)
	return out
}

// Unread counts records not yet marked read.
func (q *Queue) Unread() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, rec := range q.list {
		if !rec.IsRead {
			n++
		}
	}
	return n
}

// Clear drops every record and the active toast.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list = nil
	q.activeID = ""
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// MarkAllRead flips every record to read. The active toast is unaffected.
func (q *Queue) MarkAllRead() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.list {
		q.list[i].IsRead = true
	}
}
