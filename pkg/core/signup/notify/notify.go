// Package notify builds the transient toasts shown after a form submission.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"signup-portal/pkg/core/signup/model"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const (
	SuccessMessage = "Your Message was sent."
	ErrorTitle     = "Please fix the following:"
)

// Notification is a single toast. Dismissible toasts close on click; a zero
// AutoClose keeps the toast until it is dismissed.
type Notification struct {
	Kind        Kind          `json:"kind"`
	Title       string        `json:"title,omitempty"`
	Messages    []string      `json:"messages"`
	AutoClose   time.Duration `json:"-"`
	Dismissible bool          `json:"dismissible"`
}

// AutoCloseMillis is the delay handed to the page script.
func (n Notification) AutoCloseMillis() int64 {
	return n.AutoClose.Milliseconds()
}

type notificationJSON struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title,omitempty"`
	Messages    []string `json:"messages"`
	AutoCloseMS int64    `json:"auto_close_ms"`
	Dismissible bool     `json:"dismissible"`
}

// MarshalJSON writes AutoClose as auto_close_ms so API clients can time the toast.
func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationJSON{
		Kind:        n.Kind,
		Title:       n.Title,
		Messages:    n.Messages,
		AutoCloseMS: n.AutoCloseMillis(),
		Dismissible: n.Dismissible,
	})
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var raw notificationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Notification{
		Kind:        raw.Kind,
		Title:       raw.Title,
		Messages:    raw.Messages,
		AutoClose:   time.Duration(raw.AutoCloseMS) * time.Millisecond,
		Dismissible: raw.Dismissible,
	}
	return nil
}

// Timing holds the auto-close delay per kind.
type Timing struct {
	Success time.Duration
	Error   time.Duration
}

var DefaultTiming = Timing{
	Success: 2 * time.Second,
	Error:   20 * time.Second,
}

// FromViolations aggregates every violation into one error toast, or returns
// the success toast when there are none.
func FromViolations(violations []model.Violation, timing Timing) Notification {
	if len(violations) == 0 {
		return Notification{
			Kind:        KindSuccess,
			Messages:    []string{SuccessMessage},
			AutoClose:   timing.Success,
			Dismissible: true,
		}
	}
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
	}
	return Notification{
		Kind:        KindError,
		Title:       ErrorTitle,
		Messages:    msgs,
		AutoClose:   timing.Error,
		Dismissible: true,
	}
}

// Sink receives notifications destined for the user.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Queue collects notifications for one rendered page.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Notify(ctx context.Context, n Notification) {
	hlog.CtxDebugf(ctx, "notify kind=%s messages=%d", n.Kind, len(n.Messages))
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

// Drain returns the queued notifications and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len reports the number of pending notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
