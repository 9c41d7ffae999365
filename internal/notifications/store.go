package notifications

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/metrics"
)

// Type classifies a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

const (
	defaultMaxHistory = 100
	defaultBuffer     = 16
)

// Notification is a user facing message raised by the application.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text,omitempty"`
	Type      Type      `json:"type"`
	Code      string    `json:"code,omitempty"`
	Dialog    bool      `json:"dialog"`
	CreatedAt time.Time `json:"created_at"`
	Error     error     `json:"-"`
}

// Adder accepts notifications.
type Adder interface {
	Add(n Notification) Notification
}

// Store keeps recent notifications and fans them out to subscribers.
type Store struct {
	mu          sync.RWMutex
	maxHistory  int
	buffer      int
	history     []Notification
	subscribers map[*subscriber]struct{}
	now         func() time.Time
}

type subscriber struct {
	send chan Notification
}

// Options tunes a Store.
type Options struct {
	MaxHistory int
	Buffer     int
}

// NewStore constructs a notification store.
func NewStore(opts Options) *Store {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = defaultMaxHistory
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	return &Store{
		maxHistory:  opts.MaxHistory,
		buffer:      opts.Buffer,
		subscribers: make(map[*subscriber]struct{}),
		now:         time.Now,
	}
}

// Add records a notification, assigning an ID and timestamp when missing, and delivers it
// to every subscriber. Slow subscribers miss notifications rather than blocking the caller.
func (s *Store) Add(n Notification) Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}

	s.mu.Lock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	s.history = append(s.history, n)
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append([]Notification(nil), s.history[over:]...)
	}
	for sub := range s.subscribers {
		select {
		case sub.send <- n:
		default:
		}
	}
	s.mu.Unlock()

	metrics.Notifications.WithLabelValues(string(n.Type)).Inc()
	return n
}

// List returns the retained notifications, oldest first.
func (s *Store) List() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Notification(nil), s.history...)
}

// Subscribe returns a channel receiving new notifications and a function that closes it.
func (s *Store) Subscribe() (<-chan Notification, func()) {
	sub := &subscriber{send: make(chan Notification, s.buffer)}

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return sub.send, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, sub)
			s.mu.Unlock()
			close(sub.send)
		})
	}
}

// MarshalNotification converts a notification into JSON bytes.
func MarshalNotification(n Notification) ([]byte, error) {
	return json.Marshal(n)
}
