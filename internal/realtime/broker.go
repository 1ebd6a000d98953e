package realtime

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrBufferFull is returned when a subscriber cannot keep up. A full
// buffer is a reportable failure, never a silent drop.
var ErrBufferFull = errors.New("subscriber buffer full")

const DefaultBufferSize = 64

// Subscription is one live connection on the notification stream.
// Each event is one line of pre-rendered text.
type Subscription struct {
	ID     string
	UserID uint
	Events chan string
}

// Broker fans notification text out to live stream subscribers. It is
// keyed by destination user id: project-wide notices go to everyone,
// direct notices only to the destination's own connections.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscription
	buffer      int
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	return &Broker{
		subscribers: make(map[string]*Subscription),
		buffer:      buffer,
	}
}

func (b *Broker) Subscribe(userID uint) *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		Events: make(chan string, b.buffer),
	}

	b.mu.Lock()
	b.subscribers[sub.ID] = sub
	b.mu.Unlock()

	return sub
}

func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.subscribers, id)
	b.mu.Unlock()
}

func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Broadcast pushes text to every connected subscriber.
func (b *Broker) Broadcast(text string) error {
	return b.publish(text, func(*Subscription) bool { return true })
}

// SendToUser pushes text only to the destination user's connections.
func (b *Broker) SendToUser(userID uint, text string) error {
	return b.publish(text, func(sub *Subscription) bool { return sub.UserID == userID })
}

func (b *Broker) publish(text string, match func(*Subscription) bool) error {
	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if match(sub) {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	var errs []error

	for _, sub := range targets {
		select {
		case sub.Events <- text:
		default:
			errs = append(errs, fmt.Errorf("subscriber %s: %w", sub.ID, ErrBufferFull))
		}
	}

	return errors.Join(errs...)
}
