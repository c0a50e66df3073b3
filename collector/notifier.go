package collector

import (
	"context"
	"sync"
)

// Notifier fans out items to any number of subscribers.
//
// It is used for browser window events (pages opening, navigating and
// closing) and for new journal entries. Delivery is best effort: a slow
// subscriber misses items instead of blocking the publisher, so consumers
// that must not miss a state change should re-check the state they wait for
// after subscribing.
type Notifier[T any] struct {
	mu sync.RWMutex
	// subscribers maps the receive side handed out to callers to the send side
	subscribers map[<-chan T]chan T
	bufferSize  int
	notifyCh    chan T
	closeOnce   sync.Once
	closed      bool
}

// NotifierOptions configures a notifier
type NotifierOptions struct {
	// SubscriberBufferSize is the buffer size for each subscriber channel
	SubscriberBufferSize int

	// NotificationBufferSize is the buffer size for the internal notification channel
	NotificationBufferSize int
}

// DefaultNotifierOptions returns default options for a notifier
func DefaultNotifierOptions() NotifierOptions {
	return NotifierOptions{
		SubscriberBufferSize:   64,
		NotificationBufferSize: 256,
	}
}

// NewNotifier creates a new notifier with default options
func NewNotifier[T any]() *Notifier[T] {
	return NewNotifierWithOptions[T](DefaultNotifierOptions())
}

// NewNotifierWithOptions creates a new notifier with specified options
func NewNotifierWithOptions[T any](options NotifierOptions) *Notifier[T] {
	n := &Notifier[T]{
		subscribers: make(map[<-chan T]chan T),
		bufferSize:  options.SubscriberBufferSize,
		notifyCh:    make(chan T, options.NotificationBufferSize),
	}

	go n.dispatch()

	return n
}

// Subscribe returns a channel that receives notifications until ctx is done.
// Subscribing to a closed notifier returns an already closed channel.
func (n *Notifier[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, n.bufferSize)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch
	}
	n.subscribers[ch] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.Unsubscribe(ch)
	}()

	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (n *Notifier[T]) Unsubscribe(ch <-chan T) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if realCh, exists := n.subscribers[ch]; exists {
		delete(n.subscribers, ch)
		close(realCh)
	}
}

// Notify queues an item for all subscribers.
// It never blocks; if the internal queue is full the item is dropped.
func (n *Notifier[T]) Notify(item T) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}

	select {
	case n.notifyCh <- item:
	default:
	}
}

// Close closes the notifier and all subscriber channels
func (n *Notifier[T]) Close() {
	n.closeOnce.Do(func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		n.closed = true
		for _, ch := range n.subscribers {
			close(ch)
		}
		n.subscribers = nil

		close(n.notifyCh)
	})
}

func (n *Notifier[T]) dispatch() {
	for item := range n.notifyCh {
		n.mu.RLock()
		for _, ch := range n.subscribers {
			select {
			case ch <- item:
			default:
				// Subscriber is full, it misses this item
			}
		}
		n.mu.RUnlock()
	}
}
