package collector

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestCollector gathers items from a subscription for assertions in tests.
type TestCollector[T any] struct {
	t       testing.TB
	items   []T
	cancel  func()
	timeout time.Duration
	mu      sync.Mutex
}

// Collect subscribes and gathers items in the background.
// Use Wait(n) to block until n items are received.
func Collect[T any](t testing.TB, subscribe func(context.Context) <-chan T) *TestCollector[T] {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ch := subscribe(ctx)

	c := &TestCollector[T]{
		t:       t,
		cancel:  cancel,
		timeout: 2 * time.Second,
	}

	go func() {
		for item := range ch {
			c.mu.Lock()
			c.items = append(c.items, item)
			c.mu.Unlock()
		}
	}()

	return c
}

// WithTimeout changes how long Wait blocks before failing the test
func (c *TestCollector[T]) WithTimeout(timeout time.Duration) *TestCollector[T] {
	c.timeout = timeout
	return c
}

// Wait blocks until at least n items arrived, stops collecting and returns them.
// Fails the test on timeout.
func (c *TestCollector[T]) Wait(n int) []T {
	c.t.Helper()
	deadline := time.Now().Add(c.timeout)

	for time.Now().Before(deadline) {
		c.mu.Lock()
		count := len(c.items)
		c.mu.Unlock()
		if count >= n {
			return c.Stop()
		}
		time.Sleep(5 * time.Millisecond)
	}

	items := c.Stop()
	c.t.Fatalf("timeout waiting for %d items, got %d", n, len(items))
	return nil
}

// Stop cancels collection and returns items collected so far.
func (c *TestCollector[T]) Stop() []T {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}
