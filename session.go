package keplrflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/networkteam/keplrflow/collector"
	"github.com/networkteam/keplrflow/driver"
)

// Session holds the state of one test session against one browser.
//
// A Session is not safe for concurrent use; the wallet flows are strictly
// sequential. Create one per test session and Reset or discard it before
// the next.
type Session struct {
	driver   driver.Driver
	options  Options
	logger   *slog.Logger
	identity *Identity
}

// NewSession creates a session with default options.
func NewSession(d driver.Driver) *Session {
	return NewSessionWithOptions(d, Options{})
}

// NewSessionWithOptions creates a session. Zero option fields use the values of DefaultOptions.
func NewSessionWithOptions(d driver.Driver, options Options) *Session {
	options = options.withDefaults()
	return &Session{
		driver:  d,
		options: options,
		logger:  options.Logger,
	}
}

// Driver returns the driver of the session.
func (s *Session) Driver() driver.Driver {
	return s.driver
}

// Reset clears the cached extension identity.
// The next ResolveIdentity performs a fresh lookup.
func (s *Session) Reset() {
	s.logger.Debug("Resetting session state")
	s.identity = nil
}

// Close resets the session and closes the driver if Options.CloseDriver is set.
func (s *Session) Close() error {
	s.Reset()
	if !s.options.CloseDriver {
		return nil
	}
	if c, ok := s.driver.(driver.Closer); ok {
		return c.Close()
	}
	return nil
}

// operation groups the steps run with the returned context in the journal.
// The returned func must be called with the operation result.
func (s *Session) operation(ctx context.Context, name string) (context.Context, func(error)) {
	journal := s.options.Journal
	if journal == nil {
		return ctx, func(error) {}
	}
	ctx = journal.StartEvent(ctx)
	return ctx, func(err error) {
		journal.EndEvent(ctx, collector.Operation{Name: name, Err: err})
	}
}

// step runs a single browser interaction, logs and journals it and wraps a failure in a StepError.
func (s *Session) step(ctx context.Context, name, target string, fn func(ctx context.Context) error) error {
	return s.stepIn(ctx, name, target, nil, func(ctx context.Context, _ driver.Window) error {
		return fn(ctx)
	})
}

// stepIn is step acting on the window returned by window. The window URL is recorded with the step.
// A nil window func leaves the window to the driver.
func (s *Session) stepIn(ctx context.Context, name, target string, window func(ctx context.Context) (driver.Window, error), fn func(ctx context.Context, w driver.Window) error) error {
	start := time.Now()

	var w driver.Window
	err := func() error {
		if window != nil {
			var err error
			if w, err = window(ctx); err != nil {
				return err
			}
		}
		return fn(ctx, w)
	}()

	if journal := s.options.Journal; journal != nil {
		st := collector.Step{Name: name, Target: target, Err: err}
		if w != nil {
			st.Window = w.URL()
		}
		if err != nil {
			st.Snapshot = s.snapshot(ctx)
		}
		journal.CollectEvent(ctx, start, st)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "Step failed", slog.String("step", name), slog.String("target", target), slog.Any("error", err))
		return &StepError{Step: name, Target: target, Err: err}
	}
	s.logger.DebugContext(ctx, "Step done", slog.String("step", name), slog.String("target", target), slog.Duration("duration", time.Since(start)))
	return nil
}

func (s *Session) keplrWindow(ctx context.Context) (driver.Window, error) {
	return s.driver.KeplrWindow(ctx)
}

func inWindow(w driver.Window) func(context.Context) (driver.Window, error) {
	return func(context.Context) (driver.Window, error) {
		return w, nil
	}
}

func (s *Session) snapshot(ctx context.Context) string {
	snap, ok := s.driver.(driver.Snapshotter)
	if !ok {
		return ""
	}
	html, err := snap.Snapshot(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Capturing snapshot failed", slog.Any("error", err))
		return ""
	}
	return html
}
