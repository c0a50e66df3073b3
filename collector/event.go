package collector

import (
	"iter"
	"time"

	"github.com/gofrs/uuid"
)

// Event is a journal entry. Top-level events are wallet operations, their
// children are the individual browser steps of that operation.
type Event struct {
	ID uuid.UUID

	GroupID *uuid.UUID

	// Data is an Operation, a Step or any other value collected by the caller
	Data any

	Start time.Time
	End   time.Time

	Children []*Event
}

// Identity implements Identifiable
func (e *Event) Identity() uuid.UUID {
	return e.ID
}

// Duration returns how long the event took
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Failed reports whether the event or any of its children carries an error
func (e *Event) Failed() bool {
	for _, evt := range e.Visit() {
		if f, ok := evt.Data.(interface{ Failure() error }); ok && f.Failure() != nil {
			return true
		}
	}
	return false
}

// Visit iterates the event and all descendants depth first
func (e *Event) Visit() iter.Seq2[uuid.UUID, *Event] {
	return func(yield func(uuid.UUID, *Event) bool) {
		e.visitInternal(yield)
	}
}

func (e *Event) visitInternal(yield func(uuid.UUID, *Event) bool) bool {
	if !yield(e.ID, e) {
		return false
	}
	for _, child := range e.Children {
		if !child.visitInternal(yield) {
			return false
		}
	}
	return true
}

// Operation is the data of a top-level event, e.g. "onboard" or "accept-access"
type Operation struct {
	Name string
	// Err is the error the operation returned, nil on success
	Err error
}

// Failure returns the operation error
func (o Operation) Failure() error {
	return o.Err
}

// Step is a single browser interaction inside an operation
type Step struct {
	// Name identifies the step, e.g. "click create wallet"
	Name string
	// Target is the locator or text the step acted on
	Target string
	// Window is the URL of the window the step acted on, if known
	Window string
	Err    error
	// Snapshot holds the HTML of the active window when the step failed
	Snapshot string
}

// Failure returns the step error
func (s Step) Failure() error {
	return s.Err
}
