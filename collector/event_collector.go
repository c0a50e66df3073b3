package collector

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

type ctxKey string

const (
	groupIDKey ctxKey = "groupID"
)

// DefaultEventCapacity is the number of top-level events kept when no capacity is given
const DefaultEventCapacity = 200

// EventCollector records grouped events: an operation started with StartEvent
// collects all events added with the returned context as its children.
type EventCollector struct {
	buffer     *LookupRingBuffer[*Event, uuid.UUID]
	openGroups map[uuid.UUID]*Event
	notifier   *Notifier[*Event]

	mx sync.Mutex
}

type EventOptions struct {
	// NotifierOptions are options for notification about finished top-level events
	NotifierOptions *NotifierOptions
}

func DefaultEventOptions() EventOptions {
	return EventOptions{}
}

// NewEventCollector creates an event collector keeping DefaultEventCapacity events
func NewEventCollector() *EventCollector {
	return NewEventCollectorWithOptions(DefaultEventCapacity, DefaultEventOptions())
}

func NewEventCollectorWithOptions(capacity uint64, options EventOptions) *EventCollector {
	if capacity == 0 {
		capacity = DefaultEventCapacity
	}
	notifierOptions := DefaultNotifierOptions()
	if options.NotifierOptions != nil {
		notifierOptions = *options.NotifierOptions
	}

	return &EventCollector{
		buffer:     NewLookupRingBuffer[*Event, uuid.UUID](capacity),
		openGroups: make(map[uuid.UUID]*Event),
		notifier:   NewNotifierWithOptions[*Event](notifierOptions),
	}
}

// GroupIDFromContext returns the ID of the open event started for ctx
func GroupIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if groupID, ok := ctx.Value(groupIDKey).(uuid.UUID); ok {
		return groupID, true
	}
	return uuid.Nil, false
}

func withGroupID(ctx context.Context, groupID uuid.UUID) context.Context {
	return context.WithValue(ctx, groupIDKey, groupID)
}

// CollectEvent records a finished event that started at start.
// With an open group in ctx the event becomes a child of that group.
func (c *EventCollector) CollectEvent(ctx context.Context, start time.Time, data any) {
	evt := &Event{
		ID:    uuid.Must(uuid.NewV7()),
		Data:  data,
		Start: start,
		End:   time.Now(),
	}
	if groupID, ok := GroupIDFromContext(ctx); ok {
		evt.GroupID = &groupID
	}

	c.mx.Lock()
	defer c.mx.Unlock()

	c.finish(evt)
}

// StartEvent opens a new event and returns a context that groups further events as its children.
// EndEvent must be called with the returned context to publish the event.
func (c *EventCollector) StartEvent(ctx context.Context) context.Context {
	evt := &Event{
		ID:    uuid.Must(uuid.NewV7()),
		Start: time.Now(),
	}
	if groupID, ok := GroupIDFromContext(ctx); ok {
		evt.GroupID = &groupID
	}

	c.mx.Lock()
	c.openGroups[evt.ID] = evt
	c.mx.Unlock()

	return withGroupID(ctx, evt.ID)
}

// EndEvent closes the event opened by StartEvent for ctx and attaches data
func (c *EventCollector) EndEvent(ctx context.Context, data any) {
	groupID, ok := GroupIDFromContext(ctx)
	if !ok {
		return
	}

	c.mx.Lock()
	defer c.mx.Unlock()

	evt := c.openGroups[groupID]
	if evt == nil {
		return
	}
	delete(c.openGroups, groupID)

	evt.Data = data
	evt.End = time.Now()

	c.finish(evt)
}

// finish must be called with c.mx held
func (c *EventCollector) finish(evt *Event) {
	if evt.GroupID != nil {
		if outer := c.openGroups[*evt.GroupID]; outer != nil {
			outer.Children = append(outer.Children, evt)
			return
		}
	}

	evt.GroupID = nil
	c.buffer.Add(evt)
	c.notifier.Notify(evt)
}

// GetEvents returns the most recent n top-level events, oldest first
func (c *EventCollector) GetEvents(n uint64) []*Event {
	return c.buffer.GetRecords(n)
}

// GetEvent finds a top-level event or any child of a buffered event by ID
func (c *EventCollector) GetEvent(id uuid.UUID) (*Event, bool) {
	if evt, ok := c.buffer.Lookup(id); ok {
		return evt, true
	}
	for _, top := range c.buffer.GetRecords(c.buffer.Capacity()) {
		for childID, child := range top.Visit() {
			if childID == id {
				return child, true
			}
		}
	}
	return nil, false
}

// Subscribe returns a channel that receives finished top-level events
func (c *EventCollector) Subscribe(ctx context.Context) <-chan *Event {
	return c.notifier.Subscribe(ctx)
}

// Clear drops all finished events
func (c *EventCollector) Clear() {
	c.buffer.Clear()
}

// Close releases resources used by the collector
func (c *EventCollector) Close() {
	c.notifier.Close()
}
