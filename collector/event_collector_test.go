package collector_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/keplrflow/collector"
)

func TestEventCollector_BasicCollection(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	start := time.Now()
	evtCollector.CollectEvent(context.Background(), start, collector.Step{Name: "click finish"})

	events := evtCollector.GetEvents(10)
	require.Len(t, events, 1)

	evt := events[0]
	assert.NotEqual(t, uuid.Nil, evt.ID)
	assert.Nil(t, evt.GroupID)
	assert.Equal(t, collector.Step{Name: "click finish"}, evt.Data)
	assert.Equal(t, start, evt.Start)
	assert.False(t, evt.End.Before(evt.Start))
	assert.Empty(t, evt.Children)
}

func TestEventCollector_OperationWithSteps(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	ctx := evtCollector.StartEvent(context.Background())

	groupID, ok := collector.GroupIDFromContext(ctx)
	require.True(t, ok)

	evtCollector.CollectEvent(ctx, time.Now(), collector.Step{Name: "click create wallet"})
	evtCollector.CollectEvent(ctx, time.Now(), collector.Step{Name: "type wallet name"})

	// Nothing is published before the operation ends
	assert.Empty(t, evtCollector.GetEvents(10))

	evtCollector.EndEvent(ctx, collector.Operation{Name: "onboard"})

	events := evtCollector.GetEvents(10)
	require.Len(t, events, 1)

	op := events[0]
	assert.Equal(t, groupID, op.ID)
	assert.Equal(t, collector.Operation{Name: "onboard"}, op.Data)
	require.Len(t, op.Children, 2)
	for _, child := range op.Children {
		require.NotNil(t, child.GroupID)
		assert.Equal(t, op.ID, *child.GroupID)
	}
	assert.Equal(t, "click create wallet", op.Children[0].Data.(collector.Step).Name)
	assert.Equal(t, "type wallet name", op.Children[1].Data.(collector.Step).Name)
	assert.False(t, op.Failed())
}

func TestEventCollector_DeeplyNestedEvents(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	ctx1 := evtCollector.StartEvent(context.Background())
	ctx2 := evtCollector.StartEvent(ctx1)
	ctx3 := evtCollector.StartEvent(ctx2)

	evtCollector.EndEvent(ctx3, "Level 3")
	evtCollector.EndEvent(ctx2, "Level 2")
	evtCollector.EndEvent(ctx1, "Level 1")

	events := evtCollector.GetEvents(10)
	require.Len(t, events, 1)

	lvl1 := events[0]
	assert.Equal(t, "Level 1", lvl1.Data)
	require.Len(t, lvl1.Children, 1)

	lvl2 := lvl1.Children[0]
	assert.Equal(t, "Level 2", lvl2.Data)
	require.Len(t, lvl2.Children, 1)
	assert.Equal(t, "Level 3", lvl2.Children[0].Data)

	visited := 0
	for range lvl1.Visit() {
		visited++
	}
	assert.Equal(t, 3, visited)
}

func TestEventCollector_EndEventWithoutStart(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	evtCollector.EndEvent(context.Background(), "orphan")

	assert.Empty(t, evtCollector.GetEvents(10))
}

func TestEventCollector_GetEventFindsChildren(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	ctx := evtCollector.StartEvent(context.Background())
	evtCollector.CollectEvent(ctx, time.Now(), collector.Step{Name: "wait for account created"})
	evtCollector.EndEvent(ctx, collector.Operation{Name: "onboard"})

	op := evtCollector.GetEvents(1)[0]
	child := op.Children[0]

	found, ok := evtCollector.GetEvent(child.ID)
	require.True(t, ok)
	assert.Same(t, child, found)

	found, ok = evtCollector.GetEvent(op.ID)
	require.True(t, ok)
	assert.Same(t, op, found)

	_, ok = evtCollector.GetEvent(uuid.Must(uuid.NewV7()))
	assert.False(t, ok)
}

func TestEventCollector_Failed(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	ctx := evtCollector.StartEvent(context.Background())
	evtCollector.CollectEvent(ctx, time.Now(), collector.Step{Name: "click approve", Err: errors.New("timeout")})
	evtCollector.EndEvent(ctx, collector.Operation{Name: "confirm-transaction"})

	op := evtCollector.GetEvents(1)[0]
	assert.True(t, op.Failed(), "a failed step marks the operation failed")
}

func TestEventCollector_Notification(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	c := collector.Collect(t, evtCollector.Subscribe)

	ctx := evtCollector.StartEvent(context.Background())
	evtCollector.CollectEvent(ctx, time.Now(), collector.Step{Name: "child"})
	evtCollector.EndEvent(ctx, collector.Operation{Name: "accept-access"})
	evtCollector.CollectEvent(context.Background(), time.Now(), "top-level")

	events := c.Wait(2)
	require.Len(t, events, 2)
	assert.Equal(t, collector.Operation{Name: "accept-access"}, events[0].Data)
	assert.Equal(t, "top-level", events[1].Data)
}

func TestEventCollector_RingBufferCapacity(t *testing.T) {
	evtCollector := collector.NewEventCollectorWithOptions(3, collector.DefaultEventOptions())
	defer evtCollector.Close()

	for i := 0; i < 5; i++ {
		evtCollector.CollectEvent(context.Background(), time.Now(), i)
	}

	events := evtCollector.GetEvents(10)
	require.Len(t, events, 3)
	assert.Equal(t, 2, events[0].Data)
	assert.Equal(t, 4, events[2].Data)

	evtCollector.Clear()
	assert.Empty(t, evtCollector.GetEvents(10))
}

func TestEventCollector_IntegrationWithSlog(t *testing.T) {
	evtCollector := collector.NewEventCollector()
	defer evtCollector.Close()

	logCollector := collector.NewLogCollectorWithOptions(10, collector.LogOptions{
		EventCollector: evtCollector,
	})
	defer logCollector.Close()

	logger := slog.New(collector.NewSlogLogCollectorHandler(logCollector, collector.CollectSlogLogsOptions{
		Level: slog.LevelDebug,
	}))

	// Outside an operation records are only kept in the log buffer
	logger.Info("driver ready")

	ctx := evtCollector.StartEvent(context.Background())
	logger.InfoContext(ctx, "notification window found", slog.String("url", "chrome-extension://abc/popup.html"))
	evtCollector.EndEvent(ctx, collector.Operation{Name: "accept-access"})

	assert.Len(t, logCollector.Tail(10), 2)

	events := evtCollector.GetEvents(10)
	require.Len(t, events, 1)
	require.Len(t, events[0].Children, 1)

	record, ok := events[0].Children[0].Data.(slog.Record)
	require.True(t, ok)
	assert.Equal(t, "notification window found", record.Message)
}
