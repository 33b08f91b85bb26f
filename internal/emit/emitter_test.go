package emit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

// mockWriter records the messages the emitter delivers.
type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *mockWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

func (w *mockWriter) message(i int) kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.messages[i]
}

func (w *mockWriter) wasClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// mockEmitMetrics records the calls the emitter makes on its sink.
type mockEmitMetrics struct {
	mu        sync.Mutex
	published int
	dropped   int
}

func (m *mockEmitMetrics) PublishedInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published++
}

func (m *mockEmitMetrics) DroppedInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *mockEmitMetrics) QueueDepthSet(float64) {}

func (m *mockEmitMetrics) publishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published
}

func (m *mockEmitMetrics) droppedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

func testEvent(id string) Event {
	return Event{
		RequestID: id,
		Band:      "full",
		NOxPred:   67.3,
		Reading:   nox.SensorReading{TIT: 1100, TAT: 550, CDP: 12.1},
		Ts:        time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestEmitterPublishDelivers(t *testing.T) {
	writer := &mockWriter{}
	metrics := &mockEmitMetrics{}
	e := newWithWriter(Config{Enabled: true, Topic: "nox.predictions", QueueSize: 8}, writer, metrics)
	e.Start(context.Background())

	e.Publish(testEvent("req-1"))

	require.Eventually(t, func() bool { return writer.count() == 1 }, time.Second, 5*time.Millisecond)

	msg := writer.message(0)
	assert.Equal(t, "full", string(msg.Key), "events are keyed by band")

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, 67.3, got.NOxPred)
	assert.Equal(t, 1100.0, got.Reading.TIT)

	require.NoError(t, e.Stop(context.Background()))
	assert.True(t, writer.wasClosed())
	assert.Equal(t, 1, metrics.publishedCount())
}

func TestEmitterStopDrainsQueue(t *testing.T) {
	writer := &mockWriter{}
	metrics := &mockEmitMetrics{}
	e := newWithWriter(Config{Enabled: true, Topic: "nox.predictions", QueueSize: 16}, writer, metrics)
	e.Start(context.Background())

	for i := 0; i < 5; i++ {
		e.Publish(testEvent("req-drain"))
	}

	require.NoError(t, e.Stop(context.Background()))
	assert.Equal(t, 5, writer.count(), "queued events must be flushed on stop")
	assert.Equal(t, 5, metrics.publishedCount())
	assert.Equal(t, 0, metrics.droppedCount())
}

func TestEmitterDropsWhenQueueFull(t *testing.T) {
	writer := &mockWriter{}
	metrics := &mockEmitMetrics{}
	// Never started: nothing consumes the queue, so overflow is
	// deterministic.
	e := newWithWriter(Config{Enabled: true, Topic: "nox.predictions", QueueSize: 2}, writer, metrics)

	for i := 0; i < 5; i++ {
		e.Publish(testEvent("req-overflow"))
	}

	assert.Equal(t, 3, metrics.droppedCount())
	require.NoError(t, e.Stop(context.Background()))
	assert.True(t, writer.wasClosed())
}

func TestEmitterDisabled(t *testing.T) {
	metrics := &mockEmitMetrics{}
	e := New(Config{Enabled: false}, metrics)

	e.Start(context.Background())
	e.Publish(testEvent("req-ignored"))
	require.NoError(t, e.Stop(context.Background()))

	assert.Equal(t, 0, metrics.publishedCount())
	assert.Equal(t, 0, metrics.droppedCount())
}

func TestEmitterWriterFailure(t *testing.T) {
	writer := &mockWriter{writeErr: errors.New("broker unreachable")}
	metrics := &mockEmitMetrics{}
	e := newWithWriter(Config{Enabled: true, Topic: "nox.predictions", QueueSize: 4}, writer, metrics)
	e.Start(context.Background())

	e.Publish(testEvent("req-fail"))

	require.NoError(t, e.Stop(context.Background()))
	assert.Equal(t, 0, metrics.publishedCount(), "failed deliveries must not count as published")
	assert.Equal(t, 0, writer.count())
}

func TestEventWireShape(t *testing.T) {
	raw, err := json.Marshal(testEvent("req-shape"))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, key := range []string{"request_id", "band", "nox_pred", "reading", "ts"} {
		assert.Contains(t, doc, key)
	}

	reading, ok := doc["reading"].(map[string]interface{})
	require.True(t, ok, "reading must be an object")
	assert.Contains(t, reading, "TIT")
	assert.Contains(t, reading, "TEY")
}
