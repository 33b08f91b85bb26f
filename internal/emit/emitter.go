// Package emit publishes prediction events to Kafka so downstream
// consumers (dashboards, archival jobs) can follow the serving stream
// without sitting in the request path. Publishing is asynchronous and
// lossy: a full queue drops the event and counts the drop rather than
// blocking or failing the request that produced it.
package emit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

const drainTimeout = 5 * time.Second

// Event is the published record of one successful prediction.
type Event struct {
	RequestID string            `json:"request_id"`
	Band      string            `json:"band"`
	NOxPred   float64           `json:"nox_pred"`
	Reading   nox.SensorReading `json:"reading"`
	Ts        time.Time         `json:"ts"`
}

// Config holds the emitter's runtime options.
type Config struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	QueueSize int
}

// MetricsInterface is the narrow metrics view the emitter consumes.
type MetricsInterface interface {
	PublishedInc()
	DroppedInc()
	QueueDepthSet(depth float64)
}

type noopMetrics struct{}

func (noopMetrics) PublishedInc()         {}
func (noopMetrics) DroppedInc()           {}
func (noopMetrics) QueueDepthSet(float64) {}

// messageWriter is satisfied by *kafka.Writer; tests substitute a fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Emitter asynchronously publishes prediction events to one topic,
// keyed by band so one band's events stay in order on one partition.
type Emitter struct {
	cfg       Config
	writer    messageWriter
	metrics   MetricsInterface
	queue     chan Event
	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New constructs an Emitter. A disabled config yields an inert emitter
// whose Publish is a no-op, so callers never branch on configuration.
func New(cfg Config, metrics MetricsInterface) *Emitter {
	if !cfg.Enabled {
		return newWithWriter(cfg, nil, metrics)
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newWithWriter(cfg, writer, metrics)
}

// newWithWriter wires the provided writer into the emitter. It is used
// in tests.
func newWithWriter(cfg Config, writer messageWriter, metrics MetricsInterface) *Emitter {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	e := &Emitter{cfg: cfg, writer: writer, metrics: metrics}
	if cfg.Enabled {
		e.queue = make(chan Event, cfg.QueueSize)
		e.metrics.QueueDepthSet(0)
	}
	return e
}

// Start launches the background delivery loop.
func (e *Emitter) Start(ctx context.Context) {
	if !e.cfg.Enabled {
		return
	}
	e.startOnce.Do(func() {
		e.runCtx, e.cancel = context.WithCancel(ctx)
		e.wg.Add(1)
		go e.run()
		log.Info().
			Str("topic", e.cfg.Topic).
			Strs("brokers", e.cfg.Brokers).
			Int("queue_size", e.cfg.QueueSize).
			Msg("prediction emitter started")
	})
}

// Stop cancels the loop, waits for the queue to drain within ctx, and
// closes the writer.
func (e *Emitter) Stop(ctx context.Context) error {
	if !e.cfg.Enabled {
		return nil
	}
	var stopErr error
	e.stopOnce.Do(func() {
		if e.cancel != nil {
			e.cancel()
		}
		done := make(chan struct{})
		go func() {
			e.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = ctx.Err()
		}
		if err := e.writer.Close(); err != nil {
			log.Warn().Err(err).Msg("emitter writer close failed")
		}
		e.metrics.QueueDepthSet(0)
		log.Info().Msg("prediction emitter stopped")
	})
	return stopErr
}

// Publish enqueues one event without blocking. A full queue drops the
// event: the serving path never waits on the broker.
func (e *Emitter) Publish(event Event) {
	if !e.cfg.Enabled {
		return
	}
	select {
	case e.queue <- event:
		e.metrics.QueueDepthSet(float64(len(e.queue)))
	default:
		e.metrics.DroppedInc()
		log.Warn().Str("band", event.Band).Msg("emitter queue full, dropping event")
	}
}

func (e *Emitter) run() {
	defer e.wg.Done()
	for {
		select {
		case <-e.runCtx.Done():
			e.drainQueue()
			return
		case event := <-e.queue:
			e.metrics.QueueDepthSet(float64(len(e.queue)))
			e.deliver(e.runCtx, event)
		}
	}
}

// drainQueue flushes already queued events under its own deadline; the
// run context is canceled by the time it is called.
func (e *Emitter) drainQueue() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-e.queue:
			e.metrics.QueueDepthSet(float64(len(e.queue)))
			e.deliver(ctx, event)
		default:
			return
		}
	}
}

func (e *Emitter) deliver(ctx context.Context, event Event) {
	value, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("request_id", event.RequestID).Msg("encode prediction event")
		return
	}
	err = e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Band),
		Value: value,
	})
	if err != nil {
		log.Error().Err(err).Str("band", event.Band).Msg("publish prediction event")
		return
	}
	e.metrics.PublishedInc()
}
