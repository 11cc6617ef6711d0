package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBufferSize is the number of events held while sinks catch up.
	DefaultBufferSize = 256

	// sinkTimeout bounds a single sink delivery.
	sinkTimeout = 5 * time.Second
)

// Sink receives command events. Handle is called from the bus worker only.
type Sink interface {
	Name() string
	Handle(ctx context.Context, ev CommandEvent) error
}

// Logger defines the logging interface used by the Bus.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Stats counts what the bus has done since it was created.
type Stats struct {
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
}

// Bus decouples command handling from the journal, MQTT and metrics sinks.
//
// Emit never blocks: events go into a bounded buffer drained by the single
// goroutine running Run. When the buffer is full the event is dropped and
// counted, so a slow broker can never stall a connection.
type Bus struct {
	events chan CommandEvent
	sinks  []Sink
	logger Logger

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewBus creates a bus with the given buffer size and sinks.
func NewBus(buffer int, sinks ...Sink) *Bus {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Bus{
		events: make(chan CommandEvent, buffer),
		sinks:  sinks,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the bus.
func (b *Bus) SetLogger(logger Logger) {
	b.logger = logger
}

// Emit queues an event, filling in ID and Timestamp when they are empty.
func (b *Bus) Emit(ev CommandEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	select {
	case b.events <- ev:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event buffer full, dropping event",
			"command", ev.Command,
			"connection_id", ev.ConnectionID,
		)
	}
}

// Run delivers events to every sink until ctx is cancelled, then flushes
// whatever is still buffered and returns nil.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-b.events:
			b.deliver(ev)
		case <-ctx.Done():
			b.flush()
			return nil
		}
	}
}

func (b *Bus) flush() {
	for {
		select {
		case ev := <-b.events:
			b.deliver(ev)
		default:
			return
		}
	}
}

func (b *Bus) deliver(ev CommandEvent) {
	for _, sink := range b.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := sink.Handle(ctx, ev)
		cancel()
		if err != nil {
			b.failed.Add(1)
			b.logger.Warn("event sink failed",
				"sink", sink.Name(),
				"event_id", ev.ID,
				"error", err,
			)
		}
	}
	b.delivered.Add(1)
}

// Stats returns delivery counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
		Failed:    b.failed.Load(),
	}
}
