// Package telemetry forwards application analytics events to a sink.
//
// Events are queued on a [Donburi] world and delivered when the frame loop
// calls [Bus.Flush], so a sink never runs in the middle of an update.
//
// Usage:
//
//	bus := telemetry.NewBus()
//	bus.Attach(telemetry.NewLogSink(log.Logger))
//	bus.Publish(telemetry.EventInit, nil)
//	bus.Flush()
//
// [Donburi]: https://github.com/yohamta/donburi
package telemetry

import (
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Analytics event names.
const (
	EventInit            = "init"
	EventLoadFile        = "load_file"
	EventLoadFileInvalid = "load_file_invalid"
	EventImageReady      = "image_ready"
)

// Event is one analytics event.
type Event struct {
	Name   string
	Params map[string]string
	Time   time.Time
}

// Sink receives analytics events.
type Sink interface {
	LogEvent(name string, params map[string]string)
}

// EventType is the Donburi event type carrying analytics events.
var EventType = events.NewEventType[Event]()

// Bus queues events until Flush.
type Bus struct {
	world donburi.World
	now   func() time.Time
}

// NewBus creates a bus with its own world.
func NewBus() *Bus {
	return &Bus{world: donburi.NewWorld(), now: time.Now}
}

// World returns the world events are published to, for callers that want
// to subscribe to EventType directly.
func (b *Bus) World() donburi.World { return b.world }

// Attach delivers every flushed event to s.
func (b *Bus) Attach(s Sink) {
	EventType.Subscribe(b.world, func(_ donburi.World, e Event) {
		s.LogEvent(e.Name, e.Params)
	})
}

// Publish queues an event. params is copied.
func (b *Bus) Publish(name string, params map[string]string) {
	EventType.Publish(b.world, Event{Name: name, Params: maps.Clone(params), Time: b.now()})
}

// Flush delivers queued events in publish order.
func (b *Bus) Flush() {
	EventType.ProcessEvents(b.world)
}

// LoadFile returns the parameters of a load_file or load_file_invalid
// event for a file of the given MIME type.
func LoadFile(mimeType string) map[string]string {
	return map[string]string{"type": mimeType}
}

// LogSink writes events to a zerolog logger.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a sink logging through l at info level.
func NewLogSink(l zerolog.Logger) *LogSink {
	return &LogSink{logger: l.With().Str("component", "analytics").Logger()}
}

// LogEvent implements Sink.
func (s *LogSink) LogEvent(name string, params map[string]string) {
	ev := s.logger.Info().Str("event", name)
	for _, k := range sortedKeys(params) {
		ev = ev.Str(k, params[k])
	}
	ev.Msg("event")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Nop discards events.
type Nop struct{}

// LogEvent implements Sink.
func (Nop) LogEvent(string, map[string]string) {}
