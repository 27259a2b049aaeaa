// Package notify carries user-facing notifications out of the loading
// pipeline. Controllers emit one event per error transition; sinks
// decide how the event reaches the user (log line, NATS subject, ...).
package notify

import (
	"log/slog"
)

// Type classifies a notification.
const (
	TypeError = "error"
	TypeInfo  = "info"
)

// Event is one notification: the display message plus structured args
// for the presenting layer.
type Event struct {
	Message string                 `json:"message"`
	Type    string                 `json:"type"`
	Args    map[string]interface{} `json:"messageArgs,omitempty"`
}

// Notifier is a notification sink.
type Notifier interface {
	Notify(event Event)
}

// Func adapts a function to the Notifier interface.
type Func func(event Event)

// Notify implements Notifier.
func (f Func) Notify(event Event) {
	f(event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(Event) {}

// LogNotifier writes events to the default structured logger.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(event Event) {
	attrs := []any{"type", event.Type}
	if detail, ok := event.Args["_"]; ok {
		attrs = append(attrs, "detail", detail)
	}
	switch event.Type {
	case TypeError:
		slog.Error(event.Message, attrs...)
	default:
		slog.Info(event.Message, attrs...)
	}
}
