package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuncAdapter(t *testing.T) {
	var got Event
	n := Func(func(e Event) { got = e })

	n.Notify(Event{Message: "boom", Type: TypeError, Args: map[string]interface{}{"_": "detail"}})

	assert.Equal(t, "boom", got.Message)
	assert.Equal(t, TypeError, got.Type)
	assert.Equal(t, "detail", got.Args["_"])
}

func TestNopNotifier(t *testing.T) {
	assert.NotPanics(t, func() {
		NopNotifier{}.Notify(Event{Message: "x"})
	})
}

func TestLogNotifierDoesNotPanicWithoutArgs(t *testing.T) {
	assert.NotPanics(t, func() {
		LogNotifier{}.Notify(Event{Message: "x", Type: TypeError})
		LogNotifier{}.Notify(Event{Message: "y", Type: TypeInfo})
	})
}

func TestDefaultNatsConfig(t *testing.T) {
	cfg := DefaultNatsConfig()
	assert.NotEmpty(t, cfg.URL)
	assert.NotEmpty(t, cfg.Subject)
}
