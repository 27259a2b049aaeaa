package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain message", errors.New("boom"), "boom"},
		{"structured with message", &RequestError{Message: "boom", Status: 500}, "boom"},
		{"structured without message", &RequestError{Status: 500}, TextHTTPError},
		{"wrapped structured", fmt.Errorf("fetch: %w", &RequestError{Message: "boom"}), "boom"},
		{"structured wrapping cause", &RequestError{Err: errors.New("low level")}, "low level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorText(tt.err))
		})
	}
}

func TestIsCanceled(t *testing.T) {
	assert.False(t, IsCanceled(nil))
	assert.True(t, IsCanceled(context.Canceled))
	assert.True(t, IsCanceled(context.DeadlineExceeded))
	assert.True(t, IsCanceled(fmt.Errorf("driver: %w", context.Canceled)))
	assert.True(t, IsCanceled(errors.New("operation failed: context deadline exceeded")))
	assert.False(t, IsCanceled(errors.New("boom")))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil))
	assert.Equal(t, ErrCanceled, WrapError(context.Canceled))

	boom := errors.New("boom")
	assert.Equal(t, boom, WrapError(boom))
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "42", Record{"id": float64(42)}.GetID())
	assert.Equal(t, "42", Record{"id": 42}.GetID())
	assert.Equal(t, "abc", Record{"id": "abc"}.GetID())
	assert.Equal(t, "", Record{}.GetID())

	r := Record{"title": "x"}
	r.GenerateIDIfEmpty()
	assert.True(t, r.HasID())

	id := r.GetID()
	r.GenerateIDIfEmpty()
	assert.Equal(t, id, r.GetID(), "existing ID must not be replaced")
}
