package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitDeliversToSubscribers(t *testing.T) {
	e := NewEmitter()
	var got []Event
	e.Subscribe(EventBlockCommitted, func(ev Event) { got = append(got, ev) })

	e.Emit(Event{Type: EventBlockCommitted, BlockID: "abc", Height: 3})
	e.Emit(Event{Type: EventVoteOpened})

	assert.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].BlockID)
}

func TestEmitRecoversFromPanickingHandler(t *testing.T) {
	e := NewEmitter()
	called := false
	e.Subscribe(EventChainReplaced, func(Event) { panic("boom") })
	e.Subscribe(EventChainReplaced, func(Event) { called = true })

	assert.NotPanics(t, func() {
		e.Emit(Event{Type: EventChainReplaced})
	})
	assert.True(t, called, "a panicking handler must not block later subscribers")
}
