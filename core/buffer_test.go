package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionBufferDedupAndOrder(t *testing.T) {
	buf := NewTransactionBuffer()
	a := NewVoteOpened()
	b := NewVoteClosed()

	assert.True(t, buf.Add(a))
	assert.True(t, buf.Add(b))
	assert.False(t, buf.Add(a), "duplicate add must be rejected")
	assert.Equal(t, 2, buf.Len())

	drained := buf.DrainAll()
	assert.Equal(t, []*Transaction{a, b}, drained)
	assert.Equal(t, 0, buf.Len(), "DrainAll must clear the buffer")
}

func TestTransactionBufferRemoveMatching(t *testing.T) {
	buf := NewTransactionBuffer()
	a := NewVoteOpened()
	b := NewVoteClosed()
	buf.Add(a)
	buf.Add(b)

	buf.RemoveMatching([]string{a.ID})

	assert.False(t, buf.Contains(a.ID))
	assert.True(t, buf.Contains(b.ID))
}
