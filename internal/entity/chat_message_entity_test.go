package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicMessageId(t *testing.T) {
	a := DeterministicMessageId("session-1", 0)
	b := DeterministicMessageId("session-1", 0)
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, DeterministicMessageId("session-1", 1))
	assert.NotEqual(t, a, DeterministicMessageId("session-2", 0))
}
