package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDeduper_Seen(t *testing.T) {
	d, err := NewEventDeduper(16, time.Minute)
	require.NoError(t, err)
	now := time.Now()
	d.now = func() time.Time { return now }

	assert.False(t, d.Seen("Ev1"))
	assert.True(t, d.Seen("Ev1"))
	assert.False(t, d.Seen("Ev2"))

	now = now.Add(2 * time.Minute)
	assert.False(t, d.Seen("Ev1"), "entries older than the TTL are forgotten")
}

func TestEventDeduper_EmptyAndNil(t *testing.T) {
	d, err := NewEventDeduper(0, 0)
	require.NoError(t, err)
	assert.False(t, d.Seen(""))
	assert.False(t, d.Seen(""))

	var none *EventDeduper
	assert.False(t, none.Seen("Ev1"))
}
