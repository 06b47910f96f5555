package worker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRing(t *testing.T) {
	h := NewHistory(3)
	assert.Nil(t, h.List(0))
	for i := 0; i < 5; i++ {
		h.Add(&Record{Op: "increment", Hash: fmt.Sprintf("hash%d", i)})
	}
	assert.Equal(t, 3, h.Len())

	records := h.List(0)
	require.Len(t, records, 3)
	assert.Equal(t, "hash4", records[0].Hash)
	assert.Equal(t, "hash2", records[2].Hash)

	assert.Len(t, h.List(2), 2)
	assert.NotNil(t, h.Get("hash3"))
	assert.Nil(t, h.Get("hash1"))
}

func TestHistorySizeOne(t *testing.T) {
	h := NewHistory(1)
	h.Add(&Record{Hash: "a"})
	h.Add(&Record{Hash: "b"})
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "b", h.List(0)[0].Hash)
}

func TestBroadcasterDropsForSlowSubscriber(t *testing.T) {
	b := newBroadcaster()
	ch, unsubscribe := b.subscribe(1)
	b.publish(&Event{Type: EventValue})
	b.publish(&Event{Type: EventBusy})
	assert.Len(t, drain(ch), 1)

	unsubscribe()
	unsubscribe()
	b.publish(&Event{Type: EventValue})
	_, ok := <-ch
	assert.False(t, ok)
}
