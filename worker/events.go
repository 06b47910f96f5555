package worker

import (
	"sync"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/types"
)

// event types
const (
	EventValue = "value"
	EventBusy  = "busy"
	EventError = "error"
)

// Event pushed to subscribers
type Event struct {
	Type      string            `json:"type"`
	Op        string            `json:"op,omitempty"`
	Hash      string            `json:"hash,omitempty"`
	Value     types.LedgerValue `json:"value"`
	Busy      bool              `json:"busy"`
	Kind      string            `json:"kind,omitempty"`
	Message   string            `json:"message,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

type broadcaster struct {
	lock   sync.Mutex
	nextID int
	subs   map[int]chan *Event
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan *Event)}
}

func (b *broadcaster) subscribe(buffer int) (<-chan *Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan *Event, buffer)
	b.lock.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.lock.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.lock.Lock()
			delete(b.subs, id)
			b.lock.Unlock()
			close(ch)
		})
	}
}

// publish never blocks, slow subscribers miss events
func (b *broadcaster) publish(ev *Event) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			logWorkerTrace("events", "drop event for slow subscriber", "id", id, "type", ev.Type)
		}
	}
}

func errorEvent(op, hash string, value types.LedgerValue, err error) *Event {
	ev := &Event{
		Type:      EventError,
		Op:        op,
		Hash:      hash,
		Value:     value,
		Kind:      chain.KindName(err),
		Message:   err.Error(),
		Timestamp: now(),
	}
	if txErr, ok := asTxError(err); ok {
		ev.Detail = txErr.Detail
	}
	return ev
}
