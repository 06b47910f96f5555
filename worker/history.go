package worker

import (
	"container/ring"
	"sync"

	"github.com/anyswap/soroban-counter/types"
)

const defaultHistorySize = 100

// Record outcome of one counter action
type Record struct {
	Op        string            `json:"op"`
	Hash      string            `json:"hash,omitempty"`
	State     types.TxState     `json:"state,omitempty"`
	Value     types.LedgerValue `json:"value"`
	Carrier   string            `json:"carrier,omitempty"`
	ErrorKind string            `json:"errorKind,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// History bounded in-memory ring of records, newest first
type History struct {
	lock    sync.RWMutex
	ring    *ring.Ring
	maxSize int
}

// NewHistory new history keeps at most maxSize records
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = defaultHistorySize
	}
	return &History{maxSize: maxSize}
}

// Add add record, the oldest is dropped when full
func (h *History) Add(rec *Record) {
	// Create the new item as its own ring
	item := ring.New(1)
	item.Value = rec

	h.lock.Lock()
	defer h.lock.Unlock()

	if h.ring == nil || h.maxSize == 1 {
		h.ring = item
		return
	}
	if h.ring.Len() == h.maxSize {
		h.ring = h.ring.Move(-1)
		h.ring.Unlink(1)
		h.ring = h.ring.Move(1)
	}
	h.ring.Move(-1).Link(item)
}

// List newest records first, limit <= 0 means all
func (h *History) List(limit int) []*Record {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if h.ring == nil {
		return nil
	}
	size := h.ring.Len()
	if limit <= 0 || limit > size {
		limit = size
	}
	result := make([]*Record, 0, limit)
	r := h.ring.Prev()
	for i := 0; i < limit; i++ {
		result = append(result, r.Value.(*Record))
		r = r.Prev()
	}
	return result
}

// Get newest record of transaction hash
func (h *History) Get(hash string) *Record {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if h.ring == nil {
		return nil
	}
	r := h.ring.Prev()
	for i := 0; i < r.Len(); i++ {
		item := r.Value.(*Record)
		if item.Hash == hash {
			return item
		}
		r = r.Prev()
	}
	return nil
}

// Len number of records
func (h *History) Len() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if h.ring == nil {
		return 0
	}
	return h.ring.Len()
}
