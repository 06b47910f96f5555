package soroban

import (
	"context"
	"fmt"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/log"
)

// eventsFilter contract events with topics [count, *]
func (c *Client) eventsFilter() (chain.EventFilter, error) {
	topic, err := SymbolBase64(EventTopic)
	if err != nil {
		return chain.EventFilter{}, err
	}
	return chain.EventFilter{
		Type:        "contract",
		ContractIDs: []string{c.ContractID},
		Topics:      [][]string{{topic, "*"}},
	}, nil
}

// maxEventPages bounds getEvents paging of one read
const maxEventPages = 100

// ReadEvents read the newest counter value from recent contract events.
// getEvents returns events oldest first, so every page of the lookback
// window is read and the newest value across pages wins.
func (c *Client) ReadEvents(ctx context.Context) (uint32, error) {
	latest, err := c.node.GetLatestLedger(ctx)
	if err != nil {
		return 0, err
	}
	startLedger := uint32(1)
	if latest.Sequence > c.EventLookback {
		startLedger = latest.Sequence - c.EventLookback
	}
	filter, err := c.eventsFilter()
	if err != nil {
		return 0, err
	}
	req := &chain.EventsRequest{
		StartLedger: startLedger,
		Filters:     []chain.EventFilter{filter},
		Pagination:  &chain.EventPagination{Limit: c.EventLimit},
	}
	var newest *eventValue
	for page := 0; page < maxEventPages; page++ {
		res, err := c.node.GetEvents(ctx, req)
		if err != nil {
			return 0, err
		}
		newest = newerEventValue(newest, res.Events)
		cursor := pageCursor(res)
		if uint(len(res.Events)) < c.EventLimit || cursor == "" {
			break
		}
		// startLedger and cursor are exclusive in getEvents
		req.StartLedger = 0
		req.Pagination = &chain.EventPagination{Cursor: cursor, Limit: c.EventLimit}
	}
	if newest == nil {
		return 0, fmt.Errorf("counter event: %w", chain.ErrNotFound)
	}
	return newest.value, nil
}

// pageCursor result cursor, older nodes only set paging tokens on events
func pageCursor(res *chain.EventsResult) string {
	if res.Cursor != "" {
		return res.Cursor
	}
	if n := len(res.Events); n > 0 {
		return res.Events[n-1].PagingToken
	}
	return ""
}

type eventValue struct {
	value  uint32
	ledger uint32
}

func newerEventValue(cur *eventValue, events []chain.EventInfo) *eventValue {
	for i := range events {
		ev := &events[i]
		v, err := DecodeU32Base64(ev.Value)
		if err != nil {
			log.Trace("skip event", "id", ev.ID, "ledger", ev.Ledger, "err", err)
			continue
		}
		if cur == nil || ev.Ledger >= cur.ledger {
			cur = &eventValue{value: v, ledger: ev.Ledger}
		}
	}
	return cur
}

// LatestEventValue newest event carrying a u32 value, later ledger wins,
// within a ledger the later entry wins
func LatestEventValue(events []chain.EventInfo) (uint32, error) {
	newest := newerEventValue(nil, events)
	if newest == nil {
		return 0, fmt.Errorf("counter event: %w", chain.ErrNotFound)
	}
	return newest.value, nil
}
