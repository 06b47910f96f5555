package worker

import (
	"context"
	"time"
)

// StartRefreshJob refresh the counter value periodically, skipped while an
// action is in flight
func StartRefreshJob(ctx context.Context, counter *Counter, interval time.Duration) {
	if interval <= 0 {
		logWorker("refresh", "periodic refresh disabled")
		return
	}
	logWorker("refresh", "start refresh job", "interval", interval)
	for {
		if !restInJob(ctx, interval) {
			logWorker("refresh", "stop refresh job")
			return
		}
		if counter.IsBusy() {
			logWorkerTrace("refresh", "counter busy, skip refresh")
			continue
		}
		outcome, err := counter.Refresh(ctx).Wait(ctx)
		if err != nil {
			logWorkerError("refresh", "refresh failed", err)
			continue
		}
		logWorkerTrace("refresh", "refresh success", "value", outcome.Value, "carrier", outcome.Carrier)
	}
}
