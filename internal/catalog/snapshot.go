package catalog

import (
	"time"
)

// Snapshot is the latest catalog listing seen by the poller.
type Snapshot struct {
	Items               []Item
	HasItems            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the catalog has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Next folds one poll result into s. When err is non-nil the previous items
// are kept but the error is recorded for visibility.
func (s Snapshot) Next(items []Item, err error, now time.Time) Snapshot {
	next := s
	next.LastUpdated = now
	if err != nil {
		next.LastError = err
		next.ConsecutiveFailures++
		return next
	}
	next.Items = Items(items).Clone()
	next.HasItems = true
	next.LastError = nil
	next.ConsecutiveFailures = 0
	return next
}

// StockLookup indexes the snapshot's stock levels by product ID.
func (s Snapshot) StockLookup() func(id string) (int, bool) {
	stock := make(map[string]int, len(s.Items))
	for _, it := range s.Items {
		stock[it.ID] = it.Stock
	}
	return func(id string) (int, bool) {
		n, ok := stock[id]
		return n, ok
	}
}
