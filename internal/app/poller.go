package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/storefront/internal/catalog"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
	fetchTimeout        = 10 * time.Second
)

// FetchFunc loads the full product listing.
type FetchFunc func(ctx context.Context) ([]catalog.Item, error)

// StartPoller launches a background goroutine that fetches the catalog at a
// fixed cadence, backing off while fetches fail. Each result is folded into a
// catalog.Snapshot and sent on the returned channel, which holds only the
// latest snapshot and is closed when ctx is done.
func StartPoller(ctx context.Context, fetch FetchFunc, interval time.Duration, logger *slog.Logger) <-chan catalog.Snapshot {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	out := make(chan catalog.Snapshot, 1)
	go func() {
		defer close(out)

		var snap catalog.Snapshot
		for {
			snap = refresh(ctx, fetch, snap, logger)
			publish(out, snap)

			wait := calculateBackoff(snap.ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return out
}

// publish replaces any unread snapshot with snap.
func publish(out chan catalog.Snapshot, snap catalog.Snapshot) {
	for {
		select {
		case out <- snap:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

func refresh(ctx context.Context, fetch FetchFunc, prev catalog.Snapshot, logger *slog.Logger) catalog.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	items, err := fetch(ctx)
	next := prev.Next(items, err, time.Now())
	if err != nil {
		logger.Warn("catalog poll failed", "error", err, "failures", next.ConsecutiveFailures)
		return next
	}
	logger.Debug("catalog polled", "products", len(items))
	return next
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff. The cap never shortens a base interval that already exceeds it.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return max(maxBackoff, base)
		}
	}
	return wait
}
