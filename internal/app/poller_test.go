package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/five82/storefront/internal/catalog"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestStartPoller_DeliversSnapshotsAndBacksOff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gate := make(chan struct{})
	calls := 0
	fetch := func(ctx context.Context) ([]catalog.Item, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []catalog.Item{{ID: "a", Stock: 1}}, nil
	}

	updates := StartPoller(ctx, fetch, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first := <-updates
	if first.LastError == nil || first.ConsecutiveFailures != 1 || first.HasItems {
		t.Fatalf("first snapshot = %+v, want one failure", first)
	}
	close(gate)
	second := <-updates
	if !second.HasItems || second.ConsecutiveFailures != 0 || len(second.Items) != 1 {
		t.Fatalf("second snapshot = %+v, want items after recovery", second)
	}

	cancel()
	for range updates {
	}
}

func TestCalculateBackoff_LongBaseIsNotShortened(t *testing.T) {
	if got := calculateBackoff(3, time.Minute); got != time.Minute {
		t.Fatalf("calculateBackoff(3, 1m) = %v, want 1m", got)
	}
}
