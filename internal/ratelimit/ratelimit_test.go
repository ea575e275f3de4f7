package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/oppscout/oppscout/internal/model"
)

func TestWaitFirstCallDoesNotBlock(t *testing.T) {
	l := NewProviderLimiter(time.Second)

	start := time.Now()
	if err := l.Wait(context.Background(), "serpapi"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Wait blocked for %v", elapsed)
	}
}

func TestWaitEnforcesMinDelay(t *testing.T) {
	l := NewProviderLimiter(50 * time.Millisecond)

	if err := l.Wait(context.Background(), "serpapi"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	start := time.Now()
	if err := l.Wait(context.Background(), "serpapi"); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second Wait returned after %v, want ~50ms delay", elapsed)
	}
}

func TestWaitIsPerProvider(t *testing.T) {
	l := NewProviderLimiter(time.Second)

	if err := l.Wait(context.Background(), "serpapi"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	// A different provider key is unaffected by the first call.
	start := time.Now()
	if err := l.Wait(context.Background(), "other"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("different provider blocked for %v", elapsed)
	}
}

// stubAdapter is a minimal SourceAdapter for decorator tests.
type stubAdapter struct {
	name string
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Search(ctx context.Context, query, location string) ([]model.Posting, error) {
	return nil, nil
}

func TestAdaptersSharingProviderKeyAreSerialized(t *testing.T) {
	l := NewProviderLimiter(50 * time.Millisecond)

	// Two distinct adapters over one endpoint: same provider key, one bucket.
	first := NewAdapter(&stubAdapter{name: "google_jobs"}, l, "serpapi")
	second := NewAdapter(&stubAdapter{name: "site:jobs.lever.co"}, l, "serpapi")

	if _, err := first.Search(context.Background(), "q", ""); err != nil {
		t.Fatalf("first Search: %v", err)
	}

	start := time.Now()
	if _, err := second.Search(context.Background(), "q", ""); err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second adapter ran after %v, want the shared min delay enforced", elapsed)
	}
}

func TestWaitRespectsCancellation(t *testing.T) {
	l := NewProviderLimiter(10 * time.Second)

	if err := l.Wait(context.Background(), "serpapi"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "serpapi"); err == nil {
		t.Error("expected cancellation error while waiting")
	}
}
