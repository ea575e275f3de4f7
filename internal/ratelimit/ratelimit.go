package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oppscout/oppscout/internal/model"
)

// ProviderLimiter enforces a minimum delay between calls to the same search
// provider. All adapters built on the same provider share one instance, so
// concurrent fan-out cannot burst past the provider's rate limit.
type ProviderLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: provider name
	minDelay time.Duration
}

// NewProviderLimiter creates a limiter enforcing minDelay between consecutive
// calls to the same provider.
func NewProviderLimiter(minDelay time.Duration) *ProviderLimiter {
	return &ProviderLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last call to provider.
// Returns an error if the context is cancelled while waiting.
func (l *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	l.mu.Lock()
	last, ok := l.lastCall[provider]
	now := time.Now()

	if !ok {
		l.lastCall[provider] = now
		l.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= l.minDelay {
		l.lastCall[provider] = now
		l.mu.Unlock()
		return nil
	}

	remaining := l.minDelay - elapsed
	// Reserve the slot before sleeping so a concurrent waiter queues behind us
	// instead of grabbing the same window.
	l.lastCall[provider] = now.Add(remaining)
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", provider, ctx.Err())
	case <-time.After(remaining):
	}

	return nil
}

// Adapter is a decorator that waits on the shared limiter before delegating
// to the wrapped SourceAdapter.
type Adapter struct {
	inner    model.SourceAdapter
	limiter  *ProviderLimiter
	provider string
}

// NewAdapter wraps a SourceAdapter with provider-level rate limiting.
// Adapters targeting the same provider should share the same limiter.
func NewAdapter(inner model.SourceAdapter, limiter *ProviderLimiter, provider string) *Adapter {
	return &Adapter{
		inner:    inner,
		limiter:  limiter,
		provider: provider,
	}
}

func (a *Adapter) Name() string { return a.inner.Name() }

// Search waits for the rate limiter, then delegates to the wrapped adapter.
func (a *Adapter) Search(ctx context.Context, query, location string) ([]model.Posting, error) {
	if err := a.limiter.Wait(ctx, a.provider); err != nil {
		return nil, err
	}
	return a.inner.Search(ctx, query, location)
}
