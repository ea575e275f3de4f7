package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oppscout/oppscout/internal/model"
)

// stubAdapter returns a fixed set of postings (or an error) for every call.
type stubAdapter struct {
	name     string
	postings []model.Posting
	err      error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(_ context.Context, _, _ string) ([]model.Posting, error) {
	return s.postings, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func posting(company, title, location string) model.Posting {
	return model.Posting{Company: company, Title: title, Location: location}
}

func singleCallPlan(adapters ...model.SourceAdapter) []Call {
	var plan []Call
	for _, a := range adapters {
		plan = append(plan, Call{Adapter: a, Query: "q", Location: "Remote"})
	}
	return plan
}

func TestRunFirstWinsDedup(t *testing.T) {
	first := &stubAdapter{name: "first", postings: []model.Posting{
		posting("Acme", "Senior Product Manager", "Remote"),
	}}
	second := &stubAdapter{name: "second", postings: []model.Posting{
		// Same identity, different case and padding — must lose to first.
		posting("  ACME ", "senior product manager", "remote"),
		posting("Beta", "Chief of Staff", "Seattle"),
	}}

	res := New(singleCallPlan(first, second), 2, 0, discardLogger()).Run(context.Background())

	if len(res.Postings) != 2 {
		t.Fatalf("got %d unique postings, want 2", len(res.Postings))
	}
	if res.Postings[0].Company != "Acme" {
		t.Errorf("winner = %q, want the first adapter's copy", res.Postings[0].Company)
	}
	if res.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", res.Duplicates)
	}
	if res.Discovered != 3 {
		t.Errorf("discovered = %d, want 3", res.Discovered)
	}
}

func TestRunDropsInvalidPostingsSilently(t *testing.T) {
	a := &stubAdapter{name: "a", postings: []model.Posting{
		posting("Acme", "", "Remote"),       // missing title
		posting("", "Chief of Staff", ""),   // missing company
		posting("Beta", "General Manager", "NYC"),
	}}

	res := New(singleCallPlan(a), 1, 0, discardLogger()).Run(context.Background())

	if len(res.Postings) != 1 {
		t.Fatalf("got %d postings, want 1", len(res.Postings))
	}
	if res.Invalid != 2 {
		t.Errorf("invalid = %d, want 2", res.Invalid)
	}
	// Invalid postings never reach the discovered count.
	if res.Discovered != 1 {
		t.Errorf("discovered = %d, want 1", res.Discovered)
	}
}

func TestRunIsolatesFailingCalls(t *testing.T) {
	broken := &stubAdapter{name: "broken", err: errors.New("quota exceeded")}
	healthy := &stubAdapter{name: "healthy", postings: []model.Posting{
		posting("Acme", "Senior Product Manager", "Remote"),
	}}

	res := New(singleCallPlan(broken, healthy), 2, 0, discardLogger()).Run(context.Background())

	if len(res.Postings) != 1 {
		t.Fatalf("got %d postings, want 1 from the healthy adapter", len(res.Postings))
	}
	if len(res.CallErrors) != 1 {
		t.Fatalf("call errors = %v, want exactly one", res.CallErrors)
	}
}

func TestRunDeterministicOrderUnderConcurrency(t *testing.T) {
	// The slow adapter is first in the plan; even though it finishes last,
	// its copy of the shared posting must win.
	slow := &slowAdapter{delay: 30 * time.Millisecond, inner: &stubAdapter{
		name:     "slow",
		postings: []model.Posting{posting("Acme", "PM", "Remote")},
	}}
	fast := &stubAdapter{name: "fast", postings: []model.Posting{
		posting("acme", "pm", "remote"),
	}}

	res := New(singleCallPlan(slow, fast), 2, 0, discardLogger()).Run(context.Background())

	if len(res.Postings) != 1 {
		t.Fatalf("got %d postings, want 1", len(res.Postings))
	}
	if res.Postings[0].Company != "Acme" {
		t.Errorf("winner = %q, want the slow-but-first adapter's copy", res.Postings[0].Company)
	}
}

type slowAdapter struct {
	delay time.Duration
	inner model.SourceAdapter
}

func (s *slowAdapter) Name() string { return s.inner.Name() }

func (s *slowAdapter) Search(ctx context.Context, query, location string) ([]model.Posting, error) {
	time.Sleep(s.delay)
	return s.inner.Search(ctx, query, location)
}

func TestBuildPlanTiersLocations(t *testing.T) {
	a := &stubAdapter{name: "a"}
	queries := []string{"q1", "q2", "q3"}
	plan := BuildPlan([]model.SourceAdapter{a}, queries, []string{"Remote"}, []string{"Seattle", "NYC"}, 2)

	// Preferred: 1 location x 3 queries. Secondary: 2 locations x 2 queries.
	if len(plan) != 7 {
		t.Fatalf("plan size = %d, want 7", len(plan))
	}
	for i := 0; i < 3; i++ {
		if plan[i].Location != "Remote" {
			t.Errorf("plan[%d].Location = %q, want Remote first", i, plan[i].Location)
		}
	}
	if plan[3].Location != "Seattle" || plan[3].Query != "q1" {
		t.Errorf("plan[3] = %+v, want Seattle/q1", plan[3])
	}
	for _, c := range plan[3:] {
		if c.Query == "q3" {
			t.Error("secondary locations must not receive queries beyond the limit")
		}
	}
}
