// Package aggregate fans a fixed query plan out across source adapters and
// reduces the results to one deduplicated working set.
package aggregate

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oppscout/oppscout/internal/model"
)

// Result is the reduced output of one aggregation pass.
type Result struct {
	Postings   []model.Posting // deduplicated, plan order preserved
	Discovered int             // valid postings before dedup
	Duplicates int             // dropped by first-wins dedup
	Invalid    int             // dropped for missing title/company
	CallErrors []string        // per-call failures, isolated
}

// Aggregator runs a query plan with bounded concurrency and a collection
// barrier before deduplication.
type Aggregator struct {
	plan        []Call
	concurrency int
	callTimeout time.Duration
	logger      *slog.Logger
}

// New creates an Aggregator for the given plan.
func New(plan []Call, concurrency int, callTimeout time.Duration, logger *slog.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		plan:        plan,
		concurrency: concurrency,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Run executes every call in the plan. A failing call is logged and counts
// as zero results; it never blocks the others. Results are collected behind
// a barrier and deduplicated in plan order, first occurrence wins.
func (a *Aggregator) Run(ctx context.Context) Result {
	type callResult struct {
		postings []model.Posting
		err      error
	}

	// Indexed by plan position so dedup order is deterministic regardless of
	// which worker finishes first.
	results := make([]callResult, len(a.plan))

	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup
	for i, call := range a.plan {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx := ctx
			if a.callTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, a.callTimeout)
				defer cancel()
			}

			postings, err := call.Adapter.Search(callCtx, call.Query, call.Location)
			results[i] = callResult{postings: postings, err: err}
		}(i, call)
	}
	wg.Wait()

	var res Result
	seen := make(map[string]struct{})
	for i, cr := range results {
		if cr.err != nil {
			call := a.plan[i]
			a.logger.Warn("adapter call failed",
				"adapter", call.Adapter.Name(),
				"query", call.Query,
				"location", call.Location,
				"error", cr.err,
			)
			res.CallErrors = append(res.CallErrors, call.Adapter.Name()+": "+cr.err.Error())
			continue
		}

		for _, p := range cr.postings {
			if !p.Valid() {
				res.Invalid++
				continue
			}
			res.Discovered++

			key := dedupKey(p)
			if _, dup := seen[key]; dup {
				res.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			res.Postings = append(res.Postings, p)
		}
	}

	a.logger.Info("aggregation complete",
		"calls", len(a.plan),
		"failed_calls", len(res.CallErrors),
		"discovered", res.Discovered,
		"unique", len(res.Postings),
		"duplicates", res.Duplicates,
		"invalid", res.Invalid,
	)

	return res
}

// dedupKey is the in-run identity: normalized lowercase company+title+location.
func dedupKey(p model.Posting) string {
	return strings.ToLower(strings.TrimSpace(p.Company)) + "|" +
		strings.ToLower(strings.TrimSpace(p.Title)) + "|" +
		strings.ToLower(strings.TrimSpace(p.Location))
}
