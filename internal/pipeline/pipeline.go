// Package pipeline drives one discovery pass: aggregate, dedup against the
// durable store, score and contact-enrich what's new, persist, rank, report.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/oppscout/oppscout/internal/aggregate"
	"github.com/oppscout/oppscout/internal/model"
	"github.com/oppscout/oppscout/internal/score"
)

// Runner owns one pass of the full pipeline, with every collaborator
// injected at construction. It holds no ambient state; two runners against
// the same store behave like two independent runs.
type Runner struct {
	aggregator   *aggregate.Aggregator
	scorer       *score.Scorer
	contacts     model.ContactFinder
	gate         *Gate
	notifier     model.Notifier
	roleKeywords []string
	maxScored    int
	logger       *slog.Logger
}

// NewRunner wires a Runner. maxScored bounds how many unique postings are
// walked per run; scoring and contact lookup are the expensive steps.
func NewRunner(
	aggregator *aggregate.Aggregator,
	scorer *score.Scorer,
	contacts model.ContactFinder,
	gate *Gate,
	notifier model.Notifier,
	roleKeywords []string,
	maxScored int,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		aggregator:   aggregator,
		scorer:       scorer,
		contacts:     contacts,
		gate:         gate,
		notifier:     notifier,
		roleKeywords: roleKeywords,
		maxScored:    maxScored,
		logger:       logger,
	}
}

// Run executes one full pass. It returns a non-nil error only when the
// context is cancelled mid-run; every recoverable failure is absorbed at its
// component boundary and reflected in the report instead.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now()}

	agg := r.aggregator.Run(ctx)
	report.TotalDiscovered = agg.Discovered
	report.Unique = len(agg.Postings)
	report.CallErrors = agg.CallErrors

	candidates := agg.Postings
	if r.maxScored > 0 && len(candidates) > r.maxScored {
		candidates = candidates[:r.maxScored]
	}
	report.Considered = len(candidates)

	var admitted []model.Opportunity
	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}

		hash, ok := r.gate.Admit(p)
		if !ok {
			report.KnownDuplicates++
			continue
		}

		r.logger.Info("new posting admitted",
			"company", p.Company,
			"title", p.Title,
			"location", p.Location,
			"source", p.Source,
		)

		scoreRes := r.scorer.Score(ctx, p)
		if scoreRes.Fallback {
			report.JudgeFallbacks++
		}

		contacts, err := r.contacts.FindContacts(ctx, p.Company, r.roleKeywords)
		if err != nil {
			// Contact discovery is best-effort; an empty list is fine.
			r.logger.Warn("contact lookup failed", "company", p.Company, "error", err)
			contacts = nil
		}

		opp := model.Opportunity{
			Hash:     hash,
			Posting:  p,
			Score:    scoreRes,
			Contacts: contacts,
			Status:   model.StatusNew,
		}
		if err := r.gate.Persist(opp); err != nil {
			r.logger.Error("persist failed on both paths", "hash", hash, "error", err)
		}

		admitted = append(admitted, opp)
	}

	rank(admitted)
	report.Opportunities = admitted
	report.Admitted = len(admitted)
	report.StoreDegraded = r.gate.Degraded()
	report.FinishedAt = time.Now()

	if len(admitted) > 0 && r.notifier != nil {
		if err := r.notifier.Notify(admitted); err != nil {
			r.logger.Error("notification failed", "error", err)
		}
	}

	r.logger.Info("run complete",
		"discovered", report.TotalDiscovered,
		"unique", report.Unique,
		"admitted", report.Admitted,
		"known_duplicates", report.KnownDuplicates,
		"judge_fallbacks", report.JudgeFallbacks,
		"store_degraded", report.StoreDegraded,
	)

	return report, nil
}
