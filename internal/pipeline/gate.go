package pipeline

import (
	"errors"
	"log/slog"

	"github.com/oppscout/oppscout/internal/model"
)

// FallbackAppender is the degraded persistence path used when the durable
// store is unreachable.
type FallbackAppender interface {
	Append(opp model.Opportunity) error
}

// Gate is the dedup/persistence boundary. It admits only postings whose
// identity hash is unknown to the durable store and persists accepted ones.
// A store outage degrades the gate to the fallback log for the rest of the
// run instead of failing it; fallback entries are not deduplicated against
// future runs.
type Gate struct {
	store    model.OpportunityStore
	fallback FallbackAppender
	logger   *slog.Logger
	degraded bool
}

// NewGate creates a gate over the durable store with the given fallback.
func NewGate(store model.OpportunityStore, fallback FallbackAppender, logger *slog.Logger) *Gate {
	return &Gate{
		store:    store,
		fallback: fallback,
		logger:   logger,
	}
}

// Admit computes the posting's identity hash and checks the durable store.
// A known hash returns ok=false: the posting is a cross-run duplicate and is
// neither re-scored nor re-persisted. When the store cannot answer, the
// posting is treated as unseen and the gate degrades.
func (g *Gate) Admit(p model.Posting) (hash string, ok bool) {
	hash = PostingHash(p)

	if g.degraded {
		return hash, true
	}

	exists, err := g.store.ExistsByHash(hash)
	if err != nil {
		g.degrade("existence check failed", err)
		return hash, true
	}
	if exists {
		return hash, false
	}
	return hash, true
}

// Persist writes one admitted opportunity. A duplicate-hash conflict (a race
// with a concurrent run) is a benign no-op. Store write failures divert the
// record to the fallback log and degrade the gate.
func (g *Gate) Persist(opp model.Opportunity) error {
	if g.degraded {
		return g.appendFallback(opp)
	}

	err := g.store.Insert(opp)
	if errors.Is(err, model.ErrDuplicate) {
		g.logger.Debug("concurrent insert race, keeping existing record", "hash", opp.Hash)
		return nil
	}
	if err != nil {
		g.degrade("insert failed", err)
		return g.appendFallback(opp)
	}
	return nil
}

// Degraded reports whether the gate has switched to the fallback log.
func (g *Gate) Degraded() bool {
	return g.degraded
}

func (g *Gate) degrade(reason string, err error) {
	g.degraded = true
	g.logger.Warn("store unavailable, degrading to fallback log",
		"reason", reason,
		"error", err,
	)
}

func (g *Gate) appendFallback(opp model.Opportunity) error {
	if err := g.fallback.Append(opp); err != nil {
		// Both persistence paths down; the record survives only in the report.
		g.logger.Error("fallback log write failed", "hash", opp.Hash, "error", err)
		return err
	}
	return nil
}
