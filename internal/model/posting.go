package model

import (
	"context"
	"time"
)

// Posting is a normalized job opportunity produced by a source adapter.
type Posting struct {
	Title       string // job title
	Company     string // company name
	Location    string // free-text location
	Description string // optional, may be truncated by the provider
	URL         string // best-effort link resolved by the adapter
	Source      string // adapter name that produced this posting
}

// Valid reports whether the posting carries enough identity to enter the
// pipeline. Postings without a title or company are dropped before dedup.
func (p Posting) Valid() bool {
	return p.Title != "" && p.Company != ""
}

// Contact is a person possibly associated with a company. Contacts are
// best-effort search results; duplicates across keyword queries are allowed.
type Contact struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
	Snippet    string `json:"snippet"`
}

// ScoreResult is the outcome of scoring one posting against the profile.
// Final is always clamped to [0,100].
type ScoreResult struct {
	Base        int    // 0-100 from the AI judgment (or the neutral fallback)
	LocationAdj int    // signed, from the location weight table
	CompanyAdj  int    // signed, from the target-company bonus
	Final       int    // clamp(Base + LocationAdj + CompanyAdj, 0, 100)
	Rationale   string // judge text plus the appended breakdown suffix
	Fallback    bool   // true when the neutral base was substituted
}

// Opportunity is the durable record for an admitted posting. Created once per
// identity hash; the pipeline never updates an existing row. Status is mutated
// only through the review surface.
type Opportunity struct {
	Hash      string
	Posting   Posting
	Score     ScoreResult
	Contacts  []Contact
	Status    string // "new", then interested/applied/rejected/archived
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Workflow statuses an opportunity can move through after admission.
const (
	StatusNew        = "new"
	StatusInterested = "interested"
	StatusApplied    = "applied"
	StatusRejected   = "rejected"
	StatusArchived   = "archived"
)

// SourceAdapter turns one (query, location) pair into normalized postings.
// Provider failures are returned as errors; the aggregator isolates them
// per call and treats them as zero results.
type SourceAdapter interface {
	Name() string
	Search(ctx context.Context, query, location string) ([]Posting, error)
}

// OpportunityStore is the durable store consumed by the dedup gate and the
// review surface.
type OpportunityStore interface {
	ExistsByHash(hash string) (bool, error)
	// Insert writes a new opportunity. A duplicate hash returns ErrDuplicate.
	Insert(opp Opportunity) error
	ListRecent(limit int, status string) ([]Opportunity, error)
	UpdateStatus(hash, status string) error
}

// Judgment is the parsed result of one AI scoring call.
type Judgment struct {
	Score int    // 0-100 base score
	Text  string // full free-text rationale
}

// Judge produces a base fit score for a rendered prompt. Implementations must
// return ErrUnparseable (possibly wrapped) when the response carries no
// recognizable score, so fusion can fall back without inspecting phrasing.
type Judge interface {
	Judge(ctx context.Context, prompt string) (Judgment, error)
}

// ContactFinder looks up people at a company matching role keywords.
// An empty result is a valid, non-error outcome.
type ContactFinder interface {
	FindContacts(ctx context.Context, company string, roleKeywords []string) ([]Contact, error)
}

// Notifier announces newly admitted opportunities.
type Notifier interface {
	Notify(opps []Opportunity) error
}
