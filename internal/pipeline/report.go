package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oppscout/oppscout/internal/model"
)

// Report is the user-visible outcome of one run. It always completes: zero
// admitted postings and degraded subsystems are stated, not raised.
type Report struct {
	TotalDiscovered int // valid postings across all adapter calls
	Unique          int // after in-run dedup
	Considered      int // unique postings actually walked (bounded by N)
	Admitted        int // previously-unseen postings scored and persisted
	KnownDuplicates int // rejected by the gate as already stored
	JudgeFallbacks  int // scores that used the neutral base
	StoreDegraded   bool
	CallErrors      []string
	Opportunities   []model.Opportunity // admitted, ranked by final score desc
	StartedAt       time.Time
	FinishedAt      time.Time
}

// rank orders opportunities by final score descending. The sort is stable so
// equal scores retain discovery order, which downstream consumers rely on.
func rank(opps []model.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Score.Final > opps[j].Score.Final
	})
}

// Text renders the run report.
func (r *Report) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run finished in %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&b, "Discovered %d postings (%d unique); considered %d, admitted %d new, %d already known\n",
		r.TotalDiscovered, r.Unique, r.Considered, r.Admitted, r.KnownDuplicates)

	if r.StoreDegraded {
		b.WriteString("WARNING: durable store unavailable, records appended to the fallback log\n")
	}
	if r.JudgeFallbacks > 0 {
		fmt.Fprintf(&b, "WARNING: %d posting(s) scored with the neutral fallback base\n", r.JudgeFallbacks)
	}
	if len(r.CallErrors) > 0 {
		fmt.Fprintf(&b, "WARNING: %d adapter call(s) failed:\n", len(r.CallErrors))
		for _, e := range r.CallErrors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	if r.Admitted == 0 {
		b.WriteString("\nNo new opportunities; everything discovered is already tracked.\n")
		return b.String()
	}

	b.WriteString("\nNew opportunities:\n")
	for _, opp := range r.Opportunities {
		fmt.Fprintf(&b, "\n[%3d] %s at %s (%s)\n",
			opp.Score.Final, opp.Posting.Title, opp.Posting.Company, orDash(opp.Posting.Location))
		if opp.Posting.URL != "" {
			fmt.Fprintf(&b, "      %s\n", opp.Posting.URL)
		}
		fmt.Fprintf(&b, "      %s\n", firstLine(opp.Score.Rationale))
		for _, c := range opp.Contacts {
			fmt.Fprintf(&b, "      contact: %s | %s\n", c.Name, c.ProfileURL)
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
