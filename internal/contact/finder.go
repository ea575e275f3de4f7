// Package contact looks up people at a company through profile-site
// restricted web searches. Strictly best-effort: an empty result is normal.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/oppscout/oppscout/internal/model"
	"github.com/oppscout/oppscout/internal/ratelimit"
	"github.com/oppscout/oppscout/internal/serpapi"
)

// maxPerKeyword caps how many organic results become contacts for each
// role keyword.
const maxPerKeyword = 3

// Finder searches professional-profile pages mentioning a company and a
// role keyword.
type Finder struct {
	client      *serpapi.Client
	limiter     *ratelimit.ProviderLimiter
	profileSite string // e.g. "linkedin.com/in/"
	logger      *slog.Logger
}

// NewFinder creates a Finder over a shared SerpAPI client. The limiter must
// be the same instance pacing the source adapters; contact lookups hit the
// same provider. A nil limiter disables pacing.
func NewFinder(client *serpapi.Client, limiter *ratelimit.ProviderLimiter, logger *slog.Logger) *Finder {
	return &Finder{
		client:      client,
		limiter:     limiter,
		profileSite: "linkedin.com/in/",
		logger:      logger,
	}
}

// FindContacts issues one lookup per role keyword and takes at most the
// first 3 results each. A failing keyword is skipped, not fatal, and
// contacts are not deduplicated across keywords.
func (f *Finder) FindContacts(ctx context.Context, company string, roleKeywords []string) ([]model.Contact, error) {
	var contacts []model.Contact
	for _, keyword := range roleKeywords {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, serpapi.Provider); err != nil {
				return contacts, err
			}
		}

		params := url.Values{}
		params.Set("q", fmt.Sprintf("site:%s %s %s", f.profileSite, keyword, company))

		var resp serpapi.WebSearchResponse
		if err := f.client.Search(ctx, "google", params, &resp); err != nil {
			f.logger.Warn("contact lookup failed, skipping keyword",
				"company", company,
				"keyword", keyword,
				"error", err,
			)
			continue
		}

		results := resp.OrganicResults
		if len(results) > maxPerKeyword {
			results = results[:maxPerKeyword]
		}
		for _, r := range results {
			contacts = append(contacts, model.Contact{
				Name:       r.Title,
				ProfileURL: r.Link,
				Snippet:    r.Snippet,
			})
		}
	}
	return contacts, nil
}
