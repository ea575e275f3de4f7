package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/oppscout/oppscout/internal/model"
	"github.com/oppscout/oppscout/internal/serpapi"
)

// jobPathMarkers are URL path fragments that indicate an actual job listing.
// Organic results without one are company pages, blog posts, or other
// false positives and are filtered out before conversion.
var jobPathMarkers = []string{
	"/jobs/", "/job/", "/careers/", "/postings/", "/positions/", "/openings/",
}

// SiteSearchAdapter scrapes a job board indirectly: a plain web search
// restricted to one site, with organic results filtered down to links that
// look like listings. A surviving false positive is acceptable; it will
// score poorly or fail validation, not break the run.
type SiteSearchAdapter struct {
	client *serpapi.Client
	domain string // e.g. "jobs.lever.co"
}

// NewSiteSearchAdapter creates an adapter restricted to the given domain.
func NewSiteSearchAdapter(client *serpapi.Client, domain string) *SiteSearchAdapter {
	return &SiteSearchAdapter{client: client, domain: domain}
}

func (a *SiteSearchAdapter) Name() string { return "site:" + a.domain }

// Search runs one site-restricted web search and converts job-looking
// organic results into Postings.
func (a *SiteSearchAdapter) Search(ctx context.Context, query, location string) ([]model.Posting, error) {
	q := fmt.Sprintf("site:%s %s", a.domain, query)
	if location != "" {
		q += " " + location
	}

	params := url.Values{}
	params.Set("q", q)

	var resp serpapi.WebSearchResponse
	if err := a.client.Search(ctx, "google", params, &resp); err != nil {
		return nil, fmt.Errorf("site search %s %q: %w", a.domain, query, err)
	}

	var postings []model.Posting
	for _, r := range resp.OrganicResults {
		if !looksLikeListing(r.Link) {
			continue
		}
		title, company := splitResultTitle(r.Title)
		if company == "" {
			company = companyFromBoardURL(r.Link)
		}
		postings = append(postings, model.Posting{
			Title:       title,
			Company:     company,
			Location:    location,
			Description: r.Snippet,
			URL:         r.Link,
			Source:      a.Name(),
		})
	}
	return postings, nil
}

// looksLikeListing reports whether the link path carries a job-indicating
// marker, or is a board URL whose whole host exists to serve listings.
func looksLikeListing(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, marker := range jobPathMarkers {
		if strings.Contains(path+"/", marker) {
			return true
		}
	}
	// Hosted boards put the listing at /<company>/<posting-id> with no marker.
	host := strings.ToLower(u.Host)
	if host == "jobs.lever.co" || host == "boards.greenhouse.io" || host == "jobs.ashbyhq.com" {
		return strings.Count(strings.Trim(path, "/"), "/") >= 1
	}
	return false
}

// splitResultTitle pulls a (title, company) pair out of an organic result
// title like "Senior Product Manager - Acme" or "Acme - Senior PM | Lever".
// The company side is whichever segment follows the first separator; callers
// fall back to the URL when the split fails.
func splitResultTitle(raw string) (title, company string) {
	// Strip a trailing board suffix ("... | Lever", "... | Greenhouse").
	if i := strings.LastIndex(raw, " | "); i >= 0 {
		raw = raw[:i]
	}
	for _, sep := range []string{" - ", " – ", " at "} {
		if i := strings.Index(raw, sep); i >= 0 {
			return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+len(sep):])
		}
	}
	return strings.TrimSpace(raw), ""
}

// companyFromBoardURL extracts the company slug from hosted-board URLs,
// e.g. https://jobs.lever.co/acme/123 -> "acme".
func companyFromBoardURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return ""
	}
	return segs[0]
}
