package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/oppscout/oppscout/internal/model"
	"github.com/oppscout/oppscout/internal/serpapi"
)

// googleJobsResult is a single job in the google_jobs engine response.
type googleJobsResult struct {
	Title        string        `json:"title"`
	CompanyName  string        `json:"company_name"`
	Location     string        `json:"location"`
	Description  string        `json:"description"`
	ShareLink    string        `json:"share_link"`
	ApplyOptions []applyOption `json:"apply_options"`
	Extensions   []string      `json:"extensions"`
}

type applyOption struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// googleJobsResponse is the top-level google_jobs engine response.
type googleJobsResponse struct {
	JobsResults []googleJobsResult `json:"jobs_results"`
}

// GoogleJobsAdapter queries the SerpAPI google_jobs engine and normalizes
// results into Postings.
type GoogleJobsAdapter struct {
	client *serpapi.Client
}

// NewGoogleJobsAdapter creates an adapter over a shared SerpAPI client.
func NewGoogleJobsAdapter(client *serpapi.Client) *GoogleJobsAdapter {
	return &GoogleJobsAdapter{client: client}
}

func (a *GoogleJobsAdapter) Name() string { return "google_jobs" }

// Search runs one google_jobs query. The location hint is folded into the
// query string the way the upstream engine expects.
func (a *GoogleJobsAdapter) Search(ctx context.Context, query, location string) ([]model.Posting, error) {
	q := query
	if location != "" {
		q = query + " " + location
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("hl", "en")

	var resp googleJobsResponse
	if err := a.client.Search(ctx, "google_jobs", params, &resp); err != nil {
		return nil, fmt.Errorf("google_jobs search %q: %w", q, err)
	}

	postings := make([]model.Posting, 0, len(resp.JobsResults))
	for _, r := range resp.JobsResults {
		postings = append(postings, model.Posting{
			Title:       strings.TrimSpace(r.Title),
			Company:     strings.TrimSpace(r.CompanyName),
			Location:    strings.TrimSpace(r.Location),
			Description: buildDescription(r),
			URL:         resolveJobURL(r),
			Source:      a.Name(),
		})
	}
	return postings, nil
}

// buildDescription prefixes the description with the engine's short badges
// ("3 days ago", "Full-time"), which carry recency and employment-type
// signal the description body often omits.
func buildDescription(r googleJobsResult) string {
	if len(r.Extensions) == 0 {
		return r.Description
	}
	badges := strings.Join(r.Extensions, " · ")
	if r.Description == "" {
		return badges
	}
	return badges + "\n" + r.Description
}

// resolveJobURL picks one best-effort link: the first apply option if any,
// otherwise the generic share link. Downstream components never see the
// provider shape.
func resolveJobURL(r googleJobsResult) string {
	for _, opt := range r.ApplyOptions {
		if opt.Link != "" {
			return opt.Link
		}
	}
	return r.ShareLink
}
