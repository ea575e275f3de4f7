package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oppscout/oppscout/internal/serpapi"
)

func newJobsServer(t *testing.T, payload string) *serpapi.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return serpapi.NewClient(srv.URL, "test-key", srv.Client())
}

func TestGoogleJobsSearch(t *testing.T) {
	payload := `{
		"jobs_results": [
			{
				"title": "Senior Product Manager",
				"company_name": "Acme",
				"location": "Remote",
				"description": "Own the roadmap.",
				"share_link": "https://www.google.com/search?q=share-1",
				"apply_options": [
					{"title": "Apply on Acme", "link": "https://acme.example/jobs/42"},
					{"title": "Apply on LinkedIn", "link": "https://linkedin.example/jobs/42"}
				]
			},
			{
				"title": "Chief of Staff",
				"company_name": "Beta Inc",
				"location": "Seattle, WA",
				"share_link": "https://www.google.com/search?q=share-2"
			}
		]
	}`
	a := NewGoogleJobsAdapter(newJobsServer(t, payload))

	postings, err := a.Search(context.Background(), "senior product manager", "Remote")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want 2", len(postings))
	}

	p := postings[0]
	if p.Company != "Acme" || p.Title != "Senior Product Manager" {
		t.Errorf("unexpected posting: %+v", p)
	}
	if p.URL != "https://acme.example/jobs/42" {
		t.Errorf("URL = %q, want first apply option", p.URL)
	}
	if p.Source != "google_jobs" {
		t.Errorf("source = %q", p.Source)
	}

	// Without apply options the share link is the fallback.
	if postings[1].URL != "https://www.google.com/search?q=share-2" {
		t.Errorf("fallback URL = %q", postings[1].URL)
	}
}

func TestGoogleJobsSearchFoldsExtensionsIntoDescription(t *testing.T) {
	payload := `{
		"jobs_results": [
			{
				"title": "Product Manager",
				"company_name": "Acme",
				"location": "Remote",
				"description": "Own the roadmap.",
				"share_link": "https://www.google.com/search?q=share-1",
				"extensions": ["3 days ago", "Full-time"]
			},
			{
				"title": "Chief of Staff",
				"company_name": "Beta Inc",
				"share_link": "https://www.google.com/search?q=share-2",
				"extensions": ["Part-time"]
			}
		]
	}`
	a := NewGoogleJobsAdapter(newJobsServer(t, payload))

	postings, err := a.Search(context.Background(), "product manager", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if got, want := postings[0].Description, "3 days ago · Full-time\nOwn the roadmap."; got != want {
		t.Errorf("description = %q, want badges prefixed", got)
	}
	// No description body: the badges stand alone.
	if got, want := postings[1].Description, "Part-time"; got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}

func TestGoogleJobsSearchEmpty(t *testing.T) {
	a := NewGoogleJobsAdapter(newJobsServer(t, `{"jobs_results": []}`))

	postings, err := a.Search(context.Background(), "anything", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("got %d postings, want 0", len(postings))
	}
}

func TestGoogleJobsSearchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	a := NewGoogleJobsAdapter(serpapi.NewClient(srv.URL, "k", srv.Client()))

	if _, err := a.Search(context.Background(), "q", ""); err == nil {
		t.Error("expected error from failing provider")
	}
}
