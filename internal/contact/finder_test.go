package contact

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oppscout/oppscout/internal/ratelimit"
	"github.com/oppscout/oppscout/internal/serpapi"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func organicPayload(n int, prefix string) string {
	results := make([]map[string]string, n)
	for i := range results {
		results[i] = map[string]string{
			"title":   prefix,
			"link":    "https://linkedin.example/in/p",
			"snippet": "works at company",
		}
	}
	b, _ := json.Marshal(map[string]any{"organic_results": results})
	return string(b)
}

func TestFindContactsCapsResultsPerKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "site:linkedin.com/in/") || !strings.Contains(q, "Acme") {
			t.Errorf("unexpected query %q", q)
		}
		w.Write([]byte(organicPayload(5, "Person")))
	}))
	defer srv.Close()

	f := NewFinder(serpapi.NewClient(srv.URL, "k", srv.Client()), nil, discardLogger())
	contacts, err := f.FindContacts(context.Background(), "Acme", []string{"product manager", "chief of staff"})
	if err != nil {
		t.Fatalf("FindContacts: %v", err)
	}

	// 3 per keyword, 2 keywords, no cross-keyword dedup.
	if len(contacts) != 6 {
		t.Errorf("got %d contacts, want 6", len(contacts))
	}
}

func TestFindContactsIsolatesKeywordFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(organicPayload(2, "Person")))
	}))
	defer srv.Close()

	f := NewFinder(serpapi.NewClient(srv.URL, "k", srv.Client()), nil, discardLogger())
	contacts, err := f.FindContacts(context.Background(), "Acme", []string{"bad", "good"})
	if err != nil {
		t.Fatalf("FindContacts: %v", err)
	}
	if len(contacts) != 2 {
		t.Errorf("got %d contacts, want 2 from the surviving keyword", len(contacts))
	}
}

func TestFindContactsPacedByProviderLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(organicPayload(1, "Person")))
	}))
	defer srv.Close()

	limiter := ratelimit.NewProviderLimiter(50 * time.Millisecond)
	// Spend the provider's first free slot, as an adapter call would have.
	if err := limiter.Wait(context.Background(), serpapi.Provider); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	f := NewFinder(serpapi.NewClient(srv.URL, "k", srv.Client()), limiter, discardLogger())

	start := time.Now()
	contacts, err := f.FindContacts(context.Background(), "Acme", []string{"recruiter", "hiring manager"})
	if err != nil {
		t.Fatalf("FindContacts: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}
	// Two keyword lookups behind an already-used slot: at least two min-delay
	// waits on the shared bucket.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("lookups completed in %v, want the shared min delay enforced", elapsed)
	}
}

func TestFindContactsEmptyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results": []}`))
	}))
	defer srv.Close()

	f := NewFinder(serpapi.NewClient(srv.URL, "k", srv.Client()), nil, discardLogger())
	contacts, err := f.FindContacts(context.Background(), "Acme", []string{"product manager"})
	if err != nil {
		t.Fatalf("FindContacts: %v", err)
	}
	if len(contacts) != 0 {
		t.Errorf("got %d contacts, want 0", len(contacts))
	}
}
