package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/oppscout/oppscout/internal/model"
)

// FallbackLog is the degraded persistence path: an append-only file of one
// JSON record per line, written when the durable store is unreachable.
// Entries here are never consulted for cross-run deduplication; the log
// exists so a run's output survives a store outage in inspectable form.
type FallbackLog struct {
	mu   sync.Mutex
	path string
}

// NewFallbackLog creates a fallback log writing to path. The file is created
// on first append.
func NewFallbackLog(path string) *FallbackLog {
	return &FallbackLog{path: path}
}

// fallbackRecord is the serialized line format.
type fallbackRecord struct {
	Hash      string          `json:"job_hash"`
	Title     string          `json:"title"`
	Company   string          `json:"company"`
	Location  string          `json:"location"`
	URL       string          `json:"url"`
	Source    string          `json:"source"`
	Score     int             `json:"final_score"`
	Rationale string          `json:"rationale"`
	Contacts  []model.Contact `json:"contacts"`
	Status    string          `json:"status"`
	SavedAt   time.Time       `json:"saved_at"`
}

// Append writes one opportunity to the end of the log.
func (f *FallbackLog) Append(opp model.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := fallbackRecord{
		Hash:      opp.Hash,
		Title:     opp.Posting.Title,
		Company:   opp.Posting.Company,
		Location:  opp.Posting.Location,
		URL:       opp.Posting.URL,
		Source:    opp.Posting.Source,
		Score:     opp.Score.Final,
		Rationale: opp.Score.Rationale,
		Contacts:  opp.Contacts,
		Status:    opp.Status,
		SavedAt:   time.Now().UTC(),
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal fallback record %s: %w", opp.Hash, err)
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open fallback log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append fallback record %s: %w", opp.Hash, err)
	}
	return nil
}
