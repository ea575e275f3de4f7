package store

import "github.com/oppscout/oppscout/internal/model"

// NopStore is a no-op store used in dry-run mode. Nothing is ever recorded,
// so every posting appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) ExistsByHash(hash string) (bool, error) { return false, nil }
func (s *NopStore) Insert(opp model.Opportunity) error     { return nil }
func (s *NopStore) ListRecent(limit int, status string) ([]model.Opportunity, error) {
	return nil, nil
}
func (s *NopStore) UpdateStatus(hash, status string) error { return nil }
