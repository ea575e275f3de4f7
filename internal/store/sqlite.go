package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oppscout/oppscout/internal/model"
)

// SQLiteStore persists opportunities keyed by identity hash. The primary key
// on the hash is what makes admit-then-persist safe under concurrent runs:
// the second inserter of the same hash gets ErrDuplicate, not a second row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the opportunities table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS opportunities (
		job_hash    TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL DEFAULT '',
		source      TEXT NOT NULL DEFAULT '',
		final_score INTEGER NOT NULL DEFAULT 0,
		rationale   TEXT NOT NULL DEFAULT '',
		contacts    TEXT NOT NULL DEFAULT '[]',
		status      TEXT NOT NULL DEFAULT 'new',
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating opportunities table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ExistsByHash returns true if an opportunity with the given identity hash
// has already been recorded.
func (s *SQLiteStore) ExistsByHash(hash string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM opportunities WHERE job_hash = ?", hash).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking existence of %s: %w", hash, err)
	}
	return true, nil
}

// Insert writes one new opportunity. A duplicate hash returns ErrDuplicate;
// the INSERT OR IGNORE keeps the check-and-insert atomic at the store.
func (s *SQLiteStore) Insert(opp model.Opportunity) error {
	contactsJSON, err := json.Marshal(opp.Contacts)
	if err != nil {
		return fmt.Errorf("marshal contacts for %s: %w", opp.Hash, err)
	}

	status := opp.Status
	if status == "" {
		status = model.StatusNew
	}

	res, err := s.db.Exec(`INSERT OR IGNORE INTO opportunities
		(job_hash, title, company, location, description, url, source,
		 final_score, rationale, contacts, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		opp.Hash,
		opp.Posting.Title,
		opp.Posting.Company,
		opp.Posting.Location,
		opp.Posting.Description,
		opp.Posting.URL,
		opp.Posting.Source,
		opp.Score.Final,
		opp.Score.Rationale,
		string(contactsJSON),
		status,
	)
	if err != nil {
		return fmt.Errorf("inserting opportunity %s: %w", opp.Hash, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting opportunity %s: %w", opp.Hash, err)
	}
	if rows == 0 {
		return model.ErrDuplicate
	}
	return nil
}

// ListRecent returns up to limit opportunities newest-first, optionally
// filtered by status. Used by the recent command and the review TUI.
func (s *SQLiteStore) ListRecent(limit int, status string) ([]model.Opportunity, error) {
	query := `SELECT job_hash, title, company, location, description, url, source,
		final_score, rationale, contacts, status, created_at, updated_at
		FROM opportunities`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	// SQLite treats a negative LIMIT as no limit.
	if limit <= 0 {
		limit = -1
	}
	query += " ORDER BY created_at DESC, job_hash LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	defer rows.Close()

	var opps []model.Opportunity
	for rows.Next() {
		var (
			opp          model.Opportunity
			contactsJSON string
		)
		err := rows.Scan(
			&opp.Hash,
			&opp.Posting.Title,
			&opp.Posting.Company,
			&opp.Posting.Location,
			&opp.Posting.Description,
			&opp.Posting.URL,
			&opp.Posting.Source,
			&opp.Score.Final,
			&opp.Score.Rationale,
			&contactsJSON,
			&opp.Status,
			&opp.CreatedAt,
			&opp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning opportunity row: %w", err)
		}
		if err := json.Unmarshal([]byte(contactsJSON), &opp.Contacts); err != nil {
			// A corrupt contacts blob should not hide the whole record.
			opp.Contacts = nil
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

// UpdateStatus moves an opportunity through the workflow. Unknown hashes
// are an error; the review surface only operates on loaded records.
func (s *SQLiteStore) UpdateStatus(hash, status string) error {
	res, err := s.db.Exec(
		"UPDATE opportunities SET status = ?, updated_at = ? WHERE job_hash = ?",
		status, time.Now().UTC(), hash,
	)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", hash, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", hash, err)
	}
	if rows == 0 {
		return fmt.Errorf("no opportunity with hash %s", hash)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
