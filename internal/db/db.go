package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/moodloop/insight-server/internal/models"
)

const schema = `
-- Mood check-ins
CREATE TABLE IF NOT EXISTS mood_records (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    mood TEXT NOT NULL,
    energy_level INTEGER NOT NULL,
    notes TEXT,
    occurred_at TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Journal entries
CREATE TABLE IF NOT EXISTS journal_records (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    title TEXT,
    content TEXT NOT NULL,
    mood TEXT,
    tags TEXT NOT NULL DEFAULT '[]',
    occurred_at TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Last computed insights per owner, keyed by content hash
CREATE TABLE IF NOT EXISTS insights_cache (
    owner_id TEXT PRIMARY KEY,
    data_hash TEXT NOT NULL,
    insights_data TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    expires_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_moods_owner_occurred ON mood_records(owner_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_journals_owner_occurred ON journal_records(owner_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_cache_expires ON insights_cache(expires_at);
`

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks store reachability (used by the health endpoint).
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// InsertMood stores a mood check-in.
func (db *DB) InsertMood(m models.MoodRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO mood_records (id, owner_id, mood, energy_level, notes, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.OwnerID, m.Mood, m.EnergyLevel, m.Notes,
		m.OccurredAt.UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339))
	return err
}

// InsertJournal stores a journal entry. Tags are kept as a JSON array.
func (db *DB) InsertJournal(j models.JournalRecord) error {
	tags, err := json.Marshal(j.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	if j.Tags == nil {
		tags = []byte("[]")
	}
	_, err = db.conn.Exec(`
		INSERT INTO journal_records (id, owner_id, title, content, mood, tags, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.OwnerID, j.Title, j.Content, j.Mood, string(tags),
		j.OccurredAt.UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339))
	return err
}

// ListRecentMoods returns the newest mood records for an owner, newest first.
func (db *DB) ListRecentMoods(ownerID string, limit int) ([]models.MoodRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, owner_id, mood, energy_level, notes, occurred_at
		FROM mood_records
		WHERE owner_id = ?
		ORDER BY occurred_at DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moods []models.MoodRecord
	for rows.Next() {
		var m models.MoodRecord
		var notes sql.NullString
		var occurredStr string
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Mood, &m.EnergyLevel, &notes, &occurredStr); err != nil {
			return nil, err
		}
		m.Notes = notes.String
		m.OccurredAt, _ = time.Parse(time.RFC3339, occurredStr)
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

// ListRecentJournals returns the newest journal records for an owner, newest first.
func (db *DB) ListRecentJournals(ownerID string, limit int) ([]models.JournalRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, owner_id, title, content, mood, tags, occurred_at
		FROM journal_records
		WHERE owner_id = ?
		ORDER BY occurred_at DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var journals []models.JournalRecord
	for rows.Next() {
		var j models.JournalRecord
		var title, mood sql.NullString
		var tagsStr, occurredStr string
		if err := rows.Scan(&j.ID, &j.OwnerID, &title, &j.Content, &mood, &tagsStr, &occurredStr); err != nil {
			return nil, err
		}
		j.Title = title.String
		j.Mood = mood.String
		if err := json.Unmarshal([]byte(tagsStr), &j.Tags); err != nil {
			j.Tags = nil
		}
		j.OccurredAt, _ = time.Parse(time.RFC3339, occurredStr)
		journals = append(journals, j)
	}
	return journals, rows.Err()
}

// CacheRow is one insights_cache row.
type CacheRow struct {
	OwnerID      string
	DataHash     string
	InsightsData string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExpiresAt    time.Time
}

// GetCache returns the cache row for an owner, or nil when absent.
// Expiry is the caller's concern; this returns the row as stored.
func (db *DB) GetCache(ownerID string) (*CacheRow, error) {
	var row CacheRow
	var createdStr, updatedStr, expiresStr string
	err := db.conn.QueryRow(`
		SELECT owner_id, data_hash, insights_data, created_at, updated_at, expires_at
		FROM insights_cache
		WHERE owner_id = ?
	`, ownerID).Scan(&row.OwnerID, &row.DataHash, &row.InsightsData, &createdStr, &updatedStr, &expiresStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	row.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	row.ExpiresAt, _ = time.Parse(time.RFC3339, expiresStr)
	return &row, nil
}

// UpsertCache writes the cache row for an owner, replacing any previous one.
func (db *DB) UpsertCache(ownerID, dataHash, insightsData string, expiresAt time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.conn.Exec(`
		INSERT INTO insights_cache (owner_id, data_hash, insights_data, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			data_hash = ?,
			insights_data = ?,
			updated_at = ?,
			expires_at = ?
	`, ownerID, dataHash, insightsData, now, now, expiresAt.UTC().Format(time.RFC3339),
		dataHash, insightsData, now, expiresAt.UTC().Format(time.RFC3339))
	return err
}

// DeleteCache removes the cache row for an owner.
func (db *DB) DeleteCache(ownerID string) error {
	_, err := db.conn.Exec(`DELETE FROM insights_cache WHERE owner_id = ?`, ownerID)
	return err
}

// SweepExpiredCache deletes rows past their expiry and returns the count.
func (db *DB) SweepExpiredCache(now time.Time) (int64, error) {
	result, err := db.conn.Exec(`
		DELETE FROM insights_cache WHERE expires_at <= ?
	`, now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
