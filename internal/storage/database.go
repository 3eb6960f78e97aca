package storage

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"photobooth-app/internal/models"
)

// DB wraps the database connection with performance optimizations.
type DB struct {
	*sql.DB
}

// InitDB initializes the database with connection pooling.
func InitDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		photo_urls TEXT NOT NULL,
		photostrip_url TEXT NOT NULL,
		captions TEXT NOT NULL DEFAULT '',
		memory_notes TEXT NOT NULL DEFAULT '',
		user_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// InsertSession writes a new session row and returns its assigned id.
func (db *DB) InsertSession(s *models.StripSession) (string, error) {
	if s.ID == "" {
		s.ID = generateID(8)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	urlsJSON, _ := json.Marshal(s.PhotoURLs)
	query := `INSERT INTO sessions (id, created_at, photo_urls, photostrip_url, captions, memory_notes, user_id)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, s.ID, s.CreatedAt, string(urlsJSON), s.PhotostripURL, s.Captions, s.MemoryNotes, s.UserID)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// GetSession retrieves a session by id.
func (db *DB) GetSession(id string) (*models.StripSession, error) {
	query := `SELECT id, created_at, photo_urls, photostrip_url, captions, memory_notes, user_id
	          FROM sessions WHERE id = ?`
	return scanSession(db.QueryRow(query, id))
}

// UpdateSession updates the mutable fields of a session row. Photo URLs and
// the photostrip URL are never touched after insert; composite re-saves
// overwrite the storage object in place instead.
func (db *DB) UpdateSession(id, captions, memoryNotes string) error {
	res, err := db.Exec(`UPDATE sessions SET captions = ?, memory_notes = ? WHERE id = ?`,
		captions, memoryNotes, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListSessions retrieves sessions scoped to one identity, newest first.
// A nil userID selects only anonymous/legacy rows; the two views never mix.
// start/end bound created_at as a half-open [start, end) range when set.
func (db *DB) ListSessions(userID *string, limit int, start, end *time.Time) ([]*models.StripSession, error) {
	query := `SELECT id, created_at, photo_urls, photostrip_url, captions, memory_notes, user_id
	          FROM sessions WHERE `
	var args []interface{}

	if userID != nil {
		query += `user_id = ?`
		args = append(args, *userID)
	} else {
		query += `user_id IS NULL`
	}
	if start != nil {
		query += ` AND created_at >= ?`
		args = append(args, *start)
	}
	if end != nil {
		query += ` AND created_at < ?`
		args = append(args, *end)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.StripSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Printf("Error scanning session: %v", err)
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DistinctCaptureDates returns the distinct calendar days on which the
// identity saved sessions. The gallery derives its year/month/day filter
// options from this aggregate rather than from whatever page of results
// happens to be loaded.
func (db *DB) DistinctCaptureDates(userID *string) ([]time.Time, error) {
	query := `SELECT DISTINCT date(created_at) FROM sessions WHERE `
	var args []interface{}
	if userID != nil {
		query += `user_id = ?`
		args = append(args, *userID)
	} else {
		query += `user_id IS NULL`
	}
	query += ` ORDER BY date(created_at) DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			log.Printf("Error scanning capture date: %v", err)
			continue
		}
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			log.Printf("Unparseable capture date %q: %v", day, err)
			continue
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.StripSession, error) {
	s := &models.StripSession{}
	var urlsJSON string
	var userID sql.NullString

	err := row.Scan(&s.ID, &s.CreatedAt, &urlsJSON, &s.PhotostripURL, &s.Captions, &s.MemoryNotes, &userID)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		s.UserID = &userID.String
	}
	if err := json.Unmarshal([]byte(urlsJSON), &s.PhotoURLs); err != nil {
		return nil, fmt.Errorf("corrupt photo_urls for session %s: %w", s.ID, err)
	}
	return s, nil
}

func generateID(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)[:length]
}
