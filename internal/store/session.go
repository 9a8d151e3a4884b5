package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is a finished game as stored in the history.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Score     int       `json:"score"`
	NewRecord bool      `json:"new_record"`
	Cause     string    `json:"cause"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// SessionRepository stores the game history.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a finished session. A zero ID is replaced with a new one.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, score, new_record, cause, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID.String(), sess.Score, sess.NewRecord, sess.Cause, sess.StartedAt.UTC(), sess.EndedAt.UTC(),
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id uuid.UUID) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, score, new_record, cause, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id.String(),
	)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// Recent returns up to limit sessions, newest first.
func (r *SessionRepository) Recent(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(
		`SELECT id, score, new_record, cause, started_at, ended_at
		 FROM sessions ORDER BY ended_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// Count returns the number of stored sessions.
func (r *SessionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess Session
		id   string
	)
	if err := row.Scan(&id, &sess.Score, &sess.NewRecord, &sess.Cause, &sess.StartedAt, &sess.EndedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	sess.ID = parsed
	return &sess, nil
}
