package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Setting keys.
const (
	KeyHighScore  = "high_score"
	KeyMusicMuted = "music_muted"
)

// SettingsRepository reads and writes key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value of key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// HighScore returns the persisted best score. A missing value is zero.
func (r *SettingsRepository) HighScore() (int, error) {
	v, err := r.Get(KeyHighScore)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	score, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s setting %q: %w", KeyHighScore, v, err)
	}
	return score, nil
}

// RecordScore stores score as the new high score only when it beats the current
// one. It reports whether the high score changed.
func (r *SettingsRepository) RecordScore(score int) (bool, error) {
	best, err := r.HighScore()
	if err != nil {
		return false, err
	}
	if score <= best {
		return false, nil
	}

	if err := r.Set(KeyHighScore, strconv.Itoa(score)); err != nil {
		return false, err
	}
	return true, nil
}

// Muted reports whether the background music is muted. Unset means not muted.
func (r *SettingsRepository) Muted() (bool, error) {
	v, err := r.Get(KeyMusicMuted)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(v)
}

// SetMuted persists the music mute flag.
func (r *SettingsRepository) SetMuted(muted bool) error {
	return r.Set(KeyMusicMuted, strconv.FormatBool(muted))
}
