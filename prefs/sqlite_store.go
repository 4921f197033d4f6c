/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package prefs

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(filePath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, err
	}

	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	st := &SQLiteStore{db: db}
	if err := st.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return st, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS prefs (
			player_id  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (player_id, key)
		)`)

	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(player, key string) (string, bool, error) {
	row := s.db.QueryRow(`
		SELECT value
		FROM prefs
		WHERE player_id = ? AND key = ?`,
		player,
		key,
	)

	var value string
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (s *SQLiteStore) Set(player, key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO prefs
		(player_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)`,
		player,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)

	return err
}

func (s *SQLiteStore) All(player string) (map[string]string, error) {
	rows, err := s.db.Query(`
		SELECT key, value
		FROM prefs
		WHERE player_id = ?`,
		player,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}

	return out, rows.Err()
}
