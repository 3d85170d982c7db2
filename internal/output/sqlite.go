package output

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"pagegrab/internal/runner"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink persists result records to a SQLite database. Items are
// processed strictly one at a time, so writes are synchronous.
type SQLiteSink struct {
	Database string
	db       *sql.DB
}

// Init opens the database and creates the results table if needed.
func (s *SQLiteSink) Init() error {
	if s.Database == "" {
		return fmt.Errorf("sqlite database file not set")
	}

	db, err := sql.Open("sqlite3", s.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	create := `CREATE TABLE IF NOT EXISTS results (
		id INTEGER NOT NULL PRIMARY KEY,
		item_index INTEGER NOT NULL,
		url TEXT,
		operation TEXT,
		status TEXT NOT NULL,
		message TEXT,
		data TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(create); err != nil {
		db.Close()
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

// Write inserts one record.
func (s *SQLiteSink) Write(rec runner.Record) error {
	var dataJSON []byte
	var url string
	if rec.Data != nil {
		url = rec.Data.URL
		var err error
		dataJSON, err = json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal record data: %w", err)
		}
	}

	insert := "INSERT INTO results(item_index, url, operation, status, message, data) VALUES(?, ?, ?, ?, ?, ?);"
	if _, err := s.db.Exec(insert, rec.ItemIndex, url, string(rec.Operation), rec.Status, rec.Message, string(dataJSON)); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// Cleanup closes the database.
func (s *SQLiteSink) Cleanup() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
