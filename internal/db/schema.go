package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT,
    duration_ms INTEGER,
    provider TEXT,
    threshold INTEGER,
    documents INTEGER
);

CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    run_id TEXT,
    name TEXT,
    filename TEXT
);

CREATE TABLE IF NOT EXISTS similarities (
    id INTEGER PRIMARY KEY,
    run_id TEXT,
    document_a TEXT,
    document_b TEXT,
    ratio REAL,
    segments TEXT
);

CREATE TABLE IF NOT EXISTS risk_reports (
    id INTEGER PRIMARY KEY,
    run_id TEXT,
    document_id TEXT,
    max_peer REAL,
    external_score REAL,
    overall_score REAL,
    tier TEXT
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
