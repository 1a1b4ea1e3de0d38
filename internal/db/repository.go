package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"simcheck/internal/report"
)

// timeLayout is fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	DurationMs int64
	Provider   string
	Threshold  int
	Documents  int
}

var ErrRunExists = errors.New("run already archived")

// PersistRun stores a run and everything it produced. An archived run is
// never overwritten.
func PersistRun(dbPath string, s report.Summary) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, s.RunID).Scan(&existing); err != nil {
		return fmt.Errorf("check run: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("persist run %s: %w", s.RunID, ErrRunExists)
	}

	if _, err := tx.Exec(
		`INSERT INTO runs(id, started_at, duration_ms, provider, threshold, documents) VALUES(?,?,?,?,?,?)`,
		s.RunID,
		s.StartedAt.UTC().Format(timeLayout),
		s.DurationMs,
		s.Provider,
		s.Threshold,
		len(s.Documents),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, d := range s.Documents {
		if _, err := tx.Exec(
			`INSERT INTO documents(id, run_id, name, filename) VALUES(?,?,?,?)`,
			d.ID, s.RunID, d.Name, d.Filename,
		); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO risk_reports(run_id, document_id, max_peer, external_score, overall_score, tier) VALUES(?,?,?,?,?,?)`,
			s.RunID, d.ID, d.MaxPeer, d.ExternalScore, d.OverallScore, string(d.Tier),
		); err != nil {
			return fmt.Errorf("insert risk report: %w", err)
		}
	}

	for _, p := range s.Pairs {
		segments, err := json.Marshal(p.Segments)
		if err != nil {
			return fmt.Errorf("encode segments: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO similarities(run_id, document_a, document_b, ratio, segments) VALUES(?,?,?,?,?)`,
			s.RunID, p.DocumentA, p.DocumentB, p.Ratio, string(segments),
		); err != nil {
			return fmt.Errorf("insert similarity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LatestRuns returns up to limit runs, newest first.
func LatestRuns(dbPath string, limit int) ([]RunRecord, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if limit <= 0 {
		limit = 10
	}
	rows, err := conn.Query(
		`SELECT id, started_at, duration_ms, provider, threshold, documents FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r       RunRecord
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.DurationMs, &r.Provider, &r.Threshold, &r.Documents); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(timeLayout, started); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
