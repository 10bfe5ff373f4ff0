// Package resstore archives completed fetch runs in a local sqlite
// file so past results can be inspected or re-exported without
// touching the portal again. Only completed runs are written; a run
// that fails mid-pagination leaves no trace here.
package resstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    record_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_reservations (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    seq INTEGER NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Run struct {
	ID          int64
	CreatedAt   time.Time
	StartDate   string
	EndDate     string
	RecordCount int
}

// SaveRun writes one completed run and its records in a single
// transaction, preserving fetch order via seq.
func (s *Store) SaveRun(ctx context.Context, startDate, endDate time.Time, records []json.RawMessage) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (created_at, start_date, end_date, record_count) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
		len(records),
	)
	if err != nil {
		return 0, err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for seq, record := range records {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_reservations (run_id, seq, data) VALUES (?, ?, ?)`,
			runId, seq, string(record),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runId, nil
}

func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, created_at, start_date, end_date, record_count FROM runs ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.StartDate, &r.EndDate, &r.RecordCount); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunRecords returns the verbatim reservation payloads of one run in
// their original fetch order.
func (s *Store) RunRecords(ctx context.Context, runId int64) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT data FROM run_reservations WHERE run_id = ? ORDER BY seq`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		records = append(records, json.RawMessage(data))
	}
	return records, rows.Err()
}
