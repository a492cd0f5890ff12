// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/shoreline/pkg/types"
)

// sqliteChunk keeps IN (...) lists below SQLite's bound-variable limit.
const sqliteChunk = 500

const recordColumns = `pmid, doi, title, authors, journal, year, abstract,
	role, witness_line, disposition, watch_outs`

// SQLiteStore is a file-backed Store. Records live in one table keyed by
// PMID; seq tracks insertion order for eviction.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
}

// NewSQLiteStore opens or creates the database at path and its schema.
func NewSQLiteStore(path string, maxEntries int) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps WAL writes ordered within the process.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, maxEntries: maxEntries}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL UNIQUE,
			doi TEXT,
			title TEXT NOT NULL,
			authors TEXT,
			journal TEXT,
			year INTEGER,
			abstract TEXT,
			role TEXT,
			witness_line TEXT,
			disposition TEXT,
			watch_outs TEXT,
			cached_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, pmid string) (types.Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE pmid = ?`, pmid)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, s.wrap("reading record", err)
	}
	return r, true, nil
}

func (s *SQLiteStore) GetMany(ctx context.Context, pmids []string) (map[string]types.Record, error) {
	out := make(map[string]types.Record, len(pmids))
	for start := 0; start < len(pmids); start += sqliteChunk {
		end := min(start+sqliteChunk, len(pmids))
		chunk := pmids[start:end]

		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")

		rows, err := s.db.QueryContext(ctx,
			`SELECT `+recordColumns+` FROM records WHERE pmid IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, s.wrap("querying records", err)
		}
		for rows.Next() {
			r, err := scanRecord(rows)
			if err != nil {
				rows.Close()
				return nil, s.wrap("scanning record", err)
			}
			out[r.PMID] = r
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, s.wrap("iterating records", err)
		}
		rows.Close()
	}
	return out, nil
}

func (s *SQLiteStore) Put(ctx context.Context, records ...types.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET
			doi=excluded.doi, title=excluded.title, authors=excluded.authors,
			journal=excluded.journal, year=excluded.year, abstract=excluded.abstract,
			role=excluded.role, witness_line=excluded.witness_line,
			disposition=excluded.disposition, watch_outs=excluded.watch_outs`)
	if err != nil {
		return s.wrap("preparing upsert", err)
	}
	defer stmt.Close()

	for _, r := range records {
		authorsJSON, err := json.Marshal(r.Authors)
		if err != nil {
			return fmt.Errorf("marshaling authors: %w", err)
		}
		watchJSON, err := json.Marshal(r.WatchOuts)
		if err != nil {
			return fmt.Errorf("marshaling watch-outs: %w", err)
		}
		var year sql.NullInt64
		if r.Year != nil {
			year = sql.NullInt64{Int64: int64(*r.Year), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.PMID, r.DOI, r.Title, string(authorsJSON), r.Journal, year, r.Abstract,
			r.Role, r.WitnessLine, r.Disposition, string(watchJSON),
		); err != nil {
			return s.wrap("upserting record "+r.PMID, err)
		}
	}

	if _, err := s.evict(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, s.wrap("counting records", err)
	}
	return n, nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY seq`)
	if err != nil {
		return nil, s.wrap("querying records", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, s.wrap("scanning record", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Prune(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	n, err := s.evict(ctx, tx)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// evict deletes the oldest rows beyond maxEntries inside tx.
func (s *SQLiteStore) evict(ctx context.Context, tx *sql.Tx) (int, error) {
	if s.maxEntries <= 0 {
		return 0, nil
	}
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&count); err != nil {
		return 0, s.wrap("counting records", err)
	}
	n := excess(count, s.maxEntries)
	if n == 0 {
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE seq IN (SELECT seq FROM records ORDER BY seq LIMIT ?)`, n,
	); err != nil {
		return 0, s.wrap("evicting records", err)
	}
	return n, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// wrap maps use-after-close onto ErrClosed.
func (s *SQLiteStore) wrap(op string, err error) error {
	if err != nil && strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.Record, error) {
	var (
		r                          types.Record
		doi, journal, abstract     sql.NullString
		role, witness, disposition sql.NullString
		authorsJSON, watchJSON     sql.NullString
		year                       sql.NullInt64
	)
	if err := sc.Scan(&r.PMID, &doi, &r.Title, &authorsJSON, &journal, &year, &abstract,
		&role, &witness, &disposition, &watchJSON); err != nil {
		return types.Record{}, err
	}
	r.DOI = doi.String
	r.Journal = journal.String
	r.Abstract = abstract.String
	r.Role = role.String
	r.WitnessLine = witness.String
	r.Disposition = disposition.String
	if year.Valid {
		y := int(year.Int64)
		r.Year = &y
	}
	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &r.Authors); err != nil {
			return types.Record{}, fmt.Errorf("decoding authors: %w", err)
		}
	}
	if watchJSON.Valid && watchJSON.String != "" {
		if err := json.Unmarshal([]byte(watchJSON.String), &r.WatchOuts); err != nil {
			return types.Record{}, fmt.Errorf("decoding watch-outs: %w", err)
		}
	}
	return r, nil
}
