// Package storage keeps imported journal entries in a SQLite database with an
// FTS5 index over their titles and plain text content.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/triplog/pkg/db"
	"github.com/rubiojr/triplog/pkg/journal"
	"github.com/rubiojr/triplog/pkg/log"
)

var logger = log.ForService("storage")

type Storage struct {
	db *sql.DB
}

// Stats summarizes the index.
type Stats struct {
	Entries    int         `json:"entries"`
	FirstDay   journal.Day `json:"first_day"`
	LastDay    journal.Day `json:"last_day"`
	LastImport time.Time   `json:"last_import"`
}

// Open opens (creating if needed) the database at dbPath and applies pending
// migrations.
func Open(dbPath string) (*Storage, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA temp_store = memory",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.InitializeDatabase(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Storage{db: conn}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// StoreEntries inserts or replaces entries, keyed by day, and refreshes their
// search index rows.
func (s *Storage) StoreEntries(ctx context.Context, items []journal.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entries (day, entry_id, title, content, date, fields, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	// FTS5 tables have no upsert; delete then insert under the same rowid.
	ftsDelete, err := tx.PrepareContext(ctx, `DELETE FROM entries_fts WHERE rowid = ?`)
	if err != nil {
		return fmt.Errorf("preparing FTS delete: %w", err)
	}
	defer ftsDelete.Close()

	ftsInsert, err := tx.PrepareContext(ctx, `
		INSERT INTO entries_fts (rowid, title, content) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing FTS statement: %w", err)
	}
	defer ftsInsert.Close()

	now := time.Now().UTC()
	for _, item := range items {
		day := item.Day()
		if !day.Valid() {
			return fmt.Errorf("storing entry %q: %w", item.Title, journal.ErrInvalidDay)
		}

		fields, err := json.Marshal(item.Fields)
		if err != nil {
			return fmt.Errorf("marshaling fields for day %s: %w", day, err)
		}

		if _, err := stmt.ExecContext(ctx, int(day), item.ID, item.Title, item.Content, item.Date, string(fields), now); err != nil {
			return fmt.Errorf("inserting day %s: %w", day, err)
		}
		if _, err := ftsDelete.ExecContext(ctx, int(day)); err != nil {
			return fmt.Errorf("clearing day %s from FTS: %w", day, err)
		}
		if _, err := ftsInsert.ExecContext(ctx, int(day), journal.PlainText(item.Title), journal.PlainText(item.Content)); err != nil {
			return fmt.Errorf("inserting day %s into FTS: %w", day, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO import_metadata (key, value, updated_at)
		VALUES ('last_import', ?, ?)
	`, now.Format(time.RFC3339), now); err != nil {
		return fmt.Errorf("recording import time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	committed = true
	return nil
}

// Entries returns every stored entry ordered by day.
func (s *Storage) Entries(ctx context.Context) ([]journal.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, entry_id, title, content, date, fields
		FROM entries
		ORDER BY day
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var items []journal.ContentItem
	for rows.Next() {
		item, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Entry returns the entry for day, or an error wrapping journal.ErrNoContent.
func (s *Storage) Entry(ctx context.Context, day journal.Day) (journal.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT day, entry_id, title, content, date, fields
		FROM entries
		WHERE day = ?
	`, int(day))
	item, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.ContentItem{}, fmt.Errorf("day %s: %w", day, journal.ErrNoContent)
	}
	return item, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (journal.ContentItem, error) {
	var (
		item   journal.ContentItem
		day    int
		fields string
	)
	if err := row.Scan(&day, &item.ID, &item.Title, &item.Content, &item.Date, &fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, err
		}
		return item, fmt.Errorf("scanning entry: %w", err)
	}
	if err := json.Unmarshal([]byte(fields), &item.Fields); err != nil {
		return item, fmt.Errorf("unmarshaling fields for day %d: %w", day, err)
	}
	item.Fields.DayNumber = journal.Day(day)
	return item, nil
}

// SearchDays returns the days whose title or content match query, best match
// first. Title hits weigh more than content hits. A blank query matches
// nothing.
func (s *Storage) SearchDays(ctx context.Context, query string, limit int) ([]journal.Day, error) {
	match := escapeFTS5Query(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid
		FROM entries_fts
		WHERE entries_fts MATCH ?
		ORDER BY bm25(entries_fts, 10.0, 1.0), rowid
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var days []journal.Day
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		days = append(days, journal.Day(day))
	}
	return days, rows.Err()
}

// Stats reports the number of entries, the day range and when the last import
// ran.
func (s *Storage) Stats(ctx context.Context) (Stats, error) {
	var (
		stats    Stats
		first    sql.NullInt64
		last     sql.NullInt64
		imported sql.NullString
	)

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MIN(day), MAX(day) FROM entries").
		Scan(&stats.Entries, &first, &last)
	if err != nil {
		return stats, fmt.Errorf("counting entries: %w", err)
	}
	stats.FirstDay = journal.Day(first.Int64)
	stats.LastDay = journal.Day(last.Int64)

	err = s.db.QueryRowContext(ctx, "SELECT value FROM import_metadata WHERE key = 'last_import'").
		Scan(&imported)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("reading last import time: %w", err)
	}
	if imported.Valid {
		t, err := time.Parse(time.RFC3339, imported.String)
		if err != nil {
			return stats, fmt.Errorf("parsing last import time: %w", err)
		}
		stats.LastImport = t
	}

	return stats, nil
}

func (s *Storage) Optimize() error {
	_, err := s.db.Exec("INSERT INTO entries_fts(entries_fts) VALUES('optimize')")
	if err != nil {
		return fmt.Errorf("optimizing FTS index: %w", err)
	}
	_, err = s.db.Exec("PRAGMA optimize")
	return err
}

// escapeFTS5Query turns free text into an FTS5 expression where every term
// must appear as a word prefix. Terms are quoted so FTS5 operators typed by
// users are matched literally.
func escapeFTS5Query(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"*`)
	}
	return strings.Join(quoted, " ")
}
