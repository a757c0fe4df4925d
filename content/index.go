package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an indexed entry does not exist.
var ErrNotFound = sql.ErrNoRows

// IndexStore keeps a SQLite copy of the content collections so the preview
// server can read them without re-parsing every file.
type IndexStore struct {
	db *sql.DB
}

// SyncStats reports what a Sync changed.
type SyncStats struct {
	Upserted int
	Deleted  int
}

// OpenIndex opens (or creates) the index database at path, ensures the data
// directory exists, and creates the schema.
func OpenIndex(path string) (*IndexStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the watcher resync while requests read; the busy timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &IndexStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *IndexStore) Close() error {
	return s.db.Close()
}

func (s *IndexStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    pub_date TEXT NOT NULL,
    updated_date TEXT,
    author TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    category TEXT NOT NULL DEFAULT '',
    draft INTEGER NOT NULL DEFAULT 0,
    featured INTEGER NOT NULL DEFAULT 0,
    hero_image TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (collection, id)
);
`)
	return err
}

const entryColumns = `collection, id, title, description, pub_date, updated_date, author, tags, category, draft, featured, hero_image, body`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (Entry, error) {
	var (
		col, id, title, desc, pub, author, tags, category, hero, body string
		updated                                                        sql.NullString
		draft, featured                                                int
	)
	if err := r.Scan(&col, &id, &title, &desc, &pub, &updated, &author, &tags, &category, &draft, &featured, &hero, &body); err != nil {
		return Entry{}, err
	}
	pubDate, err := time.Parse(time.RFC3339Nano, pub)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s/%s: pub_date: %w", col, id, err)
	}
	e := Entry{
		ID:         id,
		Collection: Collection(col),
		Body:       body,
		Data: Data{
			Title:       title,
			Description: desc,
			PubDate:     pubDate,
			Author:      author,
			Category:    category,
			Draft:       draft == 1,
			Featured:    featured == 1,
			HeroImage:   hero,
		},
	}
	if updated.Valid {
		t, err := time.Parse(time.RFC3339Nano, updated.String)
		if err != nil {
			return Entry{}, fmt.Errorf("entry %s/%s: updated_date: %w", col, id, err)
		}
		e.Data.UpdatedDate = &t
	}
	if err := json.Unmarshal([]byte(tags), &e.Data.Tags); err != nil {
		return Entry{}, fmt.Errorf("entry %s/%s: tags: %w", col, id, err)
	}
	return e, nil
}

// GetCollection implements Store. Entries are ordered by id, matching the
// file name order of FileStore.
func (s *IndexStore) GetCollection(ctx context.Context, name Collection) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE collection = ? ORDER BY id`, string(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns a single entry.
func (s *IndexStore) GetEntry(ctx context.Context, col Collection, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE collection = ? AND id = ?`, string(col), id)
	return scanEntry(row)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveEntry upserts an entry. Tags are stored as given.
func (s *IndexStore) SaveEntry(ctx context.Context, e Entry) error {
	return saveEntry(ctx, s.db, e)
}

func saveEntry(ctx context.Context, x execer, e Entry) error {
	tags := e.Data.Tags
	if tags == nil {
		tags = []string{}
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	var updated sql.NullString
	if e.Data.UpdatedDate != nil {
		updated = sql.NullString{String: e.Data.UpdatedDate.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	_, err = x.ExecContext(ctx, `INSERT OR REPLACE INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Collection), e.ID, e.Data.Title, e.Data.Description,
		e.Data.PubDate.UTC().Format(time.RFC3339Nano), updated, e.Data.Author,
		string(tagJSON), e.Data.Category, boolInt(e.Data.Draft), boolInt(e.Data.Featured),
		e.Data.HeroImage, e.Body)
	return err
}

// DeleteEntry removes an entry.
func (s *IndexStore) DeleteEntry(ctx context.Context, col Collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE collection = ? AND id = ?`, string(col), id)
	return err
}

// Sync replaces the indexed collections with the contents of src in a
// single transaction. Nothing is written if src fails.
func (s *IndexStore) Sync(ctx context.Context, src Store) (SyncStats, error) {
	var stats SyncStats
	fresh := make(map[Collection][]Entry, len(Collections))
	for _, col := range Collections {
		entries, err := src.GetCollection(ctx, col)
		if err != nil {
			return stats, err
		}
		fresh[col] = entries
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	for _, col := range Collections {
		keep := make(map[string]struct{}, len(fresh[col]))
		for _, e := range fresh[col] {
			e.Collection = col
			if err := saveEntry(ctx, tx, e); err != nil {
				return SyncStats{}, fmt.Errorf("save %s/%s: %w", col, e.ID, err)
			}
			keep[e.ID] = struct{}{}
			stats.Upserted++
		}
		stale, err := staleIDs(ctx, tx, col, keep)
		if err != nil {
			return SyncStats{}, err
		}
		for _, id := range stale {
			if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE collection = ? AND id = ?`, string(col), id); err != nil {
				return SyncStats{}, err
			}
			stats.Deleted++
		}
	}
	if err := tx.Commit(); err != nil {
		return SyncStats{}, err
	}
	return stats, nil
}

func staleIDs(ctx context.Context, tx *sql.Tx, col Collection, keep map[string]struct{}) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM entries WHERE collection = ?`, string(col))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// IsNotFound reports whether err means the entry is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
