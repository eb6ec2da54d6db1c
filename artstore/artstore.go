// Package artstore persists normalized articles in SQLite. Publication
// dates are stored as epoch milliseconds so range scans for the retention
// purge stay cheap.
package artstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nkemp/feedmill"
)

// Store is a sqlite-backed article store.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the article database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open article database: %w", err)
	}
	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		article_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		original_address TEXT NOT NULL,
		publication_date INTEGER NOT NULL,
		source_id TEXT NOT NULL,
		source_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(title, source_id)
	);
	CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source_id);
	CREATE INDEX IF NOT EXISTS idx_articles_pubdate ON articles(publication_date);
	CREATE TABLE IF NOT EXISTS folder_articles (
		folder_id TEXT NOT NULL,
		article_id TEXT NOT NULL,
		PRIMARY KEY (folder_id, article_id)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize article schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertIfAbsent stores the article unless one with the same title already
// exists for the same source. The second return reports whether a row was
// inserted; hitting the uniqueness constraint is not an error.
func (s *Store) InsertIfAbsent(a feedmill.Article) (uuid.UUID, bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := s.db.Exec(
		`INSERT INTO articles (article_id, title, content, original_address, publication_date, source_id, source_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.Title, a.Content, a.OriginalAddress,
		a.PublicationDate.UnixMilli(), a.SourceID.String(), a.SourceName,
		time.Now().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to insert article: %w", err)
	}
	return a.ID, true, nil
}

// ListBySource returns the articles stored for one source, newest first.
func (s *Store) ListBySource(sourceID uuid.UUID) ([]feedmill.Article, error) {
	rows, err := s.db.Query(
		`SELECT article_id, title, content, original_address, publication_date, source_id, source_name
		 FROM articles WHERE source_id = ? ORDER BY publication_date DESC`,
		sourceID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// ListAll returns every stored article, newest first.
func (s *Store) ListAll() ([]feedmill.Article, error) {
	rows, err := s.db.Query(
		`SELECT article_id, title, content, original_address, publication_date, source_id, source_name
		 FROM articles ORDER BY publication_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// DeleteOlderThan removes articles published before the cutoff, clearing
// their folder memberships first. It returns how many articles were
// deleted and how many existed before the purge.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int, int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin purge: %w", err)
	}
	defer tx.Rollback()

	var checked int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&checked); err != nil {
		return 0, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	cutoffMillis := cutoff.UnixMilli()
	_, err = tx.Exec(
		`DELETE FROM folder_articles WHERE article_id IN
		 (SELECT article_id FROM articles WHERE publication_date < ?)`,
		cutoffMillis,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge folder memberships: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM articles WHERE publication_date < ?`, cutoffMillis)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge articles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge articles: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit purge: %w", err)
	}
	return int(n), checked, nil
}

// DeleteBySource removes all articles for one source and returns how many
// were deleted.
func (s *Store) DeleteBySource(sourceID uuid.UUID) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM folder_articles WHERE article_id IN
		 (SELECT article_id FROM articles WHERE source_id = ?)`,
		sourceID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder memberships: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM articles WHERE source_id = ?`, sourceID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return int(n), nil
}

// CountAll returns the number of stored articles.
func (s *Store) CountAll() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

func scanArticles(rows *sql.Rows) ([]feedmill.Article, error) {
	var out []feedmill.Article
	for rows.Next() {
		var (
			a               feedmill.Article
			idStr, srcIDStr string
			pubMillis       int64
		)
		err := rows.Scan(&idStr, &a.Title, &a.Content, &a.OriginalAddress,
			&pubMillis, &srcIDStr, &a.SourceName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		if a.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("invalid article id %q: %w", idStr, err)
		}
		if a.SourceID, err = uuid.Parse(srcIDStr); err != nil {
			return nil, fmt.Errorf("invalid source id %q: %w", srcIDStr, err)
		}
		a.PublicationDate = time.UnixMilli(pubMillis).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
