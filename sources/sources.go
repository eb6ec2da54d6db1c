// Package sources manages the registry of content sources: where each one
// lives, what kind of payload it serves, and whether it is enabled for
// polling.
package sources

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nkemp/feedmill/scraper"
)

// Source kinds. A feed source serves RSS or Atom XML; an html source
// serves a listing page for the extraction cascade.
const (
	KindFeed = "feed"
	KindHTML = "html"
)

var (
	// ErrSourceNotFound is returned when a lookup or mutation targets a
	// source id that does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrDuplicateURL is returned when a source with the same address is
	// already registered.
	ErrDuplicateURL = errors.New("source address already registered")
	// ErrInvalidKind is returned when a source kind is neither feed nor
	// html.
	ErrInvalidKind = errors.New("invalid source kind")
)

// Source is one registered content origin.
type Source struct {
	ID            uuid.UUID               `json:"id"`
	Kind          string                  `json:"kind"`
	Address       string                  `json:"address"`
	Name          string                  `json:"name"`
	EnabledAt     *time.Time              `json:"enabled_at,omitempty"`
	LastCheckedAt *time.Time              `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	HTMLSelectors *scraper.SelectorConfig `json:"html_selectors,omitempty"`
}

// IsEnabled reports whether the source participates in sweeps.
func (s Source) IsEnabled() bool {
	return s.EnabledAt != nil
}

// Store persists sources in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the source database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
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
	CREATE TABLE IF NOT EXISTS sources (
		source_id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		address TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		enabled_at TEXT,
		last_checked_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		html_selectors TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sources_kind ON sources(kind);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize source schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create registers a new source, enabled by default.
func (s *Store) Create(kind, address, name string, selectors *scraper.SelectorConfig) (Source, error) {
	if kind != KindFeed && kind != KindHTML {
		return Source{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return Source{}, fmt.Errorf("source address must not be empty")
	}
	if name == "" {
		name = address
	}

	now := time.Now().Truncate(0)
	src := Source{
		ID:            uuid.New(),
		Kind:          kind,
		Address:       address,
		Name:          name,
		EnabledAt:     &now,
		CreatedAt:     now,
		UpdatedAt:     now,
		HTMLSelectors: selectors,
	}

	var selJSON sql.NullString
	if selectors != nil && !selectors.Empty() {
		data, err := json.Marshal(selectors)
		if err != nil {
			return Source{}, fmt.Errorf("failed to encode selectors: %w", err)
		}
		selJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO sources (source_id, kind, address, name, enabled_at, last_checked_at, created_at, updated_at, html_selectors)
		 VALUES (?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
		src.ID.String(), src.Kind, src.Address, src.Name,
		formatTime(src.EnabledAt), formatTime(&src.CreatedAt), formatTime(&src.UpdatedAt), selJSON,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return Source{}, ErrDuplicateURL
		}
		return Source{}, fmt.Errorf("failed to create source: %w", err)
	}
	return src, nil
}

// Get returns the source with the given id.
func (s *Store) Get(id uuid.UUID) (Source, error) {
	row := s.db.QueryRow(
		`SELECT source_id, kind, address, name, enabled_at, last_checked_at, created_at, updated_at, html_selectors
		 FROM sources WHERE source_id = ?`, id.String(),
	)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, ErrSourceNotFound
	}
	if err != nil {
		return Source{}, fmt.Errorf("failed to get source: %w", err)
	}
	return src, nil
}

// List returns all sources, newest first.
func (s *Store) List() ([]Source, error) {
	return s.queryList(
		`SELECT source_id, kind, address, name, enabled_at, last_checked_at, created_at, updated_at, html_selectors
		 FROM sources ORDER BY created_at DESC`)
}

// ListEnabled returns sources eligible for polling.
func (s *Store) ListEnabled() ([]Source, error) {
	return s.queryList(
		`SELECT source_id, kind, address, name, enabled_at, last_checked_at, created_at, updated_at, html_selectors
		 FROM sources WHERE enabled_at IS NOT NULL ORDER BY created_at DESC`)
}

func (s *Store) queryList(query string) ([]Source, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// MarkChecked records that a sweep touched the source at time t.
func (s *Store) MarkChecked(id uuid.UUID, t time.Time) error {
	return s.update(id,
		`UPDATE sources SET last_checked_at = ?, updated_at = ? WHERE source_id = ?`,
		formatTime(&t), formatTime(&t), id.String(),
	)
}

// SetEnabled enables or disables polling for the source.
func (s *Store) SetEnabled(id uuid.UUID, enabled bool) error {
	now := time.Now().Truncate(0)
	var enabledAt interface{}
	if enabled {
		enabledAt = formatTime(&now)
	}
	return s.update(id,
		`UPDATE sources SET enabled_at = ?, updated_at = ? WHERE source_id = ?`,
		enabledAt, formatTime(&now), id.String(),
	)
}

// Delete removes the source registration. Stored articles are handled
// separately by the article store.
func (s *Store) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM sources WHERE source_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	if n == 0 {
		return ErrSourceNotFound
	}
	return nil
}

func (s *Store) update(id uuid.UUID, query string, args ...interface{}) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if n == 0 {
		return ErrSourceNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (Source, error) {
	var (
		src                                 Source
		idStr, createdAt, updatedAt         string
		enabledAt, lastCheckedAt, selectors sql.NullString
	)
	err := row.Scan(&idStr, &src.Kind, &src.Address, &src.Name,
		&enabledAt, &lastCheckedAt, &createdAt, &updatedAt, &selectors)
	if err != nil {
		return Source{}, err
	}

	src.ID, err = uuid.Parse(idStr)
	if err != nil {
		return Source{}, fmt.Errorf("invalid source id %q: %w", idStr, err)
	}
	if src.CreatedAt, err = parseTime(createdAt); err != nil {
		return Source{}, err
	}
	if src.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Source{}, err
	}
	if enabledAt.Valid {
		t, err := parseTime(enabledAt.String)
		if err != nil {
			return Source{}, err
		}
		src.EnabledAt = &t
	}
	if lastCheckedAt.Valid {
		t, err := parseTime(lastCheckedAt.String)
		if err != nil {
			return Source{}, err
		}
		src.LastCheckedAt = &t
	}
	if selectors.Valid && selectors.String != "" {
		var cfg scraper.SelectorConfig
		if err := json.Unmarshal([]byte(selectors.String), &cfg); err != nil {
			return Source{}, fmt.Errorf("invalid selector config: %w", err)
		}
		src.HTMLSelectors = &cfg
	}
	return src, nil
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t.Truncate(0), nil
}
