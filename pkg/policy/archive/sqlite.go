package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"stellar-hq/callisto/pkg/config"
	"stellar-hq/callisto/pkg/policy/store"
)

// StorageError reports a failed archive operation.
type StorageError struct {
	// Op is the operation that failed (e.g. "open", "save", "load").
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("archive %s failed: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *StorageError) Unwrap() error { return e.Err }

// Snapshot describes one archived policy set.
type Snapshot struct {
	// ID is the snapshot's uuid.
	ID string

	// Generation is the load generation the snapshot was taken from.
	Generation string

	// CreatedAt is when the snapshot was written.
	CreatedAt time.Time

	// Templates and Links are the entry counts of the archived set.
	Templates int
	Links     int
}

// Archive stores serialized policy sets in a SQLite database.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS policy_snapshots (
	id         TEXT PRIMARY KEY,
	generation TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	templates  INTEGER NOT NULL,
	links      INTEGER NOT NULL,
	document   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_policy_snapshots_created_at
	ON policy_snapshots(created_at);
`

// Open opens (creating if necessary) the archive database at cfg.Path.
func Open(cfg config.ArchiveConfig) (*Archive, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &StorageError{Op: "open", Err: err}
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}

	return &Archive{
		db:     db,
		logger: slog.Default().With("component", "policy.archive"),
	}, nil
}

// Save archives the set under a fresh snapshot id and returns that id.
// generation is the load generation the set came from, empty for ad-hoc
// snapshots.
func (a *Archive) Save(ctx context.Context, generation string, set *store.PolicySet) (string, error) {
	doc, err := json.Marshal(set)
	if err != nil {
		return "", &StorageError{Op: "save", Err: err}
	}

	var templates, links int
	for range set.AllTemplates() {
		templates++
	}
	for range set.Policies() {
		links++
	}

	id := uuid.New().String()
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO policy_snapshots (id, generation, created_at, templates, links, document)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, generation, time.Now().UTC(), templates, links, string(doc))
	if err != nil {
		return "", &StorageError{Op: "save", Err: err}
	}

	a.logger.Info("archived policy set",
		"snapshot", id, "generation", generation, "templates", templates, "links", links)
	return id, nil
}

// Load reads a snapshot back into a live policy set. The stored document is
// reified; a snapshot whose links no longer resolve fails with the
// reification error as cause.
func (a *Archive) Load(ctx context.Context, id string) (*store.PolicySet, error) {
	var doc string
	err := a.db.QueryRowContext(ctx,
		`SELECT document FROM policy_snapshots WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, &StorageError{Op: "load", Err: fmt.Errorf("no snapshot with id %q", id)}
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}

	set := store.New()
	if err := json.Unmarshal([]byte(doc), set); err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return set, nil
}

// List returns the archived snapshots, newest first.
func (a *Archive) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, generation, created_at, templates, links
		 FROM policy_snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Generation, &s.CreatedAt, &s.Templates, &s.Links); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return snapshots, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
