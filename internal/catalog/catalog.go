// Package catalog records the message keys of each run in SQLite so id
// drift between runs can be reported.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/livefir/i18nprep/internal/bundle"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsTableName = "catalog_db_version"

var (
	ErrNoRun      = errors.New("catalog: no recorded run")
	ErrSetDialect = errors.New("catalog: failed to set migration dialect")
	ErrMigrate    = errors.New("catalog: failed to apply migrations")
)

// goose configuration is package global.
var gooseMu sync.Mutex

// Catalog is a SQLite-backed message key history.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Entry is one component bundle of a run.
type Entry struct {
	Component string
	Bundle    *bundle.Bundle
}

// Run is a recorded invocation.
type Run struct {
	ID        int64
	Label     string
	CreatedAt time.Time
	Messages  int
}

// Change is a key that differs between two runs.
type Change struct {
	Component string
	Key       string
	Old       string
	New       string
}

// Diff compares the latest run with the one before it.
type Diff struct {
	Run      int64
	Previous int64
	Added    []Change
	Removed  []Change
	Changed  []Change
}

// Empty reports whether the two runs hold the same keys and values.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Open opens or creates the catalog at path and migrates it.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return &Catalog{db: db, logger: logger}, nil
}

func migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{logger})
	goose.SetTableName(migrationsTableName)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Debug(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Record stores the leaves of every entry as a new run and returns its id.
func (c *Catalog) Record(ctx context.Context, label string, entries []Entry) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs (label, created_at) VALUES (?, ?)`, label, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO messages (run_id, component, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, e := range entries {
		for _, leaf := range e.Bundle.Leaves() {
			value, err := bundle.FormatValue(leaf.Value, 0)
			if err != nil {
				return 0, fmt.Errorf("failed to encode %s %s: %w", e.Component, leaf.Key, err)
			}
			if _, err := stmt.ExecContext(ctx, runID, e.Component, leaf.Key, string(value)); err != nil {
				return 0, fmt.Errorf("failed to insert message %s %s: %w", e.Component, leaf.Key, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	c.logger.DebugContext(ctx, "recorded catalog run", "run", runID, "messages", count)
	return runID, nil
}

// Runs lists recorded runs, newest first.
func (c *Catalog) Runs(ctx context.Context) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT r.id, r.label, r.created_at, COUNT(m.key)
FROM runs r LEFT JOIN messages m ON m.run_id = r.id
GROUP BY r.id
ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Label, &created, &r.Messages); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type messageKey struct {
	component string
	key       string
}

func (c *Catalog) messages(ctx context.Context, runID int64) (map[messageKey]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT component, key, value FROM messages WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	defer rows.Close()

	out := make(map[messageKey]string)
	for rows.Next() {
		var k messageKey
		var value string
		if err := rows.Scan(&k.component, &k.key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out[k] = value
	}
	return out, rows.Err()
}

// Diff compares the latest run with the previous one. With a single run
// every key is reported as added.
func (c *Catalog) Diff(ctx context.Context) (*Diff, error) {
	runs, err := c.Runs(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRun
	}

	d := &Diff{Run: runs[0].ID}
	current, err := c.messages(ctx, d.Run)
	if err != nil {
		return nil, err
	}
	previous := map[messageKey]string{}
	if len(runs) > 1 {
		d.Previous = runs[1].ID
		if previous, err = c.messages(ctx, d.Previous); err != nil {
			return nil, err
		}
	}

	for k, v := range current {
		old, ok := previous[k]
		switch {
		case !ok:
			d.Added = append(d.Added, Change{Component: k.component, Key: k.key, New: v})
		case old != v:
			d.Changed = append(d.Changed, Change{Component: k.component, Key: k.key, Old: old, New: v})
		}
	}
	for k, v := range previous {
		if _, ok := current[k]; !ok {
			d.Removed = append(d.Removed, Change{Component: k.component, Key: k.key, Old: v})
		}
	}
	sortChanges(d.Added)
	sortChanges(d.Removed)
	sortChanges(d.Changed)
	return d, nil
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Component != changes[j].Component {
			return changes[i].Component < changes[j].Component
		}
		return changes[i].Key < changes[j].Key
	})
}

// Prune deletes all but the newest keep runs and returns how many went.
func (c *Catalog) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM messages WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
		return 0, fmt.Errorf("failed to prune messages: %w", err)
	}
	return res.RowsAffected()
}
