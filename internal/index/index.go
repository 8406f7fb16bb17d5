/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package index keeps a SQL catalog of parse runs: one row per parsed map with
// its counts, plus per-run texture usage and warnings. SQLite (pure Go) is the
// default store; PostgreSQL is reachable through the pgx database/sql driver.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "mapreader/internal/log"
	"mapreader/internal/mapdoc"
	"mapreader/internal/mapparser"
	"mapreader/internal/version"

	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	// schemaVersion tracks the catalog schema. Bump this when you perform
	// breaking schema changes and add migrations.
	schemaVersion = 2

	// tsLayout is fixed-width so stored timestamps sort as text.
	tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Index is an open catalog.
type Index struct {
	db     *sql.DB
	driver string
}

// Run is one recorded parse.
type Run struct {
	ID           string
	Path         string
	SourceFormat string
	TargetFormat string
	ParsedAt     time.Time
	Entities     int
	Brushes      int
	Faces        int
	Patches      int
	Warnings     int
}

// Open connects to the catalog and ensures its schema. For the sqlite driver
// dsn is a file path (its directory is created) or a "file:" URI.
func Open(ctx context.Context, driver, dsn string) (*Index, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	l := applog.WithOperation(applog.WithComponent("index"), "open").With(
		slog.String("driver", driver),
	)
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("index dsn is required")
	}
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		db, err = openSQLite(ctx, dsn)
	case DriverPostgres, "postgres":
		driver = DriverPostgres
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			if err = db.PingContext(ctx); err != nil {
				_ = db.Close()
				err = fmt.Errorf("ping postgres: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported index driver %q", driver)
	}
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, err
	}

	ix := &Index{db: db, driver: driver}
	if err := ix.ensureMetaAndVersion(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ix.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := ix.runMigrations(ctx); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready")
	return ix, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Close releases the connection pool.
func (ix *Index) Close() error { return ix.db.Close() }

// Driver reports the normalized driver name.
func (ix *Index) Driver() string { return ix.driver }

// rebind rewrites '?' placeholders to '$n' for postgres.
func (ix *Index) rebind(q string) string {
	if ix.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (ix *Index) exec(ctx context.Context, q string, args ...any) error {
	_, err := ix.db.ExecContext(ctx, ix.rebind(q), args...)
	return err
}

func (ix *Index) ensureMetaAndVersion(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if err := ix.exec(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh catalog starts at version 1 and migrates forward
		if err := ix.exec(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, 1, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if err := ix.exec(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func (ix *Index) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT    PRIMARY KEY,
			path          TEXT    NOT NULL,
			source_format TEXT    NOT NULL,
			target_format TEXT    NOT NULL,
			parsed_at     TEXT    NOT NULL,
			entities      INTEGER NOT NULL,
			brushes       INTEGER NOT NULL,
			faces         INTEGER NOT NULL,
			patches       INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(path);`,
		`CREATE TABLE IF NOT EXISTS run_textures (
			run_id TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name   TEXT    NOT NULL,
			uses   INTEGER NOT NULL,
			PRIMARY KEY(run_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS run_warnings (
			run_id  TEXT    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq     INTEGER NOT NULL,
			line    INTEGER NOT NULL,
			col     INTEGER NOT NULL,
			message TEXT    NOT NULL,
			PRIMARY KEY(run_id, seq)
		);`,
	}
	for _, q := range ddl {
		if err := ix.exec(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func (ix *Index) runMigrations(ctx context.Context) error {
	var cur int
	if err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_run_textures_name ON run_textures(name);`,
			}
		}
		tx, err := ix.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, ix.rebind(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// Record stores s as a new run and returns its id.
func (ix *Index) Record(ctx context.Context, s mapdoc.Summary) (string, error) {
	id := uuid.NewString()
	parsedAt := s.ParsedAt
	if parsedAt.IsZero() {
		parsedAt = time.Now().UTC()
	}
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ix.rebind(`INSERT INTO runs(id, path, source_format, target_format, parsed_at, entities, brushes, faces, patches) VALUES(?,?,?,?,?,?,?,?,?)`),
		id, s.Path, s.SourceFormat, s.TargetFormat, parsedAt.UTC().Format(tsLayout), s.Entities, s.Brushes, s.Faces, s.Patches); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("insert run: %w", err)
	}
	for _, t := range s.Textures {
		if _, err := tx.ExecContext(ctx, ix.rebind(`INSERT INTO run_textures(run_id, name, uses) VALUES(?,?,?)`), id, t.Name, t.Count); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("insert texture: %w", err)
		}
	}
	for i, w := range s.Warnings {
		if _, err := tx.ExecContext(ctx, ix.rebind(`INSERT INTO run_warnings(run_id, seq, line, col, message) VALUES(?,?,?,?,?)`), id, i, w.Line, w.Column, w.Message); err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("insert warning: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Runs lists recorded runs, newest first. A limit <= 0 returns all runs.
func (ix *Index) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT r.id, r.path, r.source_format, r.target_format, r.parsed_at, r.entities, r.brushes, r.faces, r.patches,
			(SELECT COUNT(*) FROM run_warnings w WHERE w.run_id = r.id)
		FROM runs r ORDER BY r.parsed_at DESC, r.id`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := ix.db.QueryContext(ctx, ix.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var (
			r  Run
			ts string
		)
		if err := rows.Scan(&r.ID, &r.Path, &r.SourceFormat, &r.TargetFormat, &ts, &r.Entities, &r.Brushes, &r.Faces, &r.Patches, &r.Warnings); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ParsedAt, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", r.ID, ts, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Warnings returns the warnings stored for one run in emission order.
func (ix *Index) Warnings(ctx context.Context, runID string) ([]mapparser.Warning, error) {
	rows, err := ix.db.QueryContext(ctx, ix.rebind(`SELECT line, col, message FROM run_warnings WHERE run_id=? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()
	out := []mapparser.Warning{}
	for rows.Next() {
		var w mapparser.Warning
		if err := rows.Scan(&w.Line, &w.Column, &w.Message); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// TextureUsage totals texture uses across the latest run of every map path,
// most used first.
func (ix *Index) TextureUsage(ctx context.Context, limit int) ([]mapdoc.TextureUse, error) {
	q := `SELECT t.name, SUM(t.uses) AS total
		FROM run_textures t JOIN runs r ON r.id = t.run_id
		WHERE r.parsed_at = (SELECT MAX(r2.parsed_at) FROM runs r2 WHERE r2.path = r.path)
		GROUP BY t.name ORDER BY total DESC, t.name`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := ix.db.QueryContext(ctx, ix.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query texture usage: %w", err)
	}
	defer rows.Close()
	var out []mapdoc.TextureUse
	for rows.Next() {
		var (
			u     mapdoc.TextureUse
			total int64
		)
		if err := rows.Scan(&u.Name, &total); err != nil {
			return nil, fmt.Errorf("scan texture usage: %w", err)
		}
		u.Count = int(total)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Prune deletes runs older than the given time and returns how many went.
func (ix *Index) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := ix.db.ExecContext(ctx, ix.rebind(`DELETE FROM runs WHERE parsed_at < ?`), before.UTC().Format(tsLayout))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
