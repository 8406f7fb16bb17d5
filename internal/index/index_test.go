/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mapreader/internal/mapdoc"
	"mapreader/internal/mapparser"
)

func openTemp(t *testing.T) *Index {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ix, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "sub", "index.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func summary(path string, at time.Time, textures ...mapdoc.TextureUse) mapdoc.Summary {
	return mapdoc.Summary{
		Path:         path,
		SourceFormat: "Standard",
		TargetFormat: "Standard",
		ParsedAt:     at,
		Entities:     2,
		Brushes:      3,
		Faces:        18,
		Textures:     textures,
		Warnings: []mapparser.Warning{
			{Line: 4, Column: 1, Message: "Skipping face: face points are colinear"},
			{Line: 9, Column: 3, Message: "Invalid patch height, assuming 3"},
		},
	}
}

func TestOpenCreatesWALAndSchema(t *testing.T) {
	ix := openTemp(t)
	ctx := context.Background()
	var mode string
	if err := ix.db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','runs','run_textures','run_warnings')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 5 {
		t.Fatalf("expected 5 tables, got %d", cnt)
	}
	var schema int
	if err := ix.db.QueryRowContext(ctx, "SELECT schema FROM version WHERE id=1").Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()
	ix, err := Open(ctx, "", path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := ix.Record(ctx, summary("a.map", time.Now())); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	_ = ix.Close()

	ix, err = Open(ctx, "SQLite", path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer ix.Close()
	runs, err := ix.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs after reopen, want 1", len(runs))
	}
}

func TestRecordAndQuery(t *testing.T) {
	ix := openTemp(t)
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, err := ix.Record(ctx, summary("e1m1.map", t0, mapdoc.TextureUse{Name: "base/wall", Count: 10}, mapdoc.TextureUse{Name: "sky", Count: 2})); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	id2, err := ix.Record(ctx, summary("e1m1.map", t0.Add(time.Hour), mapdoc.TextureUse{Name: "base/wall", Count: 4}))
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if _, err := ix.Record(ctx, summary("e1m2.map", t0.Add(30*time.Minute), mapdoc.TextureUse{Name: "sky", Count: 7})); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	runs, err := ix.Runs(ctx, 2)
	if err != nil {
		t.Fatalf("Runs error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != id2 || !runs[0].ParsedAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("newest run = %+v, want id %s", runs[0], id2)
	}
	if runs[0].Faces != 18 || runs[0].Warnings != 2 {
		t.Fatalf("run counts = %+v", runs[0])
	}

	// only the latest run of each path counts
	usage, err := ix.TextureUsage(ctx, 0)
	if err != nil {
		t.Fatalf("TextureUsage error: %v", err)
	}
	want := []mapdoc.TextureUse{{Name: "sky", Count: 7}, {Name: "base/wall", Count: 4}}
	if diff := cmp.Diff(want, usage); diff != "" {
		t.Fatalf("TextureUsage mismatch (-want +got):\n%s", diff)
	}

	ws, err := ix.Warnings(ctx, id2)
	if err != nil {
		t.Fatalf("Warnings error: %v", err)
	}
	if diff := cmp.Diff(summary("", t0).Warnings, ws); diff != "" {
		t.Fatalf("Warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestPruneCascades(t *testing.T) {
	ix := openTemp(t)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)
	id, err := ix.Record(ctx, summary("old.map", old, mapdoc.TextureUse{Name: "x", Count: 1}))
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if _, err := ix.Record(ctx, summary("new.map", time.Now())); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	n, err := ix.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned %d runs, want 1", n)
	}
	ws, err := ix.Warnings(ctx, id)
	if err != nil {
		t.Fatalf("Warnings error: %v", err)
	}
	if len(ws) != 0 {
		t.Fatalf("warnings of pruned run survived: %v", ws)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), DriverSQLite, " "); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestRebind(t *testing.T) {
	pg := &Index{driver: DriverPostgres}
	if got := pg.rebind("a=? AND b=?"); got != "a=$1 AND b=$2" {
		t.Fatalf("rebind = %q", got)
	}
	lite := &Index{driver: DriverSQLite}
	if got := lite.rebind("a=?"); got != "a=?" {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}
}
