/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.SourceFormat != "auto" || cfg.Index.Driver != "sqlite" {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "parser:\n  source_format: Valve\n  target_format: Quake2\nindex:\n  driver: PGX\n  dsn: postgres://localhost/maps\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.SourceFormat != "Valve" || cfg.Parser.TargetFormat != "Quake2" {
		t.Fatalf("parser = %#v", cfg.Parser)
	}
	if cfg.Index.Driver != "pgx" || cfg.Index.DSN != "postgres://localhost/maps" {
		t.Fatalf("index = %#v", cfg.Index)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[parser]\nsource_format = \"Hexen2\"\n\n[logging]\nlevel = \"DEBUG\"\nsource = true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.SourceFormat != "Hexen2" || cfg.Logging.Level != "debug" || !cfg.Logging.Source {
		t.Fatalf("toml config not applied: %#v", cfg)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("parser: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() accepted malformed yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		path := filepath.Join(t.TempDir(), "sub", name)
		want := Defaults()
		want.Parser.SourceFormat = "Daikatana"
		want.Report.Dir = "/tmp/reports"
		want.Index.DSN = "/tmp/maps.db"
		if err := Save(path, want); err != nil {
			t.Fatalf("Save(%s) error: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s round trip = %#v, want %#v", name, got, want)
		}
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/mapreader.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/mapreader.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvSourceFormat, "Quake3")
	t.Setenv(EnvIndexDSN, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "yes")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.SourceFormat != "Quake3" || cfg.Index.DSN != "/tmp/other.db" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("index.dsn"); !ok || env != EnvIndexDSN {
		t.Fatalf("EnvOverrideFor(index.dsn) = %q,%v", env, ok)
	}
	if _, ok := EnvOverrideFor("report.dir"); ok {
		t.Fatalf("EnvOverrideFor(report.dir) reported an unset variable")
	}
}

type memStore map[string]string

func (m memStore) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m memStore) Set(service, key, value string) error {
	m[service+"/"+key] = value
	return nil
}

func (m memStore) Delete(service, key string) error {
	if _, ok := m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(m, service+"/"+key)
	return nil
}

func stubSecrets(t *testing.T) memStore {
	t.Helper()
	prev := secretStore
	m := memStore{}
	secretStore = m
	t.Cleanup(func() { secretStore = prev })
	return m
}

func TestIndexDSNFromKeyring(t *testing.T) {
	stubSecrets(t)
	t.Setenv(EnvIndexDriver, "pgx")
	path := filepath.Join(t.TempDir(), "none.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Index.DSN != "" {
		t.Fatalf("DSN without keyring entry = %q, want empty", cfg.Index.DSN)
	}

	if err := SetIndexDSN(" postgres://maps@db/maps "); err != nil {
		t.Fatalf("SetIndexDSN() error: %v", err)
	}
	if cfg, _ = Load(path); cfg.Index.DSN != "postgres://maps@db/maps" {
		t.Fatalf("DSN = %q, want keyring value", cfg.Index.DSN)
	}

	t.Setenv(EnvIndexDSN, "postgres://env/maps")
	if cfg, _ = Load(path); cfg.Index.DSN != "postgres://env/maps" {
		t.Fatalf("DSN = %q, want env value over keyring", cfg.Index.DSN)
	}
	t.Setenv(EnvIndexDSN, "")

	if err := ClearIndexDSN(); err != nil {
		t.Fatalf("ClearIndexDSN() error: %v", err)
	}
	if err := ClearIndexDSN(); err != nil {
		t.Fatalf("second ClearIndexDSN() error: %v", err)
	}
	if cfg, _ = Load(path); cfg.Index.DSN != "" {
		t.Fatalf("DSN after clear = %q", cfg.Index.DSN)
	}
	if err := SetIndexDSN("  "); err == nil {
		t.Fatalf("SetIndexDSN accepted an empty dsn")
	}
}

func TestSQLiteDSNDefaultsToUserDir(t *testing.T) {
	m := stubSecrets(t)
	m["MapReader/index_dsn"] = "postgres://unused"
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Index.DSN != defaultIndexPath() || cfg.Index.DSN == "postgres://unused" {
		t.Fatalf("sqlite DSN = %q, want %q", cfg.Index.DSN, defaultIndexPath())
	}
}

func TestValueAndKeys(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Source = true
	cfg.Index.DSN = "x.db"
	want := map[string]string{
		"parser.source_format": "auto",
		"index.driver":         "sqlite",
		"index.dsn":            "x.db",
		"logging.source":       "true",
		"report.dir":           ".",
	}
	for k, v := range want {
		if got := cfg.Value(k); got != v {
			t.Errorf("Value(%q) = %q, want %q", k, got, v)
		}
	}
	keys := Keys()
	if len(keys) != len(envKeys) || keys[0] != "index.driver" {
		t.Fatalf("Keys() = %v", keys)
	}
	for _, k := range keys {
		if _, ok := envKeys[k]; !ok {
			t.Fatalf("Keys() returned unknown key %q", k)
		}
	}
}
