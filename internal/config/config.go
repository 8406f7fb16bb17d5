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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type ParserConfig struct {
	SourceFormat string `yaml:"source_format" toml:"source_format"` // dialect name or "auto"
	TargetFormat string `yaml:"target_format" toml:"target_format"` // empty means same as source
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Source bool   `yaml:"source" toml:"source"`
	File   string `yaml:"file" toml:"file"`
}

type IndexConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // "sqlite" | "pgx"
	DSN    string `yaml:"dsn" toml:"dsn"`       // file path for sqlite, connection string for pgx
}

type ReportConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// AppConfig is the user-editable configuration persisted to a YAML or TOML file
// in the user scope. Environment variables are treated as read-only overrides
// at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version" toml:"config_version"`
	Parser        ParserConfig  `yaml:"parser" toml:"parser"`
	Logging       LoggingConfig `yaml:"logging" toml:"logging"`
	Index         IndexConfig   `yaml:"index" toml:"index"`
	Report        ReportConfig  `yaml:"report" toml:"report"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Parser:        ParserConfig{SourceFormat: "auto"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Index:         IndexConfig{Driver: "sqlite"},
		Report:        ReportConfig{Dir: "."},
	}
}

// Env var names used as overrides.
const (
	EnvSourceFormat = "MAPR_SOURCE_FORMAT"
	EnvTargetFormat = "MAPR_TARGET_FORMAT"
	EnvIndexDriver  = "MAPR_INDEX_DRIVER"
	EnvIndexDSN     = "MAPR_INDEX_DSN"
	EnvReportDir    = "MAPR_REPORT_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "MAPR_LOG_LEVEL"
	EnvLogFormat = "MAPR_LOG_FORMAT"
	EnvLogSource = "MAPR_LOG_SOURCE"
	EnvLogFile   = "MAPR_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "MapReader"
	keyringIndexDSN = "index_dsn"
)

// secretStore abstracts keyring, so we can stub in tests.
var secretStore SecretStore = &osKeyring{}

type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (k *osKeyring) Set(service, key, value string) error   { return keyring.Set(service, key, value) }
func (k *osKeyring) Delete(service, key string) error       { return keyring.Delete(service, key) }

// SetIndexDSN stores a postgres connection string in the OS keyring. Load uses
// it when neither the config file nor MAPR_INDEX_DSN names one.
func SetIndexDSN(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return errors.New("empty dsn")
	}
	return secretStore.Set(keyringService, keyringIndexDSN, dsn)
}

// ClearIndexDSN removes the stored connection string. Removing an absent entry
// is not an error.
func ClearIndexDSN() error {
	if err := secretStore.Delete(keyringService, keyringIndexDSN); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func configDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "MapReader")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "MapReader")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "mapreader")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "mapreader")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaultIndexPath() string {
	dir, err := configDir()
	if err != nil {
		return "mapreader.db"
	}
	return filepath.Join(dir, "index.db")
}

// Load reads the config file at path (the per-user file if path is empty),
// applies defaults and merges environment overrides. A missing file is not an
// error; a malformed one is.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			resolveIndexDSN(&cfg)
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		var fileCfg AppConfig
		if err := decode(path, data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	resolveIndexDSN(&cfg)
	return cfg, nil
}

// resolveIndexDSN fills an empty DSN: the per-user index file for sqlite, the
// keyring entry for postgres. A keyring that cannot be read leaves it empty.
func resolveIndexDSN(cfg *AppConfig) {
	if cfg.Index.DSN != "" {
		return
	}
	switch cfg.Index.Driver {
	case "pgx", "postgres":
		dsn, _ := secretStore.Get(keyringService, keyringIndexDSN)
		cfg.Index.DSN = strings.TrimSpace(dsn)
	default:
		cfg.Index.DSN = defaultIndexPath()
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte, dst *AppConfig) error {
	if isTOML(path) {
		return toml.Unmarshal(data, dst)
	}
	return yaml.Unmarshal(data, dst)
}

// Save writes cfg to path, choosing TOML or YAML by extension.
func Save(path string, cfg AppConfig) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.TrimSpace(src.Parser.SourceFormat); v != "" {
		dst.Parser.SourceFormat = v
	}
	if v := strings.TrimSpace(src.Parser.TargetFormat); v != "" {
		dst.Parser.TargetFormat = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if v := strings.TrimSpace(src.Index.Driver); v != "" {
		dst.Index.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Index.DSN); v != "" {
		dst.Index.DSN = v
	}
	if v := strings.TrimSpace(src.Report.Dir); v != "" {
		dst.Report.Dir = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSourceFormat)); v != "" {
		cfg.Parser.SourceFormat = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTargetFormat)); v != "" {
		cfg.Parser.TargetFormat = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIndexDriver)); v != "" {
		cfg.Index.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvIndexDSN)); v != "" {
		cfg.Index.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvReportDir)); v != "" {
		cfg.Report.Dir = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"parser.source_format": EnvSourceFormat,
	"parser.target_format": EnvTargetFormat,
	"index.driver":         EnvIndexDriver,
	"index.dsn":            EnvIndexDSN,
	"report.dir":           EnvReportDir,
	"logging.level":        EnvLogLevel,
	"logging.format":       EnvLogFormat,
	"logging.source":       EnvLogSource,
	"logging.file":         EnvLogFile,
}

// Value returns the field named by a dotted key, or "" for an unknown key.
func (c AppConfig) Value(key string) string {
	switch key {
	case "parser.source_format":
		return c.Parser.SourceFormat
	case "parser.target_format":
		return c.Parser.TargetFormat
	case "index.driver":
		return c.Index.Driver
	case "index.dsn":
		return c.Index.DSN
	case "report.dir":
		return c.Report.Dir
	case "logging.level":
		return c.Logging.Level
	case "logging.format":
		return c.Logging.Format
	case "logging.source":
		return strconv.FormatBool(c.Logging.Source)
	case "logging.file":
		return c.Logging.File
	}
	return ""
}

// Keys lists the dotted field names known to EnvOverrideFor, sorted.
func Keys() []string {
	keys := make([]string, 0, len(envKeys))
	for k := range envKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
