/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mapreader/internal/diag"
	"mapreader/internal/index"
	"mapreader/internal/lex"
	applog "mapreader/internal/log"
	"mapreader/internal/mapdoc"
	"mapreader/internal/mapparser"
	"mapreader/internal/report"
)

var (
	parseSource string
	parseTarget string
	parseMode   string
	parseJSON   bool
	parseRecord bool
	parseSnap   int
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Parse map files and print a summary",
	Long: `Parses each file and prints entity, brush, face and patch counts
together with any warnings. A syntax error aborts the file and is reported
with its line and column.

Examples:
  mapreader parse e1m1.map
  mapreader parse --source valve --target quake2 e1m1.map
  mapreader parse --mode faces clipboard.txt
  mapreader parse --record --json maps/*.map`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	addDialectFlags(parseCmd)
	parseCmd.Flags().StringVar(&parseMode, "mode", "entities", "input kind: entities, objects or faces")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the summary as JSON")
	parseCmd.Flags().BoolVar(&parseRecord, "record", false, "record the run in the index")
	parseCmd.Flags().IntVar(&parseSnap, "snap", -1, "round points within 0.001 of this many decimal places (negative keeps them as parsed)")
}

func addDialectFlags(c *cobra.Command) {
	c.Flags().StringVarP(&parseSource, "source", "s", "", "source dialect (default from config, \"auto\" detects)")
	c.Flags().StringVarP(&parseTarget, "target", "t", "", "target dialect (default from config, empty means source)")
}

func parseModeFlag(s string) (mapparser.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "entities", "map":
		return mapparser.ModeEntities, nil
	case "objects", "brushes":
		return mapparser.ModeObjects, nil
	case "faces":
		return mapparser.ModeFaces, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want entities, objects or faces)", s)
	}
}

// parseOptions resolves dialect flags against the loaded config.
func parseOptions(mode string) (mapparser.Options, error) {
	src := parseSource
	if src == "" {
		src = cfg.Parser.SourceFormat
	}
	tgt := parseTarget
	if tgt == "" {
		tgt = cfg.Parser.TargetFormat
	}
	var opts mapparser.Options
	var err error
	if opts.Source, err = mapparser.ParseDialect(src); err != nil {
		return opts, err
	}
	if opts.Target, err = mapparser.ParseDialect(tgt); err != nil {
		return opts, err
	}
	if opts.Mode, err = parseModeFlag(mode); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseFile reads and parses one file and returns its summary.
func parseFile(ctx context.Context, path string, opts mapparser.Options) (mapdoc.Summary, error) {
	l := applog.WithOperation(applog.WithComponent("cli"), "parse")
	data, err := os.ReadFile(path)
	if err != nil {
		return mapdoc.Summary{}, fmt.Errorf("read map: %w", err)
	}
	start := time.Now()
	b := mapdoc.NewBuilder().SnapPoints(parseSnap)
	res, err := mapparser.Parse(string(data), opts, b, diag.NewLogStatus(l, path))
	if err != nil {
		var le *lex.Error
		if errors.As(err, &le) {
			return mapdoc.Summary{}, fmt.Errorf("%s:%d:%d: %s", path, le.Line, le.Column, le.Message)
		}
		return mapdoc.Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	b.Flush()
	s := mapdoc.Summarize(path, b.Document(), res)
	l.InfoContext(ctx, "parsed",
		slog.String("source", s.SourceFormat),
		slog.Int("entities", s.Entities),
		slog.Int("brushes", s.Brushes),
		slog.Int("warnings", len(s.Warnings)),
		slog.Duration("took", time.Since(start)),
	)
	return s, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(parseMode)
	if err != nil {
		return err
	}
	var ix *index.Index
	if parseRecord {
		if ix, err = index.Open(cmd.Context(), cfg.Index.Driver, cfg.Index.DSN); err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer ix.Close()
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		ctx := applog.ContextWithMapFile(cmd.Context(), path)
		s, err := parseFile(ctx, path, opts)
		if err != nil {
			printError("parse failed", err)
			failed++
			continue
		}
		if parseJSON {
			if err := report.WriteJSON(out, s); err != nil {
				return err
			}
		} else {
			printSummary(out, s)
		}
		if ix != nil {
			id, err := ix.Record(ctx, s)
			if err != nil {
				return fmt.Errorf("record run: %w", err)
			}
			if !parseJSON {
				fmt.Fprintf(out, "  recorded as %s\n", id)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to parse", failed, len(args))
	}
	return nil
}

func printSummary(w io.Writer, s mapdoc.Summary) {
	fmt.Fprintf(w, "%s: %s", s.Path, s.SourceFormat)
	if s.TargetFormat != s.SourceFormat {
		fmt.Fprintf(w, " -> %s", s.TargetFormat)
	}
	fmt.Fprintf(w, ", %d entities, %d brushes, %d faces, %d patches\n", s.Entities, s.Brushes, s.Faces, s.Patches)
	for _, wr := range s.Warnings {
		fmt.Fprintf(w, "  warning %d:%d: %s\n", wr.Line, wr.Column, wr.Message)
	}
}
