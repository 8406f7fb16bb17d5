/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cmd holds the mapreader command tree.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mapreader/internal/config"
	applog "mapreader/internal/log"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any subcommand runs.
	cfg = config.Defaults()
)

var rootCmd = &cobra.Command{
	Use:   "mapreader",
	Short: "Read and inspect brush-based level map files",
	Long: `mapreader parses level map sources in the Quake family of formats
(Standard, Valve 220, Quake 2, Hexen 2, Daikatana, Quake 3, Doom 3),
reports what they contain and keeps a catalog of parse runs.

Configuration is read from the per-user config file (YAML or TOML) and
MAPR_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		opts := applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
			Console:   cmd.ErrOrStderr(),
		}
		if verbose {
			opts.Level = "debug"
		}
		applog.Init(opts)
		applog.WithComponent("cli").Debug("start", slog.String("command", cmd.CommandPath()), slog.Int("args", len(args)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = applog.Close()
	},
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: per-user config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
