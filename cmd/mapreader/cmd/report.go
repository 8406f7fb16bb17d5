/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	applog "mapreader/internal/log"
	"mapreader/internal/report"
)

var (
	reportFormat string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report <file>...",
	Short: "Write a JSON or PDF summary for map files",
	Long: `Parses each file and writes <name>.summary.json or <name>.summary.pdf
into the report directory. JSON reports are validated against the
bundled schema before they are written.

Examples:
  mapreader report e1m1.map
  mapreader report --format pdf --out ./reports maps/*.map`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := report.ParseFormat(reportFormat)
		if err != nil {
			return err
		}
		opts, err := parseOptions("entities")
		if err != nil {
			return err
		}
		dir := reportOut
		if dir == "" {
			dir = cfg.Report.Dir
		}
		for _, path := range args {
			s, err := parseFile(applog.ContextWithMapFile(cmd.Context(), path), path, opts)
			if err != nil {
				return err
			}
			out, err := report.WriteFile(dir, s, f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addDialectFlags(reportCmd)
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "json", "json or pdf")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output directory (default from config)")
}
