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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mapreader/internal/index"
)

var (
	indexLimit     int
	indexOlderThan time.Duration
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query the catalog of recorded parse runs",
	Long: `Runs are recorded with "mapreader parse --record". The catalog lives in
SQLite by default; set index.driver to pgx and index.dsn to a PostgreSQL
URL to share it.`,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(cmd, func(ix *index.Index) error {
			runs, err := ix.Runs(cmd.Context(), indexLimit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPARSED\tFORMAT\tENTITIES\tBRUSHES\tPATCHES\tWARNINGS\tPATH")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
					r.ID, r.ParsedAt.Local().Format(time.DateTime), r.SourceFormat,
					r.Entities, r.Brushes, r.Patches, r.Warnings, r.Path)
			}
			return tw.Flush()
		})
	},
}

var indexTexturesCmd = &cobra.Command{
	Use:   "textures",
	Short: "Show texture usage across the latest run of every map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(cmd, func(ix *index.Index) error {
			usage, err := ix.TextureUsage(cmd.Context(), indexLimit)
			if err != nil {
				return err
			}
			for _, u := range usage {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", u.Count, u.Name)
			}
			return nil
		})
	},
}

var indexWarningsCmd = &cobra.Command{
	Use:   "warnings <run-id>",
	Short: "Print the warnings of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(cmd, func(ix *index.Index) error {
			ws, err := ix.Warnings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, w := range ws {
				fmt.Fprintf(cmd.OutOrStdout(), "%d:%d: %s\n", w.Line, w.Column, w.Message)
			}
			return nil
		})
	},
}

var indexPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than --older-than",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(cmd, func(ix *index.Index) error {
			n, err := ix.Prune(cmd.Context(), time.Now().Add(-indexOlderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d runs\n", n)
			return nil
		})
	},
}

func withIndex(cmd *cobra.Command, fn func(*index.Index) error) error {
	ix, err := index.Open(cmd.Context(), cfg.Index.Driver, cfg.Index.DSN)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer ix.Close()
	return fn(ix)
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexListCmd, indexTexturesCmd, indexWarningsCmd, indexPruneCmd)
	indexCmd.PersistentFlags().IntVarP(&indexLimit, "limit", "n", 20, "maximum rows (0 for all)")
	indexPruneCmd.Flags().DurationVar(&indexOlderThan, "older-than", 30*24*time.Hour, "age of runs to delete")
}
