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
	"os"

	"github.com/spf13/cobra"

	"mapreader/internal/mapparser"
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>...",
	Short: "Guess the dialect of map files",
	Long: `Looks at the first face of each file and prints the dialect it is
written in. Files without a recognizable face report the default dialect.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read map: %w", err)
			}
			fmt.Fprintf(out, "%s: %s\n", path, mapparser.DetectString(string(data)))
		}
		return nil
	},
}

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List the dialect names accepted by --source and --target",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, d := range mapparser.Dialects() {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(dialectsCmd)
}
