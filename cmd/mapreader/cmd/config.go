/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mapreader/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialise the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Prints every setting after the config file and MAPR_* environment
variables are applied. Settings taken from the environment name their
variable. A postgres connection string is never printed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, key := range config.Keys() {
			v := cfg.Value(key)
			if key == "index.dsn" && cfg.Index.Driver != "sqlite" && v != "" {
				v = "(hidden)"
			}
			if env, ok := config.EnvOverrideFor(key); ok {
				fmt.Fprintf(out, "%s = %s (from %s)\n", key, v, env)
				continue
			}
			fmt.Fprintf(out, "%s = %s\n", key, v)
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Writes the defaults to the config file (TOML when the name ends in
.toml, YAML otherwise). An existing file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.Save(path, config.Defaults()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configSetDSNCmd = &cobra.Command{
	Use:   "set-dsn <connection-string>",
	Short: "Store the postgres index connection string in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetIndexDSN(args[0]); err != nil {
			return fmt.Errorf("store dsn: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "stored index dsn in keyring")
		return nil
	},
}

var configClearDSNCmd = &cobra.Command{
	Use:   "clear-dsn",
	Short: "Remove the stored postgres connection string",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearIndexDSN(); err != nil {
			return fmt.Errorf("clear dsn: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "removed index dsn from keyring")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd, configSetDSNCmd, configClearDSNCmd)
	rootCmd.AddCommand(configCmd)
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}
