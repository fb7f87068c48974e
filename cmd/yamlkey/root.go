// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/yamlkey/cmd/yamlkey/opts"
	"github.com/walteh/yamlkey/pkg/config"
	"github.com/walteh/yamlkey/pkg/keypath"
	"github.com/walteh/yamlkey/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// rootFlags holds the persistent flags
type rootFlags struct {
	configFile string
	debug      bool
	include    []string
	exclude    []string
	scan       bool
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, f *rootFlags) {
	cmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "config file path (default: first .yamlkey.* in the working directory)")
	cmd.PersistentFlags().BoolVarP(&f.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringSliceVar(&f.include, "include", nil, "glob patterns of files to search, replaces the configured list")
	cmd.PersistentFlags().StringSliceVar(&f.exclude, "exclude", nil, "glob patterns of files to skip, replaces the configured list")
	cmd.PersistentFlags().BoolVar(&f.scan, "scan", false, "locate keys by scanning lines instead of parser positions")
}

// loadConfig loads the config file and applies flag overrides
func loadConfig(ctx context.Context, cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configFile != "" {
		cfg, err = config.Load(ctx, f.configFile)
	} else {
		cfg, err = config.Find(ctx, ".")
	}
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("include") {
		cfg.Include = f.include
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if f.scan {
		cfg.Locate = keypath.LocateScan.String()
	}
	if f.debug {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating flags: %w", err)
	}
	return cfg, nil
}

// setupLogging configures zerolog at level
func setupLogging(level zerolog.Level) zerolog.Logger {
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}

// newRootCmd creates the root command; ro and the console logger in the command
// context are set up before any subcommand runs
func newRootCmd(ro *opts.RootOpts, console io.Writer) *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "yamlkey",
		Short: "Find and rewrite YAML keys by dotted path",
		Long: `yamlkey finds keys in YAML files by their dotted path (like server.port),
reports where each one lives and rewrites values in place, keeping comments,
quoting and indentation as they were.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, cmd, f)
			if err != nil {
				return err
			}

			logger := setupLogging(cfg.Level())
			ctx = logger.WithContext(ctx)
			ctx = log.NewContext(ctx, log.New(console, cfg.Level()))
			cmd.SetContext(ctx)
			logger.Debug().Str("config", cfg.String()).Str("location", cfg.Location()).Msg("configuration loaded")

			*ro = *opts.New(cfg)
			return nil
		},
	}

	addRootFlags(cmd, f)
	return cmd
}
