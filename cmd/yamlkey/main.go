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
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/yamlkey/cmd/yamlkey/commands"
	"github.com/walteh/yamlkey/cmd/yamlkey/opts"
	"github.com/walteh/yamlkey/pkg/log"
)

// newApp wires the root command and its subcommands
func newApp(console io.Writer) *cobra.Command {
	ro := &opts.RootOpts{}

	rootCmd := newRootCmd(ro, console)
	rootCmd.AddCommand(
		commands.NewSearchCmd(ro),
		commands.NewReplaceCmd(ro),
		commands.NewWatchCmd(ro),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := setupLogging(zerolog.InfoLevel)
	ctx = logger.WithContext(ctx)

	if err := newApp(os.Stdout).ExecuteContext(ctx); err != nil {
		log.New(os.Stderr, zerolog.InfoLevel).Errorf("command failed: %v", err)
		cancel()
		os.Exit(1)
	}
}
