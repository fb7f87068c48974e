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

package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/yamlkey/cmd/yamlkey/opts"
	"github.com/walteh/yamlkey/pkg/log"
	"github.com/walteh/yamlkey/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd creates a new watch command
func NewWatchCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		exact    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <query> [paths...]",
		Short: "Re-run a search whenever the searched files change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "watch").Logger().WithContext(cmd.Context())
			query := args[0]
			console := log.FromContext(ctx)

			files, err := opts.Files(ctx, args[1:])
			if err != nil {
				return errors.Errorf("collecting files: %w", err)
			}
			if len(files) == 0 {
				return errors.Errorf("no files to watch")
			}

			if _, err := runSearch(ctx, opts, files, query, exact); err != nil {
				return err
			}

			w, err := watch.New(files, debounce)
			if err != nil {
				return errors.Errorf("starting watcher: %w", err)
			}
			defer w.Close()

			console.Infof("watching %d files, interrupt to stop", len(files))

			err = w.Run(ctx, func(ctx context.Context, changed []string) {
				console.Header("changed: " + strings.Join(changed, ", "))
				if _, err := runSearch(ctx, opts, files, query, exact); err != nil {
					console.Error(err.Error())
				}
			})
			if err != nil {
				return errors.Errorf("watching: %w", err)
			}
			console.LogNewline()
			console.Success(fmt.Sprintf("stopped watching %d files", len(files)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "only report keys whose path equals the query")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-running")

	return cmd
}
