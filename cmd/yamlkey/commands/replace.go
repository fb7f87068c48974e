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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/yamlkey/cmd/yamlkey/opts"
	"github.com/walteh/yamlkey/pkg/log"
	"github.com/walteh/yamlkey/pkg/match"
	"gitlab.com/tozd/go/errors"
)

// ErrFilesFailed is returned when at least one file could not be rewritten
var ErrFilesFailed = errors.Base("some files failed")

// NewReplaceCmd creates a new replace command
func NewReplaceCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		exact  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "replace <query> <value> [paths...]",
		Short: "Rewrite the value of every matching key",
		Long: `Replace searches like the search command and rewrites the value of every
scalar match to the new value. It will:
1. Keep indentation, quoting style and trailing comments
2. Skip mappings, sequences and block scalars
3. Write each file once, through a temp file and rename
With --dry-run a diff is printed and nothing is written.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "replace").Logger().WithContext(cmd.Context())
			query, value := args[0], args[1]
			console := log.FromContext(ctx)

			files, err := opts.Files(ctx, args[2:])
			if err != nil {
				return errors.Errorf("collecting files: %w", err)
			}

			res, err := opts.Engine.SearchKey(ctx, files, query)
			if err != nil {
				return errors.Errorf("searching for %q: %w", query, err)
			}
			for _, fe := range res.Errors {
				console.Warning(fe.Message())
			}

			matches := match.Filter(res.Matches, exact)
			if len(matches) == 0 {
				if len(res.Suggestions) > 0 && !exact {
					console.LogSuggestions(query, res.Suggestions)
				} else {
					console.Warningf("no key matching %q in %d files", query, res.Files)
				}
				return nil
			}

			plan := opts.Engine.PlanReplacement(matches, value)
			for _, r := range plan.Dropped {
				console.Warningf("%s: %s holds a %s and is left alone", r.Location(), r.Path, r.Kind)
			}

			if dryRun {
				diffs, errs := opts.Engine.PreviewReplacement(ctx, plan)
				summary := log.Summary{DryRun: true, Files: len(diffs), Errors: len(errs)}
				for i, d := range diffs {
					if i > 0 {
						console.LogNewline()
					}
					console.LogDiff(d)
					summary.Changes += d.Lines
				}
				for _, fe := range errs {
					console.Error(fe.Message())
				}
				console.LogSummary(summary)
				if len(errs) > 0 {
					return errors.Errorf("%w: %d", ErrFilesFailed, len(errs))
				}
				return nil
			}

			outcome, err := opts.Engine.ApplyReplacement(ctx, plan)
			if outcome != nil {
				for _, file := range plan.Order {
					if n, ok := outcome.PerFile[file]; ok {
						console.LogFileChange(ctx, file, n)
					}
				}
				for _, d := range outcome.Skipped {
					console.LogSkipped(ctx, d)
				}
				for _, fe := range outcome.Errors {
					console.Error(fe.Message())
				}
				console.LogSummary(log.Summary{
					Changes: outcome.TotalChanges,
					Files:   len(outcome.PerFile),
					Errors:  len(outcome.Errors),
					Skipped: len(outcome.Skipped),
				})
			}
			if err != nil {
				return errors.Errorf("replacing %q: %w", query, err)
			}
			if len(outcome.Errors) > 0 {
				return errors.Errorf("%w: %d", ErrFilesFailed, len(outcome.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "only rewrite keys whose path equals the query")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print a diff instead of writing files")

	return cmd
}
