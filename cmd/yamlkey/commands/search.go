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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/yamlkey/cmd/yamlkey/opts"
	"github.com/walteh/yamlkey/pkg/log"
	"github.com/walteh/yamlkey/pkg/match"
	"github.com/walteh/yamlkey/pkg/search"
	"gitlab.com/tozd/go/errors"
)

// NewSearchCmd creates a new search command
func NewSearchCmd(opts *opts.RootOpts) *cobra.Command {
	var exact bool

	cmd := &cobra.Command{
		Use:   "search <query> [paths...]",
		Short: "Find keys whose dotted path equals or contains the query",
		Long: `Search indexes every YAML file under the given paths (the working directory
by default) and prints each key whose dotted path equals the query or contains it.
Exact matches are listed first. When nothing matches, similar paths are suggested.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "search").Logger().WithContext(cmd.Context())

			files, err := opts.Files(ctx, args[1:])
			if err != nil {
				return errors.Errorf("collecting files: %w", err)
			}

			if _, err := runSearch(ctx, opts, files, args[0], exact); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "only report keys whose path equals the query")

	return cmd
}

// runSearch runs a query and prints its matches, returning them for reuse
func runSearch(ctx context.Context, opts *opts.RootOpts, files []string, query string, exact bool) (*search.SearchResult, error) {
	res, err := opts.Engine.SearchKey(ctx, files, query)
	if err != nil {
		return nil, errors.Errorf("searching for %q: %w", query, err)
	}
	res.Matches = match.Filter(res.Matches, exact)
	console := log.FromContext(ctx)

	for _, fe := range res.Errors {
		console.Warning(fe.Message())
	}
	for _, perr := range res.ParseErrors {
		console.Warningf("skipped: %s", perr)
	}

	if len(res.Matches) == 0 {
		if len(res.Suggestions) > 0 {
			console.LogSuggestions(query, res.Suggestions)
		} else {
			console.Warningf("no key matching %q in %d files", query, res.Files)
		}
		return res, nil
	}

	for _, m := range res.Matches {
		console.LogMatch(ctx, m)
	}
	exactCount, partial := match.Counts(res.Matches)
	console.Infof("%d exact, %d partial matches in %d files", exactCount, partial, res.Files)

	return res, nil
}
