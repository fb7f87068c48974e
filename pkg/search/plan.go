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

package search

import (
	"context"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/yamlkey/pkg/match"
	"github.com/walteh/yamlkey/pkg/preview"
	"github.com/walteh/yamlkey/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// 📦 Plan groups the matches to rewrite by file
type Plan struct {
	NewValue string
	Files    map[string][]match.Result // Each list ordered by line, highest first
	Order    []string                  // Files in the order they are processed
	Dropped  []match.Result            // Matches whose value is not a scalar
}

// Len returns the number of matches the plan rewrites
func (p *Plan) Len() int {
	n := 0
	for _, group := range p.Files {
		n += len(group)
	}
	return n
}

// 📊 Outcome is the result of applying a plan
type Outcome struct {
	TotalChanges int
	PerFile      map[string]int
	Errors       []FileError
	Skipped      []rewrite.Diagnostic
}

// 📝 PlanReplacement groups results by file for rewriting to newValue. Matches on
// mappings and sequences are dropped since only scalar lines can be edited.
func (e *Engine) PlanReplacement(results []match.Result, newValue string) *Plan {
	plan := &Plan{
		NewValue: newValue,
		Files:    make(map[string][]match.Result),
	}

	for _, r := range results {
		if !r.Kind.Rewritable() {
			plan.Dropped = append(plan.Dropped, r)
			continue
		}
		plan.Files[r.File] = append(plan.Files[r.File], r)
	}

	for file, group := range plan.Files {
		plan.Files[file] = rewrite.SortDescending(group)
		plan.Order = append(plan.Order, file)
	}
	sort.Strings(plan.Order)

	return plan
}

// ✍️ ApplyReplacement rewrites the files of plan one at a time. A file that fails
// is recorded and the rest still run. Cancellation stops between files and
// returns the outcome so far together with the error.
func (e *Engine) ApplyReplacement(ctx context.Context, plan *Plan) (*Outcome, error) {
	logger := zerolog.Ctx(ctx)

	outcome := &Outcome{PerFile: make(map[string]int)}
	opts := rewrite.Options{Atomic: e.opts.Atomic}

	for _, file := range plan.Order {
		if err := ctx.Err(); err != nil {
			return outcome, errors.Errorf("applying replacement: %w", err)
		}

		changed, skipped, err := rewrite.Replace(ctx, file, plan.Files[file], plan.NewValue, opts)
		outcome.Skipped = append(outcome.Skipped, skipped...)
		if e.opts.Cache != nil {
			e.opts.Cache.Invalidate(file)
		}
		if err != nil {
			logger.Error().Err(err).Str("file", file).Msg("rewrite failed")
			outcome.Errors = append(outcome.Errors, FileError{File: file, Err: err})
			continue
		}
		if changed > 0 {
			outcome.PerFile[file] = changed
			outcome.TotalChanges += changed
		}
	}

	logger.Info().
		Int("changes", outcome.TotalChanges).
		Int("files", len(outcome.PerFile)).
		Int("errors", len(outcome.Errors)).
		Int("skipped", len(outcome.Skipped)).
		Msg("replacement applied")

	return outcome, nil
}

// 👀 PreviewReplacement renders what ApplyReplacement would write, without
// touching any file
func (e *Engine) PreviewReplacement(ctx context.Context, plan *Plan) ([]preview.FileDiff, []FileError) {
	var (
		diffs []preview.FileDiff
		errs  []FileError
	)
	for _, file := range plan.Order {
		before, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, FileError{File: file, Err: errors.Errorf("reading %s: %w", file, err)})
			continue
		}
		after, _, _ := rewrite.Content(ctx, before, plan.Files[file], plan.NewValue)
		if d := preview.Diff(file, before, after); !d.Empty() {
			diffs = append(diffs, d)
		}
	}
	return diffs, errs
}
