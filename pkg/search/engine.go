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
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/yamlkey/pkg/keypath"
	"github.com/walteh/yamlkey/pkg/match"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyQuery is returned for a query that is empty after trimming
var ErrEmptyQuery = errors.Base("empty query")

// 🔧 Options configures an Engine
type Options struct {
	// Locate selects how key lines are found
	Locate keypath.LocateMode
	// Concurrency bounds the files indexed at once, NumCPU when zero
	Concurrency int
	// Atomic writes rewritten files through a temp file and rename
	Atomic bool
	// Cache reuses indexes of unchanged files, nil disables caching
	Cache *Cache
	// Suggestions is the number of similar paths offered when nothing matched
	Suggestions int
}

// ❌ FileError is a failure confined to one file
type FileError struct {
	File string
	Err  error
}

// Message renders the error for the user
func (e FileError) Message() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// 📋 SearchResult holds the matches of one query over a set of files
type SearchResult struct {
	Query          string
	Matches        []match.Result // Exact matches first, then by file
	Errors         []FileError    // Files that could not be read
	FailedSegments int            // Documents skipped because they did not parse
	ParseErrors    []error        // One entry per skipped document
	Files          int            // Files searched
	Suggestions    []string       // Similar paths, only when nothing matched
}

// 🔎 Engine runs key queries and replacements over YAML files
type Engine struct {
	opts Options
}

// 🏭 NewEngine creates an engine
func NewEngine(opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &Engine{opts: opts}
}

func (e *Engine) indexOptions() keypath.Options {
	return keypath.Options{Locate: e.opts.Locate}
}

func (e *Engine) index(ctx context.Context, file string) (*keypath.FileIndex, error) {
	if e.opts.Cache != nil {
		return e.opts.Cache.Index(ctx, file, e.indexOptions())
	}
	return keypath.IndexFile(ctx, file, e.indexOptions())
}

type fileOutcome struct {
	index *keypath.FileIndex
	err   error
}

// 🔍 SearchKey indexes files and returns every key path equal to or containing
// query. Unreadable files are reported in the result, not as an error; the error
// is reserved for an empty query and cancellation.
func (e *Engine) SearchKey(ctx context.Context, files []string, query string) (*SearchResult, error) {
	logger := zerolog.Ctx(ctx)

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	outcomes := make([]fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			idx, err := e.index(gctx, file)
			outcomes[i] = fileOutcome{index: idx, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("searching %d files: %w", len(files), err)
	}

	result := &SearchResult{Query: query, Files: len(files)}
	var paths []string
	for i, out := range outcomes {
		if out.err != nil {
			logger.Warn().Err(out.err).Str("file", files[i]).Msg("skipping unreadable file")
			result.Errors = append(result.Errors, FileError{File: files[i], Err: out.err})
			continue
		}
		result.FailedSegments += out.index.FailedSegments
		result.ParseErrors = append(result.ParseErrors, out.index.ParseErrors...)
		result.Matches = append(result.Matches, match.Match(out.index, query)...)
		paths = append(paths, out.index.Paths()...)
	}
	match.Sort(result.Matches)

	if len(result.Matches) == 0 && e.opts.Suggestions > 0 {
		result.Suggestions = match.Suggest(paths, query, e.opts.Suggestions)
	}

	exact, partial := match.Counts(result.Matches)
	logger.Debug().
		Str("query", query).
		Int("files", len(files)).
		Int("exact", exact).
		Int("partial", partial).
		Int("errors", len(result.Errors)).
		Int("failed_segments", result.FailedSegments).
		Msg("search complete")

	return result, nil
}
