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

// Package discover finds the YAML files a query runs against
package discover

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultInclude matches YAML files at any depth
var DefaultInclude = []string{"**/*.yml", "**/*.yaml"}

// DefaultExclude skips build output, VCS metadata and dependency trees
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/.venv/**",
	"**/target/**",
}

// 🔧 Options holds the glob patterns, matched against slash-separated paths
// relative to the walked root
type Options struct {
	Include []string
	Exclude []string
}

func (o Options) include() []string {
	if len(o.Include) == 0 {
		return DefaultInclude
	}
	return o.Include
}

// 📂 Files walks root and returns the files matching an include pattern and no
// exclude pattern, sorted. Excluded directories are not descended into.
func Files(ctx context.Context, root string, opts Options) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if excludesDir(opts.Exclude, rel) {
				logger.Debug().Str("dir", p).Msg("skipping excluded directory")
				return filepath.SkipDir
			}
			return nil
		}

		if matchAny(opts.Exclude, rel) || !matchAny(opts.include(), rel) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// 🎯 Collect resolves command line paths: files are taken as given, directories
// are walked with Files. The result is sorted and free of duplicates.
func Collect(ctx context.Context, paths []string, opts Options) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := map[string]struct{}{}
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Errorf("checking %s: %w", p, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}
		files, err := Files(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}

	sort.Strings(out)
	return out, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			// bad patterns are rejected by config validation; skip rather than fail the walk
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// excludesDir reports whether everything below dir is excluded, tested with a
// placeholder child so "**/name/**" patterns prune the directory itself
func excludesDir(patterns []string, dir string) bool {
	return matchAny(patterns, path.Join(dir, "_"))
}
