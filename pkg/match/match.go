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

// Package match matches dotted queries against key path indexes
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/walteh/yamlkey/pkg/keypath"
)

// 🎯 Result is one indexed key that matched a query
type Result struct {
	File         string       // File the key lives in
	Path         string       // Dotted path of the key
	Key          string       // Final path segment
	Line         int          // 1-based file-global line, keypath.Unresolved if unknown
	Column       int          // 1-based column, keypath.Unresolved if unknown
	Kind         keypath.Kind // Shape of the value
	Value        any          // Decoded value
	Raw          string       // Scalar source text
	IsExactMatch bool         // Path equals the query
}

// Location returns "file:line:column", or just the file when unresolved
func (r Result) Location() string {
	if r.Line == keypath.Unresolved {
		return r.File
	}
	return fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Column)
}

// 🔍 Match returns the records of idx whose path equals query (exact) or contains
// it (partial). Containment is a plain substring test on the dotted string, so
// "abled" matches "server.enabled".
func Match(idx *keypath.FileIndex, query string) []Result {
	var results []Result
	for _, rec := range idx.Records {
		exact := rec.Path == query
		if !exact && !strings.Contains(rec.Path, query) {
			continue
		}
		results = append(results, Result{
			File:         idx.File,
			Path:         rec.Path,
			Key:          rec.Key,
			Line:         rec.Line,
			Column:       rec.Column,
			Kind:         rec.Kind,
			Value:        rec.Value,
			Raw:          rec.Raw,
			IsExactMatch: exact,
		})
	}
	return results
}

// 📊 Sort orders results in place: exact matches first, then by file path.
// Results from the same file keep their extraction order.
func Sort(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.IsExactMatch != b.IsExactMatch {
			return a.IsExactMatch
		}
		return a.File < b.File
	})
}

// Filter returns the exact matches when exactOnly is set, otherwise results unchanged
func Filter(results []Result, exactOnly bool) []Result {
	if !exactOnly {
		return results
	}
	exact := make([]Result, 0, len(results))
	for _, r := range results {
		if r.IsExactMatch {
			exact = append(exact, r)
		}
	}
	return exact
}

// Counts returns the number of exact and partial matches
func Counts(results []Result) (exact int, partial int) {
	for _, r := range results {
		if r.IsExactMatch {
			exact++
		} else {
			partial++
		}
	}
	return exact, partial
}
