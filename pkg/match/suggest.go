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

package match

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// SuggestThreshold is the lowest similarity a suggestion may have
const SuggestThreshold = 0.8

type scored struct {
	path  string
	score float32
}

// 💡 Suggest returns up to n known paths that look like query, best first.
// A path scores the better of its whole-path similarity and the similarity of
// its last segment to the query's last segment.
func Suggest(paths []string, query string, n int) []string {
	if n <= 0 || query == "" {
		return nil
	}

	seen := make(map[string]struct{}, len(paths))
	var candidates []scored
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}

		score := similarity(path, query)
		if leaf := similarity(lastSegment(path), lastSegment(query)); leaf > score {
			score = leaf
		}
		if score < SuggestThreshold {
			continue
		}
		candidates = append(candidates, scored{path: path, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].path < candidates[j].path
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.path)
	}
	return out
}

func similarity(a, b string) float32 {
	score, err := edlib.StringsSimilarity(strings.ToLower(a), strings.ToLower(b), edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return score
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
