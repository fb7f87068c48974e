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

// Package preview renders line diffs of planned rewrites
package preview

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// 🔍 FileDiff is the rendered difference between a file and its rewrite
type FileDiff struct {
	File  string
	Hunks int    // Runs of consecutive changed lines
	Lines int    // Lines removed or replaced
	Text  string // Rendered diff, empty when nothing changed
}

// Empty reports whether the rewrite changes nothing
func (d FileDiff) Empty() bool {
	return d.Hunks == 0
}

// 📝 Diff compares before and after line by line. Each run of changed lines is
// introduced by "@@ -old +new @@" with the 1-based line numbers it starts at.
func Diff(file string, before, after []byte) FileDiff {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		sb      strings.Builder
		hunks   int
		removed int
		oldLine = 1
		newLine = 1
		inHunk  bool
	)

	for _, d := range diffs {
		chunk := splitLines(d.Text)
		if d.Type == diffmatchpatch.DiffEqual {
			oldLine += len(chunk)
			newLine += len(chunk)
			inHunk = false
			continue
		}

		if !inHunk {
			fmt.Fprintf(&sb, "@@ -%d +%d @@\n", oldLine, newLine)
			hunks++
			inHunk = true
		}

		sign := "+"
		if d.Type == diffmatchpatch.DiffDelete {
			sign = "-"
			oldLine += len(chunk)
			removed += len(chunk)
		} else {
			newLine += len(chunk)
		}
		for _, line := range chunk {
			sb.WriteString(sign + line + "\n")
		}
	}

	if hunks == 0 {
		return FileDiff{File: file}
	}
	return FileDiff{
		File:  file,
		Hunks: hunks,
		Lines: removed,
		Text:  fmt.Sprintf("--- %s\n+++ %s\n%s", file, file, sb.String()),
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
