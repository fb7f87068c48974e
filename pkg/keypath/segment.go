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

package keypath

import (
	"strings"
)

// DocumentSeparator is the line that divides documents in a YAML stream
const DocumentSeparator = "---"

// 📄 Segment is one document of a multi-document file
type Segment struct {
	Lines     []string // Document lines without line terminators
	StartLine int      // 0-based index of the document's first line in the file
}

// Text returns the document text joined with "\n"
func (s Segment) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Blank reports whether the document holds only whitespace
func (s Segment) Blank() bool {
	for _, line := range s.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// SplitLines splits text on "\n" and drops a trailing "\r" from each line
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ✂️ Split divides text into documents at lines that are exactly "---" once
// trimmed. Blank documents are kept so offsets stay correct; the document after
// segment i starts at StartLine(i) + len(Lines(i)) + 1.
func Split(text string) []Segment {
	var (
		segments []Segment
		current  []string
		start    int
	)

	for i, line := range SplitLines(text) {
		if strings.TrimSpace(line) == DocumentSeparator {
			segments = append(segments, Segment{Lines: current, StartLine: start})
			current = nil
			start = i + 1
			continue
		}
		current = append(current, line)
	}

	return append(segments, Segment{Lines: current, StartLine: start})
}
