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

package rewrite

import (
	"context"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/yamlkey/pkg/match"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNoPatternMatch means no key pattern matched the target line
	ErrNoPatternMatch = errors.Base("no key pattern matched line")
	// ErrLineOutOfRange means the match points outside the file
	ErrLineOutOfRange = errors.Base("line out of range")
	// ErrBlockScalar means the value is a literal or folded block
	ErrBlockScalar = errors.Base("block scalar values cannot be rewritten in place")
	// ErrMultilineScalar means a flow scalar continues on the following lines
	ErrMultilineScalar = errors.Base("multi-line values cannot be rewritten in place")
)

// ⚠️ Diagnostic describes a match that was skipped
type Diagnostic struct {
	File string
	Path string
	Line int
	Err  error
}

// 🔧 Options controls how rewritten files are written
type Options struct {
	// Atomic writes to a temp file next to the target and renames it into place
	Atomic bool
}

// 📝 Replace rewrites the value of every match in file to newValue and writes the
// file once if anything changed. Matches that cannot be applied are returned as
// diagnostics; only read and write failures are errors.
func Replace(ctx context.Context, file string, matches []match.Result, newValue string, opts Options) (int, []Diagnostic, error) {
	logger := zerolog.Ctx(ctx)

	content, err := os.ReadFile(file)
	if err != nil {
		return 0, nil, errors.Errorf("reading %s: %w", file, err)
	}

	out, changed, skipped := Content(ctx, content, matches, newValue)
	for i := range skipped {
		skipped[i].File = file
	}
	if changed == 0 {
		logger.Debug().Str("file", file).Int("skipped", len(skipped)).Msg("nothing to write")
		return 0, skipped, nil
	}

	if err := WriteFile(file, out, opts.Atomic); err != nil {
		return 0, skipped, errors.Errorf("writing %s: %w", file, err)
	}

	logger.Debug().Str("file", file).Int("changed", changed).Int("skipped", len(skipped)).Msg("rewrote file")
	return changed, skipped, nil
}

// ✏️ Content applies the matches to content from the highest line to the lowest
// and returns the new content with the number of lines changed. Line endings are
// kept per line.
func Content(ctx context.Context, content []byte, matches []match.Result, newValue string) ([]byte, int, []Diagnostic) {
	logger := zerolog.Ctx(ctx)

	lines := strings.Split(string(content), "\n")

	var (
		changed int
		skipped []Diagnostic
	)
	for _, m := range SortDescending(matches) {
		skip := func(err error) {
			skipped = append(skipped, Diagnostic{File: m.File, Path: m.Path, Line: m.Line, Err: err})
			logger.Warn().Err(err).Str("file", m.File).Str("path", m.Path).Int("line", m.Line).Msg("skipping match")
		}

		i := m.Line - 1
		if i < 0 || i >= len(lines) {
			skip(errors.Errorf("%w: line %d of %d", ErrLineOutOfRange, m.Line, len(lines)))
			continue
		}

		body, cr := strings.CutSuffix(lines[i], "\r")
		rewritten, err := Line(body, m.Key, newValue)
		if err != nil {
			skip(errors.Errorf("line %d: %w", m.Line, err))
			continue
		}
		if continues(lines, i, m.Column) {
			skip(errors.Errorf("line %d: %w", m.Line, ErrMultilineScalar))
			continue
		}
		if cr {
			rewritten += "\r"
		}
		lines[i] = rewritten
		changed++
	}

	if changed == 0 {
		return content, 0, skipped
	}
	return []byte(strings.Join(lines, "\n")), changed, skipped
}

// SortDescending returns a copy of matches ordered by line, highest first
func SortDescending(matches []match.Result) []match.Result {
	ordered := make([]match.Result, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Line > ordered[j].Line
	})
	return ordered
}

// 🔤 Line replaces the value after "key:" on line, keeping the indentation, the
// key, the colon with its spacing and any trailing comment exactly as they were.
func Line(line, key, newValue string) (string, error) {
	for _, re := range linePatterns(key) {
		m := re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}

		prefix, value := line[:m[3]], line[m[4]:m[5]]
		body, tail := splitComment(value)
		if strings.HasPrefix(body, "|") || strings.HasPrefix(body, ">") {
			return "", ErrBlockScalar
		}
		if body != "" && (body[0] == '\'' || body[0] == '"') {
			if _, closed := closingQuote(body); !closed {
				return "", ErrMultilineScalar
			}
		}

		formatted := Format(body, newValue)
		if strings.HasSuffix(prefix, ":") && formatted != "" {
			prefix += " "
		}
		if body == "" && strings.HasPrefix(tail, "#") {
			formatted += " "
		}
		return prefix + formatted + tail, nil
	}
	return "", ErrNoPatternMatch
}

// linePatterns returns the patterns tried for key, strictest first. Group 1 is the
// part of the line kept verbatim, group 2 the current value text.
func linePatterns(key string) []*regexp.Regexp {
	k := regexp.QuoteMeta(key)
	return []*regexp.Regexp{
		regexp.MustCompile(`^(\s*` + k + `['"]?\s*:\s*)(.*)$`),
		regexp.MustCompile(`^(\s*['"]` + k + `['"]\s*:\s*)(.*)$`),
		regexp.MustCompile(`^(.*?` + k + `['"]?\s*:\s*)(.*)$`),
	}
}

// splitComment separates a value from a trailing comment. The returned tail holds
// the whitespace before the comment and the comment itself, so body+tail == value.
// Quotes only count when the value starts with one; a # starts a comment after
// the closing quote or, for bare values, after whitespace.
func splitComment(value string) (string, string) {
	from := 0
	if value != "" && (value[0] == '\'' || value[0] == '"') {
		end, _ := closingQuote(value)
		from = end + 1
	}

	end := len(value)
	for i := from; i < len(value); i++ {
		if value[i] == '#' && (i == 0 || value[i-1] == ' ' || value[i-1] == '\t') {
			end = i
			break
		}
	}

	body := strings.TrimRight(value[:end], " \t")
	return body, value[len(body):]
}

// closingQuote returns the index of the quote closing value[0] and whether one
// was found; an unclosed quote reports len(value)-1
func closingQuote(value string) (int, bool) {
	quote := value[0]
	for i := 1; i < len(value); i++ {
		switch {
		case quote == '"' && value[i] == '\\':
			i++
		case value[i] == quote && quote == '\'' && i+1 < len(value) && value[i+1] == '\'':
			i++
		case value[i] == quote:
			return i, true
		}
	}
	return len(value) - 1, false
}

// continues reports whether the value of the key on lines[i] runs onto the
// following lines, meaning the next line with content is indented past the key.
// column is the key's 1-based column; when unknown the line's indentation is used.
func continues(lines []string, i, column int) bool {
	indent := column - 1
	if column < 1 {
		indent = indentOf(lines[i])
	}
	for _, next := range lines[i+1:] {
		trimmed := strings.TrimSpace(next)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == "---" || trimmed == "..." {
			return false
		}
		return indentOf(next) > indent
	}
	return false
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
