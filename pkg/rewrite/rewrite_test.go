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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/yamlkey/pkg/keypath"
	"github.com/walteh/yamlkey/pkg/match"
	"gitlab.com/tozd/go/errors"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing fixture")
	return path
}

func find(t *testing.T, ctx context.Context, file, query string) []match.Result {
	t.Helper()
	idx, err := keypath.IndexFile(ctx, file, keypath.Options{})
	require.NoError(t, err, "indexing %s", file)
	return match.Filter(match.Match(idx, query), true)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		original string
		newValue string
		want     string
	}{
		{"single_quoted", "'localhost'", "prod-db", "'prod-db'"},
		{"single_quoted_embedded_quote", "'x'", "it's", "'it''s'"},
		{"double_quoted", `"x"`, `say "hi"`, `"say \"hi\""`},
		{"double_quoted_backslash", `"x"`, `C:\dir`, `"C:\\dir"`},
		{"bool_no", "true", "no", "false"},
		{"bool_yes_upper", "true", "YES", "true"},
		{"bool_one", "false", "1", "true"},
		{"bool_other_word", "true", "enabled", "false"},
		{"bool_title_case", "True", "no", "False"},
		{"bool_upper_case", "TRUE", "yes", "TRUE"},
		{"number_to_number", "8080", "9090", "9090"},
		{"float_to_int", "1.5", "2", "2"},
		{"number_to_word", "8080", "auto", "auto"},
		{"plain_simple", "plain", "simple", "simple"},
		{"plain_with_space", "plain", "two words", "'two words'"},
		{"plain_with_colon", "plain", "a:b", "'a:b'"},
		{"plain_with_hash", "plain", "x#y", "'x#y'"},
		{"plain_with_space_and_quote", "plain", "it's ok", "'it''s ok'"},
		{"empty_original", "", "value", "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.original, tt.newValue))
		})
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		key      string
		newValue string
		want     string
		wantErr  error
	}{
		{
			name:     "single_quoted_value",
			line:     "  host: 'localhost'",
			key:      "host",
			newValue: "prod-db",
			want:     "  host: 'prod-db'",
		},
		{
			name:     "keeps_spacing_and_comment",
			line:     "port:   8080  # main port",
			key:      "port",
			newValue: "9090",
			want:     "port:   9090  # main port",
		},
		{
			name:     "apostrophe_in_bare_value_before_comment",
			line:     "msg: it's here # note",
			key:      "msg",
			newValue: "done",
			want:     "msg: done # note",
		},
		{
			name:     "hash_inside_quotes_is_not_a_comment",
			line:     "url: 'a # b' # note",
			key:      "url",
			newValue: "c",
			want:     "url: 'c' # note",
		},
		{
			name:     "sequence_item_uses_loose_pattern",
			line:     "  - name: a",
			key:      "name",
			newValue: "b",
			want:     "  - name: b",
		},
		{
			name:     "quoted_key",
			line:     `  "quoted": 1`,
			key:      "quoted",
			newValue: "2",
			want:     `  "quoted": 2`,
		},
		{
			name:     "empty_value_gets_a_space",
			line:     "empty:",
			key:      "empty",
			newValue: "x",
			want:     "empty: x",
		},
		{
			name:     "empty_value_with_comment",
			line:     "empty: # note",
			key:      "empty",
			newValue: "x",
			want:     "empty: x # note",
		},
		{
			name:     "other_key",
			line:     "other: 1",
			key:      "port",
			newValue: "2",
			wantErr:  ErrNoPatternMatch,
		},
		{
			name:     "block_scalar",
			line:     "text: |",
			key:      "text",
			newValue: "x",
			wantErr:  ErrBlockScalar,
		},
		{
			name:     "unclosed_double_quote",
			line:     `  key: "one`,
			key:      "key",
			newValue: "x",
			wantErr:  ErrMultilineScalar,
		},
		{
			name:     "unclosed_single_quote",
			line:     "key: 'it''s",
			key:      "key",
			newValue: "x",
			wantErr:  ErrMultilineScalar,
		},
		{
			name:     "key_prefix_of_other_key",
			line:     "keyboard: 1",
			key:      "key",
			newValue: "2",
			wantErr:  ErrNoPatternMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Line(tt.line, tt.key, tt.newValue)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortDescending(t *testing.T) {
	in := []match.Result{{Line: 2}, {Line: 9}, {Line: 5}}
	out := SortDescending(in)

	lines := []int{}
	for _, r := range out {
		lines = append(lines, r.Line)
	}
	assert.Equal(t, []int{9, 5, 2}, lines)
	assert.Equal(t, 2, in[0].Line, "input should not be reordered")
}

func TestContent(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("batch_in_any_order", func(t *testing.T) {
		content := "a: 1\nname: one\nb: 2\nc: 3\nname: two\nd: 4\ne: 5\nf: 6\nname: three\n"
		matches := []match.Result{
			{Key: "name", Path: "name", Line: 2},
			{Key: "name", Path: "name", Line: 9},
			{Key: "name", Path: "name", Line: 5},
		}

		out, changed, skipped := Content(ctx, []byte(content), matches, "z")
		assert.Equal(t, 3, changed)
		assert.Empty(t, skipped)
		assert.Equal(t, "a: 1\nname: z\nb: 2\nc: 3\nname: z\nd: 4\ne: 5\nf: 6\nname: z\n", string(out))
	})

	t.Run("out_of_range_is_skipped", func(t *testing.T) {
		content := "a: 1\n"
		matches := []match.Result{
			{Key: "a", Path: "a", Line: 42},
			{Key: "a", Path: "a", Line: keypath.Unresolved},
			{Key: "a", Path: "a", Line: 1},
		}

		out, changed, skipped := Content(ctx, []byte(content), matches, "2")
		assert.Equal(t, 1, changed)
		require.Len(t, skipped, 2)
		for _, d := range skipped {
			assert.True(t, errors.Is(d.Err, ErrLineOutOfRange), "got %v", d.Err)
		}
		assert.Equal(t, "a: 2\n", string(out))
	})

	t.Run("unmatched_line_is_skipped", func(t *testing.T) {
		content := "a: 1\nb: 2\n"
		out, changed, skipped := Content(ctx, []byte(content), []match.Result{{Key: "a", Line: 2}}, "3")
		assert.Zero(t, changed)
		require.Len(t, skipped, 1)
		assert.True(t, errors.Is(skipped[0].Err, ErrNoPatternMatch))
		assert.Equal(t, content, string(out))
	})

	t.Run("crlf_is_kept", func(t *testing.T) {
		content := "a: 1\r\nb: 'x'\r\n"
		out, changed, _ := Content(ctx, []byte(content), []match.Result{{Key: "b", Line: 2}}, "y")
		assert.Equal(t, 1, changed)
		assert.Equal(t, "a: 1\r\nb: 'y'\r\n", string(out))
	})

	t.Run("multi_line_values_are_skipped", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{name: "quoted_continuation", content: "a:\n  key: \"one\n    two\"\n  next: 1\n"},
			{name: "value_on_next_line", content: "a:\n  key:\n    value\n  next: 1\n"},
			{name: "plain_continuation", content: "a:\n  key: one\n    two\n"},
			{name: "continuation_after_blank_line", content: "a:\n  key: one\n\n    two\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				out, changed, skipped := Content(ctx, []byte(tt.content), []match.Result{{Key: "key", Path: "a.key", Line: 2, Column: 3}}, "new")
				assert.Zero(t, changed)
				require.Len(t, skipped, 1)
				assert.True(t, errors.Is(skipped[0].Err, ErrMultilineScalar), "got %v", skipped[0].Err)
				assert.Equal(t, tt.content, string(out))
			})
		}
	})

	t.Run("single_line_values_next_to_deeper_lines", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			match   match.Result
			want    string
		}{
			{
				name:    "sibling_after_comment",
				content: "a:\n  key: one\n    # note\n  next: 2\n",
				match:   match.Result{Key: "key", Path: "a.key", Line: 2, Column: 3},
				want:    "a:\n  key: new\n    # note\n  next: 2\n",
			},
			{
				name:    "sequence_item_key",
				content: "- name: a\n  port: 1\n",
				match:   match.Result{Key: "name", Path: "name", Line: 1, Column: 3},
				want:    "- name: new\n  port: 1\n",
			},
			{
				name:    "last_key_before_document_end",
				content: "key: one\n---\n  other: 1\n",
				match:   match.Result{Key: "key", Path: "key", Line: 1, Column: 1},
				want:    "key: new\n---\n  other: 1\n",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				out, changed, skipped := Content(ctx, []byte(tt.content), []match.Result{tt.match}, "new")
				assert.Equal(t, 1, changed)
				assert.Empty(t, skipped)
				assert.Equal(t, tt.want, string(out))
			})
		}
	})

	t.Run("no_trailing_newline_is_kept", func(t *testing.T) {
		out, _, _ := Content(ctx, []byte("a: 1"), []match.Result{{Key: "a", Line: 1}}, "2")
		assert.Equal(t, "a: 2", string(out))
	})
}

func TestReplace(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("round_trip_keeps_quote_style", func(t *testing.T) {
		file := writeFixture(t, "db:\n  host: 'localhost'\n  port: 5432\n")
		matches := find(t, ctx, file, "db.host")
		require.Len(t, matches, 1)

		changed, skipped, err := Replace(ctx, file, matches, "prod-db", Options{Atomic: true})
		require.NoError(t, err)
		assert.Empty(t, skipped)
		assert.Equal(t, 1, changed)

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, "db:\n  host: 'prod-db'\n  port: 5432\n", string(data))

		again := find(t, ctx, file, "db.host")
		require.Len(t, again, 1)
		assert.Equal(t, "prod-db", again[0].Value)
	})

	t.Run("idempotent", func(t *testing.T) {
		original := "a:\n  s: 'single'\n  d: \"dq \\\"x\\\"\"\n  n: 42\n  b: true\n  p: plain # keep\n"
		file := writeFixture(t, original)

		for _, q := range []struct{ path, value string }{
			{"a.s", "single"},
			{"a.d", `dq "x"`},
			{"a.n", "42"},
			{"a.b", "true"},
			{"a.p", "plain"},
		} {
			matches := find(t, ctx, file, q.path)
			require.Len(t, matches, 1, q.path)
			_, _, err := Replace(ctx, file, matches, q.value, Options{})
			require.NoError(t, err)
		}

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, original, string(data))
	})

	t.Run("boolean_coercion", func(t *testing.T) {
		file := writeFixture(t, "enabled: true\n")

		_, _, err := Replace(ctx, file, find(t, ctx, file, "enabled"), "no", Options{})
		require.NoError(t, err)
		data, _ := os.ReadFile(file)
		assert.Equal(t, "enabled: false\n", string(data))

		_, _, err = Replace(ctx, file, find(t, ctx, file, "enabled"), "YES", Options{})
		require.NoError(t, err)
		data, _ = os.ReadFile(file)
		assert.Equal(t, "enabled: true\n", string(data))
	})

	t.Run("multi_document_rewrite", func(t *testing.T) {
		file := writeFixture(t, "server:\n  port: 80\n---\nserver:\n  port: 81\n")
		matches := find(t, ctx, file, "server.port")
		require.Len(t, matches, 2)

		changed, _, err := Replace(ctx, file, matches, "8080", Options{Atomic: true})
		require.NoError(t, err)
		assert.Equal(t, 2, changed)

		data, _ := os.ReadFile(file)
		assert.Equal(t, "server:\n  port: 8080\n---\nserver:\n  port: 8080\n", string(data))
	})

	t.Run("multi_line_values_are_left_alone", func(t *testing.T) {
		for _, content := range []string{
			"a:\n  key: \"one\n    two\"\n  other: x\n",
			"a:\n  key:\n    value\n  other: x\n",
			"a:\n  key: one\n    two\n  other: x\n",
		} {
			file := writeFixture(t, content)
			matches := find(t, ctx, file, "a.key")
			require.Len(t, matches, 1, content)

			changed, skipped, err := Replace(ctx, file, matches, "new", Options{Atomic: true})
			require.NoError(t, err)
			assert.Zero(t, changed, content)
			require.Len(t, skipped, 1, content)
			assert.True(t, errors.Is(skipped[0].Err, ErrMultilineScalar), "got %v", skipped[0].Err)

			data, err := os.ReadFile(file)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))
		}
	})

	t.Run("keeps_file_mode", func(t *testing.T) {
		file := writeFixture(t, "a: 1\n")
		require.NoError(t, os.Chmod(file, 0o600))

		_, _, err := Replace(ctx, file, find(t, ctx, file, "a"), "2", Options{Atomic: true})
		require.NoError(t, err)

		info, err := os.Stat(file)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		entries, err := os.ReadDir(filepath.Dir(file))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file should be gone")
	})

	t.Run("skipped_matches_name_the_file", func(t *testing.T) {
		file := writeFixture(t, "a: 1\n")
		changed, skipped, err := Replace(ctx, file, []match.Result{{Key: "a", Path: "a", Line: 7}}, "2", Options{})
		require.NoError(t, err)
		assert.Zero(t, changed)
		require.Len(t, skipped, 1)
		assert.Equal(t, file, skipped[0].File)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, _, err := Replace(ctx, filepath.Join(t.TempDir(), "nope.yaml"), nil, "x", Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading")
	})
}
