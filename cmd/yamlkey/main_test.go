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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/yamlkey/cmd/yamlkey/commands"
)

const appYAML = `server:
  port: 8080 # public
  host: "localhost"
database:
  port: 5432
`

func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(appYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("port: 1\n"), 0644))

	cfgPath := filepath.Join(dir, "yamlkey.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("include:\n  - \"**/app.yaml\"\nlog_level: warn\n"), 0644))
	return dir, cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	buf := &bytes.Buffer{}
	app := newApp(buf)
	app.SetArgs(args)
	app.SetOut(buf)
	app.SetErr(buf)

	logger := zerolog.New(zerolog.TestWriter{T: t})
	err := app.ExecuteContext(logger.WithContext(ctx))
	return buf.String(), err
}

func TestSearchCommand(t *testing.T) {
	dir, cfg := setupWorkspace(t)

	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{
			name:     "partial",
			args:     []string{"search", "port", dir, "-c", cfg},
			contains: []string{"server.port", "database.port", "0 exact, 2 partial matches in 1 files"},
		},
		{
			name:        "exact_only",
			args:        []string{"search", "server.port", dir, "-c", cfg, "--exact"},
			contains:    []string{"server.port", "8080", "1 exact, 0 partial"},
			notContains: []string{"database.port"},
		},
		{
			name:     "suggestions",
			args:     []string{"search", "server.prot", dir, "-c", cfg},
			contains: []string{"did you mean", "server.port"},
		},
		{
			name:     "node_positions",
			args:     []string{"search", "database.port", dir, "-c", cfg},
			contains: []string{"app.yaml:5:3"},
		},
		{
			name:        "scan_mode_first_line_wins",
			args:        []string{"search", "database.port", dir, "-c", cfg, "--scan"},
			contains:    []string{"app.yaml:2:3"},
			notContains: []string{"app.yaml:5:3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestSearchCommandEmptyQuery(t *testing.T) {
	dir, cfg := setupWorkspace(t)
	_, err := run(t, "search", " ", dir, "-c", cfg)
	require.Error(t, err)
}

func TestSearchCommandParseErrors(t *testing.T) {
	dir, cfg := setupWorkspace(t)
	require.NoError(t, os.WriteFile(cfg, []byte("include:\n  - \"**/*.yaml\"\nlog_level: warn\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("ok:\n  port: 1\n---\nbad: [unclosed\n"), 0644))

	out, err := run(t, "search", "port", filepath.Join(dir, "app.yaml"), filepath.Join(dir, "broken.yaml"), "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped: parsing document 2 of")
	assert.Contains(t, out, "broken.yaml")
	assert.Contains(t, out, "ok.port")
}

func TestReplaceCommand(t *testing.T) {
	dir, cfg := setupWorkspace(t)
	app := filepath.Join(dir, "app.yaml")

	out, err := run(t, "replace", "server.port", "9090", dir, "-c", cfg, "--exact", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "-  port: 8080 # public")
	assert.Contains(t, out, "+  port: 9090 # public")
	assert.Contains(t, out, "would change 1 lines in 1 files")

	content, err := os.ReadFile(app)
	require.NoError(t, err)
	assert.Equal(t, appYAML, string(content), "dry run must not write")

	out, err = run(t, "replace", "port", "7000", dir, "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "changed 2 lines in 1 files")

	content, err = os.ReadFile(app)
	require.NoError(t, err)
	assert.Equal(t, `server:
  port: 7000 # public
  host: "localhost"
database:
  port: 7000
`, string(content))
}

func TestReplaceCommandDryRunSeveralFiles(t *testing.T) {
	dir, cfg := setupWorkspace(t)
	require.NoError(t, os.WriteFile(cfg, []byte("include:\n  - \"**/*.yaml\"\nlog_level: warn\n"), 0644))
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("server:\n  port: 1\n"), 0644))

	out, err := run(t, "replace", "server.port", "9090", filepath.Join(dir, "app.yaml"), other, "-c", cfg, "--exact", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+  port: 9090 # public")
	assert.Contains(t, out, "+  port: 9090\n")
	assert.Contains(t, out, "\n\n--- ", "diffs are separated by a blank line")
	assert.Contains(t, out, "would change 2 lines in 2 files")
}

func TestReplaceCommandMappingDropped(t *testing.T) {
	dir, cfg := setupWorkspace(t)

	out, err := run(t, "replace", "server", "x", dir, "-c", cfg, "--exact")
	require.NoError(t, err)
	assert.Contains(t, out, "holds a mapping")
	assert.Contains(t, out, "changed 0 lines in 0 files")
}

func TestReplaceCommandMissingPath(t *testing.T) {
	dir, cfg := setupWorkspace(t)
	_, err := run(t, "replace", "port", "1", filepath.Join(dir, "missing.yaml"), "-c", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collecting files")
	assert.NotErrorIs(t, err, commands.ErrFilesFailed)
}

func TestWatchCommandStops(t *testing.T) {
	dir, cfg := setupWorkspace(t)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, err := runContext(t, ctx, "watch", "server.port", dir, "-c", cfg, "--exact")
	require.NoError(t, err)
	assert.Contains(t, out, "1 exact, 0 partial matches in 1 files")
	assert.Contains(t, out, "watching 1 files")
	assert.Contains(t, out, "✅ stopped watching 1 files")
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "yamlkey.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("locate: sideways\n"), 0644))

	_, err := run(t, "search", "port", dir, "-c", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")

	out, err := run(t, "version", "-c", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "yamlkey "), "got %q", out)
}

func TestBuildInfoString(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "release",
			info: BuildInfo{
				Version:   "v1.2.3",
				Revision:  "abc123def456",
				Committed: "2025-01-01T00:00:00Z",
				Go:        "go1.23.5",
				Platform:  "linux/amd64",
			},
			want: "yamlkey v1.2.3 (abc123d, 2025-01-01T00:00:00Z) go1.23.5 linux/amd64",
		},
		{
			name: "dirty_checkout",
			info: BuildInfo{
				Version:  "dev",
				Revision: "abc123def456",
				Dirty:    true,
				Go:       "go1.23.5",
				Platform: "darwin/arm64",
			},
			want: "yamlkey dev (abc123d-dirty) go1.23.5 darwin/arm64",
		},
		{
			name: "no_vcs",
			info: BuildInfo{Version: "dev", Go: "go1.23.5", Platform: "linux/amd64"},
			want: "yamlkey dev go1.23.5 linux/amd64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := run(t, "version", "--json")
	require.NoError(t, err)

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Contains(t, out, `"platform"`)
}
