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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/yamlkey/pkg/keypath"
	"github.com/walteh/yamlkey/pkg/match"
	"github.com/walteh/yamlkey/pkg/preview"
	"github.com/walteh/yamlkey/pkg/rewrite"
)

// 🎨 Display configuration
const (
	entryIndent   = 4  // spaces to indent entries
	locationWidth = 35 // Base width for file:line:col
	pathWidth     = 30 // Width for the key path
)

// 📊 Summary is the tally printed after a replacement
type Summary struct {
	Changes int // Lines rewritten
	Files   int // Files written
	Errors  int // Files that failed
	Skipped int // Matches that could not be applied
	DryRun  bool
}

// 🎯 Logger writes user-facing output to the console and mirrors it to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger; structured logs go to stderr
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// displayValue renders a match's value: scalars as written in the file,
// collections by their kind
func displayValue(r match.Result) string {
	switch r.Kind {
	case keypath.KindScalar:
		return r.Raw
	case keypath.KindNull:
		if r.Raw != "" {
			return r.Raw
		}
		return "null"
	default:
		return "<" + r.Kind.String() + ">"
	}
}

// 📝 formatMatch formats a match for display
func (l *Logger) formatMatch(r match.Result) string {
	symbol, symbolColor := '○', color.FgYellow
	if r.IsExactMatch {
		symbol, symbolColor = '●', color.FgGreen
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", entryIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", locationWidth, r.Location()),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", pathWidth, r.Path)),
		displayValue(r))
}

// 📝 LogMatch prints one match
func (l *Logger) LogMatch(ctx context.Context, r match.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatMatch(r))

	l.zlog.Debug().
		Str("file", r.File).
		Str("path", r.Path).
		Int("line", r.Line).
		Int("column", r.Column).
		Str("kind", r.Kind.String()).
		Bool("exact", r.IsExactMatch).
		Msg("match")
}

// 💡 LogSuggestions prints the paths offered when a query matched nothing
func (l *Logger) LogSuggestions(query string, suggestions []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "no key matching %s, did you mean:\n", color.New(color.Bold).Sprint(query))
	for _, s := range suggestions {
		fmt.Fprintf(l.console, "%*s%s %s\n", entryIndent, "", color.New(color.Faint).Sprint("→"), s)
	}
	l.zlog.Info().Str("query", query).Strs("suggestions", suggestions).Msg("no matches")
}

// 📝 LogFileChange prints the number of lines rewritten in a file
func (l *Logger) LogFileChange(ctx context.Context, file string, changes int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	noun := "changes"
	if changes == 1 {
		noun = "change"
	}
	fmt.Fprintf(l.console, "%*s%s %-*s %s\n",
		entryIndent, "",
		color.New(color.FgBlue).Sprint("⟳"),
		locationWidth, file,
		fmt.Sprintf("%d %s", changes, noun))

	l.zlog.Info().Str("file", file).Int("changes", changes).Msg("file rewritten")
}

// ⏭️ LogSkipped prints a match that could not be applied
func (l *Logger) LogSkipped(ctx context.Context, d rewrite.Diagnostic) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%*s%s %-*s %s\n",
		entryIndent, "",
		color.New(color.FgYellow).Sprint("-"),
		locationWidth, fmt.Sprintf("%s:%d", d.File, d.Line),
		color.New(color.Faint).Sprintf("%s skipped: %v", d.Path, d.Err))

	l.zlog.Warn().Err(d.Err).Str("file", d.File).Str("path", d.Path).Int("line", d.Line).Msg("match skipped")
}

// 🔍 LogDiff prints a rendered diff with added and removed lines colored
func (l *Logger) LogDiff(d preview.FileDiff) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			line = color.New(color.Bold).Sprint(line)
		case strings.HasPrefix(line, "@@"):
			line = color.New(color.FgCyan).Sprint(line)
		case strings.HasPrefix(line, "-"):
			line = color.New(color.FgRed).Sprint(line)
		case strings.HasPrefix(line, "+"):
			line = color.New(color.FgGreen).Sprint(line)
		}
		fmt.Fprintln(l.console, line)
	}
	l.zlog.Debug().Str("file", d.File).Int("hunks", d.Hunks).Msg("diff")
}

// 📊 LogSummary prints the outcome of a replacement
func (l *Logger) LogSummary(s Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	verb := "changed"
	if s.DryRun {
		verb = "would change"
	}
	msg := fmt.Sprintf("%s %d lines in %d files", verb, s.Changes, s.Files)

	printer := pterm.Success.WithWriter(l.console).WithPrefix(pterm.Prefix{Text: "✍️"})
	if s.Errors > 0 {
		printer = pterm.Error.WithWriter(l.console).WithPrefix(pterm.Prefix{Text: "❌"})
	} else if s.Skipped > 0 {
		printer = pterm.Warning.WithWriter(l.console).WithPrefix(pterm.Prefix{Text: "⚠️"})
	}
	printer.Println(fmt.Sprintf("%s (%d failed files, %d skipped matches)", msg, s.Errors, s.Skipped))

	l.zlog.Info().
		Int("changes", s.Changes).
		Int("files", s.Files).
		Int("errors", s.Errors).
		Int("skipped", s.Skipped).
		Bool("dry_run", s.DryRun).
		Msg("replacement summary")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("yamlkey")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
