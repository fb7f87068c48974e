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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/yamlkey/pkg/discover"
	"github.com/walteh/yamlkey/pkg/keypath"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsupportedConfig means no parser accepts the config file name
var ErrUnsupportedConfig = errors.Base("unsupported config format")

// DefaultFiles are the config file names looked up in the working directory, in order
var DefaultFiles = []string{
	".yamlkey.yaml",
	".yamlkey.yml",
	".yamlkey.hcl",
	".yamlkey.json",
	".yamlkey.toml",
}

// DefaultSuggestions is the number of "did you mean" paths shown for an unmatched query
const DefaultSuggestions = 3

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	Include     []string `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	Concurrency int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
	AtomicWrite *bool    `json:"atomic_write,omitempty" yaml:"atomic_write,omitempty" toml:"atomic_write,omitempty"`
	Locate      string   `json:"locate,omitempty" yaml:"locate,omitempty" toml:"locate,omitempty"`
	LogLevel    string   `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	Suggestions int      `json:"suggestions,omitempty" yaml:"suggestions,omitempty" toml:"suggestions,omitempty"`

	location string
}

// 🏭 Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: %s", ErrUnsupportedConfig, path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Find loads the first of DefaultFiles present in dir, or returns Default
func Find(ctx context.Context, dir string) (*Config, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return Load(ctx, path)
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file found, using defaults")
	return Default(), nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if len(cfg.Include) == 0 {
		cfg.Include = append([]string(nil), discover.DefaultInclude...)
	}
	if cfg.Exclude == nil {
		cfg.Exclude = append([]string(nil), discover.DefaultExclude...)
	}
	for _, pattern := range append(append([]string(nil), cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}

	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	if cfg.AtomicWrite == nil {
		atomic := true
		cfg.AtomicWrite = &atomic
	}

	mode, err := keypath.ParseLocateMode(cfg.Locate)
	if err != nil {
		return errors.Errorf("locate: %w", err)
	}
	cfg.Locate = mode.String()

	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return errors.Errorf("log_level: %w", err)
	}

	if cfg.Suggestions < 0 {
		return errors.Errorf("suggestions must not be negative, got %d", cfg.Suggestions)
	}
	if cfg.Suggestions == 0 {
		cfg.Suggestions = DefaultSuggestions
	}

	return nil
}

// Atomic reports whether rewritten files go through a temp file and rename
func (cfg *Config) Atomic() bool {
	return cfg.AtomicWrite == nil || *cfg.AtomicWrite
}

// LocateMode returns the parsed locate setting
func (cfg *Config) LocateMode() keypath.LocateMode {
	mode, _ := keypath.ParseLocateMode(cfg.Locate)
	return mode
}

// Level returns the parsed log level, info when unset or invalid
func (cfg *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// Location returns the file the config was loaded from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("include=%v exclude=%v concurrency=%d atomic=%t locate=%s",
		cfg.Include, cfg.Exclude, cfg.Concurrency, cfg.Atomic(), cfg.Locate)
}
