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

package opts

import (
	"context"

	"github.com/walteh/yamlkey/pkg/config"
	"github.com/walteh/yamlkey/pkg/discover"
	"github.com/walteh/yamlkey/pkg/search"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config *config.Config
	Engine *search.Engine
}

// 🏭 New builds the engine for cfg
func New(cfg *config.Config) *RootOpts {
	return &RootOpts{
		Config: cfg,
		Engine: search.NewEngine(search.Options{
			Locate:      cfg.LocateMode(),
			Concurrency: cfg.Concurrency,
			Atomic:      cfg.Atomic(),
			Cache:       search.NewCache(),
			Suggestions: cfg.Suggestions,
		}),
	}
}

// Files resolves command line paths to the YAML files to work on
func (o *RootOpts) Files(ctx context.Context, paths []string) ([]string, error) {
	return discover.Collect(ctx, paths, discover.Options{
		Include: o.Config.Include,
		Exclude: o.Config.Exclude,
	})
}
