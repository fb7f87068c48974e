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

package search

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/walteh/yamlkey/pkg/keypath"
	"gitlab.com/tozd/go/errors"
)

type cacheEntry struct {
	index  *keypath.FileIndex
	locate keypath.LocateMode
}

// 🗄️ Cache keeps file indexes and reuses one while the file's content hash and
// the locate mode are unchanged. The file is still read on every lookup.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// 🏭 NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Index returns the index of file, building it when the content changed
func (c *Cache) Index(ctx context.Context, file string, opts keypath.Options) (*keypath.FileIndex, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", file, err)
	}
	sum := xxhash.Sum64(content)

	c.mu.Lock()
	entry, ok := c.entries[file]
	c.mu.Unlock()

	if ok && entry.index.Hash == sum && entry.locate == opts.Locate {
		c.hits.Add(1)
		zerolog.Ctx(ctx).Trace().Str("file", file).Msg("index cache hit")
		return entry.index, nil
	}

	c.misses.Add(1)
	idx := keypath.IndexContent(ctx, file, content, opts)

	c.mu.Lock()
	c.entries[file] = cacheEntry{index: idx, locate: opts.Locate}
	c.mu.Unlock()

	return idx, nil
}

// Invalidate drops the entry for file
func (c *Cache) Invalidate(file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, file)
}

// Len returns the number of cached indexes
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the number of hits and misses so far
func (c *Cache) Stats() (hits int64, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
