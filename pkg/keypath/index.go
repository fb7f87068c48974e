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
	"context"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔧 Options controls indexing
type Options struct {
	Locate LocateMode
}

// 📚 FileIndex holds every key path of one file
type FileIndex struct {
	File           string   // Path of the indexed file
	Records        []Record // Records of all documents, file-global line numbers
	Documents      int      // Non-blank documents seen
	FailedSegments int      // Documents that did not parse
	ParseErrors    []error  // One entry per failed document
	Hash           uint64   // xxhash of the indexed content
}

// Paths returns the distinct paths of the index in document order
func (idx *FileIndex) Paths() []string {
	seen := make(map[string]struct{}, len(idx.Records))
	paths := make([]string, 0, len(idx.Records))
	for _, rec := range idx.Records {
		if _, ok := seen[rec.Path]; ok {
			continue
		}
		seen[rec.Path] = struct{}{}
		paths = append(paths, rec.Path)
	}
	return paths
}

// 📖 IndexFile reads path and indexes its content
func IndexFile(ctx context.Context, path string, opts Options) (*FileIndex, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	return IndexContent(ctx, path, content, opts), nil
}

// 🗂️ IndexContent splits content into documents, parses each on its own and
// merges their records with file-global line numbers. A document that fails to
// parse is logged and counted; the others are still indexed.
func IndexContent(ctx context.Context, file string, content []byte, opts Options) *FileIndex {
	logger := zerolog.Ctx(ctx)

	idx := &FileIndex{
		File: file,
		Hash: xxhash.Sum64(content),
	}

	for i, seg := range Split(string(content)) {
		if seg.Blank() {
			continue
		}
		idx.Documents++

		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(seg.Text()), &doc); err != nil {
			idx.FailedSegments++
			idx.ParseErrors = append(idx.ParseErrors, errors.Errorf("parsing document %d of %s: %w", i+1, file, err))
			logger.Warn().
				Err(err).
				Str("file", file).
				Int("document", i+1).
				Int("start_line", seg.StartLine+1).
				Msg("skipping unparsable document")
			continue
		}

		for _, rec := range Extract(&doc, seg.Lines, opts.Locate) {
			if rec.Line != Unresolved {
				rec.Line += seg.StartLine
			}
			idx.Records = append(idx.Records, rec)
		}
	}

	logger.Debug().
		Str("file", file).
		Int("documents", idx.Documents).
		Int("records", len(idx.Records)).
		Int("failed_documents", idx.FailedSegments).
		Msg("indexed file")

	return idx
}
