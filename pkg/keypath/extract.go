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
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔎 LocateMode selects how a key's source position is found
type LocateMode int

const (
	// LocateNode takes positions from the parser's key nodes
	LocateNode LocateMode = iota
	// LocateScan searches the document lines for the first "key:" occurrence
	LocateScan
)

// String returns a string representation of LocateMode
func (m LocateMode) String() string {
	if m == LocateScan {
		return "scan"
	}
	return "node"
}

// ParseLocateMode parses "node" or "scan"; the empty string means node
func ParseLocateMode(s string) (LocateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "node":
		return LocateNode, nil
	case "scan":
		return LocateScan, nil
	}
	return LocateNode, errors.Errorf("unknown locate mode %q", s)
}

// 🌳 Extract walks the mappings of one parsed document and returns a record for
// every key, in document order. Sequences and scalars are leaves; an index into a
// sequence never becomes part of a path. lines is the document's own text and is
// handed unchanged to every nested lookup.
func Extract(doc *yaml.Node, lines []string, mode LocateMode) []Record {
	root := doc
	if root != nil && root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		root = root.Content[0]
	}

	var records []Record
	walk(root, "", lines, mode, &records)
	return records
}

func walk(node *yaml.Node, prefix string, lines []string, mode LocateMode, out *[]Record) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		key := keyNode.Value
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		line, column := locate(keyNode, lines, mode)

		rec := Record{
			Path:   path,
			Key:    key,
			Line:   line,
			Column: column,
			Kind:   kindOf(valueNode),
			Value:  decodeValue(valueNode),
		}
		if valueNode.Kind == yaml.ScalarNode {
			rec.Raw = valueNode.Value
		}
		*out = append(*out, rec)

		if valueNode.Kind == yaml.MappingNode {
			walk(valueNode, path, lines, mode, out)
		}
	}
}

func locate(keyNode *yaml.Node, lines []string, mode LocateMode) (int, int) {
	if mode == LocateNode && keyNode.Line > 0 {
		column := keyNode.Column
		if keyNode.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
			column++
		}
		return keyNode.Line, column
	}
	return ScanKey(lines, keyNode.Value)
}

// ScanKey returns the 1-based line and column of the first line that starts with
// optional whitespace, key, optional whitespace and a colon. The first hit wins,
// so an earlier key with the same name shadows later ones.
func ScanKey(lines []string, key string) (int, int) {
	re := regexp.MustCompile(`^(\s*)` + regexp.QuoteMeta(key) + `\s*:`)
	for i, line := range lines {
		if m := re.FindStringSubmatchIndex(line); m != nil {
			return i + 1, m[3] + 1
		}
	}
	return Unresolved, Unresolved
}
