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
	"gopkg.in/yaml.v3"
)

// Unresolved marks a line or column that could not be found in the source text
const Unresolved = -1

// 🏷️ Kind classifies the value stored under a key
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindMapping
	KindSequence
	KindAlias
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindAlias:
		return "alias"
	default:
		return "null"
	}
}

// Rewritable reports whether a value of this kind can be replaced on a single line
func (k Kind) Rewritable() bool {
	return k == KindScalar || k == KindNull
}

// 📍 Record is one key path found in a document
type Record struct {
	Path   string // Dot-joined key segments
	Key    string // Final segment of Path
	Line   int    // 1-based line, Unresolved if not found
	Column int    // 1-based column of the key's first character, Unresolved if not found
	Kind   Kind   // Shape of the value
	Value  any    // Decoded value
	Raw    string // Scalar text as the parser read it, empty for collections
}

// Resolved reports whether the record carries a source position
func (r Record) Resolved() bool {
	return r.Line != Unresolved && r.Column != Unresolved
}

func kindOf(node *yaml.Node) Kind {
	if node == nil {
		return KindNull
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return KindNull
		}
		return kindOf(node.Content[0])
	case yaml.MappingNode:
		return KindMapping
	case yaml.SequenceNode:
		return KindSequence
	case yaml.AliasNode:
		return KindAlias
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return KindNull
		}
		return KindScalar
	}
	return KindNull
}

// decodeValue turns a value node into plain Go data, falling back to the raw
// scalar text when the node cannot be decoded (unknown tags and the like)
func decodeValue(node *yaml.Node) any {
	if node == nil {
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		if node.Kind == yaml.ScalarNode {
			return node.Value
		}
		return nil
	}
	return v
}
