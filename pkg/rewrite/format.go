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
	"regexp"
	"strings"
)

var (
	numberPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

	doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
)

// truthy values turn a boolean into true, compared case-insensitively
var truthy = map[string]bool{
	"true": true,
	"yes":  true,
	"1":    true,
}

// 🎨 Format renders newValue in the lexical style of original, the value text
// currently on the line:
//   - 'single' stays single-quoted, embedded ' doubled
//   - "double" stays double-quoted, embedded " and \ escaped
//   - true/false stays boolean: true, yes and 1 mean true, anything else false
//   - numbers stay bare when the new value is a number too
//
// Anything else is written bare unless it holds a space, colon, # or newline,
// in which case it is single-quoted.
func Format(original, newValue string) string {
	orig := strings.TrimSpace(original)

	switch {
	case isQuoted(orig, '\''):
		return singleQuote(newValue)
	case isQuoted(orig, '"'):
		return `"` + doubleQuoteEscaper.Replace(newValue) + `"`
	case isBool(orig):
		return boolLike(orig, truthy[strings.ToLower(strings.TrimSpace(newValue))])
	case isNumber(orig) && isNumber(newValue):
		return strings.TrimSpace(newValue)
	case strings.ContainsAny(newValue, " :#\n"):
		return singleQuote(newValue)
	}
	return newValue
}

func isQuoted(s string, quote byte) bool {
	return len(s) >= 2 && s[0] == quote && s[len(s)-1] == quote
}

func isBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func isNumber(s string) bool {
	return numberPattern.MatchString(strings.TrimSpace(s))
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// boolLike spells value with the casing of original (true, True or TRUE)
func boolLike(original string, value bool) string {
	out := "false"
	if value {
		out = "true"
	}
	switch {
	case original == strings.ToUpper(original):
		return strings.ToUpper(out)
	case original[0] >= 'A' && original[0] <= 'Z':
		return strings.ToUpper(out[:1]) + out[1:]
	}
	return out
}
