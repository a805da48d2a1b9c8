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

package rules

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind selects the rewrite behaviour of a rule
type Kind int

const (
	KindSubstitution Kind = iota // pattern -> replacement, every match
	KindDedupeLine               // keep the first matching line, drop later ones
	KindOrphanBlock              // drop the orphaned block after a trigger line
)

// String returns the config spelling of the kind
func (k Kind) String() string {
	switch k {
	case KindSubstitution:
		return "substitution"
	case KindDedupeLine:
		return "dedupe-line"
	case KindOrphanBlock:
		return "orphan-block"
	default:
		return "unknown"
	}
}

// 🔍 ParseKind maps a config value to a Kind. The empty string is a substitution.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substitution", "replace":
		return KindSubstitution, nil
	case "dedupe-line", "dedupe":
		return KindDedupeLine, nil
	case "orphan-block", "orphan":
		return KindOrphanBlock, nil
	default:
		return 0, errors.Errorf("unknown rule kind %q", s)
	}
}

// ✏️ Edit is one concrete change produced by a single rule pass
type Edit struct {
	Offset int    // byte offset into the content the rule was applied to
	Line   int    // 1-indexed line of Offset in that same content
	Before string // matched text (or the dropped line)
	After  string // replacement text, empty for dropped lines
}

// 📏 Rule is the capability shared by every rule variant.
//
// Apply must be a pure function of content: it returns the rewritten content
// and one Edit per change, in ascending offset order.
type Rule interface {
	ID() string
	Kind() Kind
	Apply(content string) (string, []Edit)
}

// validator is implemented by rules that can report a broken internal state,
// for example a zero value that never went through its constructor.
type validator interface {
	validate() error
}

// lineCounter turns ascending byte offsets into 1-indexed line numbers
// without rescanning the content from the start for every match.
type lineCounter struct {
	content string
	offset  int
	line    int
}

func newLineCounter(content string) *lineCounter {
	return &lineCounter{content: content, line: 1}
}

func (c *lineCounter) lineAt(offset int) int {
	if offset < c.offset {
		c.offset, c.line = 0, 1
	}
	c.line += strings.Count(c.content[c.offset:offset], "\n")
	c.offset = offset
	return c.line
}
