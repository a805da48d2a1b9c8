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

// Package text is the rewrite engine: a pure function from file content and
// an ordered rule set to rewritten content and the list of changes made.
package text

import (
	"fmt"
	"strings"

	"github.com/walteh/rewriterc/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 📝 Change is one match-and-replacement produced while rewriting a file
type Change struct {
	RuleID string
	Line   int    // 1-indexed, in the content as it stood before RuleID's pass
	Before string // matched text
	After  string // replacement, empty when a line was dropped
}

// 📦 Result contains the outcome of rewriting one piece of content
type Result struct {
	// Original is the content before any rule ran
	Original string

	// Content is the content after every rule ran
	Content string

	// Changes lists every change, grouped by rule in rule order and in
	// ascending position within each rule
	Changes []Change

	// WasModified is true iff Content differs from Original
	WasModified bool
}

// 🔄 Rewriter rewrites the content of one file with a fixed rule set
type Rewriter interface {
	Rewrite(path, content string) *Result
	CheckFixedPoint(path, rewritten string) error
}

// Engine binds a rule set to the Rewriter interface. Each file only sees the
// rules whose scope matches its path.
type Engine struct {
	set *rules.RuleSet
}

// 🏭 NewEngine creates an Engine for the given rule set
func NewEngine(set *rules.RuleSet) *Engine {
	return &Engine{set: set}
}

// Rewrite implements Rewriter
func (e *Engine) Rewrite(path, content string) *Result {
	return Apply(content, e.set.ForFile(path))
}

// CheckFixedPoint implements Rewriter
func (e *Engine) CheckFixedPoint(path, rewritten string) error {
	return CheckFixedPoint(rewritten, e.set.ForFile(path))
}

// RuleSet returns the rules the engine applies
func (e *Engine) RuleSet() *rules.RuleSet {
	return e.set
}

// ⚙️ Apply runs every rule over content, in order. Each rule sees the output
// of the rules before it; the matches of a single rule are all found first
// and then replaced in one pass.
func Apply(content string, set *rules.RuleSet) *Result {
	result := &Result{
		Original: content,
		Content:  content,
	}
	if set == nil {
		return result
	}

	current := content
	for _, rule := range set.Rules() {
		next, edits := rule.Apply(current)
		for _, edit := range edits {
			result.Changes = append(result.Changes, Change{
				RuleID: rule.ID(),
				Line:   edit.Line,
				Before: edit.Before,
				After:  edit.After,
			})
		}
		current = next
	}

	result.Content = current
	result.WasModified = current != content
	return result
}

// ♻️ NotIdempotentError reports a rule set whose output still matches its own
// rules
type NotIdempotentError struct {
	RuleIDs []string // rules that changed the already rewritten content, in rule order
	Changes int      // number of changes the second pass made
}

func (e *NotIdempotentError) Error() string {
	return fmt.Sprintf("rule set is not idempotent: %d further change(s) from %s", e.Changes, strings.Join(e.RuleIDs, ", "))
}

// 🔁 CheckFixedPoint applies set to already rewritten content and fails with
// a *NotIdempotentError if that produces any further change
func CheckFixedPoint(rewritten string, set *rules.RuleSet) error {
	again := Apply(rewritten, set)
	if len(again.Changes) == 0 {
		return nil
	}

	var ids []string
	seen := map[string]bool{}
	for _, c := range again.Changes {
		if !seen[c.RuleID] {
			seen[c.RuleID] = true
			ids = append(ids, c.RuleID)
		}
	}
	return errors.WithStack(&NotIdempotentError{RuleIDs: ids, Changes: len(again.Changes)})
}
