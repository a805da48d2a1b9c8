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
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🧹 DedupeLine keeps the first line matching a pattern and drops every later
// matching line in the same file
type DedupeLine struct {
	id      string
	pattern string
	re      *regexp.Regexp
}

var _ Rule = (*DedupeLine)(nil)

// 🏭 NewDedupeLine compiles a dedupe rule. A literal pattern matches any line
// that contains it.
func NewDedupeLine(id, pattern string, literal bool) (*DedupeLine, error) {
	re, err := compilePattern(id, pattern, literal)
	if err != nil {
		return nil, err
	}
	return &DedupeLine{id: id, pattern: pattern, re: re}, nil
}

func (d *DedupeLine) ID() string      { return d.id }
func (d *DedupeLine) Kind() Kind      { return KindDedupeLine }
func (d *DedupeLine) Pattern() string { return d.pattern }

// Apply implements Rule
func (d *DedupeLine) Apply(content string) (string, []Edit) {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))

	var (
		edits  []Edit
		seen   bool
		offset int
	)
	for i, line := range lines {
		start := offset
		offset += len(line) + 1

		if !d.re.MatchString(line) {
			kept = append(kept, line)
			continue
		}
		if !seen {
			seen = true
			kept = append(kept, line)
			continue
		}
		edits = append(edits, Edit{Offset: start, Line: i + 1, Before: line})
	}

	if len(edits) == 0 {
		return content, nil
	}
	return strings.Join(kept, "\n"), edits
}

func (d *DedupeLine) validate() error {
	if d.re == nil {
		return errors.WithStack(&InvalidPatternError{RuleID: d.id, Pattern: d.pattern, Err: errors.New("pattern was never compiled")})
	}
	return nil
}
