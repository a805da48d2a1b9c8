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

// 🔄 Substitution replaces every non-overlapping match of a pattern
type Substitution struct {
	id          string
	pattern     string
	re          *regexp.Regexp
	replacement string
	literal     bool
}

var _ Rule = (*Substitution)(nil)

// 🏭 NewSubstitution compiles a substitution rule.
//
// A literal rule matches pattern verbatim and inserts replacement verbatim.
// Otherwise pattern is an RE2 expression and replacement may use $1, ${1}
// or ${name} to reference capture groups.
func NewSubstitution(id, pattern, replacement string, literal bool) (*Substitution, error) {
	re, err := compilePattern(id, pattern, literal)
	if err != nil {
		return nil, err
	}
	return &Substitution{
		id:          id,
		pattern:     pattern,
		re:          re,
		replacement: replacement,
		literal:     literal,
	}, nil
}

func (s *Substitution) ID() string          { return s.id }
func (s *Substitution) Kind() Kind          { return KindSubstitution }
func (s *Substitution) Pattern() string     { return s.pattern }
func (s *Substitution) Replacement() string { return s.replacement }
func (s *Substitution) Literal() bool       { return s.literal }

// Apply implements Rule. Matches whose expansion equals the matched text are
// left out of the edit list since they change nothing.
func (s *Substitution) Apply(content string) (string, []Edit) {
	matches := s.re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	var (
		buf   strings.Builder
		edits []Edit
		last  int
		lines = newLineCounter(content)
	)
	buf.Grow(len(content))

	for _, m := range matches {
		before := content[m[0]:m[1]]
		after := s.replacement
		if !s.literal {
			after = string(s.re.ExpandString(nil, s.replacement, content, m))
		}

		buf.WriteString(content[last:m[0]])
		buf.WriteString(after)
		last = m[1]

		if before == after {
			continue
		}
		edits = append(edits, Edit{
			Offset: m[0],
			Line:   lines.lineAt(m[0]),
			Before: before,
			After:  after,
		})
	}
	buf.WriteString(content[last:])

	if len(edits) == 0 {
		return content, nil
	}
	return buf.String(), edits
}

func (s *Substitution) validate() error {
	if s.re == nil {
		return errors.WithStack(&InvalidPatternError{RuleID: s.id, Pattern: s.pattern, Err: errors.New("pattern was never compiled")})
	}
	return nil
}

// compilePattern turns a rule pattern into a regexp, quoting literals. A
// pattern that matches the empty string is rejected: it would match between
// every pair of characters and no rule set using it could reach a fixed point.
func compilePattern(id, pattern string, literal bool) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, errors.WithStack(&InvalidPatternError{RuleID: id, Pattern: pattern, Err: errors.New("pattern is empty")})
	}

	expr := pattern
	if literal {
		expr = regexp.QuoteMeta(pattern)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.WithStack(&InvalidPatternError{RuleID: id, Pattern: pattern, Err: err})
	}
	if re.MatchString("") {
		return nil, errors.WithStack(&InvalidPatternError{RuleID: id, Pattern: pattern, Err: errors.New("pattern matches the empty string")})
	}
	return re, nil
}
