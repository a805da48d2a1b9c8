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

// blockState is the scanner state of an OrphanBlock pass
type blockState int

const (
	stateNormal blockState = iota
	stateInOrphanBlock
)

// 🪓 OrphanBlock removes the structurally delimited block left behind after a
// trigger line.
//
// In the normal state a line matching trigger is kept and opens a candidate
// block. The block is the run of following lines matching body, up to and
// including the first one that also matches terminator. Only a run that
// reaches its terminator is dropped. When a non-body line or the end of the
// content comes first, the run is left as is and its lines are evaluated again
// in the normal state, so any of them may itself be a trigger. Cleaned output
// is therefore a fixed point: the trigger is no longer followed by a
// terminated run.
type OrphanBlock struct {
	id         string
	trigger    *regexp.Regexp
	body       *regexp.Regexp // nil means any non-blank line
	terminator *regexp.Regexp
}

var _ Rule = (*OrphanBlock)(nil)

// 🏭 NewOrphanBlock compiles an orphan-block rule. body may be empty.
func NewOrphanBlock(id, trigger, body, terminator string) (*OrphanBlock, error) {
	triggerRe, err := compilePattern(id, trigger, false)
	if err != nil {
		return nil, err
	}
	terminatorRe, err := compilePattern(id, terminator, false)
	if err != nil {
		return nil, err
	}

	var bodyRe *regexp.Regexp
	if body != "" {
		bodyRe, err = regexp.Compile(body)
		if err != nil {
			return nil, errors.WithStack(&InvalidPatternError{RuleID: id, Pattern: body, Err: err})
		}
	}

	return &OrphanBlock{
		id:         id,
		trigger:    triggerRe,
		body:       bodyRe,
		terminator: terminatorRe,
	}, nil
}

func (o *OrphanBlock) ID() string { return o.id }
func (o *OrphanBlock) Kind() Kind { return KindOrphanBlock }

func (o *OrphanBlock) isBody(line string) bool {
	if o.body == nil {
		return strings.TrimSpace(line) != ""
	}
	return o.body.MatchString(line)
}

// Apply implements Rule
func (o *OrphanBlock) Apply(content string) (string, []Edit) {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))

	offsets := make([]int, len(lines))
	for i, offset := 1, 0; i < len(lines); i++ {
		offset += len(lines[i-1]) + 1
		offsets[i] = offset
	}

	var edits []Edit
	state := stateNormal
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if state == stateInOrphanBlock {
			state = stateNormal
			if end, ok := o.blockEnd(lines, i); ok {
				for j := i; j <= end; j++ {
					edits = append(edits, Edit{Offset: offsets[j], Line: j + 1, Before: lines[j]})
				}
				i = end
				continue
			}
		}

		kept = append(kept, line)
		if o.trigger.MatchString(line) {
			state = stateInOrphanBlock
		}
	}

	if len(edits) == 0 {
		return content, nil
	}
	return strings.Join(kept, "\n"), edits
}

// blockEnd returns the index of the terminator closing the body run that
// starts at lines[start]
func (o *OrphanBlock) blockEnd(lines []string, start int) (int, bool) {
	for j := start; j < len(lines); j++ {
		if !o.isBody(lines[j]) {
			return 0, false
		}
		if o.terminator.MatchString(lines[j]) {
			return j, true
		}
	}
	return 0, false
}

func (o *OrphanBlock) validate() error {
	if o.trigger == nil || o.terminator == nil {
		return errors.WithStack(&InvalidPatternError{RuleID: o.id, Err: errors.New("trigger and terminator are required")})
	}
	return nil
}
