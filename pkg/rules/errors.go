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

import "fmt"

// ❌ InvalidPatternError reports a rule pattern that cannot be compiled
type InvalidPatternError struct {
	RuleID  string
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("rule %q: invalid pattern %q: %v", e.RuleID, e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}

// ❌ DuplicateRuleIDError reports two rules sharing one id
type DuplicateRuleIDError struct {
	ID     string
	First  int // index of the first rule with ID
	Second int // index of the repeat
}

func (e *DuplicateRuleIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q (rules %d and %d)", e.ID, e.First, e.Second)
}
