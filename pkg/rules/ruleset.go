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
	"gitlab.com/tozd/go/errors"
)

// 📝 Spec is the declarative form of a rule, as written in config files and
// presets
type Spec struct {
	ID          string `json:"id" yaml:"id"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Pattern     string `json:"pattern" yaml:"pattern"`                             // substitution/dedupe pattern, orphan-block trigger
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"` // substitution only
	Literal     bool   `json:"literal,omitempty" yaml:"literal,omitempty"`
	Body        string `json:"body,omitempty" yaml:"body,omitempty"`             // orphan-block only
	Terminator  string `json:"terminator,omitempty" yaml:"terminator,omitempty"` // orphan-block only
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Extensions and Exclude limit the rule to some of the collected files
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Exclude    []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Scope returns the files the rule is limited to
func (s Spec) Scope() Scope {
	return Scope{Extensions: s.Extensions, Exclude: s.Exclude}
}

// 🏗️ Build compiles the spec into a Rule
func (s Spec) Build() (Rule, error) {
	kind, err := ParseKind(s.Kind)
	if err != nil {
		return nil, errors.Errorf("rule %q: %w", s.ID, err)
	}

	switch kind {
	case KindDedupeLine:
		return NewDedupeLine(s.ID, s.Pattern, s.Literal)
	case KindOrphanBlock:
		return NewOrphanBlock(s.ID, s.Pattern, s.Body, s.Terminator)
	default:
		return NewSubstitution(s.ID, s.Pattern, s.Replacement, s.Literal)
	}
}

// 📚 RuleSet is an ordered, immutable collection of rules with unique ids.
// It is safe to share between goroutines.
type RuleSet struct {
	rules  []Rule
	scopes []Scope // parallel to rules, nil when no rule is scoped
	index  map[string]int
}

// 🏭 New validates rules and freezes them, in the order given, into a RuleSet
func New(rules ...Rule) (*RuleSet, error) {
	set := &RuleSet{
		rules: append([]Rule(nil), rules...),
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	set.reindex()
	return set, nil
}

func (s *RuleSet) reindex() {
	s.index = make(map[string]int, len(s.rules))
	for i, r := range s.rules {
		s.index[r.ID()] = i
	}
}

// 🔨 Compile builds every spec and returns them as a RuleSet. The first
// pattern that fails to compile aborts with an *InvalidPatternError.
func Compile(specs []Spec) (*RuleSet, error) {
	built := make([]Rule, 0, len(specs))
	scopes := make([]Scope, 0, len(specs))
	scoped := false
	for _, spec := range specs {
		r, err := spec.Build()
		if err != nil {
			return nil, err
		}
		scope := spec.Scope()
		if err := scope.validate(spec.ID); err != nil {
			return nil, err
		}
		scoped = scoped || !scope.IsZero()
		built = append(built, r)
		scopes = append(scopes, scope)
	}

	set, err := New(built...)
	if err != nil {
		return nil, err
	}
	if scoped {
		set.scopes = scopes
	}
	return set, nil
}

// 📂 ForFile returns the rules whose scope matches path, in order. The set
// itself is returned when every rule applies.
func (s *RuleSet) ForFile(path string) *RuleSet {
	if s.scopes == nil {
		return s
	}

	sub := &RuleSet{}
	for i, r := range s.rules {
		if s.scopes[i].Matches(path) {
			sub.rules = append(sub.rules, r)
		}
	}
	if len(sub.rules) == len(s.rules) {
		return s
	}
	sub.reindex()
	return sub
}

// Scope returns the scope of the rule with the given id
func (s *RuleSet) Scope(id string) Scope {
	i, ok := s.index[id]
	if !ok || s.scopes == nil {
		return Scope{}
	}
	return s.scopes[i]
}

// 🔍 Validate checks every rule: ids must be present and unique, and every
// pattern must be compiled
func (s *RuleSet) Validate() error {
	seen := make(map[string]int, len(s.rules))
	for i, r := range s.rules {
		if r == nil {
			return errors.Errorf("rule %d is nil", i)
		}
		id := r.ID()
		if id == "" {
			return errors.Errorf("rule %d: id is required", i)
		}
		if first, ok := seen[id]; ok {
			return errors.WithStack(&DuplicateRuleIDError{ID: id, First: first, Second: i})
		}
		seen[id] = i

		if v, ok := r.(validator); ok {
			if err := v.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rules returns the rules in application order. The slice is a copy.
func (s *RuleSet) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Len returns the number of rules
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// IDs returns the rule ids in application order
func (s *RuleSet) IDs() []string {
	ids := make([]string, len(s.rules))
	for i, r := range s.rules {
		ids[i] = r.ID()
	}
	return ids
}

// Lookup returns the rule with the given id
func (s *RuleSet) Lookup(id string) (Rule, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.rules[i], true
}
