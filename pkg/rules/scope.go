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
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Scope limits a rule to some files. The zero Scope matches every file.
type Scope struct {
	Extensions []string // case-insensitive, with or without the leading dot
	Exclude    []string // doublestar globs, matched against the path and its base name
}

// IsZero reports whether the scope matches every file
func (s Scope) IsZero() bool {
	return len(s.Extensions) == 0 && len(s.Exclude) == 0
}

func (s Scope) validate(id string) error {
	for _, pattern := range s.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.WithStack(&InvalidPatternError{RuleID: id, Pattern: pattern, Err: errors.New("invalid exclude glob")})
		}
	}
	return nil
}

// 🔍 Matches reports whether a rule with this scope applies to path
func (s Scope) Matches(path string) bool {
	if len(s.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		found := false
		for _, want := range s.Extensions {
			want = strings.ToLower(strings.TrimSpace(want))
			if !strings.HasPrefix(want, ".") {
				want = "." + want
			}
			if ext == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	slashed := strings.TrimPrefix(filepath.ToSlash(path), "/")
	base := filepath.Base(path)
	for _, pattern := range s.Exclude {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return false
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return false
		}
	}
	return true
}
