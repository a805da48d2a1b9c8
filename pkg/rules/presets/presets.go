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

// Package presets ships ready-made rule sets for migrations that come up
// again and again.
package presets

import (
	"sort"

	"github.com/walteh/rewriterc/pkg/rules"
)

// 📦 Preset is a named, ordered list of rule specs plus the file selection
// it was written for
type Preset struct {
	Name        string
	Description string
	Extensions  []string // suggested allow-list, used when the run sets none
	Exclude     []string // doublestar globs of files the preset must not touch
	Rules       []rules.Spec
}

// 📋 Specs returns the preset's rules limited to its extensions and excludes
func (p Preset) Specs() []rules.Spec {
	specs := make([]rules.Spec, len(p.Rules))
	for i, spec := range p.Rules {
		if len(spec.Extensions) == 0 {
			spec.Extensions = append([]string(nil), p.Extensions...)
		}
		spec.Exclude = append(append([]string(nil), spec.Exclude...), p.Exclude...)
		specs[i] = spec
	}
	return specs
}

var registry = map[string]Preset{}

func register(p Preset) {
	registry[p.Name] = p
}

// 🎯 Lookup returns the preset with the given name
func Lookup(name string) (Preset, bool) {
	p, ok := registry[name]
	return p, ok
}

// Names returns every preset name, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every preset, sorted by name
func All() []Preset {
	out := make([]Preset, 0, len(registry))
	for _, name := range Names() {
		out = append(out, registry[name])
	}
	return out
}
