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

package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/rules"
	"github.com/walteh/rewriterc/pkg/rules/presets"
	"gitlab.com/tozd/go/errors"
)

// DefaultFile is the config file picked up from the working directory
const DefaultFile = ".rewriterc.hcl"

// 🧪 Verify is the command run after a rewrite that modified files
type Verify struct {
	Command string   `json:"command" yaml:"command" hcl:"command"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty" hcl:"args,optional"`
	Dir     string   `json:"dir,omitempty" yaml:"dir,omitempty" hcl:"dir,optional"`
	Env     []string `json:"env,omitempty" yaml:"env,omitempty" hcl:"env,optional"`
}

// 📚 Config is a complete run configuration
type Config struct {
	Roots           []string     `json:"roots" yaml:"roots"`
	Extensions      []string     `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Exclude         []string     `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Presets         []string     `json:"presets,omitempty" yaml:"presets,omitempty"`
	Gitignore       bool         `json:"gitignore,omitempty" yaml:"gitignore,omitempty"`
	FollowSymlinks  bool         `json:"follow_symlinks,omitempty" yaml:"follow_symlinks,omitempty"`
	Workers         int          `json:"workers,omitempty" yaml:"workers,omitempty"`
	Backup          bool         `json:"backup,omitempty" yaml:"backup,omitempty"`
	CheckIdempotent bool         `json:"check_idempotent,omitempty" yaml:"check_idempotent,omitempty"`
	Verify          *Verify      `json:"verify,omitempty" yaml:"verify,omitempty"`
	Rules           []rules.Spec `json:"rules,omitempty" yaml:"rules,omitempty"`

	location string
}

// Overlay adjusts a parsed config before it is validated
type Overlay func(cfg *Config) error

// 🎯 Load reads and resolves the config file at path, applies the overlays in
// order, then validates the result and logs its hash. An empty path starts
// from an empty config.
func Load(ctx context.Context, path string, overlays ...Overlay) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		cfg, err = read(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	for _, overlay := range overlays {
		if err := overlay(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("path", cfg.location).Str("hash", cfg.Hash()).Msg("configuration loaded")
	return cfg, nil
}

// read parses the config file at path and resolves its relative paths
func read(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("reading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, abs, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.location = abs
	cfg.resolvePaths()

	return cfg, nil
}

// Location returns the absolute path the config was loaded from, empty for
// configs built in code
func (cfg *Config) Location() string {
	return cfg.location
}

// Dir returns the directory relative paths resolve against
func (cfg *Config) Dir() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

func (cfg *Config) resolvePaths() {
	dir := cfg.Dir()
	for i, root := range cfg.Roots {
		if !filepath.IsAbs(root) {
			cfg.Roots[i] = filepath.Join(dir, root)
		}
	}
	if cfg.Verify != nil {
		if cfg.Verify.Dir == "" {
			cfg.Verify.Dir = dir
		} else if !filepath.IsAbs(cfg.Verify.Dir) {
			cfg.Verify.Dir = filepath.Join(dir, cfg.Verify.Dir)
		}
	}
}

// 🔍 Validate checks the config is usable: at least one rule or preset,
// known presets, and rules that compile
func (cfg *Config) Validate() error {
	if len(cfg.Rules) == 0 && len(cfg.Presets) == 0 {
		return errors.Errorf("at least one rule or preset is required")
	}

	for _, name := range cfg.Presets {
		if _, ok := presets.Lookup(name); !ok {
			return errors.Errorf("unknown preset %q (available: %s)", name, strings.Join(presets.Names(), ", "))
		}
	}

	if cfg.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", cfg.Workers)
	}

	if cfg.Verify != nil && cfg.Verify.Command == "" {
		return errors.Errorf("verify.command is required")
	}

	if _, err := cfg.RuleSet(); err != nil {
		return err
	}

	return nil
}

// 📋 RuleSpecs returns the rules of every preset, in the order the presets
// are listed, followed by the config's own rules. Preset rules only apply to
// the files their preset selects.
func (cfg *Config) RuleSpecs() []rules.Spec {
	var specs []rules.Spec
	for _, name := range cfg.Presets {
		if p, ok := presets.Lookup(name); ok {
			specs = append(specs, p.Specs()...)
		}
	}
	return append(specs, cfg.Rules...)
}

// RuleSet compiles RuleSpecs
func (cfg *Config) RuleSet() (*rules.RuleSet, error) {
	set, err := rules.Compile(cfg.RuleSpecs())
	if err != nil {
		return nil, errors.Errorf("compiling rules: %w", err)
	}
	return set, nil
}

// EffectiveExtensions is the configured allow-list, or the union of the
// presets' lists when none is configured. Each preset's rules stay limited to
// its own list.
func (cfg *Config) EffectiveExtensions() []string {
	if len(cfg.Extensions) > 0 {
		return cfg.Extensions
	}
	seen := map[string]bool{}
	var exts []string
	for _, name := range cfg.Presets {
		p, _ := presets.Lookup(name)
		for _, ext := range p.Extensions {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

// IgnorePatterns is the configured exclude list. Preset excludes are part of
// the preset rules' scope instead, so they never hide a file from other rules.
func (cfg *Config) IgnorePatterns() []string {
	return append([]string(nil), cfg.Exclude...)
}

// #️⃣ Hash returns a stable sha256 of the effective settings
func (cfg *Config) Hash() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		// a Config only holds strings, bools and ints
		panic(fmt.Sprintf("marshalling config: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d root(s), %d preset(s), %d rule(s)", len(cfg.Roots), len(cfg.Presets), len(cfg.Rules))
}
