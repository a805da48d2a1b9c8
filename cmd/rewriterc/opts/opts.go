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

package opts

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// Output formats accepted by --format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile      string
	Debug           bool
	Verbose         bool
	Format          string
	DryRun          bool
	Extensions      []string
	Exclude         []string
	Presets         []string
	Rules           []string
	Workers         int
	Diff            bool
	Backup          bool
	Gitignore       bool
	FollowSymlinks  bool
	CheckIdempotent bool
	NoVerify        bool

	// Changed reports whether a flag was set on the command line. Values of
	// unchanged flags never override the config file.
	Changed func(name string) bool
}

func (o *RootOpts) changed(name string) bool {
	return o.Changed != nil && o.Changed(name)
}

// ValidateFormat checks --format
func (o *RootOpts) ValidateFormat() error {
	switch o.Format {
	case "", FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return errors.Errorf("unknown format %q (want %s, %s or %s)", o.Format, FormatText, FormatJSON, FormatYAML)
	}
}

// 🔧 LoadConfig reads the config file and applies the flags on top of it.
// Without --config the default file is used when it exists; roots given as
// arguments replace the configured ones.
func (o *RootOpts) LoadConfig(ctx context.Context, roots []string) (*config.Config, error) {
	logger := zerolog.Ctx(ctx)

	if err := o.ValidateFormat(); err != nil {
		return nil, err
	}

	path := o.ConfigFile
	if path == "" {
		path = config.DefaultFile
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
	case o.changed("config"):
		return nil, errors.Errorf("loading config: %w", statErr)
	default:
		logger.Debug().Str("path", path).Msg("no config file, using flags only")
		path = ""
	}

	cfg, err := config.Load(ctx, path, func(cfg *config.Config) error {
		return o.apply(cfg, roots)
	})
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (o *RootOpts) apply(cfg *config.Config, roots []string) error {
	if len(roots) > 0 {
		cfg.Roots = append([]string(nil), roots...)
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{"."}
	}

	if len(o.Extensions) > 0 {
		cfg.Extensions = append([]string(nil), o.Extensions...)
	}
	cfg.Exclude = append(cfg.Exclude, o.Exclude...)
	for _, name := range o.Presets {
		if !slices.Contains(cfg.Presets, name) {
			cfg.Presets = append(cfg.Presets, name)
		}
	}

	for i, flag := range o.Rules {
		spec, err := ParseRuleFlag(flag, i+1)
		if err != nil {
			return err
		}
		cfg.Rules = append(cfg.Rules, spec)
	}

	if o.changed("workers") {
		cfg.Workers = o.Workers
	}
	if o.changed("backup") {
		cfg.Backup = o.Backup
	}
	if o.changed("gitignore") {
		cfg.Gitignore = o.Gitignore
	}
	if o.changed("follow-symlinks") {
		cfg.FollowSymlinks = o.FollowSymlinks
	}
	if o.changed("check-idempotent") {
		cfg.CheckIdempotent = o.CheckIdempotent
	}
	if o.NoVerify {
		cfg.Verify = nil
	}
	return nil
}

// 📝 ParseRuleFlag parses a --rule value of the form id=old=>new or
// old=>new. The rule is a literal substitution; rules without an id are
// named cli-<n>.
func ParseRuleFlag(value string, n int) (rules.Spec, error) {
	left, after, ok := strings.Cut(value, "=>")
	if !ok {
		return rules.Spec{}, errors.Errorf("invalid --rule %q: want id=old=>new", value)
	}

	id, before, hasID := strings.Cut(left, "=")
	if !hasID {
		id, before = fmt.Sprintf("cli-%d", n), left
	}
	if id == "" || before == "" {
		return rules.Spec{}, errors.Errorf("invalid --rule %q: id and old text must not be empty", value)
	}

	return rules.Spec{
		ID:          id,
		Pattern:     before,
		Replacement: after,
		Literal:     true,
	}, nil
}
