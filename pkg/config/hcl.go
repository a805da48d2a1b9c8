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
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/rewriterc/pkg/rules"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclRule struct {
	ID          string   `hcl:"id,label"`
	Kind        string   `hcl:"kind,optional"`
	Pattern     string   `hcl:"pattern"`
	Replacement string   `hcl:"replacement,optional"`
	Literal     bool     `hcl:"literal,optional"`
	Body        string   `hcl:"body,optional"`
	Terminator  string   `hcl:"terminator,optional"`
	Description string   `hcl:"description,optional"`
	Extensions  []string `hcl:"extensions,optional"`
	Exclude     []string `hcl:"exclude,optional"`
}

type hclConfig struct {
	Roots           []string  `hcl:"roots,optional"`
	Extensions      []string  `hcl:"extensions,optional"`
	Exclude         []string  `hcl:"exclude,optional"`
	Presets         []string  `hcl:"presets,optional"`
	Gitignore       bool      `hcl:"gitignore,optional"`
	FollowSymlinks  bool      `hcl:"follow_symlinks,optional"`
	Workers         int       `hcl:"workers,optional"`
	Backup          bool      `hcl:"backup,optional"`
	CheckIdempotent bool      `hcl:"check_idempotent,optional"`
	Verify          *Verify   `hcl:"verify,block"`
	Rules           []hclRule `hcl:"rule,block"`
}

// 📝 Parse parses the config from HCL. Expressions can use config_dir, the
// directory of the file, and env, the process environment.
func (p *HCLParser) Parse(ctx context.Context, path string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filepath.Base(path))
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(filepath.Dir(path)),
			"env":        environment(),
		},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Roots:           hclCfg.Roots,
		Extensions:      hclCfg.Extensions,
		Exclude:         hclCfg.Exclude,
		Presets:         hclCfg.Presets,
		Gitignore:       hclCfg.Gitignore,
		FollowSymlinks:  hclCfg.FollowSymlinks,
		Workers:         hclCfg.Workers,
		Backup:          hclCfg.Backup,
		CheckIdempotent: hclCfg.CheckIdempotent,
		Verify:          hclCfg.Verify,
	}

	for _, r := range hclCfg.Rules {
		cfg.Rules = append(cfg.Rules, rules.Spec{
			ID:          r.ID,
			Kind:        r.Kind,
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
			Literal:     r.Literal,
			Body:        r.Body,
			Terminator:  r.Terminator,
			Description: r.Description,
			Extensions:  r.Extensions,
			Exclude:     r.Exclude,
		})
	}

	return cfg, nil
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
