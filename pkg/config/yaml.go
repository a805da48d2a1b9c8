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
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLParser{})
	Register(&RCParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func (p *YAMLParser) CanParse(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, path string, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// 🔧 RCParser handles extensionless .rewriterc files, which may hold YAML or HCL
type RCParser struct{}

func (p *RCParser) CanParse(filename string) bool {
	return filepath.Base(filename) == ".rewriterc" || filepath.Ext(filename) == ".rewriterc"
}

// Parse tries YAML first, then HCL
func (p *RCParser) Parse(ctx context.Context, path string, data []byte) (*Config, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, path, data)
	if yamlErr == nil {
		return cfg, nil
	}

	cfg, hclErr := (&HCLParser{}).Parse(ctx, path, data)
	if hclErr == nil {
		return cfg, nil
	}

	return nil, errors.Errorf("parsing %s as YAML or HCL: %w", filepath.Base(path), errors.Join(yamlErr, hclErr))
}
