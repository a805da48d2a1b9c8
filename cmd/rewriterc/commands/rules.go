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

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/rules"
	"github.com/walteh/rewriterc/pkg/rules/presets"
	"gitlab.com/tozd/go/errors"
)

// NewRulesCmd lists the effective rule set
func NewRulesCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [roots...]",
		Short: "List the effective rules in the order they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.LoadConfig(cmd.Context(), args)
			if err != nil {
				return err
			}

			data := pterm.TableData{{"#", "ID", "Kind", "Pattern", "Replacement", "Files"}}
			for i, spec := range cfg.RuleSpecs() {
				kind, err := rules.ParseKind(spec.Kind)
				if err != nil {
					return err
				}
				pattern := spec.Pattern
				if spec.Literal {
					pattern = strconv.Quote(pattern)
				}
				data = append(data, []string{strconv.Itoa(i + 1), spec.ID, kind.String(), pattern, replacementColumn(kind, spec), filesColumn(spec)})
			}

			out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering rules: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func replacementColumn(kind rules.Kind, spec rules.Spec) string {
	switch kind {
	case rules.KindDedupeLine:
		return "(keep first)"
	case rules.KindOrphanBlock:
		return "(drop until " + spec.Terminator + ")"
	default:
		return spec.Replacement
	}
}

func filesColumn(spec rules.Spec) string {
	parts := []string{"*"}
	if len(spec.Extensions) > 0 {
		parts = []string{strings.Join(spec.Extensions, " ")}
	}
	for _, pattern := range spec.Exclude {
		parts = append(parts, "!"+pattern)
	}
	return strings.Join(parts, " ")
}

// NewPresetsCmd lists the built-in presets
func NewPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in rule presets",
		Long: `List the built-in rule presets.

A preset's rules only touch files with the preset's extensions and skip the
files it excludes, even when other presets or --ext select more files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := pterm.TableData{{"Name", "Rules", "Extensions", "Description"}}
			for _, p := range presets.All() {
				data = append(data, []string{p.Name, strconv.Itoa(len(p.Rules)), strings.Join(p.Extensions, " "), p.Description})
			}

			out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering presets: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
