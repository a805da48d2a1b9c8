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
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/collect"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/disk"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/report"
	"github.com/walteh/rewriterc/pkg/verify"
	"gitlab.com/tozd/go/errors"
)

// RunE is the root command: one rewrite pass over the roots
func RunE(o *opts.RootOpts) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := o.LoadConfig(ctx, args)
		if err != nil {
			return err
		}

		_, err = Run(ctx, o, cfg, cmd.OutOrStdout())
		return err
	}
}

// ▶️ Run performs one pass and renders the report to out. Per-file failures
// are part of the report; only setup problems are returned.
func Run(ctx context.Context, o *opts.RootOpts, cfg *config.Config, out io.Writer) (*report.Summary, error) {
	console := log.FromContext(ctx)

	if err := collect.CheckRoots(cfg.Roots); err != nil {
		return nil, err
	}

	collector, err := newCollector(cfg)
	if err != nil {
		return nil, err
	}

	runner, err := newRunner(o, cfg, collector)
	if err != nil {
		return nil, err
	}

	textOutput := o.Format == "" || o.Format == opts.FormatText
	if textOutput {
		console.Header("rewriting source files")
		console.StartRun(ctx, log.RunInfo{
			Roots:  cfg.Roots,
			Rules:  len(cfg.RuleSpecs()),
			DryRun: o.DryRun,
		})
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return nil, errors.Errorf("running rewrite: %w", err)
	}

	if err := render(runner.Reporter(), o, out); err != nil {
		return nil, err
	}

	if textOutput {
		console.EndRun(ctx)
	}

	return summary, nil
}

func render(rep *report.Reporter, o *opts.RootOpts, out io.Writer) error {
	switch o.Format {
	case opts.FormatJSON:
		return rep.RenderJSON(out)
	case opts.FormatYAML:
		return rep.RenderYAML(out)
	default:
		return rep.Render(out, o.Verbose)
	}
}

func newCollector(cfg *config.Config) (*collect.Collector, error) {
	c, err := collect.New(collect.Options{
		Roots:            cfg.Roots,
		Extensions:       cfg.EffectiveExtensions(),
		IgnorePatterns:   cfg.IgnorePatterns(),
		RespectGitignore: cfg.Gitignore,
		FollowSymlinks:   cfg.FollowSymlinks,
		Exclude:          disk.IsScratch,
	})
	if err != nil {
		return nil, errors.Errorf("creating collector: %w", err)
	}
	return c, nil
}

func newRunner(o *opts.RootOpts, cfg *config.Config, source operation.FileSource) (*operation.Runner, error) {
	set, err := cfg.RuleSet()
	if err != nil {
		return nil, err
	}

	var verifier verify.Verifier
	if cfg.Verify != nil {
		verifier = &verify.Command{
			Name: cfg.Verify.Command,
			Args: cfg.Verify.Args,
			Dir:  cfg.Verify.Dir,
			Env:  cfg.Verify.Env,
		}
	}

	runner, err := operation.New(operation.Options{
		Rules:            set,
		Collector:        source,
		Verifier:         verifier,
		DryRun:           o.DryRun,
		Workers:          cfg.Workers,
		CheckIdempotency: cfg.CheckIdempotent,
		ShowDiff:         o.Diff,
		Backup:           cfg.Backup,
	})
	if err != nil {
		return nil, errors.Errorf("creating runner: %w", err)
	}
	return runner, nil
}
