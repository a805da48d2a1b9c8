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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/report"
	"github.com/walteh/rewriterc/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd rewrites files again whenever they change
func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [roots...]",
		Short: "Run once, then rewrite files as they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.LoadConfig(ctx, args)
			if err != nil {
				return err
			}

			if _, err := Run(ctx, o, cfg, cmd.OutOrStdout()); err != nil {
				return err
			}

			return Watch(ctx, o, cfg)
		},
	}
}

// 👀 Watch blocks until ctx is done, rewriting each batch of changed files
func Watch(ctx context.Context, o *opts.RootOpts, cfg *config.Config) error {
	console := log.FromContext(ctx)

	filter, err := newCollector(cfg)
	if err != nil {
		return err
	}

	w, err := watch.New(cfg.Roots, filter, *zerolog.Ctx(ctx))
	if err != nil {
		return errors.Errorf("starting watcher: %w", err)
	}

	console.Infof("watching %d directories, press ctrl-c to stop", len(w.WatchList()))

	return w.Run(ctx, func(ctx context.Context, paths []string) {
		runner, err := newRunner(o, cfg, operation.Paths(paths))
		if err != nil {
			console.Errorf("creating runner: %v", err)
			return
		}

		if _, err := runner.Run(ctx); err != nil {
			console.Errorf("rewriting changed files: %v", err)
			return
		}

		logResults(ctx, console, runner.Reporter(), o.DryRun)
	})
}

func logResults(ctx context.Context, console *log.Logger, rep *report.Reporter, dryRun bool) {
	for _, res := range rep.Results() {
		ev := log.FileEvent{Path: res.File, Changes: len(res.Changes)}
		switch {
		case res.Error != nil:
			ev.Status = log.StatusFailed
			console.LogFile(ctx, ev)
			console.Error(res.Error.Error())
			continue
		case !res.Modified:
			continue
		case dryRun:
			ev.Status = log.StatusWouldRewrite
		default:
			ev.Status = log.StatusRewritten
		}
		console.LogFile(ctx, ev)
		for _, w := range res.Warnings {
			console.Warning(w)
		}
	}

	if v := rep.Summary().Verification; v != nil {
		if v.Passed {
			console.Successf("verification passed: %s", v.Command)
		} else {
			console.Errorf("verification failed (exit %d): %s", v.ExitCode, v.Command)
		}
	}
}
