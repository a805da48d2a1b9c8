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

package operation

import (
	"context"
	"iter"
	"slices"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/collect"
	"github.com/walteh/rewriterc/pkg/disk"
	"github.com/walteh/rewriterc/pkg/report"
	"github.com/walteh/rewriterc/pkg/rules"
	"github.com/walteh/rewriterc/pkg/text"
	"github.com/walteh/rewriterc/pkg/verify"
	"gitlab.com/tozd/go/errors"
)

// 📂 FileSource yields the files of one run
type FileSource interface {
	Collect(ctx context.Context) iter.Seq[string]
	Warnings() []collect.Warning
}

var _ FileSource = (*collect.Collector)(nil)

// 📌 Paths is a FileSource over a fixed list of files
type Paths []string

func (p Paths) Collect(ctx context.Context) iter.Seq[string] {
	return slices.Values(p)
}

func (p Paths) Warnings() []collect.Warning { return nil }

// 🔧 Options contains configuration for the runner
type Options struct {
	// Rules are applied to every file, in order
	Rules *rules.RuleSet
	// Collector yields the files to process
	Collector FileSource
	// Disk reads and writes files, disk.New() when nil
	Disk disk.FileSystem
	// Verifier runs after a run that wrote files, skipped when nil
	Verifier verify.Verifier
	// Reporter receives every FileResult, report.New() when nil
	Reporter *report.Reporter

	// DryRun computes everything and writes nothing
	DryRun bool
	// Workers is the number of files processed concurrently, at least 1
	Workers int
	// CheckIdempotency rewrites every modified file a second time in memory
	// and warns when that changes it again
	CheckIdempotency bool
	// ShowDiff attaches a diff of each modified file to its result
	ShowDiff bool
	// Backup copies each file to file.bak before overwriting it
	Backup bool
}

// 🏃 Runner drives collect, rewrite, persist, record and verify
type Runner struct {
	opts   Options
	engine text.Rewriter
}

// 🏭 New creates a new runner with the given options
func New(opts Options) (*Runner, error) {
	if opts.Rules == nil {
		return nil, errors.Errorf("rule set is required")
	}
	if opts.Collector == nil {
		return nil, errors.Errorf("collector is required")
	}
	if opts.Disk == nil {
		opts.Disk = disk.New()
	}
	if opts.Reporter == nil {
		opts.Reporter = report.New()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Runner{
		opts:   opts,
		engine: text.NewEngine(opts.Rules),
	}, nil
}

// Reporter returns the reporter the runner records into
func (r *Runner) Reporter() *report.Reporter {
	return r.opts.Reporter
}

// ▶️ Run processes every collected file and returns the aggregated summary.
// Per-file failures are recorded on their FileResult; only cancellation
// fails the run.
func (r *Runner) Run(ctx context.Context) (*report.Summary, error) {
	logger := zerolog.Ctx(ctx)
	rep := r.opts.Reporter
	rep.SetDryRun(r.opts.DryRun)

	logger.Debug().
		Int("rules", r.opts.Rules.Len()).
		Int("workers", r.opts.Workers).
		Bool("dry_run", r.opts.DryRun).
		Msg("starting rewrite run")

	var err error
	if r.opts.Workers > 1 {
		err = r.runParallel(ctx)
	} else {
		err = r.runSerial(ctx)
	}
	if err != nil {
		return nil, err
	}

	for _, w := range r.opts.Collector.Warnings() {
		rep.Warn(w.String())
	}

	if summary := rep.Summary(); summary.FilesModified > 0 && !r.opts.DryRun && r.opts.Verifier != nil {
		res := r.opts.Verifier.Verify(ctx)
		rep.SetVerification(report.Verification{
			Command:  res.Command,
			Passed:   res.Passed,
			ExitCode: res.ExitCode,
			Output:   res.Output,
			Duration: res.Duration,
		})
	}

	summary := rep.Summary()
	logger.Debug().
		Int("files_scanned", summary.FilesScanned).
		Int("files_modified", summary.FilesModified).
		Int("total_changes", summary.TotalChanges).
		Msg("rewrite run finished")

	return &summary, nil
}
