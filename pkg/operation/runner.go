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

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/report"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔄 runSerial processes and records each file as it is collected
func (r *Runner) runSerial(ctx context.Context) error {
	for path := range r.opts.Collector.Collect(ctx) {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("run cancelled: %w", err)
		}
		r.opts.Reporter.Record(r.processFile(ctx, path))
	}
	if err := ctx.Err(); err != nil {
		return errors.Errorf("run cancelled: %w", err)
	}
	return nil
}

// ⚡ runParallel processes files on up to Workers goroutines and records the
// results in collection order once every file is done
func (r *Runner) runParallel(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	var slots []*report.FileResult
	for path := range r.opts.Collector.Collect(ctx) {
		if gctx.Err() != nil {
			break
		}
		slot := &report.FileResult{File: path}
		slots = append(slots, slot)

		g.Go(func() error {
			*slot = r.processFile(gctx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Errorf("processing files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return errors.Errorf("run cancelled: %w", err)
	}

	logger.Debug().Int("files", len(slots)).Msg("merging worker results")
	for _, slot := range slots {
		r.opts.Reporter.Record(*slot)
	}
	return nil
}
