package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/disk"
	"github.com/walteh/rewriterc/pkg/report"
	"github.com/walteh/rewriterc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📄 processFile reads, rewrites and (unless dry-run) persists one file.
// Failures are returned on the result, never as an error.
func (r *Runner) processFile(ctx context.Context, path string) report.FileResult {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	fr := report.FileResult{File: path}

	raw, err := r.opts.Disk.ReadFile(ctx, path)
	if err != nil {
		fr.Error = errors.WithStack(&FileReadError{Path: path, Err: err})
		logger.Debug().Err(err).Msg("skipping unreadable file")
		return fr
	}

	content, err := disk.Decode(raw)
	if err != nil {
		fr.Error = errors.WithStack(&FileReadError{Path: path, Err: err})
		logger.Debug().Err(err).Msg("skipping non-text file")
		return fr
	}

	res := r.engine.Rewrite(path, content)
	fr.Modified = res.WasModified
	fr.Changes = toChangeRecords(path, res.Changes)

	if !res.WasModified {
		logger.Trace().Msg("no changes")
		return fr
	}

	if r.opts.CheckIdempotency {
		if err := r.engine.CheckFixedPoint(path, res.Content); err != nil {
			fr.Warnings = append(fr.Warnings, err.Error())
			logger.Warn().Err(err).Msg("rewrite is not a fixed point")
		}
	}

	if r.opts.ShowDiff {
		fr.Diff = text.Diff(path, content, res.Content)
	}

	if r.opts.DryRun {
		logger.Debug().Int("changes", len(fr.Changes)).Msg("dry run, not writing")
		return fr
	}

	if r.opts.Backup {
		if err := r.opts.Disk.BackupFile(ctx, path); err != nil {
			fr.Error = errors.WithStack(&FileWriteError{Path: path, Err: err})
			logger.Debug().Err(err).Msg("backup failed, leaving file untouched")
			return fr
		}
	}

	if err := r.opts.Disk.WriteFileAtomic(ctx, path, []byte(res.Content)); err != nil {
		fr.Error = errors.WithStack(&FileWriteError{Path: path, Err: err})
		logger.Debug().Err(err).Msg("write failed")
		return fr
	}

	logger.Debug().Int("changes", len(fr.Changes)).Msg("file rewritten")
	return fr
}

func toChangeRecords(path string, changes []text.Change) []report.ChangeRecord {
	if len(changes) == 0 {
		return nil
	}
	out := make([]report.ChangeRecord, 0, len(changes))
	for _, c := range changes {
		out = append(out, report.ChangeRecord{
			File:   path,
			Line:   c.Line,
			RuleID: c.RuleID,
			Before: c.Before,
			After:  c.After,
		})
	}
	return out
}
