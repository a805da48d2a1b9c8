/*
Package operation runs a rewrite over a tree of files.

	+-------------+
	|  Collector  |
	|   (paths)   |
	+------+------+
	       |
	+------+------+
	|   Runner    |
	| (rewrite)   |
	+------+------+
	       |
	+------+------+
	|  Reporter   |
	|  (summary)  |
	+-------------+

🎯 Purpose:
- Drives one pass of an ordered rule set over every collected file
- Decides what is persisted (dry-run writes nothing)
- Folds per-file results into a run summary
- Invokes the verification step after a run that wrote files

🔄 Flow:
1. Receives file paths from the collector
2. Reads and decodes each file through disk.FileSystem
3. Rewrites the text with the rule set
4. Writes modified files atomically, optionally after a .bak copy
5. Records a report.FileResult per file

⚡ Concurrency:
With Workers > 1 files are rewritten on an errgroup of that size. Results are
gathered by index and recorded in collection order, so the summary and the
rendered report are identical to a serial run.

❌ Errors:
A file that cannot be read or decoded gets a *FileReadError, one that cannot
be written gets a *FileWriteError. Both stay on the FileResult and the run
continues. Run itself only fails when its context is cancelled.

🔍 Example:

	runner, err := operation.New(operation.Options{
		Rules:     set,
		Collector: collector,
		DryRun:    true,
	})
	summary, err := runner.Run(ctx)
*/
package operation
