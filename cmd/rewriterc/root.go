package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/log"
)

// newRootCmd builds the command tree. console receives the human-readable
// progress lines; reports go to the command's stdout.
func newRootCmd(console io.Writer) *cobra.Command {
	o := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "rewriterc [roots...]",
		Short: "Apply ordered text rewrite rules across a source tree",
		Long: `rewriterc walks one or more root directories, applies an ordered set of
rewrite rules to every selected file, writes the files back atomically and
reports what changed.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			o.Changed = cmd.Flags().Changed
			cmd.SetContext(setupLogging(cmd.Context(), o, console))
			return nil
		},
		RunE: commands.RunE(o),
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewRulesCmd(o),
		commands.NewPresetsCmd(),
		commands.NewWatchCmd(o),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default "+config.DefaultFile+" when present)")
	flags.BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "list every change and the verification output")
	flags.StringVarP(&o.Format, "format", "f", opts.FormatText, "report format: text, json or yaml")
	flags.BoolVarP(&o.DryRun, "dry-run", "n", false, "report changes without writing files")
	flags.StringSliceVarP(&o.Extensions, "ext", "e", nil, "file extensions to rewrite, e.g. .ts,.tsx (overrides config)")
	flags.StringSliceVarP(&o.Exclude, "exclude", "x", nil, "doublestar patterns of paths to skip")
	flags.StringSliceVarP(&o.Presets, "preset", "p", nil, "built-in rule presets to apply")
	flags.StringArrayVarP(&o.Rules, "rule", "r", nil, "literal rule, id=old=>new or old=>new (repeatable)")
	flags.IntVarP(&o.Workers, "workers", "w", 0, "files processed concurrently, 0 or 1 runs serially")
	flags.BoolVar(&o.Diff, "diff", false, "include a unified diff per modified file")
	flags.BoolVar(&o.Backup, "backup", false, "keep a .bak copy of every rewritten file")
	flags.BoolVar(&o.Gitignore, "gitignore", false, "skip files matched by each root's .gitignore")
	flags.BoolVar(&o.FollowSymlinks, "follow-symlinks", false, "descend into symlinked directories and files")
	flags.BoolVar(&o.CheckIdempotent, "check-idempotent", false, "warn when a second pass would change a file again")
	flags.BoolVar(&o.NoVerify, "no-verify", false, "skip the configured verification command")
}

// setupLogging configures zerolog based on flags and stores both loggers in ctx
func setupLogging(ctx context.Context, o *opts.RootOpts, console io.Writer) context.Context {
	level := zerolog.WarnLevel
	switch {
	case o.Debug:
		level = zerolog.DebugLevel
	case o.Verbose:
		level = zerolog.InfoLevel
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	ctx = zlog.WithContext(ctx)

	return log.NewContext(ctx, log.New(console, zlog))
}
