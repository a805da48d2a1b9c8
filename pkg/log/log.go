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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 15 // Width for status text
)

// 📌 FileStatus is what happened to one file
type FileStatus string

const (
	StatusRewritten    FileStatus = "rewritten"
	StatusWouldRewrite FileStatus = "would rewrite"
	StatusUnchanged    FileStatus = "unchanged"
	StatusFailed       FileStatus = "failed"
)

// 🎯 FileEvent represents a processed file for logging
type FileEvent struct {
	Path    string     // File path
	Status  FileStatus // Outcome
	Changes int        // Number of changes made or planned
}

// 📦 RunInfo describes a run for its header
type RunInfo struct {
	Roots  []string
	Rules  int
	DryRun bool
}

// 🎯 Logger writes human console lines and mirrors them into zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *RunInfo
	files   []FileEvent
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileEvent formats a file event for display
func (l *Logger) formatFileEvent(ev FileEvent) string {
	var symbol rune
	var symbolColor color.Attribute
	switch ev.Status {
	case StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case StatusRewritten:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case StatusWouldRewrite:
		symbol = '~'
		symbolColor = color.FgYellow
	default:
		symbol = '-'
		symbolColor = color.FgHiBlack
	}

	changes := ""
	switch {
	case ev.Changes == 1:
		changes = "1 change"
	case ev.Changes > 1:
		changes = fmt.Sprintf("%d changes", ev.Changes)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, ev.Path),
		fmt.Sprintf("%-*s", statusWidth, ev.Status),
		changes)
}

// 📝 LogFile logs one processed file
func (l *Logger) LogFile(ctx context.Context, ev FileEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files = append(l.files, ev)

	fmt.Fprintln(l.console, strings.TrimRight(l.formatFileEvent(ev), " "))

	l.zlog.Info().
		Str("file", ev.Path).
		Str("status", string(ev.Status)).
		Int("changes", ev.Changes).
		Msg("file processed")
}

// 📝 StartRun prints the run header
func (l *Logger) StartRun(ctx context.Context, info RunInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &info
	l.files = nil

	fmt.Fprintf(l.console, "[rewriting %s]\n",
		color.New(color.FgCyan).Sprint(strings.Join(info.Roots, ", ")))

	mode := "apply"
	if info.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d rules", info.Rules),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	l.zlog.Info().
		Strs("roots", info.Roots).
		Int("rules", info.Rules).
		Bool("dry_run", info.DryRun).
		Msg("starting rewrite run")
}

// 📝 EndRun ends the current run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Info().
		Strs("roots", l.current.Roots).
		Int("files", len(l.files)).
		Msg("rewrite run complete")

	l.current = nil
	l.files = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rewriterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
