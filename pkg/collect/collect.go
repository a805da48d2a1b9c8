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

// Package collect enumerates the files a run should rewrite.
package collect

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// alwaysSkipDirs are never descended into
var alwaysSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
}

// 🔧 Options selects which files are collected
type Options struct {
	// Roots are walked in the order given
	Roots []string

	// Extensions is the allow-list, case-insensitive, with or without the
	// leading dot. Empty accepts every file.
	Extensions []string

	// Exclude drops any path for which it returns true
	Exclude func(path string) bool

	// IgnorePatterns are doublestar globs matched against the root relative
	// slash path and against the base name
	IgnorePatterns []string

	// RespectGitignore applies <root>/.gitignore
	RespectGitignore bool

	// FollowSymlinks descends into symlinked directories and collects
	// symlinked files. Without it symlinks are skipped.
	FollowSymlinks bool
}

// ⚠️ Warning is a non-fatal problem met while walking
type Warning struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

// ❌ RootNotFoundError reports a root that does not exist or is not a directory
type RootNotFoundError struct {
	Root string
	Err  error
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("root %q not found: %v", e.Root, e.Err)
}

func (e *RootNotFoundError) Unwrap() error {
	return e.Err
}

// 🔍 CheckRoots fails with a *RootNotFoundError for the first root that is
// missing or not a directory
func CheckRoots(roots []string) error {
	if len(roots) == 0 {
		return errors.Errorf("at least one root directory is required")
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return errors.WithStack(&RootNotFoundError{Root: root, Err: err})
		}
		if !info.IsDir() {
			return errors.WithStack(&RootNotFoundError{Root: root, Err: errors.New("not a directory")})
		}
	}
	return nil
}

// 📂 Collector walks the configured roots. A Collector yields its files once.
type Collector struct {
	opts     Options
	exts     map[string]bool
	consumed atomic.Bool

	mu       sync.Mutex
	warnings []Warning
}

// 🏭 New creates a collector, validating the ignore patterns
func New(opts Options) (*Collector, error) {
	for _, pattern := range opts.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	return &Collector{
		opts: opts,
		exts: normalizeExtensions(opts.Extensions),
	}, nil
}

func normalizeExtensions(exts []string) map[string]bool {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return allowed
}

// Warnings returns the warnings recorded so far
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Warning(nil), c.warnings...)
}

func (c *Collector) warn(ctx context.Context, path, reason string) {
	zerolog.Ctx(ctx).Warn().Str("path", path).Msg(reason)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{Path: path, Reason: reason})
}

// 🚶 Collect returns the candidate files: lexicographic path order within
// each root, roots in the order given. The sequence is lazy and can be
// ranged over once; later ranges yield nothing and record a warning.
func (c *Collector) Collect(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !c.consumed.CompareAndSwap(false, true) {
			c.warn(ctx, strings.Join(c.opts.Roots, ","), "collection already consumed")
			return
		}

		for _, root := range c.opts.Roots {
			w := &walker{
				c:       c,
				root:    root,
				visited: map[string]bool{},
			}
			if c.opts.RespectGitignore {
				w.ignore = loadGitignore(root)
			}
			if !w.walkDir(ctx, root, yield) {
				return
			}
		}
	}
}

// ✅ Accepts reports whether a single path would be collected. The path must
// lie under one of the roots.
func (c *Collector) Accepts(path string) bool {
	for _, root := range c.opts.Roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}

		var ignore gitignore.GitIgnore
		if c.opts.RespectGitignore {
			ignore = loadGitignore(root)
		}
		rel = filepath.ToSlash(rel)
		parts := strings.Split(rel, "/")
		for i := 1; i < len(parts); i++ {
			if alwaysSkipDirs[parts[i-1]] || c.ignored(strings.Join(parts[:i], "/"), true, ignore) {
				return false
			}
		}
		return c.accept(path, rel, ignore)
	}
	return false
}

// AcceptsDir reports whether a directory under one of the roots would be
// descended into
func (c *Collector) AcceptsDir(path string) bool {
	if alwaysSkipDirs[filepath.Base(path)] {
		return false
	}
	for _, root := range c.opts.Roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if rel == "." {
			return true
		}

		var ignore gitignore.GitIgnore
		if c.opts.RespectGitignore {
			ignore = loadGitignore(root)
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		for i := 1; i <= len(parts); i++ {
			if alwaysSkipDirs[parts[i-1]] || c.ignored(strings.Join(parts[:i], "/"), true, ignore) {
				return false
			}
		}
		return true
	}
	return false
}

func (c *Collector) accept(path, rel string, ignore gitignore.GitIgnore) bool {
	if len(c.exts) > 0 && !c.exts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	if c.ignored(rel, false, ignore) {
		return false
	}
	if c.opts.Exclude != nil && c.opts.Exclude(path) {
		return false
	}
	return true
}

func (c *Collector) ignored(rel string, isDir bool, ignore gitignore.GitIgnore) bool {
	base := filepath.Base(rel)
	for _, pattern := range c.opts.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}

	if ignore != nil {
		if m := ignore.Relative(rel, isDir); m != nil && m.Ignore() {
			return true
		}
	}
	return false
}

func loadGitignore(root string) gitignore.GitIgnore {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, root, nil)
}
