package collect

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	gitignore "github.com/denormal/go-gitignore"
)

// walker walks one root
type walker struct {
	c       *Collector
	root    string
	ignore  gitignore.GitIgnore
	visited map[string]bool // resolved directory paths already walked
}

type entry struct {
	name  string
	path  string
	isDir bool
	key   string // sort key, directories get a trailing slash
}

// walkDir yields the accepted files under dir. It returns false once the
// consumer stops or ctx is done.
func (w *walker) walkDir(ctx context.Context, dir string, yield func(string) bool) bool {
	if ctx.Err() != nil {
		return false
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.c.warn(ctx, dir, "unresolvable directory: "+err.Error())
		return true
	}
	if w.visited[real] {
		w.c.warn(ctx, dir, "directory already visited (symlink cycle or alias)")
		return true
	}
	w.visited[real] = true

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		w.c.warn(ctx, dir, "unreadable directory: "+err.Error())
		return true
	}

	entries := make([]entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		e := entry{name: d.Name(), path: filepath.Join(dir, d.Name())}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			if !w.c.opts.FollowSymlinks {
				continue
			}
			info, err := os.Stat(e.path)
			if err != nil {
				w.c.warn(ctx, e.path, "broken symlink: "+err.Error())
				continue
			}
			if !info.IsDir() && !info.Mode().IsRegular() {
				continue
			}
			e.isDir = info.IsDir()
		case d.IsDir():
			e.isDir = true
		case !d.Type().IsRegular():
			continue
		}

		e.key = e.name
		if e.isDir {
			e.key += "/"
		}
		entries = append(entries, e)
	}

	// sorting on name+"/" for directories makes the walk order equal to the
	// lexicographic order of the full paths
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	for _, e := range entries {
		rel := w.rel(e.path)

		if e.isDir {
			if alwaysSkipDirs[e.name] || w.c.ignored(rel, true, w.ignore) {
				continue
			}
			if !w.walkDir(ctx, e.path, yield) {
				return false
			}
			continue
		}

		if !w.c.accept(e.path, rel, w.ignore) {
			continue
		}
		if !yield(e.path) {
			return false
		}
	}
	return true
}

func (w *walker) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
