// Package filesystem walks directory trees with ignore rules, used to find
// compiled classes, jars and class catalogs on disk.
package filesystem

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultIgnoreDirs are directories skipped during traversal. Build output
// directories are deliberately absent: compiled classes live there.
var DefaultIgnoreDirs = []string{
	"node_modules", ".git", ".svn", ".hg",
	".idea", ".vscode", ".gradle",
}

// WalkOptions configures directory traversal.
type WalkOptions struct {
	IgnoreDirs     []string // Directories to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File patterns to skip (e.g. "module-info.class")
	Extensions     []string // Only visit files with these extensions (default: all)
	IncludeHidden  bool     // Include hidden files and directories
}

// Walk traverses a directory tree in lexical order. The visitor is called
// for every file that passes the filters; directories are not reported.
// The root itself is never ignored.
func Walk(root string, opts WalkOptions, visitor func(path string, d fs.DirEntry) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			if d.IsDir() {
				return nil
			}
			return visitor(path, d)
		}

		name := d.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			for _, ignore := range ignoreDirs {
				if name == ignore {
					return filepath.SkipDir
				}
			}
			return nil
		}

		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				return nil
			}
		}
		if len(opts.Extensions) > 0 && !hasExtension(name, opts.Extensions) {
			return nil
		}

		return visitor(path, d)
	})
}

// FindFiles returns every file under root that passes the filters, sorted.
func FindFiles(root string, opts WalkOptions) ([]string, error) {
	var files []string
	err := Walk(root, opts, func(path string, _ fs.DirEntry) error {
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
