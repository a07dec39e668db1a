// Package classpath finds classes in compiled class directories and jar
// archives.
package classpath

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/simonhull/wren/pkg/classfile"
	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/filesystem"
	"github.com/simonhull/wren/pkg/logger"
)

// ignored are class files that describe modules or packages, not classes.
var ignored = []string{"module-info.class", "package-info.class"}

var _ classfinder.ClassFinder = (*Finder)(nil)

// source locates the bytes of one class.
type source struct {
	path  string    // file on disk, or the jar holding entry
	entry *zip.File // nil for plain class files
}

// Finder is a classfinder.ClassFinder over class directories and jars.
//
// Class names are indexed when the finder is opened; class files are parsed
// on first lookup and memoized. When a class appears in more than one
// entry, the first entry wins, as on a JVM class path.
type Finder struct {
	mu      sync.Mutex
	sources map[string]source
	order   []string
	parsed  map[string]*classfinder.ClassInfo
	jars    []*zip.ReadCloser
	logger  logger.Logger
}

// Open indexes the given class path entries. Each entry is a directory of
// class files (jars found inside are indexed too) or a jar archive.
func Open(entries ...string) (*Finder, error) {
	f := &Finder{
		sources: make(map[string]source),
		parsed:  make(map[string]*classfinder.ClassInfo),
		logger:  logger.Default(),
	}
	for _, entry := range entries {
		if err := f.index(entry); err != nil {
			f.Close()
			return nil, fmt.Errorf("indexing %s: %w", entry, err)
		}
	}
	return f, nil
}

// WithLogger sets the logger used for parse warnings and returns f.
func (f *Finder) WithLogger(log logger.Logger) *Finder {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger = log
	return f
}

// Close releases open jar archives.
func (f *Finder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for _, j := range f.jars {
		errs = append(errs, j.Close())
	}
	f.jars = nil
	return errors.Join(errs...)
}

// Names returns every indexed class name in class path order.
func (f *Finder) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// Lookup implements classfinder.ClassFinder.
func (f *Finder) Lookup(name string) (*classfinder.ClassInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup(name)
}

// Annotated implements classfinder.ClassFinder. Every indexed class is
// parsed; classes that fail to parse are logged and skipped.
func (f *Finder) Annotated(annotation string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, name := range f.order {
		info, err := f.lookup(name)
		if err != nil {
			f.logger.Warn("Skipping unreadable class", logger.F("class", name), logger.F("error", err))
			continue
		}
		if info.HasAnnotation(annotation) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (f *Finder) lookup(name string) (*classfinder.ClassInfo, error) {
	if info, ok := f.parsed[name]; ok {
		return info, nil
	}
	src, ok := f.sources[name]
	if !ok {
		return nil, classfinder.NotFound(name)
	}

	data, err := src.read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s from %s: %w", name, src.path, err)
	}
	info := cf.ClassInfo()
	f.parsed[name] = info
	return info, nil
}

func (f *Finder) index(entry string) error {
	st, err := os.Stat(entry)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		if isJar(entry) {
			return f.indexJar(entry)
		}
		return fmt.Errorf("not a directory or jar")
	}

	var jars []string
	err = filesystem.Walk(entry, filesystem.WalkOptions{
		IgnorePatterns: ignored,
		Extensions:     []string{".class", ".jar"},
	}, func(path string, _ fs.DirEntry) error {
		if isJar(path) {
			jars = append(jars, path)
			return nil
		}
		rel, err := filepath.Rel(entry, path)
		if err != nil {
			return err
		}
		f.add(classNameOf(filepath.ToSlash(rel)), source{path: path})
		return nil
	})
	if err != nil {
		return err
	}

	for _, jar := range jars {
		if err := f.indexJar(jar); err != nil {
			return fmt.Errorf("%s: %w", jar, err)
		}
	}
	return nil
}

func (f *Finder) indexJar(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	f.jars = append(f.jars, zr)

	for _, zf := range zr.File {
		name := zf.Name
		if zf.FileInfo().IsDir() || !strings.HasSuffix(name, ".class") || strings.HasPrefix(name, "META-INF/") {
			continue
		}
		if isIgnored(name[strings.LastIndex(name, "/")+1:]) {
			continue
		}
		f.add(classNameOf(name), source{path: path, entry: zf})
	}
	return nil
}

func (f *Finder) add(name string, src source) {
	if name == "" {
		return
	}
	if _, exists := f.sources[name]; exists {
		return
	}
	f.sources[name] = src
	f.order = append(f.order, name)
}

func (s source) read() ([]byte, error) {
	if s.entry == nil {
		return os.ReadFile(s.path)
	}
	rc, err := s.entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// classNameOf turns a slash-separated class file path into a class name.
func classNameOf(rel string) string {
	return strings.ReplaceAll(strings.TrimSuffix(rel, ".class"), "/", ".")
}

func isIgnored(base string) bool {
	for _, name := range ignored {
		if base == name {
			return true
		}
	}
	return false
}

func isJar(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".jar")
}
