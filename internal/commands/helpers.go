package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/simonhull/wren/internal/output"
	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/classpath"
	"github.com/simonhull/wren/pkg/config"
	"github.com/simonhull/wren/pkg/emit"
	"github.com/simonhull/wren/pkg/logger"
)

const configFileName = config.FileName

// errNoClasses means no configured class path entry or catalog exists.
var errNoClasses = errors.New("no classes to analyse: configure classpath.entries or classpath.catalogs")

// loadConfig reads the config named by --config, or ./wren.yaml, and
// installs a logger at the configured level. --verbose forces debug.
func loadConfig(path string) (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg)
	logger.SetDefault(log)
	return cfg, log, nil
}

func newLogger(cfg *config.Config) logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if output.IsVerbose() {
		level = logger.LevelDebug
	}
	return logger.NewLogger(level, os.Stderr)
}

// openFinder chains the configured class path entries and catalogs.
// Entries that do not exist are skipped so the default config works before
// the first build. The returned close func releases open jars.
func openFinder(cfg *config.Config, log logger.Logger) (classfinder.ClassFinder, func() error, error) {
	noop := func() error { return nil }

	var entries []string
	for _, entry := range cfg.Classpath.Entries {
		if _, err := os.Stat(entry); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				output.Verbose(fmt.Sprintf("Skipping missing class path entry: %s", entry))
				continue
			}
			return nil, noop, fmt.Errorf("class path entry %s: %w", entry, err)
		}
		entries = append(entries, entry)
	}

	var finders []classfinder.ClassFinder
	closeFinder := noop
	if len(entries) > 0 {
		cp, err := classpath.Open(entries...)
		if err != nil {
			return nil, noop, err
		}
		cp.WithLogger(log)
		output.Verbose(fmt.Sprintf("Indexed %d classes from %d class path entries", len(cp.Names()), len(entries)))
		finders = append(finders, cp)
		closeFinder = cp.Close
	}

	if len(cfg.Classpath.Catalogs) > 0 {
		catalog, err := classfinder.LoadCatalog(cfg.Classpath.Catalogs...)
		if err != nil {
			_ = closeFinder()
			return nil, noop, err
		}
		output.Verbose(fmt.Sprintf("Loaded %d classes from %d catalogs", catalog.Len(), len(cfg.Classpath.Catalogs)))
		finders = append(finders, catalog)
	}

	if len(finders) == 0 {
		return nil, noop, errNoClasses
	}
	return classfinder.Chain(finders...), closeFinder, nil
}

// writeOptions controls where command output goes.
type writeOptions struct {
	path   string
	force  bool
	dryRun bool
}

// writeOutput writes data to stdout, or to opts.path through an emit
// operation so existing files are only replaced with --force.
func writeOutput(ctx context.Context, stdout, progress io.Writer, data []byte, opts writeOptions) error {
	if opts.path == "" {
		_, err := io.Copy(stdout, bytes.NewReader(data))
		return err
	}
	ops := []emit.Operation{&emit.WriteFileOp{Path: opts.path, Content: data}}
	return emit.Execute(ctx, ops, emit.ExecuteOptions{
		DryRun: opts.dryRun,
		Force:  opts.force,
		Writer: progress,
	})
}
