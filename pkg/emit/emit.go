// Package emit writes generated artifacts (reports, config files) with
// validation, dry runs and overwrite protection.
package emit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrFileExists is returned when an artifact would overwrite a file and
// force is off.
var ErrFileExists = errors.New("file already exists")

// Operation is a file system change that can be checked before it runs.
//
// Validate reports whether Execute would succeed; force skips overwrite
// checks. Description is a one-line summary for output.
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context) error
	Description() string
}

// WriteFileOp writes Content to Path, creating parent directories.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode // defaults to 0644
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	info, err := os.Stat(op.Path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%s is a directory", op.Path)
	case err == nil && !force:
		return fmt.Errorf("%w: %s", ErrFileExists, op.Path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(op.Path), 0755); err != nil {
		return err
	}
	mode := op.Mode
	if mode == 0 {
		mode = 0644
	}
	return os.WriteFile(op.Path, op.Content, mode)
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Write %s (%d bytes)", op.Path, len(op.Content))
}

// ExecuteOptions configures Execute.
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // progress output, defaults to os.Stdout
}

// Execute validates every operation, then runs them in order. When an
// operation fails, files created by earlier operations of this call are
// removed again; files that existed before are left as they are.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	var created []string
	for _, op := range ops {
		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
			continue
		}
		if err := ctx.Err(); err != nil {
			rollback(created)
			return err
		}

		fresh := ""
		if w, ok := op.(*WriteFileOp); ok {
			if _, err := os.Stat(w.Path); errors.Is(err, fs.ErrNotExist) {
				fresh = w.Path
			}
		}
		if err := op.Execute(ctx); err != nil {
			rollback(created)
			return fmt.Errorf("execution failed: %w", err)
		}
		if fresh != "" {
			created = append(created, fresh)
		}
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}
	return nil
}

func rollback(paths []string) {
	for i := len(paths) - 1; i >= 0; i-- {
		os.Remove(paths[i])
	}
}
