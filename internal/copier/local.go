// Package copier holds the built-in copy engine for local and shared
// folders. Azure endpoints need an external data lake adapter; without one
// their sub-runs are recorded as failed, not skipped silently.
package copier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"chronocopy/internal/model"
	"chronocopy/internal/planner"
	"chronocopy/internal/runner"
)

type Local struct{}

func NewLocal() Local {
	return Local{}
}

func (Local) Execute(ctx context.Context, job *model.Job, spec planner.SubRunSpec) (runner.Result, error) {
	if job.SourceType == model.LocationAzure || job.TargetType == model.LocationAzure {
		return runner.Result{}, fmt.Errorf("no data lake adapter configured for azure endpoints")
	}

	mask := spec.SourceFileMask
	if mask == "" {
		mask = "*"
	}

	sourceFiles, err := enumerate(spec.Source, mask)
	if err != nil {
		return runner.Result{}, err
	}
	if len(sourceFiles) == 0 {
		return runner.Result{SourceFiles: sourceFiles},
			fmt.Errorf("no files matching %q found in %q", mask, spec.Source)
	}

	if err := os.MkdirAll(spec.Target, 0755); err != nil {
		return runner.Result{SourceFiles: sourceFiles},
			fmt.Errorf("failed to create target folder: %w", err)
	}

	var copied []string
	for _, src := range sourceFiles {
		if err := ctx.Err(); err != nil {
			return runner.Result{SourceFiles: sourceFiles, CopiedFiles: copied}, err
		}

		dst := filepath.Join(spec.Target, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return runner.Result{SourceFiles: sourceFiles, CopiedFiles: copied},
				fmt.Errorf("failed to copy %s: %w", src, err)
		}
		copied = append(copied, dst)
	}

	return runner.Result{SourceFiles: sourceFiles, CopiedFiles: copied}, nil
}

func enumerate(dir, mask string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("source folder %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || shouldIgnore(entry.Name()) {
			continue
		}
		ok, err := filepath.Match(mask, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("bad file mask %q: %w", mask, err)
		}
		if ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func(in *os.File) {
		_ = in.Close()
	}(in)

	tmp := dst + ".chronocopy.tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}
