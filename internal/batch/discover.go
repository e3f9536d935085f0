// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/docbatch/internal/convert"
	"github.com/pdiddy/docbatch/pkg/types"
)

// Discover lists the regular files directly inside dir whose base name
// matches pattern, sorted by name. Symlinks are followed; subdirectories are
// not searched.
func Discover(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
		}
		if !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !isRegular(e, path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// isRegular reports whether e is a regular file or a symlink that resolves
// to one. Dangling links are skipped.
func isRegular(e os.DirEntry, path string) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// OutputPath returns where the document at source is written for format:
// the source stem plus the format extension, inside outputDir.
func OutputPath(outputDir, source string, format types.ExportFormat) string {
	return filepath.Join(outputDir, convert.Stem(source)+format.Ext())
}

// buildTasks turns discovered sources into tasks in discovery order.
func buildTasks(sources []string, outputDir string, format types.ExportFormat) []types.ConversionTask {
	tasks := make([]types.ConversionTask, len(sources))
	for i, src := range sources {
		tasks[i] = types.ConversionTask{
			Index:      i,
			SourcePath: src,
			OutputPath: OutputPath(outputDir, src, format),
			Format:     format,
		}
	}
	return tasks
}
