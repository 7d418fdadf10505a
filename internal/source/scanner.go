package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// formatFor maps a file extension to its import format.
func formatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, true
	case ".csv":
		return FormatCSV, true
	default:
		return "", false
	}
}

// Scan discovers importable files at path. A file is returned as is when its
// extension is supported; a directory is walked recursively. Results are
// sorted by path so imports are deterministic.
func Scan(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		f, ok := formatFor(path)
		if !ok {
			return nil, fmt.Errorf("%s: unsupported file type (want .jsonl or .csv)", path)
		}
		return []DiscoveredFile{{Path: path, Format: f}}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if f, ok := formatFor(p); ok {
			files = append(files, DiscoveredFile{Path: p, Format: f})
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}
