// Package files describes résumé files picked for upload.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// File is a résumé file staged for upload. It is never mutated after creation.
type File struct {
	Name    string
	Size    int64
	ModTime time.Time
	// Path is the content reference. The file is opened only at upload time.
	Path string
	// Pages is the PDF page count when the document was inspected, 0 otherwise.
	Pages int
}

// Key identifies a file by name, size and modification time.
func (f *File) Key() string {
	return fmt.Sprintf("%s|%d|%d", f.Name, f.Size, f.ModTime.UnixMilli())
}

// Ext returns the lowercase extension without the leading dot.
func (f *File) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
}

// Label is the selection list line for the file.
func (f *File) Label() string {
	label := fmt.Sprintf("%s (%s)", f.Name, HumanSize(f.Size))
	if f.Pages > 0 {
		label = fmt.Sprintf("%s, %d p.", label, f.Pages)
	}
	return label
}

// FromPath stats a single regular file.
func FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &File{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Path:    path,
	}, nil
}

// Collect turns the given paths into files. Directories are expanded one level deep
// in name order. Unreadable paths are logged and skipped.
func Collect(paths []string, logger *zap.Logger) []*File {
	if logger == nil {
		logger = zap.NewNop()
	}

	var collected []*File
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("skipping path", zap.String("path", path), zap.Error(err))
			continue
		}

		if !info.IsDir() {
			f, err := FromPath(path)
			if err != nil {
				logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
				continue
			}
			collected = append(collected, f)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			logger.Warn("reading directory", zap.String("path", path), zap.Error(err))
			continue
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			f, err := FromPath(filepath.Join(path, entry.Name()))
			if err != nil {
				logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
				continue
			}
			collected = append(collected, f)
		}
	}

	logger.Debug("collected files", zap.Int("count", len(collected)))

	return collected
}

// HumanSize formats a byte count the way the selection list shows it.
func HumanSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
