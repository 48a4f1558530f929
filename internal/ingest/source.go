package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo describes one listable knowledge document.
type FileInfo struct {
	Path         string // relative, forward-slash separated
	LastModified time.Time
}

// DocumentSource lists and reads raw knowledge documents. Paths encode
// ownership ("users/<id>/..." vs "global/..."), which the pipeline parses
// into chunk metadata.
type DocumentSource interface {
	List(ctx context.Context) ([]FileInfo, error)
	Read(ctx context.Context, path string) (string, error)
}

// FSSource reads knowledge documents from a local directory tree.
type FSSource struct {
	root string
}

// NewFSSource creates a document source rooted at dir.
func NewFSSource(dir string) *FSSource {
	return &FSSource{root: dir}
}

// List walks the knowledge directory and returns all .txt and .md files.
// A missing root directory yields an empty listing, not an error, so a
// fresh deployment starts cleanly before any documents are provisioned.
func (s *FSSource) List(ctx context.Context) ([]FileInfo, error) {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []FileInfo
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:         filepath.ToSlash(rel),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge files: %w", err)
	}

	return files, nil
}

// Read returns the content of one knowledge file.
func (s *FSSource) Read(ctx context.Context, path string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}
