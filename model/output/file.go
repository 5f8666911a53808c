package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File writes exactly one document to Path.
type File struct {
	Path string
}

func NewFile(path string) *File { return &File{Path: path} }

func (f *File) Store(ctx context.Context, docs []Document, overwrite bool) error {
	if len(docs) != 1 {
		return fmt.Errorf("%w: got %d", ErrSingleDocument, len(docs))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	return writeFile(f.Path, docs[0].Data, overwrite)
}

// Directory writes every document into Path under its own name.
type Directory struct {
	Path string
}

func NewDirectory(path string) *Directory { return &Directory{Path: path} }

func (d *Directory) Store(ctx context.Context, docs []Document, overwrite bool) error {
	if err := checkNames(docs); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return err
	}
	// refuse before writing anything so a conflict leaves the directory untouched
	if !overwrite {
		for _, doc := range docs {
			if exists(filepath.Join(d.Path, doc.Name)) {
				return fmt.Errorf("%w: %s", ErrOutputExists, filepath.Join(d.Path, doc.Name))
			}
		}
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(d.Path, doc.Name), doc.Data, overwrite); err != nil {
			return err
		}
	}
	return nil
}

// writeFile goes through a temp file in the target directory and renames it into place.
func writeFile(path string, data []byte, overwrite bool) error {
	if !overwrite && exists(path) {
		return fmt.Errorf("%w: %s", ErrOutputExists, path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdftask-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
