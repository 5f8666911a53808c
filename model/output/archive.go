package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// Archive streams every document into a zip archive written to W.
// Overwrite does not apply: W is always a fresh stream.
type Archive struct {
	W io.Writer
}

func NewArchive(w io.Writer) *Archive { return &Archive{W: w} }

func (a *Archive) Store(ctx context.Context, docs []Document, _ bool) error {
	if err := checkNames(docs); err != nil {
		return err
	}
	zw := zip.NewWriter(a.W)
	now := time.Now()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return err
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     doc.Name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("zip entry %s: %w", doc.Name, err)
		}
		if _, err := fw.Write(doc.Data); err != nil {
			zw.Close()
			return fmt.Errorf("zip entry %s: %w", doc.Name, err)
		}
	}
	return zw.Close()
}

// ArchiveFile writes every document into a zip archive at Path.
type ArchiveFile struct {
	Path string
}

func NewArchiveFile(path string) *ArchiveFile { return &ArchiveFile{Path: path} }

func (a *ArchiveFile) Store(ctx context.Context, docs []Document, overwrite bool) error {
	if !overwrite && exists(a.Path) {
		return fmt.Errorf("%w: %s", ErrOutputExists, a.Path)
	}
	var buf bytes.Buffer
	if err := NewArchive(&buf).Store(ctx, docs, overwrite); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return err
	}
	return writeFile(a.Path, buf.Bytes(), overwrite)
}
