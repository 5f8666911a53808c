package output

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

func docs(names ...string) []Document {
	out := make([]Document, len(names))
	for i, n := range names {
		out[i] = Document{Name: n, Data: []byte("%PDF-1.6 " + n)}
	}
	return out
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.pdf")
	f := NewFile(path)

	if err := f.Store(context.Background(), docs("a.pdf"), false); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "%PDF-1.6 a.pdf" {
		t.Fatalf("unexpected content %q (%v)", got, err)
	}

	t.Run("ExistingWithoutOverwrite", func(t *testing.T) {
		err := f.Store(context.Background(), docs("b.pdf"), false)
		if !errors.Is(err, ErrOutputExists) {
			t.Fatalf("expected ErrOutputExists, got %v", err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := f.Store(context.Background(), docs("b.pdf"), true); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "%PDF-1.6 b.pdf" {
			t.Fatalf("file not replaced: %q", got)
		}
	})

	t.Run("ManyDocuments", func(t *testing.T) {
		err := f.Store(context.Background(), docs("a.pdf", "b.pdf"), true)
		if !errors.Is(err, ErrSingleDocument) {
			t.Fatalf("expected ErrSingleDocument, got %v", err)
		}
	})

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	d := NewDirectory(dir)
	if err := d.Store(context.Background(), docs("1_a.pdf", "2_a.pdf"), false); err != nil {
		t.Fatalf("store: %v", err)
	}
	for _, n := range []string{"1_a.pdf", "2_a.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Fatalf("missing %s: %v", n, err)
		}
	}

	// one conflicting name blocks the whole batch
	err := d.Store(context.Background(), docs("3_a.pdf", "2_a.pdf"), false)
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "3_a.pdf")); err == nil {
		t.Fatalf("partial batch written")
	}

	if err := d.Store(context.Background(), docs("x.pdf", "x.pdf"), true); !errors.Is(err, ErrDuplicateDocument) {
		t.Fatalf("expected ErrDuplicateDocument, got %v", err)
	}
	if err := d.Store(context.Background(), nil, true); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestArchive(t *testing.T) {
	var buf bytes.Buffer
	if err := NewArchive(&buf).Store(context.Background(), docs("1_a.pdf", "2_a.pdf"), false); err != nil {
		t.Fatalf("store: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}
	rc, err := zr.File[1].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if zr.File[1].Name != "2_a.pdf" || string(data) != "%PDF-1.6 2_a.pdf" {
		t.Fatalf("unexpected entry %s: %q", zr.File[1].Name, data)
	}
}

func TestArchiveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "parts.zip")
	a := NewArchiveFile(path)
	if err := a.Store(context.Background(), docs("1_a.pdf", "2_a.pdf"), false); err != nil {
		t.Fatalf("store: %v", err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	n := len(zr.File)
	zr.Close()
	if n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	if err := a.Store(context.Background(), docs("3_a.pdf"), false); !errors.Is(err, ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
	if err := a.Store(context.Background(), docs("3_a.pdf"), true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	if err := m.Store(context.Background(), docs("a.pdf"), false); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := m.Store(context.Background(), docs("b.pdf"), false); !errors.Is(err, ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
	if err := m.Store(context.Background(), docs("b.pdf", "c.pdf"), true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := m.Documents(); len(got) != 2 || got[0].Name != "b.pdf" {
		t.Fatalf("unexpected documents %v", got)
	}
	if Size(m.Documents()) != int64(len("%PDF-1.6 b.pdf")+len("%PDF-1.6 c.pdf")) {
		t.Fatalf("size mismatch")
	}
}

func TestName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	tests := []struct {
		name     string
		prefix   string
		req      NameRequest
		multiple bool
		want     string
	}{
		{"SingleNoPrefix", "", NameRequest{Original: "doc.pdf"}, false, "doc.pdf"},
		{"MultipleNoPrefix", "", NameRequest{Original: "doc.pdf", FileNumber: 2}, true, "2_doc.pdf"},
		{"PlainPrefix", "out_", NameRequest{Original: "doc.pdf"}, false, "out_doc.pdf"},
		{"PlainPrefixMultiple", "out_", NameRequest{Original: "doc.pdf", FileNumber: 3}, true, "3_out_doc.pdf"},
		{"Basename", "[BASENAME]_p[CURRENTPAGE]", NameRequest{Original: "doc.pdf", Page: 7, FileNumber: 1}, true, "doc_p7.pdf"},
		{"Timestamp", "[TIMESTAMP]-", NameRequest{Original: "doc.pdf", Time: ts}, false, "20240309_140507-doc.pdf"},
		{"FileNumber", "part[FILENUMBER]-", NameRequest{Original: "doc.pdf", FileNumber: 4}, true, "part4-doc.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.prefix, tt.req, tt.multiple); got != tt.want {
				t.Fatalf("Name(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}
