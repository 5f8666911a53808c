// Package pdftest builds small valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Options shapes a generated document.
type Options struct {
	Pages int
	// Version is the header version, "1.4" when empty.
	Version  string
	Producer string
	Title    string
	// Landscape lists 1-based pages laid out 792x612 instead of 612x792.
	Landscape []int
}

// Pages returns a document with n pages.
func Pages(n int) []byte { return Build(Options{Pages: n}) }

// Build writes a classic xref table document: catalog, page tree, info dictionary,
// and one page plus content stream per page.
func Build(opts Options) []byte {
	if opts.Version == "" {
		opts.Version = "1.4"
	}
	if opts.Producer == "" {
		opts.Producer = "pdftest"
	}
	landscape := map[int]bool{}
	for _, p := range opts.Landscape {
		landscape[p] = true
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", opts.Version)

	size := 4 + 2*opts.Pages
	offsets := make([]int, size)
	obj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := &bytes.Buffer{}
	for i := 0; i < opts.Pages; i++ {
		fmt.Fprintf(kids, "%d 0 R ", 4+2*i)
	}
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), opts.Pages))

	info := fmt.Sprintf("<< /Producer (%s)", opts.Producer)
	if opts.Title != "" {
		info += fmt.Sprintf(" /Title (%s)", opts.Title)
	}
	obj(3, info+" >>")

	for i := 0; i < opts.Pages; i++ {
		pageNum := 4 + 2*i
		box := "0 0 612 792"
		if landscape[i+1] {
			box = "0 0 792 612"
		}
		obj(pageNum, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [%s] /Resources << >> /Contents %d 0 R >>", box, pageNum+1))
		content := fmt.Sprintf("0 0 m %d %d l S", 100+i, 100+i)
		obj(pageNum+1, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R /Info 3 0 R >>\n", size)
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

// WriteFile stores a document with n pages under dir and returns its path.
func WriteFile(t testing.TB, dir, name string, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Pages(n), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
