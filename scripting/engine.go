package scripting

import (
	"context"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute executes a script against the registered document.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterDocument exposes the document to scripts.
	RegisterDocument(doc Document) error
}

// Document is the read-only view of a PDF that scripts can inspect.
type Document interface {
	PageCount() int
	// Page returns the page with the 1-based number n.
	Page(n int) (PageInfo, error)
}

// PageInfo describes one page. Width and Height are in points, before rotation.
type PageInfo struct {
	Number   int
	Width    float64
	Height   float64
	Rotation int
}

// Landscape reports whether the page is displayed wider than tall.
func (p PageInfo) Landscape() bool {
	w, h := p.Width, p.Height
	if p.Rotation%180 != 0 {
		w, h = h, w
	}
	return w > h
}

// Pages is a Document backed by a slice, Pages[0] being page 1.
type Pages []PageInfo

func (p Pages) PageCount() int { return len(p) }

func (p Pages) Page(n int) (PageInfo, error) {
	if n < 1 || n > len(p) {
		return PageInfo{}, ErrNoSuchPage
	}
	return p[n-1], nil
}
