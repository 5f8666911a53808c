package scripting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dop251/goja"

	"github.com/wudi/pdftask/security"
)

// Selector picks pages with a JavaScript boolean expression evaluated once per page.
// The expression sees `page` (see RegisterDocument) and `doc`, for example
// "page.number % 3 == 0" or "page.landscape".
type Selector struct {
	expr string
}

// Compile checks the expression syntax.
func Compile(expr string) (*Selector, error) {
	if expr == "" {
		return nil, errors.New("empty page selector")
	}
	if _, err := goja.Compile("selector", "(function(page){ return ("+expr+"); })", true); err != nil {
		return nil, fmt.Errorf("page selector: %w", err)
	}
	return &Selector{expr: expr}, nil
}

func (s *Selector) String() string { return s.expr }

// Select returns the matching page numbers in ascending order. The script is
// interrupted when ctx ends or after limit, whichever comes first.
func (s *Selector) Select(ctx context.Context, doc Document, limit time.Duration) ([]int, error) {
	if limit <= 0 {
		limit = security.DefaultLimits().MaxScriptTime
	}
	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	engine := NewEngine()
	if err := engine.RegisterDocument(doc); err != nil {
		return nil, err
	}
	script := "(function(){ var out = []; for (var n = 1; n <= doc.pageCount; n++) { var page = getPage(n); if ((function(page){ return (" +
		s.expr + "); })(page)) { out.push(n); } } return out; })()"

	val, err := engine.Execute(runCtx, script)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", security.ErrSelectorTimeLimit, limit)
		}
		return nil, err
	}
	return toPages(val, doc.PageCount())
}

func toPages(val interface{}, total int) ([]int, error) {
	items, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("page selector returned %T", val)
	}
	pages := make([]int, 0, len(items))
	for _, it := range items {
		var n int
		switch v := it.(type) {
		case int64:
			n = int(v)
		case float64:
			n = int(v)
		case int:
			n = v
		default:
			return nil, fmt.Errorf("page selector returned %T", it)
		}
		if n >= 1 && n <= total {
			pages = append(pages, n)
		}
	}
	sort.Ints(pages)
	return pages, nil
}
