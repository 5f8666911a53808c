// Package output holds the strategies that store the documents a task produces.
package output

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrOutputExists      = errors.New("output already exists")
	ErrNoDocuments       = errors.New("no documents to store")
	ErrSingleDocument    = errors.New("output accepts exactly one document")
	ErrDuplicateDocument = errors.New("duplicate document name")
)

// Document is one produced PDF.
type Document struct {
	Name string
	Data []byte
}

// Output stores the documents produced by a task execution.
// Implementations must fail with ErrOutputExists when overwrite is false and a
// destination is already taken.
type Output interface {
	Store(ctx context.Context, docs []Document, overwrite bool) error
}

// Size returns the total number of bytes in docs.
func Size(docs []Document) int64 {
	var n int64
	for _, d := range docs {
		n += int64(len(d.Data))
	}
	return n
}

func checkNames(docs []Document) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.Name == "" {
			return errors.New("document without name")
		}
		if _, ok := seen[d.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDocument, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}
