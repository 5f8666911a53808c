// Package input describes where a task reads its PDF documents from.
package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/wudi/pdftask/security"
)

var (
	ErrSourceConsumed = errors.New("stream source already consumed")
	ErrNilSource      = errors.New("nil source")
)

// Source is a PDF input: a byte stream, a display name and an optional password.
type Source interface {
	Name() string
	Password() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// StreamSource wraps a reader. It can be opened once.
type StreamSource struct {
	r        io.Reader
	name     string
	password string

	mu     sync.Mutex
	opened bool
}

// NewStreamSource returns a source without password.
func NewStreamSource(r io.Reader, name string) *StreamSource {
	return &StreamSource{r: r, name: name}
}

func NewStreamSourceWithPassword(r io.Reader, name, password string) *StreamSource {
	return &StreamSource{r: r, name: name, password: password}
}

// NewBytesSource is a stream source over an in-memory document.
func NewBytesSource(data []byte, name string) *StreamSource {
	return NewStreamSource(bytes.NewReader(data), name)
}

func (s *StreamSource) Name() string     { return s.name }
func (s *StreamSource) Password() string { return s.password }

func (s *StreamSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil, fmt.Errorf("%s: %w", s.name, ErrSourceConsumed)
	}
	s.opened = true
	if rc, ok := s.r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(s.r), nil
}

// FileSource reads a document from disk.
type FileSource struct {
	path     string
	password string
}

func NewFileSource(path string) *FileSource { return &FileSource{path: path} }

func NewFileSourceWithPassword(path, password string) *FileSource {
	return &FileSource{path: path, password: password}
}

func (s *FileSource) Name() string     { return filepath.Base(s.path) }
func (s *FileSource) Password() string { return s.password }
func (s *FileSource) Path() string     { return s.path }

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.path)
}

// Validate checks that src can be used as a task input.
func Validate(src Source) error {
	if src == nil {
		return ErrNilSource
	}
	if src.Name() == "" {
		return errors.New("source name is empty")
	}
	return nil
}

// ReadAll reads the whole source, failing once it grows beyond max bytes.
func ReadAll(ctx context.Context, src Source, max int64) ([]byte, error) {
	if err := Validate(src); err != nil {
		return nil, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	if max <= 0 {
		max = security.DefaultLimits().MaxSourceSize
	}
	data, err := io.ReadAll(io.LimitReader(rc, max+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%s: %w (%d bytes)", src.Name(), security.ErrSourceTooLarge, max)
	}
	return data, nil
}
