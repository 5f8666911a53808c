package security

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSourceTooLarge    = errors.New("source exceeds size limit")
	ErrTooManySources    = errors.New("too many sources")
	ErrTooManyDocuments  = errors.New("too many output documents")
	ErrSelectorTimeLimit = errors.New("page selector exceeded time limit")
)

// Limits defines resource boundaries for task execution.
// These limits keep a single request from exhausting memory or CPU.
type Limits struct {
	// Maximum size of one input source in bytes. Default: 256 MB.
	MaxSourceSize int64

	// Maximum number of sources accepted by multi-input tasks. Default: 500.
	MaxSources int

	// Maximum number of documents a single execution may produce. Default: 10,000.
	MaxOutputDocuments int

	// Maximum run time of a page selector script. Default: 2s.
	MaxScriptTime time.Duration

	// Maximum total execution time of a task. Default: 5m.
	MaxExecutionTime time.Duration
}

// DefaultLimits returns a Limits struct with safe default values.
func DefaultLimits() Limits {
	return Limits{
		MaxSourceSize:      256 * 1024 * 1024, // 256 MB
		MaxSources:         500,
		MaxOutputDocuments: 10000,
		MaxScriptTime:      2 * time.Second,
		MaxExecutionTime:   5 * time.Minute,
	}
}

// Normalize replaces unset (zero or negative) limits with their defaults.
func (l Limits) Normalize() Limits {
	def := DefaultLimits()
	if l.MaxSourceSize <= 0 {
		l.MaxSourceSize = def.MaxSourceSize
	}
	if l.MaxSources <= 0 {
		l.MaxSources = def.MaxSources
	}
	if l.MaxOutputDocuments <= 0 {
		l.MaxOutputDocuments = def.MaxOutputDocuments
	}
	if l.MaxScriptTime <= 0 {
		l.MaxScriptTime = def.MaxScriptTime
	}
	if l.MaxExecutionTime <= 0 {
		l.MaxExecutionTime = def.MaxExecutionTime
	}
	return l
}

func (l Limits) CheckSources(n int) error {
	if n > l.MaxSources {
		return fmt.Errorf("%w: %d > %d", ErrTooManySources, n, l.MaxSources)
	}
	return nil
}

func (l Limits) CheckDocuments(n int) error {
	if n > l.MaxOutputDocuments {
		return fmt.Errorf("%w: %d > %d", ErrTooManyDocuments, n, l.MaxOutputDocuments)
	}
	return nil
}
