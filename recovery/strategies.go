package recovery

import (
	"fmt"
	"sync"
)

// StrictStrategy implements a fail-fast recovery strategy.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy skips failing inputs and remembers why.
// A canceled context still fails the task.
type LenientStrategy struct {
	mu     sync.Mutex
	Errors []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(ctx Context, err error, location Location) Action {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return ActionFail
		default:
		}
	}
	s.mu.Lock()
	s.Errors = append(s.Errors, fmt.Errorf("[%s] input %d (%s): %w", location.Component, location.Index, location.Source, err))
	s.mu.Unlock()
	return ActionSkip
}
