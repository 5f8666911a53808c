// Package task defines the unit of work run by the execution service and the
// registry resolving a task for a parameter type.
package task

import (
	"context"

	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/model/parameter"
)

// Task performs one PDF operation. The registry builds a fresh task through its
// factory for every resolution, so a task serves a single execution.
type Task interface {
	Name() string
	Execute(ctx context.Context, params parameter.Parameters, monitor Monitor) ([]output.Document, error)
}

// Monitor receives progress from a running task.
type Monitor interface {
	Step(done, total int)
	Warn(msg string)
}

type nopMonitor struct{}

func (nopMonitor) Step(int, int) {}
func (nopMonitor) Warn(string)   {}

// NopMonitor discards progress.
func NopMonitor() Monitor { return nopMonitor{} }

// MonitorFuncs adapts plain functions to Monitor. Nil fields are ignored.
type MonitorFuncs struct {
	OnStep func(done, total int)
	OnWarn func(msg string)
}

func (m MonitorFuncs) Step(done, total int) {
	if m.OnStep != nil {
		m.OnStep(done, total)
	}
}

func (m MonitorFuncs) Warn(msg string) {
	if m.OnWarn != nil {
		m.OnWarn(msg)
	}
}
