// Package service is the entry point for running tasks: it resolves the task
// for a parameter type, runs it and stores what it produces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/model/parameter"
	"github.com/wudi/pdftask/notification"
	"github.com/wudi/pdftask/observability"
	"github.com/wudi/pdftask/security"
	"github.com/wudi/pdftask/task"
)

type Config struct {
	Resolver task.Resolver
	Logger   observability.Logger
	Tracer   observability.Tracer
	Notifier *notification.Dispatcher
	// DisableValidation skips parameters.Validate before running.
	DisableValidation bool
	Limits            security.Limits
}

// Result describes a successful execution.
type Result struct {
	ExecutionID string        `json:"execution_id"`
	Task        string        `json:"task"`
	Documents   []string      `json:"documents"`
	Bytes       int64         `json:"bytes"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

type Service struct {
	cfg Config
	log observability.Logger
}

func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NopTracer()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notification.NewDispatcher()
	}
	cfg.Limits = cfg.Limits.Normalize()
	return &Service{cfg: cfg, log: cfg.Logger}
}

// Notifier returns the dispatcher events are published on.
func (s *Service) Notifier() *notification.Dispatcher { return s.cfg.Notifier }

// Execute runs the task registered for the type of params. Every failure is a
// *task.Error whose kind tells where it happened.
func (s *Service) Execute(ctx context.Context, params parameter.Parameters) (Result, error) {
	id := uuid.NewString()
	start := time.Now()
	res := Result{ExecutionID: id}

	fail := func(span observability.Span, err *task.Error) (Result, error) {
		res.Elapsed = time.Since(start)
		if span != nil {
			span.SetError(err)
		}
		s.log.Error("task failed",
			observability.String("execution_id", id),
			observability.String("task", err.Task),
			observability.Duration("elapsed", res.Elapsed),
			observability.Error("error", err),
		)
		s.cfg.Notifier.Publish(notification.Event{Kind: notification.Failed, ExecutionID: id, Task: err.Task, Err: err, Elapsed: res.Elapsed})
		return res, err
	}

	if params == nil {
		return fail(nil, task.Errorf(task.ErrInvalidParameters, "nil parameters"))
	}
	if s.cfg.Resolver == nil {
		return fail(nil, task.Errorf(task.ErrTaskNotFound, "no execution context configured"))
	}
	tk, err := s.cfg.Resolver.Task(params)
	if err != nil {
		return fail(nil, task.Wrap("", task.ErrTaskNotFound, err))
	}
	name := tk.Name()
	res.Task = name

	ctx, span := s.cfg.Tracer.StartSpan(ctx, observability.SpanTaskExecute)
	defer span.Finish()
	span.SetTag(observability.TagTaskName, name)
	span.SetTag(observability.TagExecutionID, id)

	log := s.log.With(observability.String("execution_id", id), observability.String("task", name))
	log.Info("task started", observability.Int("sources", len(params.Sources())))
	s.cfg.Notifier.Publish(notification.Event{Kind: notification.Started, ExecutionID: id, Task: name})

	if !s.cfg.DisableValidation {
		if err := params.Validate(); err != nil {
			return fail(span, task.Wrap(name, task.ErrInvalidParameters, err))
		}
	}
	if err := s.cfg.Limits.CheckSources(len(params.Sources())); err != nil {
		return fail(span, task.Wrap(name, task.ErrInvalidParameters, err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Limits.MaxExecutionTime)
	defer cancel()

	monitor := task.MonitorFuncs{
		OnStep: func(done, total int) {
			s.cfg.Notifier.Publish(notification.Event{Kind: notification.Progress, ExecutionID: id, Task: name, Done: done, Total: total})
		},
		OnWarn: func(msg string) {
			log.Warn("task warning", observability.String("warning", msg))
			s.cfg.Notifier.Publish(notification.Event{Kind: notification.Warning, ExecutionID: id, Task: name, Message: msg})
		},
	}
	docs, err := run(ctx, tk, params, monitor)
	if err != nil {
		return fail(span, task.Wrap(name, task.ErrExecution, err))
	}
	if len(docs) == 0 {
		return fail(span, &task.Error{Task: name, Kind: task.ErrExecution, Err: output.ErrNoDocuments})
	}

	out := params.Output()
	if out == nil || out.Destination == nil {
		return fail(span, &task.Error{Task: name, Kind: task.ErrOutput, Err: errors.New("no destination")})
	}
	if err := out.Destination.Store(ctx, docs, out.Overwrite); err != nil {
		return fail(span, &task.Error{Task: name, Kind: task.ErrOutput, Err: err})
	}

	res.Elapsed = time.Since(start)
	res.Bytes = output.Size(docs)
	for _, d := range docs {
		res.Documents = append(res.Documents, d.Name)
	}
	span.SetTag(observability.TagDocumentCount, len(docs))
	span.SetTag(observability.MetricOutputBytes, res.Bytes)
	span.SetTag(observability.MetricTaskDuration, res.Elapsed)
	log.Info("task completed",
		observability.Int("documents", len(docs)),
		observability.Int64("bytes", res.Bytes),
		observability.Duration("elapsed", res.Elapsed),
	)
	s.cfg.Notifier.Publish(notification.Event{
		Kind:        notification.Completed,
		ExecutionID: id,
		Task:        name,
		Documents:   len(docs),
		Bytes:       res.Bytes,
		Elapsed:     res.Elapsed,
	})
	return res, nil
}

// run keeps a panicking task from taking the caller down.
func run(ctx context.Context, tk task.Task, params parameter.Parameters, monitor task.Monitor) (docs []output.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in task %s: %v", tk.Name(), r)
		}
	}()
	docs, err = tk.Execute(ctx, params, monitor)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return docs, err
}
