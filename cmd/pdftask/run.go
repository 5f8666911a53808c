package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/wudi/pdftask/config"
	"github.com/wudi/pdftask/engine"
	"github.com/wudi/pdftask/history"
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/notification"
	"github.com/wudi/pdftask/observability"
	"github.com/wudi/pdftask/request"
	"github.com/wudi/pdftask/server"
	"github.com/wudi/pdftask/service"
	"github.com/wudi/pdftask/storage"
	"github.com/wudi/pdftask/task"
)

type app struct {
	cfg     config.Config
	log     observability.Logger
	engine  *engine.Engine
	tasks   *task.ExecutionContext
	service *service.Service
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func setup(ctx context.Context, opts options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	zl, err := observability.NewZap(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: observability.FromZap(zl)}
	a.closers = append(a.closers, func() { _ = zl.Sync() })

	a.engine = engine.New(cfg.Engine(a.log))
	a.tasks = task.NewExecutionContext()
	if err := engine.Register(a.tasks, a.engine); err != nil {
		a.Close()
		return nil, err
	}

	notifier := notification.NewDispatcher()
	if cfg.History.DSN != "" {
		db, err := history.Open(ctx, cfg.History.DSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		rec := history.NewRecorder(db, cfg.History.Table, a.log)
		if err := rec.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		notifier.Subscribe(rec, notification.Completed, notification.Failed)
	}

	a.service = service.New(service.Config{
		Resolver:          a.tasks,
		Logger:            a.log,
		Notifier:          notifier,
		DisableValidation: !cfg.Task.Validate,
		Limits:            cfg.SecurityLimits(),
	})
	zl.Debug("configured", zap.String("config", opts.configPath), zap.Bool("history", cfg.History.DSN != ""))
	return a, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	a, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	switch opts.command {
	case "tasks":
		return a.listTasks(stdout, opts.jsonOut)
	case "info":
		return a.info(ctx, opts, stdout)
	case "serve":
		return a.serve(ctx)
	default:
		return a.runTask(ctx, opts, stdout, stderr)
	}
}

func (a *app) listTasks(stdout io.Writer, asJSON bool) error {
	names := a.tasks.Names()
	if asJSON {
		return json.NewEncoder(stdout).Encode(names)
	}
	for _, n := range names {
		fmt.Fprintln(stdout, n)
	}
	return nil
}

func (a *app) info(ctx context.Context, opts options, stdout io.Writer) error {
	var infos []engine.Info
	for _, path := range opts.inputs {
		info, err := a.engine.Inspect(ctx, input.NewFileSourceWithPassword(path, opts.password))
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}
	if opts.jsonOut {
		return json.NewEncoder(stdout).Encode(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(stdout, "%s: %d pages, PDF %s, %s", info.Name, info.Pages, info.VersionString(), humanize.Bytes(uint64(info.Size)))
		if info.Encrypted {
			fmt.Fprint(stdout, ", encrypted")
		}
		fmt.Fprintln(stdout)
		for _, kv := range [][2]string{
			{"Title", info.Title}, {"Author", info.Author}, {"Subject", info.Subject},
			{"Keywords", info.Keywords}, {"Creator", info.Creator}, {"Producer", info.Producer},
		} {
			if kv[1] != "" {
				fmt.Fprintf(stdout, "  %-9s %s\n", kv[0]+":", kv[1])
			}
		}
	}
	return nil
}

func (a *app) serve(ctx context.Context) error {
	sc := a.cfg.Server
	srv, err := server.New(server.Config{
		Addr:           sc.Addr,
		MaxConnections: sc.MaxConnections,
		RateLimit:      sc.RateLimit,
		AllowedOrigins: sc.AllowedOrigins,
		TokenHash:      sc.TokenHash,
		MaxUpload:      a.cfg.MaxUploadBytes(),
		Logger:         a.log,
	}, a.service, a.engine, a.tasks.Names())
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

func (a *app) runTask(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	dst, location, err := a.destination(ctx, opts)
	if err != nil {
		return err
	}
	sources := make([]input.Source, len(opts.inputs))
	for i, path := range opts.inputs {
		sources[i] = input.NewFileSourceWithPassword(path, opts.password)
	}
	params, err := request.Build(opts.command, sources, opts.request, dst)
	if err != nil {
		return err
	}
	if opts.verbose {
		a.service.Notifier().Subscribe(progressPrinter(stderr), notification.Progress, notification.Warning)
	}

	res, err := a.service.Execute(ctx, params)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return json.NewEncoder(stdout).Encode(struct {
			service.Result
			Location string `json:"location"`
		}{res, location})
	}
	fmt.Fprintf(stdout, "%s: wrote %d document(s), %s, to %s in %s\n",
		res.Task, len(res.Documents), humanize.Bytes(uint64(res.Bytes)), location, res.Elapsed.Round(time.Millisecond))
	return nil
}

// destination picks the output for -o: a .zip archive, a single file for
// single-document tasks, or a directory. -remote stores in object storage.
func (a *app) destination(ctx context.Context, opts options) (output.Output, string, error) {
	if opts.remote {
		sc := a.cfg.Storage
		store, err := storage.New(ctx, storage.Config{
			Endpoint: sc.Endpoint, AccessKey: sc.AccessKey, SecretKey: sc.SecretKey,
			Bucket: sc.Bucket, Region: sc.Region, Prefix: sc.Prefix, Secure: sc.Secure,
		})
		if err != nil {
			return nil, "", err
		}
		return store, store.URL(""), nil
	}
	switch {
	case strings.EqualFold(filepath.Ext(opts.out), ".zip"):
		return output.NewArchiveFile(opts.out), opts.out, nil
	case multiDocument(opts.command):
		return output.NewDirectory(opts.out), opts.out, nil
	default:
		return output.NewFile(opts.out), opts.out, nil
	}
}

func multiDocument(name string) bool {
	switch name {
	case engine.NameSplit, engine.NameSplitEvery, engine.NameSplitSet:
		return true
	}
	return false
}

func progressPrinter(w io.Writer) notification.Listener {
	return notification.ListenerFunc(func(e notification.Event) {
		switch e.Kind {
		case notification.Progress:
			fmt.Fprintf(w, "%s: %3.0f%% (%d/%d)\n", e.Task, e.Percent(), e.Done, e.Total)
		case notification.Warning:
			fmt.Fprintf(w, "%s: warning: %s\n", e.Task, e.Message)
		}
	})
}
