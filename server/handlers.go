package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/wudi/pdftask/engine"
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/observability"
	"github.com/wudi/pdftask/request"
	"github.com/wudi/pdftask/security"
	"github.com/wudi/pdftask/task"
)

func (s *Server) handleDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.docs)
}

func (s *Server) handleTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tasks": s.tasks})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "task")
	sources, opts, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	mem := output.NewMemory()
	params, err := request.Build(name, sources, opts, mem)
	if err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.exec.Execute(r.Context(), params)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("X-Execution-Id", res.ExecutionID)

	docs := mem.Documents()
	if len(docs) == 1 {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", docs[0].Name))
		w.Write(docs[0].Data)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".zip"))
	if err := output.NewArchive(w).Store(r.Context(), docs, true); err != nil {
		s.log.Error("write archive", observability.Error("error", err))
	}
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	sources, _, err := s.readForm(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if len(sources) != 1 {
		writeError(w, http.StatusBadRequest, "expected exactly one file", task.ErrInvalidParameters.Error())
		return
	}
	info, err := s.inspector.Inspect(r.Context(), sources[0])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		engine.Info
		Version string `json:"version"`
	}{Info: info, Version: info.VersionString()})
}

// readForm loads the uploaded files into memory sources and decodes the options field.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) ([]input.Source, request.Options, error) {
	var opts request.Options
	if r.ContentLength > s.cfg.MaxUpload {
		return nil, opts, fmt.Errorf("%w: upload of %d bytes over %d", security.ErrSourceTooLarge, r.ContentLength, s.cfg.MaxUpload)
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, opts, fmt.Errorf("%w: upload over %d bytes", security.ErrSourceTooLarge, tooLarge.Limit)
		}
		return nil, opts, task.Errorf(task.ErrInvalidParameters, "multipart form: %w", err)
	}
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return nil, opts, task.Errorf(task.ErrInvalidParameters, "options: %w", err)
		}
	}
	password := r.FormValue("password")
	var sources []input.Source
	for _, fh := range r.MultipartForm.File["file"] {
		data, err := readPart(fh)
		if err != nil {
			return nil, opts, task.Errorf(task.ErrSource, "%s: %w", fh.Filename, err)
		}
		sources = append(sources, input.NewStreamSourceWithPassword(bytes.NewReader(data), fh.Filename, password))
	}
	if len(sources) == 0 {
		return nil, opts, task.Errorf(task.ErrInvalidParameters, "no file part")
	}
	return sources, opts, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := ""
	var te *task.Error
	if errors.As(err, &te) {
		kind = te.Kind.Error()
	}
	switch {
	case errors.Is(err, security.ErrSourceTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, task.ErrInvalidParameters):
		status = http.StatusBadRequest
	case errors.Is(err, task.ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, task.ErrSource):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", observability.Error("error", err))
	}
	writeError(w, status, err.Error(), kind)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}
