// Package request turns flat, string based options (CLI flags, HTTP JSON) into
// typed task parameters.
package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/pdftask/engine"
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/model/page"
	"github.com/wudi/pdftask/model/parameter"
	"github.com/wudi/pdftask/model/pdf"
	"github.com/wudi/pdftask/task"
)

// Options covers every task. Fields a task does not use are ignored.
type Options struct {
	Pages  string `json:"pages,omitempty"`
	Set    string `json:"set,omitempty"`
	Script string `json:"script,omitempty"`

	// InputPages holds per input ranges for merge, aligned with the sources.
	InputPages       []string `json:"input_pages,omitempty"`
	BlankPageBetween bool     `json:"blank_page_between,omitempty"`

	Step       int    `json:"step,omitempty"`
	SplitAfter string `json:"split_after,omitempty"`

	Rotation int `json:"rotation,omitempty"`

	Algorithm     string `json:"algorithm,omitempty"`
	UserPassword  string `json:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty"`
	Permissions   string `json:"permissions,omitempty"`

	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Keywords string `json:"keywords,omitempty"`

	Version   string `json:"version,omitempty"`
	Compress  bool   `json:"compress,omitempty"`
	Overwrite bool   `json:"overwrite,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

// Tasks lists the names Build accepts.
func Tasks() []string {
	return []string{
		engine.NameExtract, engine.NameMerge, engine.NameSplit, engine.NameSplitEvery,
		engine.NameSplitSet, engine.NameRotate, engine.NameEncrypt, engine.NameDecrypt, engine.NameMetadata,
	}
}

// Build creates the parameters of the named task. Errors are *task.Error of
// kind task.ErrTaskNotFound for unknown names and task.ErrInvalidParameters
// otherwise.
func Build(name string, sources []input.Source, opts Options, dst output.Output) (parameter.Parameters, error) {
	params, err := build(name, sources, opts, dst)
	if err != nil {
		return nil, task.Wrap(name, task.ErrInvalidParameters, err)
	}
	return params, nil
}

func build(name string, sources []input.Source, opts Options, dst output.Output) (parameter.Parameters, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%s: no input", name)
	}
	if name != engine.NameMerge && len(sources) != 1 {
		return nil, fmt.Errorf("%s: expects one input, got %d", name, len(sources))
	}
	src := sources[0]

	var (
		params parameter.Parameters
		err    error
	)
	switch name {
	case engine.NameExtract:
		p := &parameter.ExtractPages{Source: src}
		p.PageSelection, err = selection(opts)
		params = p
	case engine.NameMerge:
		p := parameter.NewMerge()
		p.BlankPageBetween = opts.BlankPageBetween
		for i, s := range sources {
			var ranges []page.Range
			if i < len(opts.InputPages) && strings.TrimSpace(opts.InputPages[i]) != "" {
				if ranges, err = page.ParseRanges(opts.InputPages[i]); err != nil {
					return nil, err
				}
			}
			p.AddInput(s, ranges...)
		}
		params = p
	case engine.NameSplit:
		p := &parameter.SplitByPages{Source: src}
		p.Pages, err = parseInts(opts.SplitAfter)
		params = p
	case engine.NameSplitEvery:
		params = &parameter.SplitEvery{Source: src, Step: opts.Step}
	case engine.NameSplitSet:
		p := &parameter.SimpleSplit{Source: src}
		p.Set, err = page.ParsePredefinedSet(defaultString(opts.Set, "all"))
		params = p
	case engine.NameRotate:
		p := &parameter.Rotate{Source: src}
		if p.Rotation, err = pdf.ParseRotation(opts.Rotation); err == nil && (opts.Pages != "" || opts.Set != "" || opts.Script != "") {
			p.PageSelection, err = selection(opts)
		}
		params = p
	case engine.NameEncrypt:
		p := &parameter.Encrypt{Source: src, UserPassword: opts.UserPassword, OwnerPassword: opts.OwnerPassword}
		if p.Algorithm, err = pdf.ParseEncryption(defaultString(opts.Algorithm, "aes-256")); err == nil {
			p.Permissions, err = pdf.ParsePermissions(defaultString(opts.Permissions, "all"))
		}
		params = p
	case engine.NameDecrypt:
		params = &parameter.Decrypt{Source: src}
	case engine.NameMetadata:
		params = &parameter.SetMetadata{Source: src, Metadata: parameter.Metadata{
			Title: opts.Title, Author: opts.Author, Subject: opts.Subject, Keywords: opts.Keywords,
		}}
	default:
		return nil, task.Errorf(task.ErrTaskNotFound, "unknown task %q", name)
	}
	if err != nil {
		return nil, err
	}

	out := params.Output()
	out.Destination = dst
	out.Overwrite = opts.Overwrite
	out.Compress = opts.Compress
	out.Prefix = opts.Prefix
	if opts.Version != "" {
		if out.Version, err = pdf.ParseVersion(opts.Version); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func selection(opts Options) (parameter.PageSelection, error) {
	var sel parameter.PageSelection
	var err error
	if opts.Pages != "" {
		if sel.Ranges, err = page.ParseRanges(opts.Pages); err != nil {
			return sel, err
		}
	}
	if opts.Set != "" {
		if sel.Set, err = page.ParsePredefinedSet(opts.Set); err != nil {
			return sel, err
		}
	}
	sel.Script = opts.Script
	return sel, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("page number %q: %w", f, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
