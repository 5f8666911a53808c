package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/model/page"
	"github.com/wudi/pdftask/model/parameter"
	"github.com/wudi/pdftask/observability"
	"github.com/wudi/pdftask/recovery"
	"github.com/wudi/pdftask/task"
)

// Task names as registered by Register.
const (
	NameExtract    = "extract"
	NameMerge      = "merge"
	NameSplit      = "split"
	NameSplitEvery = "split-every"
	NameSplitSet   = "split-set"
	NameRotate     = "rotate"
	NameEncrypt    = "encrypt"
	NameDecrypt    = "decrypt"
	NameMetadata   = "metadata"
)

// Register binds every task of e to its parameter type.
func Register(ec *task.ExecutionContext, e *Engine) error {
	regs := []struct {
		name      string
		prototype parameter.Parameters
		factory   task.Factory
	}{
		{NameExtract, &parameter.ExtractPages{}, func() task.Task { return &ExtractTask{e} }},
		{NameMerge, &parameter.Merge{}, func() task.Task { return &MergeTask{e} }},
		{NameSplit, &parameter.SplitByPages{}, func() task.Task { return &SplitTask{e, NameSplit} }},
		{NameSplitEvery, &parameter.SplitEvery{}, func() task.Task { return &SplitTask{e, NameSplitEvery} }},
		{NameSplitSet, &parameter.SimpleSplit{}, func() task.Task { return &SplitTask{e, NameSplitSet} }},
		{NameRotate, &parameter.Rotate{}, func() task.Task { return &RotateTask{e} }},
		{NameEncrypt, &parameter.Encrypt{}, func() task.Task { return &EncryptTask{e} }},
		{NameDecrypt, &parameter.Decrypt{}, func() task.Task { return &DecryptTask{e} }},
		{NameMetadata, &parameter.SetMetadata{}, func() task.Task { return &MetadataTask{e} }},
	}
	for _, r := range regs {
		if err := ec.Register(r.name, r.prototype, r.factory); err != nil {
			return err
		}
	}
	return nil
}

func unexpected(name string, params parameter.Parameters) error {
	return task.Errorf(task.ErrInvalidParameters, "%s cannot run %T", name, params)
}

func single(params parameter.Parameters, original string, data []byte) []output.Document {
	name := output.Name(params.Output().Prefix, output.NameRequest{Original: original, Page: 1, FileNumber: 1}, false)
	return []output.Document{{Name: name, Data: data}}
}

type ExtractTask struct{ e *Engine }

func (t *ExtractTask) Name() string { return NameExtract }

func (t *ExtractTask) Execute(ctx context.Context, params parameter.Parameters, monitor task.Monitor) ([]output.Document, error) {
	p, ok := params.(*parameter.ExtractPages)
	if !ok {
		return nil, unexpected(t.Name(), params)
	}
	doc, err := t.e.load(ctx, p.Source)
	if err != nil {
		return nil, err
	}
	monitor.Step(1, 3)
	pages, err := t.e.selectPages(ctx, doc, p.PageSelection)
	if err != nil {
		return nil, err
	}
	data, err := t.e.trim(doc, pages)
	if err != nil {
		return nil, err
	}
	monitor.Step(2, 3)
	if data, err = t.e.finalize(ctx, data, p, nil); err != nil {
		return nil, err
	}
	monitor.Step(3, 3)
	return single(p, doc.name, data), nil
}

type MergeTask struct{ e *Engine }

func (t *MergeTask) Name() string { return NameMerge }

func (t *MergeTask) Execute(ctx context.Context, params parameter.Parameters, monitor task.Monitor) ([]output.Document, error) {
	p, ok := params.(*parameter.Merge)
	if !ok {
		return nil, unexpected(t.Name(), params)
	}
	if err := t.e.cfg.Limits.CheckSources(len(p.Inputs)); err != nil {
		return nil, task.Wrap("", task.ErrInvalidParameters, err)
	}
	total := len(p.Inputs) + 1
	var parts [][]byte
	for i, in := range p.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := t.part(ctx, in)
		if err != nil {
			name := "<nil>"
			if in.Source != nil {
				name = in.Source.Name()
			}
			loc := recovery.Location{Source: name, Index: i, Component: NameMerge}
			if t.e.cfg.Recovery.OnError(ctx, err, loc) == recovery.ActionSkip {
				t.e.log.Warn("merge input skipped", observability.String("source", name), observability.Error("error", err))
				monitor.Warn(fmt.Sprintf("input %d (%s) skipped: %v", i, name, err))
				continue
			}
			return nil, err
		}
		parts = append(parts, data)
		monitor.Step(i+1, total)
	}
	if len(parts) == 0 {
		return nil, task.Errorf(task.ErrExecution, "merge: no usable input")
	}

	merged := parts[0]
	if len(parts) > 1 {
		rsc := make([]io.ReadSeeker, len(parts))
		for i, b := range parts {
			rsc[i] = bytes.NewReader(b)
		}
		var buf bytes.Buffer
		if err := api.MergeRaw(rsc, &buf, p.BlankPageBetween, t.e.configuration("")); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		merged = buf.Bytes()
	}
	data, err := t.e.finalize(ctx, merged, p, nil)
	if err != nil {
		return nil, err
	}
	monitor.Step(total, total)
	return single(p, "merged.pdf", data), nil
}

// part loads one merge input reduced to its ranges.
func (t *MergeTask) part(ctx context.Context, in parameter.MergeInput) ([]byte, error) {
	doc, err := t.e.load(ctx, in.Source)
	if err != nil {
		return nil, err
	}
	if len(in.Ranges) == 0 {
		return doc.data, nil
	}
	pages := page.Collect(doc.pages, in.Ranges)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s (%d pages): %w", doc.name, doc.pages, ErrEmptySelection)
	}
	return t.e.trim(doc, pages)
}

// SplitTask serves the three split parameter types.
type SplitTask struct {
	e    *Engine
	name string
}

func (t *SplitTask) Name() string { return t.name }

func (t *SplitTask) Execute(ctx context.Context, params parameter.Parameters, monitor task.Monitor) ([]output.Document, error) {
	var (
		chunks func(total int) [][]int
		src    = params.Sources()
	)
	switch p := params.(type) {
	case *parameter.SplitByPages:
		chunks = func(total int) [][]int { return splitAfter(total, p.Pages) }
	case *parameter.SplitEvery:
		chunks = func(total int) [][]int { return splitEvery(total, p.Step) }
	case *parameter.SimpleSplit:
		chunks = func(total int) [][]int { return splitAfter(total, p.Set.Pages(total)) }
	default:
		return nil, unexpected(t.Name(), params)
	}
	doc, err := t.e.load(ctx, src[0])
	if err != nil {
		return nil, err
	}
	parts := chunks(doc.pages)
	if err := t.e.cfg.Limits.CheckDocuments(len(parts)); err != nil {
		return nil, task.Wrap("", task.ErrExecution, err)
	}
	now := time.Now()
	docs := make([]output.Document, 0, len(parts))
	for i, pages := range parts {
		data, err := t.e.trim(doc, pages)
		if err != nil {
			return nil, err
		}
		if data, err = t.e.finalize(ctx, data, params, nil); err != nil {
			return nil, err
		}
		name := output.Name(params.Output().Prefix, output.NameRequest{
			Original:   doc.name,
			Page:       pages[0],
			FileNumber: i + 1,
			Time:       now,
		}, true)
		docs = append(docs, output.Document{Name: name, Data: data})
		monitor.Step(i+1, len(parts))
	}
	return docs, nil
}

// splitAfter cuts a document of total pages after each of the given pages.
func splitAfter(total int, after []int) [][]int {
	points := append([]int(nil), after...)
	sort.Ints(points)
	var out [][]int
	start := 1
	for _, p := range points {
		if p < start || p >= total {
			continue
		}
		out = append(out, pageSpan(start, p))
		start = p + 1
	}
	if start <= total {
		out = append(out, pageSpan(start, total))
	}
	return out
}

func splitEvery(total, step int) [][]int {
	var out [][]int
	for start := 1; start <= total; start += step {
		end := start + step - 1
		if end > total {
			end = total
		}
		out = append(out, pageSpan(start, end))
	}
	return out
}

func pageSpan(start, end int) []int {
	return page.Range{Start: start, End: end}.Pages(end)
}

type RotateTask struct{ e *Engine }

func (t *RotateTask) Name() string { return NameRotate }

func (t *RotateTask) Execute(ctx context.Context, params parameter.Parameters, monitor task.Monitor) ([]output.Document, error) {
	p, ok := params.(*parameter.Rotate)
	if !ok {
		return nil, unexpected(t.Name(), params)
	}
	doc, err := t.e.load(ctx, p.Source)
	if err != nil {
		return nil, err
	}
	monitor.Step(1, 3)
	data := doc.data
	if p.Rotation != 0 {
		var sel []string
		if !p.PageSelection.IsEmpty() {
			pages, err := t.e.selectPages(ctx, doc, p.PageSelection)
			if err != nil {
				return nil, err
			}
			sel = selection(pages)
		}
		var buf bytes.Buffer
		if err := api.Rotate(bytes.NewReader(doc.data), &buf, int(p.Rotation), sel, t.e.configuration("")); err != nil {
			return nil, fmt.Errorf("rotate %s: %w", doc.name, err)
		}
		data = buf.Bytes()
	}
	monitor.Step(2, 3)
	if data, err = t.e.finalize(ctx, data, p, nil); err != nil {
		return nil, err
	}
	monitor.Step(3, 3)
	return single(p, doc.name, data), nil
}

type EncryptTask struct{ e *Engine }

func (t *EncryptTask) Name() string { return NameEncrypt }

func (t *EncryptTask) Execute(ctx context.Context, params parameter.Parameters, monitor task.Monitor) ([]output.Document, error) {
	p, ok := params.(*parameter.Encrypt)
	if !ok {
		return nil, unexpected(t.Name(), params)
	}
	doc, err := t.e.load(ctx, p.Source)
	if err != nil {
		return nil, err
	}
	monitor.Step(1, 3)
	data, err := t.e.finalize(ctx, doc.data, p, nil)
	if err != nil {
		return nil, err
	}
	monitor.Step(2, 3)

	conf := t.e.configuration("")
	conf.UserPW = p.UserPassword
	conf.OwnerPW = p.OwnerPassword
	conf.EncryptUsingAES = p.Algorithm.AES()
	conf.EncryptKeyLength = p.Algorithm.KeyLength()
	conf.Permissions = model.PermissionFlags(p.Permissions.Flags())
	conf.WriteObjectStream = p.Compress
	conf.WriteXRefStream = p.Compress
	var buf bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(data), &buf, conf); err != nil {
		return nil, fmt.Errorf("encrypt %s: %w", doc.name, err)
	}
	out := buf.Bytes()
	if err := stampVersion(out, t.e.targetVersion(p)); err != nil {
		return nil, err
	}
	monitor.Step(3, 3)
	return single(p, doc.name, out), nil
}

type DecryptTask struct{ e *Engine }

func (t *DecryptTask) Name() string { return NameDecrypt }

func (t *DecryptTask) Execute(ctx context.Context, params parameter.Parameters, monitor task.Monitor) ([]output.Document, error) {
	p, ok := params.(*parameter.Decrypt)
	if !ok {
		return nil, unexpected(t.Name(), params)
	}
	doc, err := t.e.load(ctx, p.Source)
	if err != nil {
		return nil, err
	}
	if !doc.encrypted {
		monitor.Warn(doc.name + " is not encrypted")
	}
	monitor.Step(1, 2)
	data, err := t.e.finalize(ctx, doc.data, p, nil)
	if err != nil {
		return nil, err
	}
	monitor.Step(2, 2)
	return single(p, doc.name, data), nil
}

type MetadataTask struct{ e *Engine }

func (t *MetadataTask) Name() string { return NameMetadata }

func (t *MetadataTask) Execute(ctx context.Context, params parameter.Parameters, monitor task.Monitor) ([]output.Document, error) {
	p, ok := params.(*parameter.SetMetadata)
	if !ok {
		return nil, unexpected(t.Name(), params)
	}
	doc, err := t.e.load(ctx, p.Source)
	if err != nil {
		return nil, err
	}
	monitor.Step(1, 2)
	data, err := t.e.finalize(ctx, doc.data, p, p.Metadata.Entries())
	if err != nil {
		return nil, err
	}
	monitor.Step(2, 2)
	return single(p, doc.name, data), nil
}
