// Package engine implements the PDF tasks on top of pdfcpu.
//
// Every task follows the same path: load the source (decrypting it when a
// password is supplied), select pages, transform with pdfcpu, then finalize:
// creator marker, metadata, compression, and the requested header version.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/page"
	"github.com/wudi/pdftask/model/parameter"
	"github.com/wudi/pdftask/model/pdf"
	"github.com/wudi/pdftask/observability"
	"github.com/wudi/pdftask/recovery"
	"github.com/wudi/pdftask/scripting"
	"github.com/wudi/pdftask/security"
	"github.com/wudi/pdftask/task"
)

// DefaultCreator is written to the Creator entry of every produced document.
const DefaultCreator = "pdftask"

var (
	ErrEmptySelection = errors.New("no pages selected")
	ErrNotPDF         = errors.New("not a pdf document")
)

func init() {
	// keep pdfcpu from creating its configuration directory under the user's home
	model.ConfigPath = "disable"
}

type Config struct {
	Creator string
	// DefaultVersion applies when the parameters request none. Default 1.7.
	DefaultVersion pdf.Version
	// Strict runs pdfcpu validation in strict mode.
	Strict   bool
	Limits   security.Limits
	Recovery recovery.Strategy
	Logger   observability.Logger
}

type Engine struct {
	cfg Config
	log observability.Logger
}

func New(cfg Config) *Engine {
	if cfg.Creator == "" {
		cfg.Creator = DefaultCreator
	}
	if !cfg.DefaultVersion.IsSet() {
		cfg.DefaultVersion = pdf.Version17
	}
	cfg.Limits = cfg.Limits.Normalize()
	if cfg.Recovery == nil {
		cfg.Recovery = recovery.NewStrictStrategy()
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	return &Engine{cfg: cfg, log: cfg.Logger}
}

func (e *Engine) Creator() string { return e.cfg.Creator }

func (e *Engine) configuration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if e.cfg.Strict {
		conf.ValidationMode = model.ValidationStrict
	}
	conf.UserPW = password
	conf.OwnerPW = password
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// document is a loaded, unencrypted source.
type document struct {
	name      string
	data      []byte
	pages     int
	encrypted bool
}

func (e *Engine) load(ctx context.Context, src input.Source) (*document, error) {
	data, err := input.ReadAll(ctx, src, e.cfg.Limits.MaxSourceSize)
	if err != nil {
		return nil, task.Wrap("", task.ErrSource, err)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, task.Wrap("", task.ErrSource, fmt.Errorf("%s: %w", src.Name(), ErrNotPDF))
	}
	conf := e.configuration(src.Password())
	pctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, task.Wrap("", task.ErrSource, fmt.Errorf("read %s: %w", src.Name(), err))
	}
	doc := &document{name: src.Name(), data: data, encrypted: pctx.Encrypt != nil}
	if doc.encrypted {
		var buf bytes.Buffer
		if err := api.Decrypt(bytes.NewReader(data), &buf, e.configuration(src.Password())); err != nil {
			return nil, task.Wrap("", task.ErrSource, fmt.Errorf("decrypt %s: %w", src.Name(), err))
		}
		doc.data = buf.Bytes()
	}
	if doc.pages, err = api.PageCount(bytes.NewReader(doc.data), e.configuration("")); err != nil {
		return nil, task.Wrap("", task.ErrSource, fmt.Errorf("count pages of %s: %w", src.Name(), err))
	}
	e.log.Debug("source loaded",
		observability.String("source", doc.name),
		observability.Int("pages", doc.pages),
		observability.Int("bytes", len(data)),
		observability.Bool("encrypted", doc.encrypted),
	)
	return doc, nil
}

// selectPages resolves a selection against doc. An empty result is an error.
func (e *Engine) selectPages(ctx context.Context, doc *document, sel parameter.PageSelection) ([]int, error) {
	var pages []int
	switch {
	case sel.Script != "":
		s, err := scripting.Compile(sel.Script)
		if err != nil {
			return nil, err
		}
		view, err := e.pageInfos(doc)
		if err != nil {
			return nil, err
		}
		if pages, err = s.Select(ctx, view, e.cfg.Limits.MaxScriptTime); err != nil {
			return nil, err
		}
	case len(sel.Ranges) > 0:
		pages = page.Collect(doc.pages, sel.Ranges)
	default:
		pages = sel.Set.Pages(doc.pages)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s (%d pages): %w", doc.name, doc.pages, ErrEmptySelection)
	}
	return pages, nil
}

func (e *Engine) pageInfos(doc *document) (scripting.Pages, error) {
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc.data), e.configuration(""))
	if err != nil {
		return nil, err
	}
	dims, err := pctx.PageDims()
	if err != nil {
		return nil, err
	}
	out := make(scripting.Pages, len(dims))
	for i, d := range dims {
		out[i] = scripting.PageInfo{Number: i + 1, Width: d.Width, Height: d.Height}
		d, _, inh, err := pctx.PageDict(i+1, false)
		if err != nil {
			return nil, err
		}
		if inh != nil {
			out[i].Rotation = inh.Rotate
		}
		if r := d.IntEntry("Rotate"); r != nil {
			out[i].Rotation = *r
		}
	}
	return out, nil
}

// selection renders pages as a pdfcpu page selection.
func selection(pages []int) []string {
	ranges := page.Compact(pages)
	out := make([]string, len(ranges))
	for i, r := range ranges {
		out[i] = r.String()
	}
	return out
}

// trim keeps pages of doc, in document order.
func (e *Engine) trim(doc *document, pages []int) ([]byte, error) {
	if len(pages) == doc.pages {
		return doc.data, nil
	}
	var buf bytes.Buffer
	if err := api.Trim(bytes.NewReader(doc.data), &buf, selection(pages), e.configuration("")); err != nil {
		return nil, fmt.Errorf("trim %s: %w", doc.name, err)
	}
	return buf.Bytes(), nil
}

// targetVersion is the requested version, or the default raised to what the
// parameters need.
func (e *Engine) targetVersion(params parameter.Parameters) pdf.Version {
	if v := params.Output().Version; v.IsSet() {
		return v
	}
	return pdf.Max(e.cfg.DefaultVersion, params.MinVersion())
}

// finalize rewrites data with the creator marker, the metadata entries and the
// compression setting of params, and stamps the target version.
func (e *Engine) finalize(ctx context.Context, data []byte, params parameter.Parameters, meta map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	conf := e.configuration("")
	compress := params.Output().Compress
	conf.WriteObjectStream = compress
	conf.WriteXRefStream = compress

	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	entries := map[string]string{"Creator": e.cfg.Creator}
	for k, v := range meta {
		entries[k] = v
	}
	if err := setInfo(pctx, entries); err != nil {
		return nil, err
	}
	if err := dropCatalogVersion(pctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	out := buf.Bytes()
	version := e.targetVersion(params)
	if err := stampVersion(out, version); err != nil {
		return nil, err
	}
	e.log.Debug("document finalized",
		observability.String("version", version.String()),
		observability.Bool("compress", compress),
		observability.Int("bytes", len(out)),
		observability.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func dropCatalogVersion(pctx *model.Context) error {
	pctx.RootVersion = nil
	root, err := pctx.Catalog()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	delete(root, "Version")
	return nil
}

// stampVersion rewrites the header version in place. Both versions are three
// bytes wide so object offsets stay valid.
func stampVersion(data []byte, v pdf.Version) error {
	if !v.IsSet() {
		return fmt.Errorf("%w: %d", pdf.ErrUnknownVersion, int(v))
	}
	if len(data) < 8 || !bytes.HasPrefix(data, []byte("%PDF-")) {
		return ErrNotPDF
	}
	copy(data[5:8], v.String())
	return nil
}

// headerVersion reads the version from the first line of data.
func headerVersion(data []byte) (pdf.Version, error) {
	if len(data) < 8 || !bytes.HasPrefix(data, []byte("%PDF-")) {
		return pdf.VersionUnset, ErrNotPDF
	}
	return pdf.ParseVersion(string(data[:8]))
}
