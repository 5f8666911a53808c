package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/pdf"
	"github.com/wudi/pdftask/task"
)

// Info summarizes a document.
type Info struct {
	Name      string      `json:"name"`
	Size      int64       `json:"size"`
	Pages     int         `json:"pages"`
	Version   pdf.Version `json:"-"`
	Encrypted bool        `json:"encrypted"`
	Creator   string      `json:"creator,omitempty"`
	Producer  string      `json:"producer,omitempty"`
	Title     string      `json:"title,omitempty"`
	Author    string      `json:"author,omitempty"`
	Subject   string      `json:"subject,omitempty"`
	Keywords  string      `json:"keywords,omitempty"`
}

// VersionString is the header version for display.
func (i Info) VersionString() string { return i.Version.String() }

// Inspect reads src and reports its page count, header version and information
// entries. Encrypted documents need the source password.
func (e *Engine) Inspect(ctx context.Context, src input.Source) (Info, error) {
	data, err := input.ReadAll(ctx, src, e.cfg.Limits.MaxSourceSize)
	if err != nil {
		return Info{}, task.Wrap("", task.ErrSource, err)
	}
	version, err := headerVersion(data)
	if err != nil {
		return Info{}, task.Wrap("", task.ErrSource, fmt.Errorf("%s: %w", src.Name(), err))
	}
	pctx, err := api.ReadContext(bytes.NewReader(data), e.configuration(src.Password()))
	if err != nil {
		return Info{}, task.Wrap("", task.ErrSource, fmt.Errorf("read %s: %w", src.Name(), err))
	}
	if err := api.ValidateContext(pctx); err != nil {
		return Info{}, task.Wrap("", task.ErrSource, fmt.Errorf("validate %s: %w", src.Name(), err))
	}
	entries, err := readInfo(pctx)
	if err != nil {
		return Info{}, task.Wrap("", task.ErrSource, fmt.Errorf("info of %s: %w", src.Name(), err))
	}
	return Info{
		Name:      src.Name(),
		Size:      int64(len(data)),
		Pages:     pctx.PageCount,
		Version:   version,
		Encrypted: pctx.Encrypt != nil,
		Creator:   entries["Creator"],
		Producer:  entries["Producer"],
		Title:     entries["Title"],
		Author:    entries["Author"],
		Subject:   entries["Subject"],
		Keywords:  entries["Keywords"],
	}, nil
}
