package parameter

import (
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/page"
	"github.com/wudi/pdftask/model/pdf"
)

// ExtractPages copies the selected pages of Source into a new document.
type ExtractPages struct {
	OutputSettings
	PageSelection
	Source input.Source
}

func NewExtractPages(set page.PredefinedSet) *ExtractPages {
	return &ExtractPages{PageSelection: PageSelection{Set: set}}
}

func NewExtractPagesInRanges(ranges ...page.Range) *ExtractPages {
	return &ExtractPages{PageSelection: PageSelection{Ranges: ranges}}
}

func (p *ExtractPages) Sources() []input.Source { return []input.Source{p.Source} }

func (p *ExtractPages) MinVersion() pdf.Version { return p.minVersion() }

func (p *ExtractPages) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if err := p.PageSelection.validate("pages", true); err != nil {
		return err
	}
	return p.OutputSettings.validate(p.MinVersion())
}
