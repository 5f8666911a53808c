package parameter

import (
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/page"
	"github.com/wudi/pdftask/model/pdf"
)

// SplitByPages starts a new document after each listed page.
type SplitByPages struct {
	OutputSettings
	Source input.Source
	Pages  []int
}

func NewSplitByPages(pages ...int) *SplitByPages { return &SplitByPages{Pages: pages} }

func (p *SplitByPages) Sources() []input.Source { return []input.Source{p.Source} }
func (p *SplitByPages) MinVersion() pdf.Version { return p.minVersion() }

func (p *SplitByPages) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if len(p.Pages) == 0 {
		return &ValidationError{Field: "pages", Reason: "no split points"}
	}
	for _, n := range p.Pages {
		if n < 1 {
			return &ValidationError{Field: "pages", Reason: "page numbers start at 1"}
		}
	}
	return p.splitOutput()
}

// SplitEvery cuts the document into chunks of Step pages.
type SplitEvery struct {
	OutputSettings
	Source input.Source
	Step   int
}

func NewSplitEvery(step int) *SplitEvery { return &SplitEvery{Step: step} }

func (p *SplitEvery) Sources() []input.Source { return []input.Source{p.Source} }
func (p *SplitEvery) MinVersion() pdf.Version { return p.minVersion() }

func (p *SplitEvery) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if p.Step < 1 {
		return &ValidationError{Field: "step", Reason: "must be at least 1"}
	}
	return p.splitOutput()
}

// SimpleSplit starts a new document after each page of a predefined set.
type SimpleSplit struct {
	OutputSettings
	Source input.Source
	Set    page.PredefinedSet
}

func NewSimpleSplit(set page.PredefinedSet) *SimpleSplit { return &SimpleSplit{Set: set} }

func (p *SimpleSplit) Sources() []input.Source { return []input.Source{p.Source} }
func (p *SimpleSplit) MinVersion() pdf.Version { return p.minVersion() }

func (p *SimpleSplit) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if p.Set <= page.None || p.Set > page.EvenPages {
		return &ValidationError{Field: "set", Reason: "a page set is required"}
	}
	return p.splitOutput()
}

func (o *OutputSettings) splitOutput() error {
	if err := o.validate(o.minVersion()); err != nil {
		return err
	}
	return o.multiDocument()
}
