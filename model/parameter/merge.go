package parameter

import (
	"fmt"

	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/page"
	"github.com/wudi/pdftask/model/pdf"
)

// MergeInput is one document of a merge and the pages taken from it.
// No ranges means every page.
type MergeInput struct {
	Source input.Source
	Ranges []page.Range
}

// Merge concatenates its inputs in order.
type Merge struct {
	OutputSettings
	Inputs []MergeInput
	// BlankPageBetween inserts an empty page after every input but the last.
	BlankPageBetween bool
}

func NewMerge() *Merge { return &Merge{} }

func (p *Merge) AddInput(src input.Source, ranges ...page.Range) {
	p.Inputs = append(p.Inputs, MergeInput{Source: src, Ranges: ranges})
}

func (p *Merge) Sources() []input.Source {
	out := make([]input.Source, len(p.Inputs))
	for i, in := range p.Inputs {
		out[i] = in.Source
	}
	return out
}

func (p *Merge) MinVersion() pdf.Version { return p.minVersion() }

func (p *Merge) Validate() error {
	if len(p.Inputs) == 0 {
		return &ValidationError{Field: "inputs", Reason: "nothing to merge"}
	}
	for i, in := range p.Inputs {
		field := fmt.Sprintf("inputs[%d]", i)
		if err := validateSource(field, in.Source); err != nil {
			return err
		}
		for _, r := range in.Ranges {
			if err := r.Validate(); err != nil {
				return &ValidationError{Field: field, Reason: err.Error()}
			}
		}
	}
	return p.OutputSettings.validate(p.MinVersion())
}
