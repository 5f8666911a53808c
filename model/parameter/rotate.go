package parameter

import (
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/pdf"
)

// Rotate turns the selected pages clockwise. An empty selection rotates every page.
type Rotate struct {
	OutputSettings
	PageSelection
	Source   input.Source
	Rotation pdf.Rotation
}

func NewRotate(rotation pdf.Rotation) *Rotate { return &Rotate{Rotation: rotation} }

func (p *Rotate) Sources() []input.Source { return []input.Source{p.Source} }
func (p *Rotate) MinVersion() pdf.Version { return p.minVersion() }

func (p *Rotate) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if !p.Rotation.Valid() {
		return &ValidationError{Field: "rotation", Reason: "must be a multiple of 90"}
	}
	if err := p.PageSelection.validate("pages", false); err != nil {
		return err
	}
	return p.OutputSettings.validate(p.MinVersion())
}
