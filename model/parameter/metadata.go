package parameter

import (
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/pdf"
)

// Metadata holds document information entries. Empty fields are left untouched.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
}

func (m Metadata) IsEmpty() bool { return m == Metadata{} }

// Entries returns the set fields keyed by their document information name.
func (m Metadata) Entries() map[string]string {
	out := map[string]string{}
	for k, v := range map[string]string{"Title": m.Title, "Author": m.Author, "Subject": m.Subject, "Keywords": m.Keywords} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

type SetMetadata struct {
	OutputSettings
	Source   input.Source
	Metadata Metadata
}

func NewSetMetadata(m Metadata) *SetMetadata { return &SetMetadata{Metadata: m} }

func (p *SetMetadata) Sources() []input.Source { return []input.Source{p.Source} }
func (p *SetMetadata) MinVersion() pdf.Version { return p.minVersion() }

func (p *SetMetadata) Validate() error {
	if err := validateSource("source", p.Source); err != nil {
		return err
	}
	if p.Metadata.IsEmpty() {
		return &ValidationError{Field: "metadata", Reason: "nothing to set"}
	}
	return p.OutputSettings.validate(p.MinVersion())
}
