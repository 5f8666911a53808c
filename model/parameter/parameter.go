// Package parameter describes the operations a task can run: the inputs, the
// operation specific selectors and the output policy.
package parameter

import (
	"fmt"

	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/model/pdf"
)

// Parameters is implemented by every operation description.
type Parameters interface {
	Output() *OutputSettings
	Sources() []input.Source
	// MinVersion is the lowest PDF version able to represent the result.
	MinVersion() pdf.Version
	Validate() error
}

// OutputSettings is embedded by every parameter type.
type OutputSettings struct {
	Overwrite   bool
	Compress    bool
	Version     pdf.Version
	Destination output.Output
	// Prefix drives the names of generated documents, see output.Name.
	Prefix string
}

func (o *OutputSettings) Output() *OutputSettings { return o }

// SetOutput is a convenience for callers filling the embedded settings.
func (o *OutputSettings) SetOutput(dst output.Output, overwrite bool) {
	o.Destination = dst
	o.Overwrite = overwrite
}

func (o *OutputSettings) minVersion() pdf.Version {
	if o.Compress {
		return pdf.Version15
	}
	return pdf.VersionUnset
}

func (o *OutputSettings) validate(min pdf.Version) error {
	if o.Destination == nil {
		return &ValidationError{Field: "output", Reason: "no destination"}
	}
	if o.Version != pdf.VersionUnset && !o.Version.IsSet() {
		return &ValidationError{Field: "version", Reason: fmt.Sprintf("unknown version %d", int(o.Version))}
	}
	if o.Version.IsSet() && o.Version < min {
		return &ValidationError{Field: "version", Reason: fmt.Sprintf("%s is lower than the required %s", o.Version, min)}
	}
	return nil
}

// ValidationError reports a parameter that cannot be executed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validateSource(field string, src input.Source) error {
	if err := input.Validate(src); err != nil {
		return &ValidationError{Field: field, Reason: err.Error()}
	}
	return nil
}

// multiDocument rejects destinations that can hold a single document only.
func (o *OutputSettings) multiDocument() error {
	if _, ok := o.Destination.(*output.File); ok {
		return &ValidationError{Field: "output", Reason: "operation produces several documents, use a directory or archive"}
	}
	return nil
}
