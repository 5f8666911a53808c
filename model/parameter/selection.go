package parameter

import (
	"fmt"

	"github.com/wudi/pdftask/model/page"
)

// PageSelection picks pages by predefined set, explicit ranges or a selector script.
// Only one of the three may be used.
type PageSelection struct {
	Set    page.PredefinedSet
	Ranges []page.Range
	// Script is a JavaScript expression evaluated per page, see package scripting.
	Script string
}

func (s *PageSelection) AddRange(r page.Range) { s.Ranges = append(s.Ranges, r) }

func (s *PageSelection) IsEmpty() bool {
	return s.Set == page.None && len(s.Ranges) == 0 && s.Script == ""
}

func (s *PageSelection) validate(field string, required bool) error {
	kinds := 0
	if s.Set != page.None {
		kinds++
		if s.Set < page.None || s.Set > page.EvenPages {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown page set %d", int(s.Set))}
		}
	}
	if len(s.Ranges) > 0 {
		kinds++
		for _, r := range s.Ranges {
			if err := r.Validate(); err != nil {
				return &ValidationError{Field: field, Reason: err.Error()}
			}
		}
	}
	if s.Script != "" {
		kinds++
	}
	switch {
	case kinds > 1:
		return &ValidationError{Field: field, Reason: "use one of page set, ranges or script"}
	case kinds == 0 && required:
		return &ValidationError{Field: field, Reason: "no pages selected"}
	}
	return nil
}
