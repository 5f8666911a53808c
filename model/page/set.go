package page

import (
	"fmt"
	"strings"
)

// PredefinedSet is a named selection that does not depend on explicit numbers.
type PredefinedSet int

const (
	None PredefinedSet = iota
	AllPages
	OddPages
	EvenPages
)

var setNames = []string{"none", "all", "odd", "even"}

func (s PredefinedSet) String() string {
	if s < None || int(s) >= len(setNames) {
		return fmt.Sprintf("PredefinedSet(%d)", int(s))
	}
	return setNames[s]
}

func ParsePredefinedSet(s string) (PredefinedSet, error) {
	for i, name := range setNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return PredefinedSet(i), nil
		}
	}
	return None, fmt.Errorf("unknown page set %q", s)
}

func (s PredefinedSet) Includes(n int) bool {
	switch s {
	case AllPages:
		return true
	case OddPages:
		return n%2 == 1
	case EvenPages:
		return n%2 == 0
	}
	return false
}

// Pages lists the pages of the set in a document of total pages.
func (s PredefinedSet) Pages(total int) []int {
	var pages []int
	for p := 1; p <= total; p++ {
		if s.Includes(p) {
			pages = append(pages, p)
		}
	}
	return pages
}
