// Package page models page selections: inclusive ranges and predefined sets.
package page

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Unbounded marks a range that extends to the last page of the document.
const Unbounded = math.MaxInt

var ErrInvalidRange = errors.New("invalid page range")

// Range is an inclusive interval of 1-based page numbers.
type Range struct {
	Start int
	End   int
}

// NewRange returns the closed range start..end.
func NewRange(start, end int) (Range, error) {
	r := Range{Start: start, End: end}
	return r, r.Validate()
}

// From returns the open range start..last page.
func From(start int) Range { return Range{Start: start, End: Unbounded} }

// Single selects one page.
func Single(n int) Range { return Range{Start: n, End: n} }

func (r Range) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("%w: start %d must be positive", ErrInvalidRange, r.Start)
	}
	if r.End < r.Start {
		return fmt.Errorf("%w: end %d before start %d", ErrInvalidRange, r.End, r.Start)
	}
	return nil
}

func (r Range) IsUnbounded() bool { return r.End == Unbounded }

func (r Range) Contains(n int) bool { return n >= r.Start && n <= r.End }

// Intersects reports whether r and o share at least one page.
func (r Range) Intersects(o Range) bool { return r.Start <= o.End && o.Start <= r.End }

// Pages lists the pages of r that exist in a document of total pages.
func (r Range) Pages(total int) []int {
	end := r.End
	if end > total {
		end = total
	}
	if r.Start > end {
		return nil
	}
	pages := make([]int, 0, end-r.Start+1)
	for p := r.Start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

func (r Range) String() string {
	switch {
	case r.IsUnbounded():
		return strconv.Itoa(r.Start) + "-"
	case r.Start == r.End:
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// Collect returns the union of the pages selected by ranges, clipped to total and
// sorted in document order. Overlapping and duplicate ranges select a page once.
func Collect(total int, ranges []Range) []int {
	seen := make(map[int]struct{})
	var pages []int
	for _, r := range ranges {
		for _, p := range r.Pages(total) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

// Compact folds a sorted page list into the minimal list of closed ranges.
func Compact(pages []int) []Range {
	var out []Range
	for _, p := range pages {
		if n := len(out); n > 0 && out[n-1].End+1 == p {
			out[n-1].End = p
			continue
		}
		out = append(out, Single(p))
	}
	return out
}

// ParseRanges reads a comma separated selection such as "1-3,5,7-".
func ParseRanges(s string) ([]Range, error) {
	var out []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty selection %q", ErrInvalidRange, s)
	}
	return out, nil
}

func parseRange(s string) (Range, error) {
	startStr, endStr, isRange := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	if !isRange {
		r := Single(start)
		return r, r.Validate()
	}
	endStr = strings.TrimSpace(endStr)
	if endStr == "" {
		r := From(start)
		return r, r.Validate()
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return NewRange(start, end)
}

// FormatRanges is the inverse of ParseRanges.
func FormatRanges(ranges []Range) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
