package page

import (
	"errors"
	"reflect"
	"testing"
)

func TestRange_Validate(t *testing.T) {
	if _, err := NewRange(0, 3); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("zero start accepted: %v", err)
	}
	if _, err := NewRange(4, 3); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("reversed range accepted: %v", err)
	}
	r, err := NewRange(2, 20)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	if got := len(r.Pages(34)); got != 19 {
		t.Fatalf("2-20 on 34 pages = %d pages, want 19", got)
	}
}

func TestRange_PagesClipped(t *testing.T) {
	if got := From(3).Pages(4); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Fatalf("3- on 4 pages = %v", got)
	}
	if got := From(9).Pages(4); got != nil {
		t.Fatalf("range past the end should be empty, got %v", got)
	}
	if got := Single(1).Pages(4); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("single page = %v", got)
	}
}

func TestRange_ContainsIntersects(t *testing.T) {
	r := Range{Start: 3, End: 5}
	if !r.Contains(3) || !r.Contains(5) || r.Contains(6) {
		t.Fatalf("Contains mismatch")
	}
	if !r.Intersects(From(5)) || r.Intersects(Single(2)) {
		t.Fatalf("Intersects mismatch")
	}
}

func TestCollect_UnionInDocumentOrder(t *testing.T) {
	ranges := []Range{From(3), Single(1), {Start: 2, End: 4}, Single(1)}
	if got := Collect(5, ranges); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("Collect = %v", got)
	}
	if got := Collect(4, []Range{Single(1), From(3)}); len(got) != 3 {
		t.Fatalf("{1-1,3-} on 4 pages = %v, want 3 pages", got)
	}
}

func TestCompact(t *testing.T) {
	got := Compact([]int{1, 2, 3, 5, 7, 8})
	want := []Range{{1, 3}, {5, 5}, {7, 8}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compact = %v, want %v", got, want)
	}
	if FormatRanges(got) != "1-3,5,7-8" {
		t.Fatalf("FormatRanges = %q", FormatRanges(got))
	}
}

func TestParseRanges(t *testing.T) {
	got, err := ParseRanges("1-3, 5 ,7-")
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	want := []Range{{1, 3}, {5, 5}, From(7)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseRanges = %v, want %v", got, want)
	}
	for _, bad := range []string{"", "a-2", "3-1", "0", "2-x", ","} {
		if _, err := ParseRanges(bad); err == nil {
			t.Fatalf("ParseRanges(%q) accepted", bad)
		}
	}
}

func TestPredefinedSet(t *testing.T) {
	if got := OddPages.Pages(4); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Fatalf("odd pages = %v", got)
	}
	if got := EvenPages.Pages(5); !reflect.DeepEqual(got, []int{2, 4}) {
		t.Fatalf("even pages = %v", got)
	}
	if got := AllPages.Pages(3); len(got) != 3 {
		t.Fatalf("all pages = %v", got)
	}
	if got := None.Pages(3); got != nil {
		t.Fatalf("none = %v", got)
	}
	s, err := ParsePredefinedSet("ODD")
	if err != nil || s != OddPages {
		t.Fatalf("ParsePredefinedSet: %v %v", s, err)
	}
	if _, err := ParsePredefinedSet("prime"); err == nil {
		t.Fatalf("unknown set accepted")
	}
}
