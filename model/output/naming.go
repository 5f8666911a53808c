package output

import (
	"strconv"
	"strings"
	"time"
)

// Placeholders expanded by Name.
const (
	PlaceholderBasename    = "[BASENAME]"
	PlaceholderCurrentPage = "[CURRENTPAGE]"
	PlaceholderFileNumber  = "[FILENUMBER]"
	PlaceholderTimestamp   = "[TIMESTAMP]"
)

// DefaultPrefix numbers the generated files: 1_doc.pdf, 2_doc.pdf, ...
const DefaultPrefix = PlaceholderFileNumber + "_"

// NameRequest carries the values a prefix can refer to.
type NameRequest struct {
	Original   string
	Page       int
	FileNumber int
	Time       time.Time
}

// Name expands prefix for one generated document.
//
// A prefix holding [BASENAME] is a full template and gets ".pdf" appended; any other
// prefix is put in front of the original file name. When more than one document is
// produced a prefix without a per-document placeholder is completed with [FILENUMBER]
// so names never collide.
func Name(prefix string, req NameRequest, multiple bool) string {
	if prefix == "" {
		if !multiple {
			return req.Original
		}
		prefix = DefaultPrefix
	}
	if multiple && !strings.Contains(prefix, PlaceholderCurrentPage) && !strings.Contains(prefix, PlaceholderFileNumber) {
		prefix = DefaultPrefix + prefix
	}
	base := strings.TrimSuffix(req.Original, ".pdf")
	ts := req.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	r := strings.NewReplacer(
		PlaceholderBasename, base,
		PlaceholderCurrentPage, strconv.Itoa(req.Page),
		PlaceholderFileNumber, strconv.Itoa(req.FileNumber),
		PlaceholderTimestamp, ts.Format("20060102_150405"),
	)
	if strings.Contains(prefix, PlaceholderBasename) {
		return r.Replace(prefix) + ".pdf"
	}
	return r.Replace(prefix) + req.Original
}
