package server

import (
	"bytes"
	_ "embed"
	"fmt"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed docs.md
var docsSource []byte

const pageTemplate = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>pdftask</title></head>
<body>
%s</body></html>
`

// renderDocs converts the API documentation to a standalone HTML page.
func renderDocs() ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			treeblood.MathML(),
		),
	)
	var body bytes.Buffer
	if err := md.Convert(docsSource, &body); err != nil {
		return nil, fmt.Errorf("render docs: %w", err)
	}
	return []byte(fmt.Sprintf(pageTemplate, body.String())), nil
}
