package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/docgrep/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Each page becomes a page node whose text
// leaves are the page's non-blank lines.
type PDFParser struct{}

func (p *PDFParser) Parse(data []byte, filename string) (tree *doctree.DocTree, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			tree, err = nil, decodeErr("pdf", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, decodeErr("pdf", err)
	}

	tree = &doctree.DocTree{Title: titleOf(filename, ".pdf")}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		node := doctree.Container(doctree.KindPage)
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				node.Append(doctree.TextNode(line))
			}
		}
		if len(node.Children) > 0 {
			tree.Children = append(tree.Children, node)
		}
	}

	return tree, nil
}
