package parser

import (
	"bytes"

	"github.com/dgallion1/docgrep/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
//
// Body items map onto the tree in order: paragraphs hold runs and hyperlinks,
// runs hold one text leaf per <w:t>, tables nest rows, cells and the cell's
// paragraphs. Tabs and breaks become non-text leaves so that they never merge
// neighbouring text.
type DOCXParser struct{}

func (p *DOCXParser) Parse(data []byte, filename string) (*doctree.DocTree, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, decodeErr("docx", err)
	}

	tree := &doctree.DocTree{Title: titleOf(filename, ".docx")}
	for _, item := range doc.Document.Body.Items {
		if n := docxItem(item); n != nil {
			tree.Children = append(tree.Children, n)
		}
	}
	return tree, nil
}

func docxItem(item any) *doctree.DocNode {
	switch v := item.(type) {
	case *docx.Paragraph:
		return docxParagraph(v)
	case *docx.Table:
		return docxTable(v)
	}
	return nil
}

func docxParagraph(para *docx.Paragraph) *doctree.DocNode {
	node := doctree.Container(doctree.KindParagraph)
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			node.Append(docxRun(c))
		case *docx.Hyperlink:
			node.Append(doctree.Container(doctree.KindHyperlink, docxRun(&c.Run)))
		}
	}
	return node
}

func docxRun(run *docx.Run) *doctree.DocNode {
	node := doctree.Container(doctree.KindRun)
	// Hyperlinks built through the go-docx API keep their label here.
	if run.InstrText != "" && len(run.Children) == 0 {
		node.Append(doctree.TextNode(run.InstrText))
	}
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			node.Append(doctree.TextNode(c.Text))
		case *docx.Tab:
			node.Append(doctree.Container(doctree.KindTab))
		case *docx.BarterRabbet:
			node.Append(doctree.Container(doctree.KindBreak))
		}
	}
	return node
}

func docxTable(tbl *docx.Table) *doctree.DocNode {
	node := doctree.Container(doctree.KindTable)
	for _, row := range tbl.TableRows {
		rowNode := doctree.Container(doctree.KindRow)
		for _, cell := range row.TableCells {
			cellNode := doctree.Container(doctree.KindCell)
			for _, para := range cell.Paragraphs {
				cellNode.Append(docxParagraph(para))
			}
			for _, nested := range cell.Tables {
				cellNode.Append(docxTable(nested))
			}
			rowNode.Append(cellNode)
		}
		node.Append(rowNode)
	}
	return node
}
