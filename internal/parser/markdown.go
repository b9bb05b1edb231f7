package parser

import (
	"bytes"
	"strings"

	"github.com/dgallion1/docgrep/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte, filename string) (*doctree.DocTree, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(data))

	tree := &doctree.DocTree{Title: titleOf(filename, ".md", ".markdown")}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if node := markdownBlock(n, data); node != nil {
			tree.Children = append(tree.Children, node)
		}
	}
	return tree, nil
}

// markdownBlock maps a goldmark block. Container blocks (lists, list items,
// block quotes) keep their nesting; leaf blocks carry a single text leaf.
func markdownBlock(n ast.Node, src []byte) *doctree.DocNode {
	if first := n.FirstChild(); first != nil && first.Type() == ast.TypeBlock {
		node := doctree.Container(doctree.KindBlock)
		for c := first; c != nil; c = c.NextSibling() {
			if child := markdownBlock(c, src); child != nil {
				node.Append(child)
			}
		}
		if len(node.Children) == 0 {
			return nil
		}
		return node
	}

	t := extractText(n, src)
	if t == "" {
		return nil
	}
	kind := doctree.KindBlock
	if _, ok := n.(*ast.Heading); ok {
		kind = doctree.KindHeading
	}
	return doctree.Container(kind, doctree.TextNode(t))
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		// Paragraph and heading lines duplicate their inline children.
		if n.FirstChild() != nil {
			buf.Reset()
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
