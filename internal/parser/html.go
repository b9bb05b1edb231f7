package parser

import (
	"bytes"
	"strings"

	"github.com/dgallion1/docgrep/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Elements become containers and each
// non-blank text node becomes a text leaf.
type HTMLParser struct{}

func (p *HTMLParser) Parse(data []byte, filename string) (*doctree.DocTree, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, decodeErr("html", err)
	}

	tree := &doctree.DocTree{Title: titleOf(filename, ".html", ".htm")}
	if title := findTitle(doc); title != "" {
		tree.Title = title
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := htmlNode(c); n != nil {
			tree.Children = append(tree.Children, n)
		}
	}
	return tree, nil
}

func htmlNode(n *html.Node) *doctree.DocNode {
	switch n.Type {
	case html.TextNode:
		t := strings.TrimSpace(n.Data)
		if t == "" {
			return nil
		}
		return doctree.TextNode(t)
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template", "head":
			return nil
		}
		node := doctree.Container(doctree.KindElement)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := htmlNode(c); child != nil {
				node.Append(child)
			}
		}
		if len(node.Children) == 0 {
			return nil
		}
		return node
	}
	return nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
