package parser

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/dgallion1/docgrep/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs; each
// paragraph becomes one text leaf.
type TextParser struct{}

func (p *TextParser) Parse(data []byte, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, decodeErr("text", err)
	}

	tree := &doctree.DocTree{Title: titleOf(filename, ".txt")}
	for _, para := range paragraphs {
		tree.Children = append(tree.Children,
			doctree.Container(doctree.KindParagraph, doctree.TextNode(para)))
	}

	return tree, nil
}
