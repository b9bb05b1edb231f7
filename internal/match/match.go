// Package match finds the text runs of a document that satisfy a pattern.
package match

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dgallion1/docgrep/internal/doctree"
	"github.com/dgallion1/docgrep/internal/parser"
)

// ErrPattern marks a pattern that failed to compile.
var ErrPattern = errors.New("invalid pattern")

// Compile compiles a user pattern. The error wraps ErrPattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPattern, err)
	}
	return re, nil
}

// Extractor decodes documents and collects their matching runs. It holds
// only read-only state and is safe for concurrent use.
type Extractor struct {
	re *regexp.Regexp
}

// NewExtractor returns an Extractor for re.
func NewExtractor(re *regexp.Regexp) *Extractor {
	return &Extractor{re: re}
}

// Pattern returns the compiled pattern.
func (e *Extractor) Pattern() *regexp.Regexp {
	return e.re
}

// Extract decodes data with the parser chosen by filename and returns the
// matching runs. Decode failures wrap parser.ErrDecode or parser.ErrUnsupported.
func (e *Extractor) Extract(data []byte, filename string) ([]string, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(data, filename)
	if err != nil {
		return nil, err
	}
	return Runs(tree, e.re), nil
}

// Runs returns the text of every leaf matching re. Nodes are visited first in
// first out starting at the root's children: all children of a node are
// queued before any grandchild is visited, so results follow tree level
// rather than reading order.
func Runs(tree *doctree.DocTree, re *regexp.Regexp) []string {
	if tree == nil {
		return nil
	}
	var runs []string
	queue := append([]*doctree.DocNode(nil), tree.Children...)
	for len(queue) > 0 {
		n := queue[0]
		queue[0] = nil
		queue = queue[1:]
		if n == nil {
			continue
		}
		if n.IsText() {
			if re.MatchString(n.Text) {
				runs = append(runs, n.Text)
			}
			continue
		}
		queue = append(queue, n.Children...)
	}
	return runs
}
