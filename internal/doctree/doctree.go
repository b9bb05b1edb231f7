package doctree

// Node kinds produced by the parsers. Only KindText nodes carry literal text;
// every other kind is a container whose content lives in Children.
const (
	KindText      = "text"
	KindParagraph = "paragraph"
	KindRun       = "run"
	KindHyperlink = "hyperlink"
	KindTab       = "tab"
	KindBreak     = "break"
	KindTable     = "table"
	KindRow       = "row"
	KindCell      = "cell"
	KindHeading   = "heading"
	KindBlock     = "block"
	KindElement   = "element"
	KindPage      = "page"
)

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level body items
}

// DocNode is a generic node in the document tree.
type DocNode struct {
	Kind     string     // One of the Kind* constants
	Text     string     // Literal text, set only when Kind == KindText
	Children []*DocNode // Child nodes of a container
}

// IsText reports whether n is a text leaf.
func (n *DocNode) IsText() bool {
	return n != nil && n.Kind == KindText
}

// TextNode returns a text leaf.
func TextNode(text string) *DocNode {
	return &DocNode{Kind: KindText, Text: text}
}

// Container returns an interior node of the given kind.
func Container(kind string, children ...*DocNode) *DocNode {
	return &DocNode{Kind: kind, Children: children}
}

// Append adds children to n and returns n.
func (n *DocNode) Append(children ...*DocNode) *DocNode {
	n.Children = append(n.Children, children...)
	return n
}

// Texts returns every text leaf in document order. It is used for hashing
// and diagnostics; match extraction has its own traversal.
func (t *DocTree) Texts() []string {
	var out []string
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.IsText() {
				out = append(out, n.Text)
				continue
			}
			walk(n.Children)
		}
	}
	walk(t.Children)
	return out
}
