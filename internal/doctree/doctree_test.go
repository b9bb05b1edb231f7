package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTexts_DocumentOrder(t *testing.T) {
	tree := &DocTree{Children: []*DocNode{
		Container(KindParagraph, TextNode("a"), Container(KindRun, TextNode("b"))),
		TextNode("c"),
		Container(KindTable, Container(KindRow, Container(KindCell, TextNode("d")))),
	}}
	assert.Equal(t, []string{"a", "b", "c", "d"}, tree.Texts())
}

func TestTexts_Empty(t *testing.T) {
	assert.Nil(t, (&DocTree{}).Texts())
}

func TestIsText(t *testing.T) {
	var nilNode *DocNode
	assert.False(t, nilNode.IsText())
	assert.False(t, Container(KindParagraph).IsText())
	assert.True(t, TextNode("x").IsText())
}

func TestAppend(t *testing.T) {
	n := Container(KindRun).Append(TextNode("x"), TextNode("y"))
	require.Len(t, n.Children, 2)
	assert.Equal(t, "y", n.Children[1].Text)
}
