package parser

import (
	"testing"

	"github.com/dgallion1/docgrep/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownParser_Blocks(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content
continues here.
`
	tree, err := (&MarkdownParser{}).Parse([]byte(input), "doc.md")
	require.NoError(t, err)

	assert.Equal(t, "doc", tree.Title)
	require.Len(t, tree.Children, 4)

	kinds := []string{doctree.KindHeading, doctree.KindBlock, doctree.KindHeading, doctree.KindBlock}
	for i, k := range kinds {
		assert.Equal(t, k, tree.Children[i].Kind, "block[%d]", i)
	}
	assert.Equal(t, []string{"Title", "Intro text.", "Section A", "Section A content\ncontinues here."}, tree.Texts())
}

func TestMarkdownParser_ListNesting(t *testing.T) {
	tree, err := (&MarkdownParser{}).Parse([]byte("- alpha\n- beta\n"), "list.md")
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	list := tree.Children[0]
	assert.False(t, list.IsText())
	assert.Len(t, list.Children, 2)
	assert.Equal(t, []string{"alpha", "beta"}, tree.Texts())
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	tree, err := (&MarkdownParser{}).Parse([]byte(""), "empty.md")
	require.NoError(t, err)
	assert.Empty(t, tree.Children)
}
