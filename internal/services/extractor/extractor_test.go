package extractor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestExtractor() *Extractor {
	return New(arbor.NewLogger())
}

func TestTextStripsNonContent(t *testing.T) {
	e := newTestExtractor()

	page := `<html><head><title>T</title><style>.x{}</style></head>
	<body>
		<script>var hidden = 1;</script>
		<p>Visible   paragraph
		text.</p>
		<pre>preformatted blob</pre>
		<code>inline()</code>
		<svg><text>vector</text></svg>
	</body></html>`

	text, err := e.Text(page)
	require.NoError(t, err)

	assert.Contains(t, text, "Visible paragraph text.")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "preformatted")
	assert.NotContains(t, text, "inline")
	assert.NotContains(t, text, "vector")
	assert.NotContains(t, text, ".x{}")
	// Whitespace collapses to single spaces.
	assert.NotContains(t, text, "  ")
	assert.NotContains(t, text, "\n")
}

func TestTextEmptyPage(t *testing.T) {
	e := newTestExtractor()

	text, err := e.Text("<html><body><script>x()</script></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestTitle(t *testing.T) {
	e := newTestExtractor()

	assert.Equal(t, "Page Title", e.Title("<html><head><title>Page Title</title></head><body></body></html>"))
	assert.Equal(t, "Heading", e.Title("<html><body><h1>Heading</h1></body></html>"))
	assert.Equal(t, "", e.Title("<html><body><p>no title</p></body></html>"))
}

func TestMarkdown(t *testing.T) {
	e := newTestExtractor()

	page := `<html><body><h1>Heading</h1><p>Some <strong>bold</strong> text.</p><script>x()</script></body></html>`
	markdown, err := e.Markdown(page)
	require.NoError(t, err)

	assert.Contains(t, markdown, "# Heading")
	assert.Contains(t, markdown, "**bold**")
	assert.NotContains(t, markdown, "x()")
}

func TestChunkRespectsSentenceBoundaries(t *testing.T) {
	// Twelve identical ten-word sentences with a thirty-word budget: each
	// chunk closes at the first sentence end at or past the budget.
	sentence := "one two three four five six seven eight nine ten."
	text := strings.TrimSpace(strings.Repeat(sentence+" ", 12))

	chunks := Chunk(text, 30)

	require.Len(t, chunks, 4)
	for i, c := range chunks {
		assert.True(t, strings.HasSuffix(c, "."), "chunk %d must end at a sentence boundary", i)
		assert.Equal(t, 30, len(strings.Fields(c)))
	}
}

func TestChunkSingleShortText(t *testing.T) {
	chunks := Chunk("Just one short sentence.", 400)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Just one short sentence.", chunks[0])
}

func TestChunkOversizedSentence(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 50)) + "."
	chunks := Chunk(long, 10)

	require.Len(t, chunks, 1, "a sentence longer than the budget stays whole")
	assert.Equal(t, 50, len(strings.Fields(chunks[0])))
}

func TestChunkEmpty(t *testing.T) {
	assert.Nil(t, Chunk("", 400))
	assert.Nil(t, Chunk("   \n ", 400))
}

func TestChunkCoversAllText(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Sentence number %d has exactly seven words. ", i)
	}
	text := strings.TrimSpace(sb.String())

	chunks := Chunk(text, 50)
	require.Greater(t, len(chunks), 1)

	joined := strings.Join(chunks, " ")
	assert.Equal(t, len(strings.Fields(text)), len(strings.Fields(joined)), "chunking must not drop words")
}

func TestSplitSentencesKeepsAbbreviationlessBoundaries(t *testing.T) {
	got := splitSentences(`First sentence. Second one! Third? "Quoted end." Tail without terminator`)

	require.Len(t, got, 5)
	assert.Equal(t, "First sentence.", got[0])
	assert.Equal(t, "Second one!", got[1])
	assert.Equal(t, "Third?", got[2])
	assert.Equal(t, `"Quoted end."`, got[3])
	assert.Equal(t, "Tail without terminator", got[4])
}
