package annotator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/services/classifier"
)

func newTestAnnotator() *Annotator {
	return New(classifier.New(4), arbor.NewLogger())
}

func TestAnnotateHTMLWrapsDifficultWords(t *testing.T) {
	a := newTestAnnotator()

	out, count, err := a.AnnotateHTML("<p>This is an extraordinary result.</p>")
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Contains(t, out, `class="df-word"`)
	assert.Contains(t, out, `data-word="extraordinary"`)
	// Sentence is the URL-encoded trimmed text-node content.
	assert.Contains(t, out, `data-sent="This+is+an+extraordinary+result."`)
	// Common and short words stay plain.
	assert.NotContains(t, out, `data-word="This"`)
	assert.NotContains(t, out, `data-word="result"`)
}

func TestAnnotateHTMLIdempotent(t *testing.T) {
	a := newTestAnnotator()

	once, count1, err := a.AnnotateHTML("<p>An extraordinary, magnificent discovery.</p>")
	require.NoError(t, err)
	require.Equal(t, 3, count1)

	twice, count2, err := a.AnnotateHTML(once)
	require.NoError(t, err)

	assert.Equal(t, 0, count2, "second pass must create no new markers")
	assert.Equal(t, strings.Count(once, "df-word"), strings.Count(twice, "df-word"))
}

func TestAnnotateSkipsExcludedContexts(t *testing.T) {
	a := newTestAnnotator()

	tests := []struct {
		name     string
		fragment string
	}{
		{"link", `<a href="/x">extraordinary</a>`},
		{"button", `<button>extraordinary</button>`},
		{"code block", `<code>extraordinary</code>`},
		{"pre block", `<pre>extraordinary</pre>`},
		{"onclick handler", `<div onclick="go()">extraordinary</div>`},
		{"tabindex", `<div tabindex="0">extraordinary</div>`},
		{"aria button", `<div role="button">extraordinary</div>`},
		{"nested in link", `<a href="/x"><em>extraordinary</em></a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, count, err := a.AnnotateHTML(tt.fragment)
			require.NoError(t, err)
			assert.Equal(t, 0, count)
			assert.NotContains(t, out, "df-word")
		})
	}
}

func TestStripRoundTrip(t *testing.T) {
	a := newTestAnnotator()

	fragment := "<p>The behemoth lumbered through labyrinthine corridors.</p>"
	nodes, err := ParseFragment(fragment)
	require.NoError(t, err)
	original := ""
	for _, n := range nodes {
		original += TextContent(n)
	}

	annotated, count, err := a.AnnotateHTML(fragment)
	require.NoError(t, err)
	require.Greater(t, count, 0)

	stripped, err := a.StripHTML(annotated)
	require.NoError(t, err)

	strippedNodes, err := ParseFragment(stripped)
	require.NoError(t, err)
	restored := ""
	for _, n := range strippedNodes {
		restored += TextContent(n)
	}

	assert.Equal(t, original, restored, "strip must restore text content byte-for-byte")
	assert.NotContains(t, stripped, "df-word")
}

func TestAnnotateText(t *testing.T) {
	a := newTestAnnotator()

	text := "  This is an extraordinary result.  "
	spans := a.AnnotateText(text)

	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "extraordinary", span.Word)
	assert.Equal(t, "This is an extraordinary result.", span.Sentence)
	assert.Equal(t, "extraordinary", text[span.Start:span.End])
}

func TestAnnotateTextEmpty(t *testing.T) {
	a := newTestAnnotator()

	assert.Nil(t, a.AnnotateText(""))
	assert.Nil(t, a.AnnotateText("   \n\t "))
	assert.Nil(t, a.AnnotateText("all the small words here"))
}

func TestAnnotateMixedContent(t *testing.T) {
	a := newTestAnnotator()

	fragment := `<div><p>A serendipitous find.</p><a href="/x">another serendipitous find</a></div>`
	out, count, err := a.AnnotateHTML(fragment)
	require.NoError(t, err)

	// Only the paragraph copy gets wrapped; the link copy is interactive.
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, strings.Count(out, `data-word="serendipitous"`))
}
