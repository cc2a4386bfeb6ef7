package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/models"
	"github.com/ternarybob/lexia/internal/services/annotator"
	"github.com/ternarybob/lexia/internal/services/classifier"
)

func newTestPipeline() *Pipeline {
	logger := arbor.NewLogger()
	return New(annotator.New(classifier.New(4), logger), logger)
}

func TestProcessExplainerOnly(t *testing.T) {
	p := newTestPipeline()

	settings := models.DefaultSettings() // explainer on, bionic off
	result, err := p.Process("<p>An extraordinary finding.</p>", settings)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Annotated)
	assert.Equal(t, 0, result.BionicWords)
	assert.Contains(t, result.HTML, "df-word")
	assert.NotContains(t, result.HTML, "br-word")
}

func TestProcessBothTransforms(t *testing.T) {
	p := newTestPipeline()

	settings := models.DefaultSettings()
	settings.BionicEnabled = true

	result, err := p.Process("<p>An extraordinary finding.</p>", settings)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Annotated)
	assert.Greater(t, result.BionicWords, 0)

	// The bionic wrapper nests inside the annotation marker.
	markerIdx := strings.Index(result.HTML, "df-word")
	require.Greater(t, markerIdx, -1)
	assert.Greater(t, strings.Index(result.HTML[markerIdx:], "br-word"), 0)
}

func TestProcessDisabledExplainerStripsMarkers(t *testing.T) {
	p := newTestPipeline()

	on := models.DefaultSettings()
	annotated, err := p.Process("<p>An extraordinary finding.</p>", on)
	require.NoError(t, err)
	require.Contains(t, annotated.HTML, "df-word")

	off := models.DefaultSettings()
	off.ExplainerEnabled = false

	stripped, err := p.Process(annotated.HTML, off)
	require.NoError(t, err)
	assert.NotContains(t, stripped.HTML, "df-word")
	assert.Equal(t, 0, stripped.Annotated)
	assert.Contains(t, stripped.HTML, "extraordinary")
}

func TestProcessIdempotentUnderSameSettings(t *testing.T) {
	p := newTestPipeline()

	settings := models.DefaultSettings()
	settings.BionicEnabled = true

	once, err := p.Process("<p>An extraordinary finding.</p>", settings)
	require.NoError(t, err)

	twice, err := p.Process(once.HTML, settings)
	require.NoError(t, err)

	assert.Equal(t, 0, twice.Annotated)
	assert.Equal(t, 0, twice.BionicWords)
	assert.Equal(t, strings.Count(once.HTML, "df-word"), strings.Count(twice.HTML, "df-word"))
	assert.Equal(t, strings.Count(once.HTML, "br-word"), strings.Count(twice.HTML, "br-word"))
}
