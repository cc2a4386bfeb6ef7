// Package pipeline applies the enabled reading transforms to incoming HTML
// fragments in one pass. Clients stream newly visible content through
// Process; the result reflects the current settings, including removal of
// markers when the explainer has been switched off.
package pipeline

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/models"
	"github.com/ternarybob/lexia/internal/services/annotator"
	"github.com/ternarybob/lexia/internal/services/bionic"
)

// Result reports what one Process call did to a fragment.
type Result struct {
	HTML        string `json:"html"`
	Annotated   int    `json:"annotated"`    // Markers created
	BionicWords int    `json:"bionic_words"` // Words bolded
}

// Pipeline runs the annotation and bionic transforms.
type Pipeline struct {
	annotator *annotator.Annotator
	logger    arbor.ILogger
}

func New(a *annotator.Annotator, logger arbor.ILogger) *Pipeline {
	return &Pipeline{annotator: a, logger: logger}
}

// Process transforms a fragment according to the settings. Annotation runs
// before the bionic pass so bolded prefixes nest inside markers; when the
// explainer is disabled, existing markers are stripped so a client can push
// previously transformed content back through after a settings change.
func (p *Pipeline) Process(fragment string, settings *models.Settings) (*Result, error) {
	result := &Result{HTML: fragment}

	if settings.ExplainerEnabled {
		html, count, err := p.annotator.AnnotateHTML(result.HTML)
		if err != nil {
			return nil, fmt.Errorf("annotation pass failed: %w", err)
		}
		result.HTML = html
		result.Annotated = count
	} else {
		html, err := p.annotator.StripHTML(result.HTML)
		if err != nil {
			return nil, fmt.Errorf("strip pass failed: %w", err)
		}
		result.HTML = html
	}

	if settings.BionicEnabled {
		html, count, err := bionic.ApplyHTML(result.HTML)
		if err != nil {
			return nil, fmt.Errorf("bionic pass failed: %w", err)
		}
		result.HTML = html
		result.BionicWords = count
	}

	p.logger.Debug().
		Int("annotated", result.Annotated).
		Int("bionic_words", result.BionicWords).
		Msg("Fragment processed")

	return result, nil
}
