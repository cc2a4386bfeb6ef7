// Package reader renders the client-side stylesheet derived from the stored
// settings: the color overlay tint, typography adjustments, and the styles
// for annotation markers and bolded word prefixes. Clients fetch the sheet
// after every settings change and re-apply it as-is.
package reader

import (
	"fmt"
	"strings"

	"github.com/ternarybob/lexia/internal/models"
)

// OverlayElementID is the id clients give the injected overlay element.
const OverlayElementID = "df-overlay"

const markerCSS = `.df-word {
  border-bottom: 1px dotted currentColor;
  cursor: help;
}
.br-word b {
  font-weight: 700;
}
`

// CSS renders the full stylesheet for a settings snapshot.
func CSS(settings *models.Settings) string {
	var sb strings.Builder
	sb.WriteString(markerCSS)

	if css := OverlayCSS(settings.OverlayColor, settings.OverlayIntensity); css != "" {
		sb.WriteString(css)
	}
	sb.WriteString(TypographyCSS(settings.Typography))

	return sb.String()
}

// OverlayCSS renders the full-page tint. A nil color means no overlay and
// yields an empty string; intensity is clamped to 0-100 and becomes opacity.
func OverlayCSS(color *string, intensity int) string {
	if color == nil || *color == "" {
		return ""
	}
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 100 {
		intensity = 100
	}

	return fmt.Sprintf(`#%s {
  position: fixed;
  inset: 0;
  pointer-events: none;
  background: %s;
  mix-blend-mode: multiply;
  opacity: %.2f;
  z-index: 2147483647;
}
`, OverlayElementID, *color, float64(intensity)/100)
}

// TypographyCSS renders the spacing and font rules. Zero values fall back to
// the page's own styling; the font rule is emitted only when a font is set.
func TypographyCSS(typo models.Typography) string {
	var sb strings.Builder

	if typo.Font != "" && typo.Font != "inherit" {
		fmt.Fprintf(&sb, `html, body, input, textarea, select {
  font-family: %q !important;
}
`, typo.Font)
	}

	lineHeight := typo.LineHeight
	if lineHeight == "" {
		lineHeight = "normal"
	}

	fmt.Fprintf(&sb, `html, body, input, textarea, select {
  letter-spacing: %gpx !important;
  word-spacing: %gpx !important;
  line-height: %s !important;
}
`, typo.LetterSpacing, typo.WordSpacing, lineHeight)

	return sb.String()
}
