package models

// Typography holds the font and spacing adjustments applied by the reader.
// Zero values mean "leave the page's own styling alone".
type Typography struct {
	Font          string  `json:"font"`           // Font identifier, empty = inherit
	LetterSpacing float64 `json:"letter_spacing"` // px
	WordSpacing   float64 `json:"word_spacing"`   // px
	LineHeight    string  `json:"line_height"`    // CSS line-height value, empty = normal
}

// Settings is the user-controlled configuration snapshot. It is persisted in
// the key/value store and read at startup and on every settings change;
// mutation is last-write-wins.
type Settings struct {
	ExplainerEnabled bool       `json:"explainer_enabled"`
	BionicEnabled    bool       `json:"bionic_enabled"`
	OverlayColor     *string    `json:"overlay_color"`                                // Hex color, nil = no overlay
	OverlayIntensity int        `json:"overlay_intensity" validate:"min=0,max=100"`   // 0-100
	Typography       Typography `json:"typography"`
}

// DefaultSettings returns the settings in effect before the user saves any.
func DefaultSettings() *Settings {
	return &Settings{
		ExplainerEnabled: true,
		BionicEnabled:    false,
		OverlayColor:     nil,
		OverlayIntensity: 22,
		Typography:       Typography{},
	}
}
