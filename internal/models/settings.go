package models

// Settings are the user preferences persisted as key/value rows.
type Settings struct {
	Theme         string `json:"theme"`
	FontSize      int    `json:"font_size"`
	FontFamily    string `json:"font_family"`
	AutoSaveDelay int    `json:"auto_save_delay"`
	SpellCheck    bool   `json:"spell_check"`
}

// DefaultSettings returns the values used for keys that were never stored
// or that fail to parse.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "system",
		FontSize:      16,
		FontFamily:    "Inter",
		AutoSaveDelay: 500,
		SpellCheck:    true,
	}
}
