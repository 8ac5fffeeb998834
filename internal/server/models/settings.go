package models

// UserSettings are per-install UI preferences. New fields added here appear
// automatically for existing installs through the default-merge read.
type UserSettings struct {
	Theme         string  `json:"theme"`
	FontScale     float64 `json:"font_scale"`
	ShowToasts    bool    `json:"show_toasts"`
	SoundEffects  bool    `json:"sound_effects"`
	AutoSave      bool    `json:"auto_save"`
	HighContrast  bool    `json:"high_contrast"`
	ReducedMotion bool    `json:"reduced_motion"`
}

// SiteConfig is the admin-editable site configuration record.
type SiteConfig struct {
	SiteName       string `json:"site_name"`
	DefaultModel   string `json:"default_model"`
	SignupsEnabled bool   `json:"signups_enabled"`
	Maintenance    bool   `json:"maintenance"`
	MaxHistory     int    `json:"max_history"`
}
