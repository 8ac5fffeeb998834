// Package settings exposes the typed configuration slices: user settings,
// the admin-editable site configuration, and the language preference. Reads
// go through the KV default-merge, so fields added to the default records
// appear for existing installs without a migration step.
package settings

import (
	"context"

	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

// DefaultUserSettings is the baseline preferences record.
func DefaultUserSettings() models.UserSettings {
	return models.UserSettings{
		Theme:        "dark",
		FontScale:    1.0,
		ShowToasts:   true,
		SoundEffects: true,
		AutoSave:     true,
	}
}

// DefaultSiteConfig is the baseline site configuration record.
func DefaultSiteConfig() models.SiteConfig {
	return models.SiteConfig{
		SiteName:       "Image Studio",
		DefaultModel:   "flux",
		SignupsEnabled: true,
		MaxHistory:     30,
	}
}

// Manager reads and writes the settings slices.
type Manager struct {
	store           kvstore.Store
	logger          logging.Logger
	defaultLanguage string
}

func NewManager(store kvstore.Store, logger logging.Logger, defaultLanguage string) *Manager {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &Manager{
		store:           store,
		logger:          logger.With("module", "settings"),
		defaultLanguage: defaultLanguage,
	}
}

// UserSettings returns the persisted preferences merged over the defaults.
func (m *Manager) UserSettings(ctx context.Context) models.UserSettings {
	return kvstore.Read(ctx, m.store, kvstore.KeyUserSettings, DefaultUserSettings())
}

// UpdateUserSettings rewrites the preferences slot.
func (m *Manager) UpdateUserSettings(ctx context.Context, s models.UserSettings) error {
	return kvstore.Write(ctx, m.store, kvstore.KeyUserSettings, s)
}

// SiteConfig returns the persisted site configuration merged over defaults.
func (m *Manager) SiteConfig(ctx context.Context) models.SiteConfig {
	return kvstore.Read(ctx, m.store, kvstore.KeySiteConfig, DefaultSiteConfig())
}

// UpdateSiteConfig rewrites the site configuration slot.
func (m *Manager) UpdateSiteConfig(ctx context.Context, c models.SiteConfig) error {
	return kvstore.Write(ctx, m.store, kvstore.KeySiteConfig, c)
}

// Language returns the language preference, falling back to the configured
// default.
func (m *Manager) Language(ctx context.Context) string {
	return kvstore.Read(ctx, m.store, kvstore.KeyLanguage, m.defaultLanguage)
}

// SetLanguage rewrites the language slot.
func (m *Manager) SetLanguage(ctx context.Context, lang string) error {
	return kvstore.Write(ctx, m.store, kvstore.KeyLanguage, lang)
}
