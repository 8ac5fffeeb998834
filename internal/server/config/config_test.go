package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.EndpointAddrHTTP, ":8080")
	assert.Equal(t, c.StoreDriver, "sqlite")
	assert.Equal(t, c.StoreDSN, "studio.db")
	assert.Equal(t, c.SecretKey, "secretKey")
	assert.Equal(t, c.AccessTokenValidityDuration, 24*time.Hour)
	assert.Equal(t, c.LockoutThreshold, 3)
	assert.Equal(t, c.LockoutWindow, 24*time.Hour)
	assert.Equal(t, c.OTPValidityDuration, 10*time.Minute)
	assert.Equal(t, c.DefaultLanguage, "en")

	// secrets default to disabled, never to a shippable value
	assert.Empty(t, c.AdminEmail)
	assert.Empty(t, c.AdminPassword)
	assert.Empty(t, c.BypassCode)
	assert.False(t, c.BiometricEnabled)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.EndpointAddrHTTP, ":8080")
	assert.Equal(t, c.StoreDriver, "sqlite")
	assert.Equal(t, c.LockoutThreshold, 3)
	assert.Equal(t, c.LockoutWindow, 24*time.Hour)
}

func TestParseEnv_OverridesSecrets(t *testing.T) {
	t.Setenv("STUDIO_ADMIN_EMAIL", "ops@example.com")
	t.Setenv("STUDIO_ADMIN_PASSWORD", "s3cret")
	t.Setenv("STUDIO_BYPASS_CODE", "dev-code")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "ops@example.com", c.AdminEmail)
	assert.Equal(t, "s3cret", c.AdminPassword)
	assert.Equal(t, "dev-code", c.BypassCode)
}
