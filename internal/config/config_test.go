package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "wagecalc.db", filepath.Base(cfg.DB))
	assert.Equal(t, "wagecalc.log", filepath.Base(cfg.Log.File))
	assert.Empty(t, cfg.Locale)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"WAGECALC_DB":         "/tmp/pay.db",
		"WAGECALC_LOCALE":     "en-GB",
		"WAGECALC_LOG_LEVEL":  "debug",
		"WAGECALC_LOG_FORMAT": "console",
		"WAGECALC_LOG_FILE":   "/tmp/pay.log",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pay.db", cfg.DB)
	assert.Equal(t, "en-GB", cfg.Locale)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/tmp/pay.log", cfg.Log.File)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := LoadFrom(map[string]string{"WAGECALC_LOG_FORMAT": "xml"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"WAGECALC_LOG_LEVEL": "loud"})
	assert.Error(t, err)
}
