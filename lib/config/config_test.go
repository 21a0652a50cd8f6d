package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper clears global viper and CfgFile state between tests.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	CfgFile = ""
	t.Cleanup(func() {
		viper.Reset()
		CfgFile = ""
	})
}

// TestCurrentDefaultsRoundTrip verifies every default written by setDefaults
// is read back by Current under the same key.
func TestCurrentDefaultsRoundTrip(t *testing.T) {
	resetViper(t)
	setDefaults()

	assert.Equal(t, Defaults(), Current())
	assert.NoError(t, Validate(Current()))
}

func TestCurrentViperOverride(t *testing.T) {
	resetViper(t)
	setDefaults()

	viper.Set("watch.debounce", 50*time.Millisecond)
	viper.Set("resolve.policy", "strict")

	cfg := Current()
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "strict", cfg.Resolve.Policy)
}

func TestInitConfigCreatesDefaultFile(t *testing.T) {
	resetViper(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, InitConfig())

	path := filepath.Join(home, BOARDCFG_BASE_DIR, "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "namespaced")
}

func TestInitConfigReadsFileAndEnvironment(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	CfgFile = filepath.Join(dir, "boardcfg.yaml")
	require.NoError(t, os.WriteFile(CfgFile, []byte(`
header:
  prefix: CFG_
  out_dir: out
resolve:
  policy: namespaced
`), 0o644))
	t.Setenv("BOARDCFG_RESOLVE_POLICY", "strict")

	require.NoError(t, InitConfig())

	cfg := Current()
	assert.Equal(t, "CFG_", cfg.Header.Prefix)
	assert.Equal(t, "out", cfg.Header.OutDir)
	assert.Equal(t, "strict", cfg.Resolve.Policy, "environment overrides the config file")
	assert.Equal(t, Defaults().Watch, cfg.Watch)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	resetViper(t)
	CfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	assert.Error(t, InitConfig())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		errMsg string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"missing catalog dir", func(s *Settings) { s.Catalog.Dir = "/does/not/exist" }, "Catalog.Dir"},
		{"unknown policy", func(s *Settings) { s.Resolve.Policy = "lenient" }, "Resolve.Policy"},
		{"bad prefix", func(s *Settings) { s.Header.Prefix = "9X" }, "Header.Prefix"},
		{"bad guard prefix", func(s *Settings) { s.Header.GuardPrefix = "A-B" }, "Header.GuardPrefix"},
		{"empty out dir", func(s *Settings) { s.Header.OutDir = "" }, "Header.OutDir"},
		{"negative debounce", func(s *Settings) { s.Watch.Debounce = -time.Second }, "Watch.Debounce"},
		{"negative interval", func(s *Settings) { s.Watch.MinInterval = -time.Second }, "Watch.MinInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := Validate(s)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Contains(t, err.Error(), "configuration validation failed")
		})
	}
}

func TestValidateExistingCatalogDir(t *testing.T) {
	s := Defaults()
	s.Catalog.Dir = t.TempDir()
	assert.NoError(t, Validate(s))
}

func TestSettingsConversions(t *testing.T) {
	s := Defaults()
	s.Header.Prefix = "CFG_"

	h := s.HeaderOptions(map[string]string{"a.b": "AB"})
	assert.Equal(t, "CFG_", h.Prefix)
	assert.Equal(t, "AB", h.Symbols["a.b"])

	assert.Len(t, s.ResolveOptions(), 1)
}
