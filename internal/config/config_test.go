package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COSTLENS_CONFIG", filepath.Join(t.TempDir(), "nonexistent.yml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(20971520), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "Sheet1", cfg.Rules.SheetName)
	assert.Equal(t, "unspecified", cfg.Rules.UnspecifiedVendorName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COSTLENS_CONFIG", filepath.Join(t.TempDir(), "nonexistent.yml"))
	t.Setenv("COSTLENS_SERVER_PORT", "9191")
	t.Setenv("COSTLENS_RULES_SHEET_NAME", "コスト管理")
	t.Setenv("COSTLENS_RULES_OPENING_BALANCE", "1000000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "コスト管理", cfg.Rules.SheetName)
	assert.Equal(t, int64(1000000), cfg.Rules.OpeningBalance)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "costlens.yml")
	yamlContent := `
rules:
  opening_balance: 500000
  vendor_normalize_pairs: ["合同会社", ""]
`
	require.NoError(t, os.WriteFile(configFile, []byte(yamlContent), 0644))
	t.Setenv("COSTLENS_CONFIG", configFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(500000), cfg.Rules.OpeningBalance)
	assert.Equal(t, []string{"合同会社", ""}, cfg.Rules.VendorNormalizePairs)
	assert.Equal(t, 8080, cfg.Server.Port, "defaulted fields keep their env-side value")
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "costlens.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 9090\n"), 0644))
	t.Setenv("COSTLENS_CONFIG", configFile)
	t.Setenv("COSTLENS_SERVER_PORT", "7777")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad logging format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"odd vendor pairs", func(c *Config) { c.Rules.VendorNormalizePairs = []string{"（株）"} }, true},
		{"even vendor pairs", func(c *Config) { c.Rules.VendorNormalizePairs = []string{"（株）", ""} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Server.Port = 8080
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRulesConfig_VendorPatterns(t *testing.T) {
	var rules RulesConfig
	assert.Equal(t, DefaultVendorPatterns, rules.VendorPatterns())

	rules.VendorNormalizePairs = []string{"合同会社", ""}
	assert.Equal(t, []string{"合同会社", ""}, rules.VendorPatterns())
}

func TestNewPaths_Defaults(t *testing.T) {
	p := NewPaths(PathsConfig{})

	assert.Equal(t, "data", p.DataDir)
	assert.Equal(t, filepath.Join("data", "reports"), p.ReportsDir)
	assert.Equal(t, filepath.Join("data", "exports"), p.ExportsDir)
	assert.Equal(t, "logs", p.LogsDir)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := NewPaths(PathsConfig{
		DataDir: filepath.Join(base, "data"),
		LogsDir: filepath.Join(base, "logs"),
	})

	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.DataDir, p.ReportsDir, p.ExportsDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	assert.Equal(t, filepath.Join(p.ExportsDir, "x.csv"), p.GetExportPath("x.csv"))
	assert.True(t, FileExists(p.DataDir))
	assert.False(t, FileExists(filepath.Join(base, "missing")))
}
