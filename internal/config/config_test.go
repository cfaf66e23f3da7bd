package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validYAML = `
sources:
  - name: Regulator newsroom
    urls:
      - https://regulator.example.com/feed.xml
      - " https://regulator.example.com/news "
  - urls:
      - https://blog.example.com/
competitors: [RegCo, " ", OtherCo]
industries: [Fintech]
legal_keywords: [compliance, Act]
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", validYAML))
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "Regulator newsroom", cfg.Sources[0].Name)
	assert.Equal(t, "https://regulator.example.com/news", cfg.Sources[0].URLs[1])
	assert.Equal(t, []string{"RegCo", "OtherCo"}, cfg.Competitors)

	desc := cfg.Descriptors()
	require.Len(t, desc, 2)
	assert.Empty(t, desc[1].Name)
	assert.Equal(t, []string{"https://blog.example.com/"}, desc[1].URLs)

	kw := cfg.Keywords()
	assert.Equal(t, []string{"compliance", "Act"}, kw.Legal)
	assert.Empty(t, cfg.EmptyCategories())
}

func TestLoadMissingKeywordListIsFatal(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
sources: []
competitors: [RegCo]
industries: [Fintech]
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrMissingKeywords)
	assert.Contains(t, err.Error(), "legal_keywords")
}

func TestLoadEmptyKeywordListIsAllowed(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
sources: []
competitors: []
industries: [Fintech]
legal_keywords: [Act]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"competitors"}, cfg.EmptyCategories())
}

func TestLoadRejectsBadSources(t *testing.T) {
	cases := map[string]string{
		"no urls":    "sources: [{name: x, urls: []}]",
		"bad scheme": "sources: [{name: x, urls: [ftp://example.com/feed]}]",
		"no host":    "sources: [{name: x, urls: ['https://']}]",
	}
	for name, sources := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", sources+"\ncompetitors: [a]\nindustries: [b]\nlegal_keywords: [c]\n")
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileAndBadYAML(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.yaml", "sources: [unterminated"))
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadSettingsDefaults(t *testing.T) {
	for _, k := range []string{"REGWATCH_CONFIG", "REGWATCH_DATA_DIR", "REGWATCH_LEDGER_PATH", "REGWATCH_LEDGER_BACKEND",
		"REGWATCH_TIMEZONE", "REGWATCH_LOOKBACK", "REGWATCH_REQUEST_TIMEOUT", "REGWATCH_PUBLISHERS_FILE", "SLACK_WEBHOOK_URL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", s.ConfigPath)
	assert.Equal(t, filepath.Join("data", "seen.json"), s.LedgerPath)
	assert.Equal(t, "America/Toronto", s.Location.String())
	assert.Equal(t, 8*24*time.Hour, s.Lookback)
	assert.Equal(t, 20*time.Second, s.RequestTimeout)
	assert.Empty(t, s.WebhookURL)
	assert.Equal(t, "Weekly Regulatory Monitor", s.ReportTitle)
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("REGWATCH_DATA_DIR", "/var/lib/regwatch")
	t.Setenv("REGWATCH_LEDGER_BACKEND", "bolt")
	t.Setenv("REGWATCH_TIMEZONE", "UTC")
	t.Setenv("REGWATCH_LOOKBACK", "36h")
	t.Setenv("REGWATCH_REQUEST_TIMEOUT", "5s")
	t.Setenv("SLACK_WEBHOOK_URL", " https://hooks.example.com/T000 ")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/regwatch", "seen.db"), s.LedgerPath)
	assert.Equal(t, 36*time.Hour, s.Lookback)
	assert.Equal(t, 5*time.Second, s.RequestTimeout)
	assert.Equal(t, "https://hooks.example.com/T000", s.WebhookURL)

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	assert.True(t, s.Since(now).Equal(now.Add(-36*time.Hour)))
}

func TestLoadSettingsRejectsUnknownBackend(t *testing.T) {
	t.Setenv("REGWATCH_LEDGER_BACKEND", "redis")
	_, err := LoadSettings()
	assert.Error(t, err)
}

func TestParseDays(t *testing.T) {
	d, err := ParseDays("8d")
	require.NoError(t, err)
	assert.Equal(t, 192*time.Hour, d)

	d, err = ParseDays("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	for _, bad := range []string{"xd", "-1d", "-5h", "soon"} {
		_, err := ParseDays(bad)
		assert.Error(t, err, bad)
	}
}
