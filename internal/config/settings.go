package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // default timezone must resolve on minimal images

	"github.com/spf13/viper"

	"github.com/Adda-Baaj/regwatch/internal/ledger"
)

const (
	envPrefix = "REGWATCH"

	defaultConfigPath     = "config.yaml"
	defaultDataDir        = "data"
	defaultTimezone       = "America/Toronto"
	defaultLookback       = "8d"
	defaultRequestTimeout = 20 * time.Second
	defaultUserAgent      = "regwatch/1.0 (+news monitor)"
	defaultReportTitle    = "Weekly Regulatory Monitor"
)

// Settings are process-level options resolved once at start and passed to
// each component.
type Settings struct {
	ConfigPath     string
	DataDir        string
	LedgerPath     string
	LedgerBackend  string
	Location       *time.Location
	Lookback       time.Duration
	RequestTimeout time.Duration
	UserAgent      string
	WebhookURL     string
	PublishersFile string
	ReportTitle    string
	LogLevel       string
	LogFormat      string
}

// LoadSettings resolves Settings from REGWATCH_* environment variables and
// SLACK_WEBHOOK_URL.
func LoadSettings() (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("config", defaultConfigPath)
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("ledger_backend", ledger.BackendJSON)
	v.SetDefault("timezone", defaultTimezone)
	v.SetDefault("lookback", defaultLookback)
	v.SetDefault("request_timeout", defaultRequestTimeout.String())
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("report_title", defaultReportTitle)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	_ = v.BindEnv("webhook_url", "SLACK_WEBHOOK_URL")

	return settingsFrom(v)
}

func settingsFrom(v *viper.Viper) (Settings, error) {
	s := Settings{
		ConfigPath:     strings.TrimSpace(v.GetString("config")),
		DataDir:        strings.TrimSpace(v.GetString("data_dir")),
		LedgerPath:     strings.TrimSpace(v.GetString("ledger_path")),
		LedgerBackend:  strings.ToLower(strings.TrimSpace(v.GetString("ledger_backend"))),
		UserAgent:      strings.TrimSpace(v.GetString("user_agent")),
		WebhookURL:     strings.TrimSpace(v.GetString("webhook_url")),
		PublishersFile: strings.TrimSpace(v.GetString("publishers_file")),
		ReportTitle:    strings.TrimSpace(v.GetString("report_title")),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
	}

	loc, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return Settings{}, fmt.Errorf("timezone: %w", err)
	}
	s.Location = loc

	if s.Lookback, err = ParseDays(v.GetString("lookback")); err != nil {
		return Settings{}, fmt.Errorf("lookback: %w", err)
	}
	if s.RequestTimeout, err = time.ParseDuration(strings.TrimSpace(v.GetString("request_timeout"))); err != nil {
		return Settings{}, fmt.Errorf("request_timeout: %w", err)
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = defaultRequestTimeout
	}

	switch s.LedgerBackend {
	case ledger.BackendJSON, ledger.BackendBolt:
	default:
		return Settings{}, fmt.Errorf("ledger_backend %q not supported", s.LedgerBackend)
	}
	if s.LedgerPath == "" {
		name := "seen.json"
		if s.LedgerBackend == ledger.BackendBolt {
			name = "seen.db"
		}
		s.LedgerPath = filepath.Join(s.DataDir, name)
	}
	if s.ReportTitle == "" {
		s.ReportTitle = defaultReportTitle
	}
	return s, nil
}

// Since returns the start of the lookback window ending at now.
func (s Settings) Since(now time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Add(-s.Lookback)
}

// ParseDays parses "Nd" day counts as well as Go durations.
func ParseDays(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}
