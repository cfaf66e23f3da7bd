// Package config loads the monitoring document (sources and keyword lists)
// and the process settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Adda-Baaj/regwatch/internal/domain"
)

// Keys of the monitoring document.
const (
	keySources     = "sources"
	keyCompetitors = "competitors"
	keyIndustries  = "industries"
	keyLegal       = "legal_keywords"
)

// ErrMissingKeywords is returned when a keyword list key is absent. Matching
// without one of the lists would accept everything, so the run must abort.
var ErrMissingKeywords = errors.New("required keyword list missing")

// Source is a configured group of URLs.
type Source struct {
	Name string   `mapstructure:"name"`
	URLs []string `mapstructure:"urls"`
}

// Config is the monitoring document.
type Config struct {
	Sources       []Source `mapstructure:"sources"`
	Competitors   []string `mapstructure:"competitors"`
	Industries    []string `mapstructure:"industries"`
	LegalKeywords []string `mapstructure:"legal_keywords"`
}

// Load reads and validates the document at path. Any failure is fatal to the run.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var missing []string
	for _, key := range []string{keyCompetitors, keyIndustries, keyLegal} {
		if !v.IsSet(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingKeywords, strings.Join(missing, ", "))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg = sanitize(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// sanitize trims names, URLs and keywords and drops empty entries.
func sanitize(cfg Config) Config {
	for i := range cfg.Sources {
		cfg.Sources[i].Name = strings.TrimSpace(cfg.Sources[i].Name)
		cfg.Sources[i].URLs = trimAll(cfg.Sources[i].URLs)
	}
	cfg.Competitors = trimAll(cfg.Competitors)
	cfg.Industries = trimAll(cfg.Industries)
	cfg.LegalKeywords = trimAll(cfg.LegalKeywords)
	return cfg
}

func validate(cfg Config) error {
	for i, s := range cfg.Sources {
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if len(s.URLs) == 0 {
			return fmt.Errorf("source %s: at least one url is required", label)
		}
		for _, raw := range s.URLs {
			u, err := url.Parse(raw)
			if err != nil {
				return fmt.Errorf("source %s: invalid url %q: %w", label, raw, err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("source %s: url scheme must be http or https, got %q", label, raw)
			}
			if u.Host == "" {
				return fmt.Errorf("source %s: url %q has no host", label, raw)
			}
		}
	}
	return nil
}

// Descriptors converts configured sources into the pipeline's source type.
func (c *Config) Descriptors() []domain.SourceDescriptor {
	out := make([]domain.SourceDescriptor, 0, len(c.Sources))
	for _, s := range c.Sources {
		urls := make([]string, len(s.URLs))
		copy(urls, s.URLs)
		out = append(out, domain.SourceDescriptor{Name: s.Name, URLs: urls})
	}
	return out
}

// Keywords returns the three keyword categories.
func (c *Config) Keywords() domain.KeywordSets {
	return domain.KeywordSets{
		Competitors: c.Competitors,
		Industries:  c.Industries,
		Legal:       c.LegalKeywords,
	}
}

// EmptyCategories names keyword lists that are present but empty; such a
// category never matches, so nothing can be accepted.
func (c *Config) EmptyCategories() []string {
	var out []string
	if len(c.Competitors) == 0 {
		out = append(out, keyCompetitors)
	}
	if len(c.Industries) == 0 {
		out = append(out, keyIndustries)
	}
	if len(c.LegalKeywords) == 0 {
		out = append(out, keyLegal)
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
