package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrConfigFormatUnknown = errors.New("status updater config: unsupported config file extension")

// fileConfig is the on-disk shape. Durations are strings ("3s") so YAML and TOML
// decode them the same way.
type fileConfig struct {
	Site struct {
		BaseURL *string `yaml:"base_url" toml:"base_url"`
	} `yaml:"site" toml:"site"`
	Routing struct {
		Group  *string          `yaml:"group" toml:"group"`
		Groups []routeGroupFile `yaml:"groups" toml:"groups"`
	} `yaml:"routing" toml:"routing"`
	Resolver struct {
		Strategies []string `yaml:"strategies" toml:"strategies"`
		Redirect   struct {
			Enabled      *bool   `yaml:"enabled" toml:"enabled"`
			Timeout      *string `yaml:"timeout" toml:"timeout"`
			DialTimeout  *string `yaml:"dial_timeout" toml:"dial_timeout"`
			MaxRedirects *int    `yaml:"max_redirects" toml:"max_redirects"`
			UserAgent    *string `yaml:"user_agent" toml:"user_agent"`
		} `yaml:"redirect" toml:"redirect"`
	} `yaml:"resolver" toml:"resolver"`
	Storage struct {
		Provider     *string `yaml:"provider" toml:"provider"`
		DSN          *string `yaml:"dsn" toml:"dsn"`
		MaxOpenConns *int    `yaml:"max_open_conns" toml:"max_open_conns"`
	} `yaml:"storage" toml:"storage"`
	Commands struct {
		Timeout *string `yaml:"timeout" toml:"timeout"`
	} `yaml:"commands" toml:"commands"`
	Features struct {
		Logger *bool `yaml:"logger" toml:"logger"`
	} `yaml:"features" toml:"features"`
	Logging struct {
		Provider  *string  `yaml:"provider" toml:"provider"`
		Level     *string  `yaml:"level" toml:"level"`
		Format    *string  `yaml:"format" toml:"format"`
		AddSource *bool    `yaml:"add_source" toml:"add_source"`
		Focus     []string `yaml:"focus" toml:"focus"`
	} `yaml:"logging" toml:"logging"`
}

type routeGroupFile struct {
	Name    string            `yaml:"name" toml:"name"`
	BaseURL string            `yaml:"base_url" toml:"base_url"`
	Path    string            `yaml:"path" toml:"path"`
	Paths   map[string]string `yaml:"paths" toml:"paths"`
	Groups  []routeGroupFile  `yaml:"groups" toml:"groups"`
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over DefaultConfig and validates
// the result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	return LoadWithDefaults(path, DefaultConfig())
}

// LoadWithDefaults is Load with caller supplied defaults.
func LoadWithDefaults(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var file fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &file); err != nil {
			return Config{}, fmt.Errorf("decode yaml %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(content, &file); err != nil {
			return Config{}, fmt.Errorf("decode toml %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrConfigFormatUnknown, path)
	}

	if err := file.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (f fileConfig) apply(cfg *Config) error {
	setString(&cfg.Site.BaseURL, f.Site.BaseURL)

	setString(&cfg.Routing.Group, f.Routing.Group)
	if len(f.Routing.Groups) > 0 {
		cfg.Routing.RouteConfig = &urlkit.Config{Groups: convertGroups(f.Routing.Groups)}
	}

	if f.Resolver.Strategies != nil {
		cfg.Resolver.Strategies = append([]string(nil), f.Resolver.Strategies...)
	}
	redirect := f.Resolver.Redirect
	setBool(&cfg.Resolver.Redirect.Enabled, redirect.Enabled)
	if err := setDuration(&cfg.Resolver.Redirect.Timeout, redirect.Timeout, "resolver.redirect.timeout"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Resolver.Redirect.DialTimeout, redirect.DialTimeout, "resolver.redirect.dial_timeout"); err != nil {
		return err
	}
	setInt(&cfg.Resolver.Redirect.MaxRedirects, redirect.MaxRedirects)
	setString(&cfg.Resolver.Redirect.UserAgent, redirect.UserAgent)

	setString(&cfg.Storage.Provider, f.Storage.Provider)
	setString(&cfg.Storage.DSN, f.Storage.DSN)
	setInt(&cfg.Storage.MaxOpenConns, f.Storage.MaxOpenConns)

	if err := setDuration(&cfg.Commands.Timeout, f.Commands.Timeout, "commands.timeout"); err != nil {
		return err
	}

	setBool(&cfg.Features.Logger, f.Features.Logger)

	setString(&cfg.Logging.Provider, f.Logging.Provider)
	setString(&cfg.Logging.Level, f.Logging.Level)
	setString(&cfg.Logging.Format, f.Logging.Format)
	setBool(&cfg.Logging.AddSource, f.Logging.AddSource)
	if f.Logging.Focus != nil {
		cfg.Logging.Focus = append([]string(nil), f.Logging.Focus...)
	}
	return nil
}

func convertGroups(groups []routeGroupFile) []urlkit.GroupConfig {
	if len(groups) == 0 {
		return nil
	}
	out := make([]urlkit.GroupConfig, 0, len(groups))
	for _, group := range groups {
		paths := make(map[string]string, len(group.Paths))
		for name, template := range group.Paths {
			paths[name] = template
		}
		out = append(out, urlkit.GroupConfig{
			Name:    group.Name,
			BaseURL: group.BaseURL,
			Path:    group.Path,
			Paths:   paths,
			Groups:  convertGroups(group.Groups),
		})
	}
	return out
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func setBool(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

func setInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

func setDuration(dst *time.Duration, value *string, field string) error {
	if value == nil {
		return nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = parsed
	return nil
}
