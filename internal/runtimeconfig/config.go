package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-status-updater/internal/resolver"
)

var (
	ErrSiteBaseURLInvalid      = errors.New("status updater config: site base url must be an absolute http(s) url")
	ErrResolverStrategyInvalid = errors.New("status updater config: resolver strategies are invalid")
	ErrRedirectTimeoutInvalid  = errors.New("status updater config: redirect timeout must be positive when redirect resolution is enabled")
	ErrRedirectLimitInvalid    = errors.New("status updater config: redirect limit must be zero or positive")
	ErrStorageProviderUnknown  = errors.New("status updater config: storage provider is invalid")
	ErrStorageDSNRequired      = errors.New("status updater config: storage dsn is required for sql providers")
	ErrCommandTimeoutInvalid   = errors.New("status updater config: command timeout must be zero or positive")
	ErrLoggingProviderRequired = errors.New("status updater config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("status updater config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("status updater config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("status updater config: logging format is invalid")
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config aggregates everything needed to assemble the status updater.
type Config struct {
	Site     SiteConfig
	Routing  RoutingConfig
	Resolver ResolverConfig
	Storage  StorageConfig
	Commands CommandsConfig
	Features Features
	Logging  LoggingConfig
}

// SiteConfig describes the public site the URLs belong to.
type SiteConfig struct {
	// BaseURL is the public root, e.g. https://example.com/blog. Its path is the
	// base path stripped before path based lookups.
	BaseURL string
}

// RoutingConfig declares the permalink templates. A nil RouteConfig falls back to the
// default routes mounted under Site.BaseURL.
type RoutingConfig struct {
	RouteConfig *urlkit.Config
	Group       string
}

type ResolverConfig struct {
	Strategies []string
	Redirect   RedirectConfig
}

// RedirectConfig controls the network backed redirect strategy.
type RedirectConfig struct {
	Enabled      bool
	Timeout      time.Duration
	DialTimeout  time.Duration
	MaxRedirects int
	UserAgent    string
}

// StorageConfig selects the content store backend.
type StorageConfig struct {
	Provider     string
	DSN          string
	MaxOpenConns int
}

type CommandsConfig struct {
	Timeout time.Duration
}

// Features toggles optional behaviour.
type Features struct {
	Logger bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns an in-memory setup with the full resolver chain. Redirect
// following is on with an explicit timeout; set Resolver.Redirect.Enabled to opt out.
func DefaultConfig() Config {
	redirect := resolver.DefaultHTTPConfig()
	return Config{
		Site: SiteConfig{},
		Resolver: ResolverConfig{
			Strategies: append([]string(nil), resolver.DefaultStrategies...),
			Redirect: RedirectConfig{
				Enabled:      true,
				Timeout:      redirect.Timeout,
				DialTimeout:  redirect.DialTimeout,
				MaxRedirects: redirect.MaxRedirects,
				UserAgent:    redirect.UserAgent,
			},
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// BasePath returns the path component of Site.BaseURL normalised to "/segment" or "".
func (cfg Config) BasePath() string {
	raw := strings.TrimSpace(cfg.Site.BaseURL)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	trimmed := strings.Trim(parsed.Path, "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if raw := strings.TrimSpace(cfg.Site.BaseURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("%w: %q", ErrSiteBaseURLInvalid, raw)
		}
	}

	if err := resolver.ValidateStrategies(cfg.Resolver.Strategies); err != nil {
		return fmt.Errorf("%w: %v", ErrResolverStrategyInvalid, err)
	}
	if cfg.Resolver.Redirect.Enabled && cfg.Resolver.Redirect.Timeout <= 0 {
		return ErrRedirectTimeoutInvalid
	}
	if cfg.Resolver.Redirect.MaxRedirects < 0 {
		return ErrRedirectLimitInvalid
	}

	switch provider := normalizeProvider(cfg.Storage.Provider); provider {
	case StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %q", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}

	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(provider, format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "charm":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(provider, format string) bool {
	format = strings.ToLower(strings.TrimSpace(format))
	switch provider {
	case "gologger":
		return format == "json" || format == "console" || format == "pretty"
	case "charm":
		return format == "text" || format == "logfmt" || format == "json"
	default:
		return true
	}
}
