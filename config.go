package statusupdater

import "github.com/goliatone/go-status-updater/internal/runtimeconfig"

// Config aggregates the runtime options for the status updater.
type Config = runtimeconfig.Config

type (
	SiteConfig     = runtimeconfig.SiteConfig
	RoutingConfig  = runtimeconfig.RoutingConfig
	ResolverConfig = runtimeconfig.ResolverConfig
	RedirectConfig = runtimeconfig.RedirectConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CommandsConfig = runtimeconfig.CommandsConfig
	Features       = runtimeconfig.Features
	LoggingConfig  = runtimeconfig.LoggingConfig
)

// DefaultConfig returns an in-memory setup with redirect resolution disabled.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML or TOML file over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
