package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

const (
	StrategyRoute      = "route"
	StrategyCustomPath = "custom_path"
	StrategyRedirect   = "redirect"
	StrategySlug       = "slug"
)

// DefaultStrategies is the resolution order used when none is configured.
var DefaultStrategies = []string{StrategyRoute, StrategyCustomPath, StrategyRedirect, StrategySlug}

var (
	ErrUnknownStrategy   = errors.New("resolver: unknown strategy")
	ErrDuplicateStrategy = errors.New("resolver: strategy listed twice")
	ErrStoreRequired     = errors.New("resolver: content store required")
)

// Target is a URL prepared for the strategies.
type Target struct {
	Raw string
	URL *url.URL
	// Path is the URL path with the site base path removed and surrounding slashes trimmed.
	Path string
	// EscapedPath is Path as it was written in the URL, percent-encoding intact.
	EscapedPath string
}

// Strategy maps a target onto an item identifier. Implementations report "no match"
// with ok=false; a *content.NotFoundError is treated the same way.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, target Target) (content.ItemID, bool, error)
}

// Resolution describes which strategy produced an identifier.
type Resolution struct {
	Strategy string
}

// Resolver maps arbitrary site URLs to content identifiers.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (content.ItemID, Resolution, bool)
}

// Chain tries each strategy in order until one yields an identifier.
type Chain struct {
	basePath   string
	strategies []Strategy
	logger     interfaces.Logger
}

var _ Resolver = (*Chain)(nil)

// ChainOption customises a Chain.
type ChainOption func(*Chain)

func WithLogger(logger interfaces.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBasePath sets the path prefix stripped before path based strategies run.
func WithBasePath(basePath string) ChainOption {
	return func(c *Chain) {
		c.basePath = content.NormalizeBasePath(basePath)
	}
}

// NewChain assembles a chain from already constructed strategies.
func NewChain(strategies []Strategy, opts ...ChainOption) *Chain {
	chain := &Chain{
		strategies: append([]Strategy(nil), strategies...),
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(chain)
		}
	}
	return chain
}

// Config selects and orders the built-in strategies.
type Config struct {
	Strategies []string
	Redirect   RedirectConfig
}

// RedirectConfig controls the redirect strategy.
type RedirectConfig struct {
	Enabled bool
	HTTP    HTTPConfig
	// Follower overrides the HTTP follower built from HTTP.
	Follower Follower
}

// New builds a chain over store from the named strategies. A disabled redirect
// strategy is skipped even when listed.
func New(store content.Store, cfg Config, opts ...ChainOption) (*Chain, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	names := cfg.Strategies
	if len(names) == 0 {
		names = DefaultStrategies
	}
	if err := ValidateStrategies(names); err != nil {
		return nil, err
	}

	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch normalizeName(name) {
		case StrategyRoute:
			strategies = append(strategies, RouteStrategy{Store: store})
		case StrategyCustomPath:
			strategies = append(strategies, CustomPathStrategy{Store: store})
		case StrategySlug:
			strategies = append(strategies, SlugStrategy{Store: store})
		case StrategyRedirect:
			if !cfg.Redirect.Enabled {
				continue
			}
			follower := cfg.Redirect.Follower
			if follower == nil {
				follower = NewHTTPFollower(cfg.Redirect.HTTP)
			}
			strategies = append(strategies, RedirectStrategy{Follower: follower})
		}
	}

	opts = append([]ChainOption{WithBasePath(store.BasePath())}, opts...)
	return NewChain(strategies, opts...), nil
}

// ValidateStrategies reports unknown or repeated strategy names.
func ValidateStrategies(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := normalizeName(raw)
		switch name {
		case StrategyRoute, StrategyCustomPath, StrategyRedirect, StrategySlug:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateStrategy, raw)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Strategies lists the names of the configured strategies in order.
func (c *Chain) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, strategy := range c.strategies {
		names = append(names, strategy.Name())
	}
	return names
}

// Resolve never fails: strategy errors are logged and treated as no match.
func (c *Chain) Resolve(ctx context.Context, rawURL string) (content.ItemID, Resolution, bool) {
	target, ok := c.target(rawURL)
	if !ok {
		return 0, Resolution{}, false
	}

	logger := c.logger.WithContext(ctx)
	for _, strategy := range c.strategies {
		if ctx.Err() != nil {
			return 0, Resolution{}, false
		}
		id, ok, err := strategy.Resolve(ctx, target)
		if err != nil {
			if !content.IsNotFound(err) {
				logger.Warn("resolver.strategy_failed", "strategy", strategy.Name(), "url", rawURL, "error", err)
			}
			continue
		}
		if !ok || id <= 0 {
			continue
		}
		logger.Debug("resolver.matched", "strategy", strategy.Name(), "url", rawURL, "item_id", id)
		return id, Resolution{Strategy: strategy.Name()}, true
	}

	logger.Debug("resolver.no_match", "url", rawURL)
	return 0, Resolution{}, false
}

func (c *Chain) target(rawURL string) (Target, bool) {
	raw := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(raw)
	if err != nil || raw == "" {
		return Target{}, false
	}
	return Target{
		Raw:         raw,
		URL:         parsed,
		Path:        StripBasePath(parsed.Path, c.basePath),
		EscapedPath: StripBasePath(parsed.EscapedPath(), c.basePath),
	}, true
}

// StripBasePath removes basePath from the front of path when path lives under it,
// then trims surrounding slashes.
func StripBasePath(path, basePath string) string {
	basePath = content.NormalizeBasePath(basePath)
	if basePath != "" {
		if path == basePath {
			path = ""
		} else if strings.HasPrefix(path, basePath+"/") {
			path = path[len(basePath):]
		}
	}
	return strings.Trim(path, "/")
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
