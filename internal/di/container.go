package di

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-status-updater/internal/commands"
	statuscmd "github.com/goliatone/go-status-updater/internal/commands/status"
	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/internal/logging/charm"
	"github.com/goliatone/go-status-updater/internal/logging/gologger"
	"github.com/goliatone/go-status-updater/internal/resolver"
	"github.com/goliatone/go-status-updater/internal/routing"
	"github.com/goliatone/go-status-updater/internal/runtimeconfig"
	"github.com/goliatone/go-status-updater/internal/storage"
	"github.com/goliatone/go-status-updater/internal/transition"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

// Store is what the container needs from a content backend.
type Store interface {
	content.Store
	content.Seeder
}

// Container wires the status updater components from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	db             *bun.DB
	ownsDB         bool
	store          Store
	router         *routing.Router
	follower       resolver.Follower
	resolver       *resolver.Chain
	transitioner   *transition.Transitioner
	bulkHandler    *statuscmd.BulkStatusHandler
	now            func() time.Time
}

// Option mutates the container before it wires services.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies an open database; the container will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// WithStore replaces the configured content store.
func WithStore(store Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithFollower replaces the HTTP follower used by the redirect strategy.
func WithFollower(follower resolver.Follower) Option {
	return func(c *Container) {
		c.follower = follower
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// NewContainer validates cfg and assembles the store, router, resolver chain,
// transitioner and command handler.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	if err := c.configureRouter(); err != nil {
		return nil, err
	}
	if err := c.configureStore(); err != nil {
		return nil, err
	}
	if err := c.configureServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// configureLogger builds the provider named by Config.Logging. "console" is the
// charm text formatter without format overrides.
func (c *Container) configureLogger() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	name := strings.ToLower(strings.TrimSpace(logCfg.Provider))
	if name == "gologger" {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
		return nil
	}

	format := "text"
	if name == "charm" {
		format = logCfg.Format
	}
	provider, err := charm.NewProvider(charm.Config{
		Writer: os.Stderr,
		Level:  logCfg.Level,
		Format: format,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureRouter() error {
	routeConfig := c.Config.Routing.RouteConfig
	if routeConfig == nil {
		routeConfig = routing.DefaultConfig(c.Config.Routing.Group, c.Config.Site.BaseURL)
	}
	router, err := routing.New(routeConfig)
	if err != nil {
		return fmt.Errorf("di: routing: %w", err)
	}
	c.router = router
	return nil
}

func (c *Container) configureStore() error {
	if c.store != nil {
		return nil
	}

	opts := content.StoreOptions{
		BasePath: c.Config.BasePath(),
		Router:   c.router,
		Clock:    c.now,
	}

	provider := strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
	if provider == runtimeconfig.StorageMemory && c.db == nil {
		c.store = content.NewMemoryStore(opts)
		return nil
	}

	ctx := context.Background()
	if c.db == nil {
		db, err := storage.Open(ctx, storage.Config{
			Provider:     provider,
			DSN:          c.Config.Storage.DSN,
			MaxOpenConns: c.Config.Storage.MaxOpenConns,
		}, logging.StorageLogger(c.loggerProvider))
		if err != nil {
			return err
		}
		c.db = db
		c.ownsDB = true
	}
	if err := storage.Migrate(ctx, c.db); err != nil {
		c.Close()
		return err
	}
	c.store = content.NewBunStore(c.db, opts)
	return nil
}

func (c *Container) configureServices() error {
	redirect := c.Config.Resolver.Redirect
	chain, err := resolver.New(c.store, resolver.Config{
		Strategies: c.Config.Resolver.Strategies,
		Redirect: resolver.RedirectConfig{
			Enabled: redirect.Enabled,
			HTTP: resolver.HTTPConfig{
				Timeout:      redirect.Timeout,
				DialTimeout:  redirect.DialTimeout,
				MaxRedirects: redirect.MaxRedirects,
				UserAgent:    redirect.UserAgent,
			},
			Follower: c.follower,
		},
	}, resolver.WithLogger(logging.ResolverLogger(c.loggerProvider)))
	if err != nil {
		return err
	}
	c.resolver = chain

	runner, err := transition.New(c.store, chain,
		transition.WithLogger(logging.TransitionLogger(c.loggerProvider)),
		transition.WithClock(c.now),
	)
	if err != nil {
		return err
	}
	c.transitioner = runner

	c.bulkHandler = statuscmd.NewBulkStatusHandler(runner,
		commands.CommandLogger(c.loggerProvider, "status"),
		commands.WithTimeout[statuscmd.BulkStatusCommand](c.Config.Commands.Timeout),
	)
	return nil
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.db == nil || !c.ownsDB {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Store() Store { return c.store }

func (c *Container) Router() *routing.Router { return c.router }

func (c *Container) Resolver() *resolver.Chain { return c.resolver }

func (c *Container) Transitioner() *transition.Transitioner { return c.transitioner }

func (c *Container) BulkStatusHandler() *statuscmd.BulkStatusHandler { return c.bulkHandler }

// DB returns the bun database, nil for the memory store.
func (c *Container) DB() *bun.DB { return c.db }
