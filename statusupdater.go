package statusupdater

import (
	"context"
	"sync"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-status-updater/commands"
	statuscmd "github.com/goliatone/go-status-updater/internal/commands/status"
	"github.com/goliatone/go-status-updater/internal/content"
	"github.com/goliatone/go-status-updater/internal/di"
	"github.com/goliatone/go-status-updater/internal/domain"
	"github.com/goliatone/go-status-updater/internal/resolver"
	"github.com/goliatone/go-status-updater/internal/transition"
)

// Status exports the content status enumeration.
type Status = domain.Status

const (
	StatusPublish = domain.StatusPublish
	StatusDraft   = domain.StatusDraft
	StatusPending = domain.StatusPending
	StatusPrivate = domain.StatusPrivate
	StatusTrash   = domain.StatusTrash
)

// Input carries the raw form values: a newline separated URL list plus two statuses.
type Input = transition.Input

// Report exports the per-run summary.
type Report = transition.Report

type Outcome = transition.Outcome

type Result = transition.Result

// Line is one rendered message for the host UI.
type Line = transition.Line

// BulkStatusCommand exports the go-command message for bulk transitions.
type BulkStatusCommand = statuscmd.BulkStatusCommand

type BulkStatusResult = statuscmd.BulkStatusResult

// Item and ItemID export the content model for embedding hosts.
type (
	Item   = content.Item
	ItemID = content.ItemID
)

// Follower exports the redirect follower contract.
type Follower = resolver.Follower

// Option customises the container behind a Module.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithBunDB          = di.WithBunDB
	WithStore          = di.WithStore
	WithFollower       = di.WithFollower
	WithClock          = di.WithClock
)

// Module is the status updater runtime façade.
type Module struct {
	container *di.Container

	mu           sync.Mutex
	registration *commands.RegistrationResult
}

// New constructs a Module using the provided configuration and optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Store returns the content store, which also accepts seed data.
func (m *Module) Store() di.Store {
	return m.container.Store()
}

// Run executes one bulk transition and returns the report with its rendered lines.
// The report is nil when the input is rejected before any URL is looked at.
func (m *Module) Run(ctx context.Context, in Input) (*Report, []Line, error) {
	result := &statuscmd.BulkStatusResult{}
	err := m.Execute(ctx, BulkStatusCommand{
		URLs:           in.URLs,
		ExpectedStatus: in.ExpectedStatus,
		NewStatus:      in.NewStatus,
		Result:         result,
	})
	return result.Report(), result.Lines(), err
}

// Execute runs the command through the configured handler.
func (m *Module) Execute(ctx context.Context, cmd BulkStatusCommand) error {
	return m.container.BulkStatusHandler().Execute(ctx, cmd)
}

// Subscribe registers the command handlers with the go-command dispatcher so
// hosts can call Dispatch. Calling it again replaces the previous subscriptions.
func (m *Module) Subscribe(opts ...runner.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registration.Unsubscribe()
	result, err := commands.RegisterContainerCommands(m.container, commands.RegistrationOptions{
		Dispatcher: commands.GoCommandDispatcher{RunnerOptions: opts},
	})
	m.registration = result
	return err
}

// Dispatch sends cmd through the go-command dispatcher.
func Dispatch(ctx context.Context, cmd BulkStatusCommand) error {
	return dispatcher.Dispatch(ctx, cmd)
}

// Close drops the dispatcher subscription and releases storage.
func (m *Module) Close() error {
	m.mu.Lock()
	m.registration.Unsubscribe()
	m.registration = nil
	m.mu.Unlock()
	return m.container.Close()
}
