package commands

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	statuscmd "github.com/goliatone/go-status-updater/internal/commands/status"
	"github.com/goliatone/go-status-updater/internal/di"
)

// ErrNoHandlers is returned when the container exposes no command handlers.
var ErrNoHandlers = errors.New("commands: no command handlers registered")

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
}

// RegistrationResult captures the handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands collects the handlers exposed by container and hands
// them to the optional registry and dispatcher.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{
		Handlers:      make([]any, 0, 1),
		Subscriptions: make([]CommandSubscription, 0, 1),
	}
	if container == nil {
		return result, nil
	}

	var errs error
	register := func(handler any) {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	if handler := container.BulkStatusHandler(); handler != nil {
		register(handler)
	}

	if len(result.Handlers) == 0 {
		return result, ErrNoHandlers
	}
	return result, errs
}

// GoCommandDispatcher subscribes handlers to the process wide go-command dispatcher.
type GoCommandDispatcher struct {
	RunnerOptions []runner.Option
}

func (d GoCommandDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *statuscmd.BulkStatusHandler:
		return dispatcher.SubscribeCommand(h, d.RunnerOptions...), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}
