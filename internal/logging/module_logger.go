package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

const (
	rootModule       = "cms"
	resolverModule   = "cms.resolver"
	transitionModule = "cms.transition"
	storageModule    = "cms.storage"
	commandsModule   = "cms.commands"
)

const (
	fieldRunID  = "run_id"
	fieldURL    = "url"
	fieldItemID = "item_id"
)

// ModuleLogger returns a logger scoped to module, tagged with a "module" field.
// A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

func TransitionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, transitionModule)
}

func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// CommandLogger scopes a logger under cms.commands.<name>.
func CommandLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		return ModuleLogger(provider, commandsModule)
	}
	return ModuleLogger(provider, commandsModule+"."+name)
}

// WithItemContext annotates a logger with the fields shared by every per-URL entry
// of a batch run. Empty values are omitted.
func WithItemContext(logger interfaces.Logger, runID, rawURL, itemID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(runID); trimmed != "" {
		fields[fieldRunID] = trimmed
	}
	if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
		fields[fieldURL] = trimmed
	}
	if trimmed := strings.TrimSpace(itemID); trimmed != "" {
		fields[fieldItemID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
