package commands

import (
	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

// CommandLogger returns the logger for a command module, tagged as command output.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	logger := logging.CommandLogger(provider, module)
	return logging.WithFields(logger, map[string]any{
		"component": "command",
	})
}
