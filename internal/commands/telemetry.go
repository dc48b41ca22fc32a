package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

// TelemetryStatus classifies a command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusRejected means the message failed validation and never ran.
	TelemetryStatusRejected     TelemetryStatus = "rejected"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks once per Execute call.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	// Logger already carries Fields.
	Logger interfaces.Logger
}

// Telemetry is invoked after every Execute call, including rejected ones.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one entry per execution on info.Logger.
func DefaultTelemetry[T command.Message]() Telemetry[T] {
	return func(_ context.Context, _ T, info TelemetryInfo) {
		logger := info.Logger
		if logger == nil {
			logger = logging.NoOp()
		}
		args := []any{"status", info.Status, "duration_ms", info.Duration.Milliseconds()}
		if info.Error != nil {
			args = append(args, "error", info.Error)
		}
		switch info.Status {
		case TelemetryStatusSuccess:
			logger.Info("command.executed", args...)
		case TelemetryStatusRejected:
			logger.Warn("command.rejected", args...)
		default:
			logger.Error("command.failed", args...)
		}
	}
}
