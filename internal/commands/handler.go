package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-status-updater/internal/logging"
	"github.com/goliatone/go-status-updater/pkg/interfaces"
)

type HandlerOption[T command.Message] func(*Handler[T])

// Handler adapts a command function to go-command's Commander, adding message
// validation, a timeout, structured logging and go-errors categories.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	telemetry Telemetry[T]
	now       func() time.Time
}

func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:      fn,
		logger:    logging.NoOp(),
		timeout:   DefaultCommandTimeout,
		telemetry: DefaultTelemetry[T](),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute satisfies command.Commander[T].
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	ctx = EnsureContext(ctx)

	messageType := command.GetMessageType(msg)
	fields := map[string]any{"command": messageType}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	logger := logging.WithFields(h.logger, fields)

	started := h.now()
	status, err := h.run(ctx, msg, logger)
	h.telemetry(ctx, msg, TelemetryInfo{
		Command:   messageType,
		Operation: h.operation,
		Fields:    fields,
		Duration:  h.now().Sub(started),
		Error:     err,
		Status:    status,
		Logger:    logger,
	})
	return err
}

func (h *Handler[T]) run(ctx context.Context, msg T, logger interfaces.Logger) (TelemetryStatus, error) {
	if err := command.ValidateMessage(msg); err != nil {
		return validationFailure.apply(err)
	}

	ctx, cancel := WithCommandTimeout(ctx, h.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return contextFailure(err).apply(err)
	}

	logger.Debug("command.started")
	return settle(h.exec(ctx, msg), ctx.Err())
}

// WithTimeout overrides DefaultCommandTimeout. Zero or negative disables the timeout.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger == nil {
			logger = logging.NoOp()
		}
		h.logger = logger
	}
}

// WithTelemetry replaces the default outcome logging. Nil keeps the default.
func WithTelemetry[T command.Message](telemetry Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		if telemetry != nil {
			h.telemetry = telemetry
		}
	}
}

// WithOperation names the use case in every log entry, e.g. "content.bulk_status".
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}
